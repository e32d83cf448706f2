package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"readinghub/pkg/utils"
)

// RequireAdminMode rejects every admin call unless the server was started
// with admin mode enabled. There is no per-user admin role; the switch is
// deployment-wide.
func RequireAdminMode() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !utils.AdminMode() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin mode disabled"})
			return
		}
		c.Next()
	}
}
