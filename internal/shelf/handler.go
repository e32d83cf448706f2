package shelf

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"readinghub/internal/auth"
	"readinghub/internal/events"
	"readinghub/pkg/models"
)

type Handler struct {
	Repo *Repo
	Hub  *events.Hub
}

func NewHandler(repo *Repo, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)              // GET /shelf
	rg.POST("", h.addOrUpdate)      // POST /shelf
	rg.PUT("/:book_id", h.addOrUpdate)
	rg.GET("/:book_id", h.getOne)
	rg.DELETE("/:book_id", h.remove)
}

type upsertReq struct {
	BookID         string `json:"book_id"` // required for POST
	CurrentChapter int    `json:"current_chapter"`
	Status         string `json:"status"`
}

func (h *Handler) addOrUpdate(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req upsertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	bookID := strings.TrimSpace(req.BookID)
	if bookID == "" {
		bookID = strings.TrimSpace(c.Param("book_id"))
	}
	if bookID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "book_id required"})
		return
	}

	status := normalizeStatus(req.Status)
	if status == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "status must be one of: reading, finished, wishlist",
		})
		return
	}
	if req.CurrentChapter < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current_chapter must be >= 0"})
		return
	}

	item := models.ShelfItem{
		UserID:         claims.UserID,
		BookID:         bookID,
		CurrentChapter: req.CurrentChapter,
		Status:         status,
	}
	if err := h.Repo.Upsert(c.Request.Context(), item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	// Return the canonical stored row including updated_at
	saved, err := h.Repo.Get(c.Request.Context(), claims.UserID, bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}
	if saved == nil {
		item.UpdatedAt = time.Now().UTC()
		saved = &item
	}

	if h.Hub != nil {
		go h.Hub.Broadcast(events.ShelfUpdated, saved)
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	status := strings.TrimSpace(c.Query("status"))
	if status != "" {
		status = normalizeStatus(status)
		if status == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, total, err := h.Repo.List(c.Request.Context(), claims.UserID, status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) getOne(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookID := strings.TrimSpace(c.Param("book_id"))
	it, err := h.Repo.Get(c.Request.Context(), claims.UserID, bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if it == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookID := strings.TrimSpace(c.Param("book_id"))
	ok, err := h.Repo.Delete(c.Request.Context(), claims.UserID, bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Hub != nil {
		go h.Hub.Broadcast(events.ShelfUpdated, gin.H{
			"user_id": claims.UserID,
			"book_id": bookID,
			"removed": true,
		})
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func normalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reading":
		return "reading"
	case "finished", "completed", "done":
		return "finished"
	case "wishlist", "wish_list", "wish list":
		return "wishlist"
	default:
		return ""
	}
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
