package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Handler exposes the account routes. Accounts exist to scope shelves and
// reading progress; there are no roles beyond the admin-mode gate.
type Handler struct {
	Repo   *Repo
	Tokens TokenService
}

func NewHandler(repo *Repo, tokens TokenService) *Handler {
	return &Handler{Repo: repo, Tokens: tokens}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.register)
	rg.POST("/login", h.login)

	authed := rg.Group("", AuthMiddleware(h.Tokens, h.Repo))
	authed.POST("/change-password", h.changePassword)
	authed.POST("/logout", h.logout)
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *signupRequest) normalize() {
	s.Username = strings.TrimSpace(s.Username)
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
}

func (s signupRequest) invalid() string {
	switch {
	case len(s.Username) < 3 || len(s.Username) > 30:
		return "username must be between 3 and 30 characters"
	case strings.Count(s.Email, "@") != 1 || len(s.Email) > 254:
		return "a valid email address is required"
	case !passwordOK(s.Password):
		return passwordRule
	}
	return ""
}

// bcrypt reads at most 72 bytes of input, hence the upper bound.
const passwordRule = "password must be 8 to 72 characters"

func passwordOK(pw string) bool {
	return len(pw) >= 8 && len(pw) <= 72
}

func (h *Handler) register(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}
	req.normalize()
	if msg := req.invalid(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	ctx := c.Request.Context()
	taken, err := h.Repo.Taken(ctx, req.Username, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "account lookup failed"})
		return
	}
	if taken {
		c.JSON(http.StatusConflict, gin.H{"error": "username or email already registered"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not secure password"})
		return
	}

	u := &User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := h.Repo.Create(ctx, u); err != nil {
		// the unique indexes catch any race the Taken check missed
		c.JSON(http.StatusConflict, gin.H{"error": "username or email already registered"})
		return
	}

	h.issueSession(c, http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	u, err := h.Repo.ByEmail(c.Request.Context(), email)
	// a missing account and a wrong password answer identically
	if err != nil || u == nil ||
		bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong email or password"})
		return
	}

	h.issueSession(c, http.StatusOK, u)
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) changePassword(c *gin.Context) {
	var req passwordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}
	if req.CurrentPassword == "" || !passwordOK(req.NewPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": passwordRule})
		return
	}

	claims := MustGetClaims(c)
	u, err := h.Repo.ByID(c.Request.Context(), claims.UserID)
	if err != nil || u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account no longer exists"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is wrong"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not secure password"})
		return
	}
	if err := h.Repo.SetPassword(c.Request.Context(), u.ID, string(hash)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password changed; all sessions signed out"})
}

func (h *Handler) logout(c *gin.Context) {
	claims := MustGetClaims(c)
	if err := h.Repo.RevokeSessions(c.Request.Context(), claims.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "signed out everywhere"})
}

// issueSession signs a token for the user and writes the session response
// both register and login return.
func (h *Handler) issueSession(c *gin.Context, status int, u *User) {
	token, exp, err := h.Tokens.Sign(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue session"})
		return
	}
	c.JSON(status, gin.H{
		"token":      token,
		"expires_at": exp.UTC().Format(time.RFC3339),
		"user": gin.H{
			"id":       u.ID,
			"username": u.Username,
			"email":    u.Email,
		},
	})
}
