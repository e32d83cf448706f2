package books

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"readinghub/internal/events"
	"readinghub/internal/ingest"
	"readinghub/pkg/utils"
)

type Handler struct {
	Repo     *Repo
	Importer *ingest.Ingester
	Events   *events.Hub
}

func NewHandler(repo *Repo, importer *ingest.Ingester, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Importer: importer, Events: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)                                // GET /books
	rg.POST("/upload", h.upload)                      // POST /books/upload
	rg.GET("/:id", h.getByID)                         // GET /books/:id
	rg.GET("/:id/chapters", h.chapters)               // GET /books/:id/chapters
	rg.GET("/:id/chapters/:number", h.chapterByNumber) // GET /books/:id/chapters/:number
	rg.GET("/:id/vocabulary", h.vocabulary)           // GET /books/:id/vocabulary
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Q:      c.Query("search"),
		Level:  c.Query("level"),
		Limit:  parseInt(c.Query("limit"), 20),
		Offset: parseInt(c.Query("offset"), 0),
	}

	total, err := h.Repo.Count(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	id := c.Param("id")
	b, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	chapters, err := h.Repo.Chapters(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chapters failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"book":     b,
		"chapters": chapters,
	})
}

func (h *Handler) chapters(c *gin.Context) {
	id := c.Param("id")
	b, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	chapters, err := h.Repo.Chapters(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chapters failed"})
		return
	}
	c.JSON(http.StatusOK, chapters)
}

func (h *Handler) chapterByNumber(c *gin.Context) {
	id := c.Param("id")
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chapter number"})
		return
	}
	ch, err := h.Repo.ChapterByNumber(c.Request.Context(), id, number)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chapter failed"})
		return
	}
	if ch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chapter not found"})
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (h *Handler) vocabulary(c *gin.Context) {
	id := c.Param("id")
	limit := parseInt(c.Query("limit"), 50)
	vocab, err := h.Repo.Vocabulary(c.Request.Context(), id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "vocabulary failed"})
		return
	}
	c.JSON(http.StatusOK, vocab)
}

func (h *Handler) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".epub") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .epub files are accepted"})
		return
	}

	dst := filepath.Join(utils.DataDir(), "uploads", uuid.New().String()+".epub")
	if err := c.SaveUploadedFile(fileHeader, dst); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store upload failed"})
		return
	}

	opts := ingest.Options{
		Level:       c.PostForm("level"),
		Lexile:      c.PostForm("lexile"),
		Series:      c.PostForm("series"),
		Category:    c.PostForm("category"),
		Description: c.PostForm("description"),
		EpubPath:    dst,
	}
	id, err := h.Importer.ImportFile(c.Request.Context(), dst, opts)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if h.Events != nil {
		h.Events.Broadcast(events.BookImported, gin.H{"book_id": id})
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
