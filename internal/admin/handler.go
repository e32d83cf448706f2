// Package admin carries the operator endpoints: full book listing, backup
// bundles, and batch delete. All routes sit behind RequireAdminMode.
package admin

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"readinghub/internal/books"
	"readinghub/internal/events"
	"readinghub/internal/ingest"
	"readinghub/internal/replica"
)

type Handler struct {
	Books     *books.Repo
	Store     ingest.ImageStore
	Replica   *replica.Client
	Events    *events.Hub
	BackupDir string
}

func NewHandler(repo *books.Repo, store ingest.ImageStore, rc *replica.Client, hub *events.Hub, backupDir string) *Handler {
	return &Handler{Books: repo, Store: store, Replica: rc, Events: hub, BackupDir: backupDir}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Use(RequireAdminMode())
	rg.GET("/books", h.listBooks)    // GET /admin/books
	rg.POST("/backup", h.backup)     // POST /admin/backup
	rg.DELETE("/books", h.deleteBooks) // DELETE /admin/books
}

func (h *Handler) listBooks(c *gin.Context) {
	items, err := h.Books.List(c.Request.Context(), books.ListQuery{Limit: 100})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

type backupRequest struct {
	BookIDs []string `json:"book_ids"`
}

func (h *Handler) backup(c *gin.Context) {
	var req backupRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.BookIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "book_ids required"})
		return
	}

	var backups []BackupItem
	var failed []Failure
	for _, id := range req.BookIDs {
		item, failure := h.backupBook(c.Request.Context(), id)
		if failure != nil {
			failed = append(failed, *failure)
			continue
		}
		backups = append(backups, *item)
	}
	c.JSON(http.StatusOK, gin.H{
		"success": len(failed) == 0,
		"backups": backups,
		"failed":  failed,
	})
}

type deleteRequest struct {
	BookIDs            []string `json:"book_ids"`
	BackupBeforeDelete bool     `json:"backup_before_delete"`
}

func (h *Handler) deleteBooks(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.BookIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "book_ids required"})
		return
	}

	var deleted []string
	var failed []Failure
	var backups []BackupItem

	for _, id := range req.BookIDs {
		if req.BackupBeforeDelete {
			item, failure := h.backupBook(c.Request.Context(), id)
			if failure != nil {
				// No backup, no delete.
				failed = append(failed, Failure{BookID: id, Reason: "backup failed: " + failure.Reason})
				continue
			}
			backups = append(backups, *item)
		}
		if err := h.deleteBook(c.Request.Context(), id); err != nil {
			failed = append(failed, Failure{BookID: id, Reason: err.Error()})
			continue
		}
		deleted = append(deleted, id)
	}

	resp := gin.H{
		"success": len(failed) == 0,
		"deleted": deleted,
		"failed":  failed,
	}
	if req.BackupBeforeDelete {
		resp["backups"] = backups
	}
	c.JSON(http.StatusOK, resp)
}

// deleteBook removes the database rows, the stored images, and the replica
// copy. Image and replica cleanup are best-effort once the local delete
// succeeded.
func (h *Handler) deleteBook(ctx context.Context, bookID string) error {
	existed, err := h.Books.Delete(ctx, bookID)
	if err != nil {
		return err
	}
	if !existed {
		return errBookNotFound
	}
	if !h.Store.DeleteAll(bookID) {
		log.Printf("[admin] image cleanup for book %s incomplete", bookID)
	}
	if h.Replica != nil && h.Replica.Enabled() {
		if !h.Replica.DeleteBook(bookID) {
			log.Printf("[admin] replica delete for book %s failed", bookID)
		}
	}
	if h.Events != nil {
		h.Events.Broadcast(events.BookDeleted, gin.H{"book_id": bookID})
	}
	return nil
}
