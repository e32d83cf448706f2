package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"readinghub/pkg/models"
)

// bookBundle is the on-disk backup format: one book with everything that
// belongs to it, restorable without touching the live database.
type bookBundle struct {
	Book       *models.Book             `json:"book"`
	Chapters   []models.Chapter         `json:"chapters"`
	Vocabulary []models.VocabularyEntry `json:"vocabulary"`
}

type BackupItem struct {
	BookID     string `json:"book_id"`
	BackupPath string `json:"backup_path"`
	BackupSize int64  `json:"backup_size"`
}

type Failure struct {
	BookID string `json:"book_id"`
	Reason string `json:"reason"`
}

// backupBook dumps one book as a timestamped JSON bundle in the backup
// directory and returns where it landed.
func (h *Handler) backupBook(ctx context.Context, bookID string) (*BackupItem, *Failure) {
	book, err := h.Books.GetByID(ctx, bookID)
	if err != nil {
		return nil, &Failure{BookID: bookID, Reason: err.Error()}
	}
	if book == nil {
		return nil, &Failure{BookID: bookID, Reason: "book not found"}
	}

	chapters, err := h.chaptersWithContent(ctx, bookID)
	if err != nil {
		return nil, &Failure{BookID: bookID, Reason: err.Error()}
	}
	vocab, err := h.Books.Vocabulary(ctx, bookID, 100)
	if err != nil {
		return nil, &Failure{BookID: bookID, Reason: err.Error()}
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		return nil, &Failure{BookID: bookID, Reason: err.Error()}
	}
	name := fmt.Sprintf("book_%s_%s.json", sanitizeID(bookID), time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(h.BackupDir, name)

	data, err := json.MarshalIndent(bookBundle{Book: book, Chapters: chapters, Vocabulary: vocab}, "", "  ")
	if err != nil {
		return nil, &Failure{BookID: bookID, Reason: err.Error()}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, &Failure{BookID: bookID, Reason: err.Error()}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &Failure{BookID: bookID, Reason: err.Error()}
	}
	return &BackupItem{BookID: bookID, BackupPath: path, BackupSize: info.Size()}, nil
}

// chaptersWithContent loads full chapter rows; the list endpoint strips
// content, backups must not.
func (h *Handler) chaptersWithContent(ctx context.Context, bookID string) ([]models.Chapter, error) {
	summaries, err := h.Books.Chapters(ctx, bookID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Chapter, 0, len(summaries))
	for _, s := range summaries {
		ch, err := h.Books.ChapterByNumber(ctx, bookID, s.ChapterNumber)
		if err != nil {
			return nil, err
		}
		if ch != nil {
			out = append(out, *ch)
		}
	}
	return out, nil
}

func sanitizeID(id string) string {
	id = strings.ReplaceAll(id, "/", "_")
	return strings.ReplaceAll(id, "\\", "_")
}
