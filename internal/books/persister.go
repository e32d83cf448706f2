package books

import (
	"context"
	"log"

	"readinghub/internal/replica"
	"readinghub/pkg/models"
)

// DualWriter persists an import locally and then mirrors it to the replica.
// The local transaction decides success; replica failures are logged only,
// so a replica outage never blocks imports.
type DualWriter struct {
	Repo    *Repo
	Replica *replica.Client
}

func NewDualWriter(repo *Repo, rc *replica.Client) *DualWriter {
	return &DualWriter{Repo: repo, Replica: rc}
}

func (d *DualWriter) Save(ctx context.Context, book *models.Book, chapters []models.Chapter, vocab []models.VocabularyEntry) error {
	if err := d.Repo.Save(ctx, book, chapters, vocab); err != nil {
		return err
	}
	if d.Replica != nil && d.Replica.Enabled() {
		if !d.Replica.PushBook(book, chapters, vocab) {
			log.Printf("[books] replica push for book %s incomplete", book.ID)
		}
	}
	return nil
}
