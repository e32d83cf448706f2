package ingest

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"readinghub/internal/epub"
	"readinghub/pkg/models"
)

// Persister writes one import's records as a single transaction: either the
// book, all chapters, and all vocabulary entries land together, or none do.
type Persister interface {
	Save(ctx context.Context, book *models.Book, chapters []models.Chapter, vocab []models.VocabularyEntry) error
}

// Options carries caller-supplied metadata that the archive itself cannot
// provide, typically from import flags or an upload form.
type Options struct {
	Level       string
	Lexile      string
	Series      string
	Category    string
	Description string
	EpubPath    string // source archive reference stored on the book
}

// Ingester runs the import pipeline: archive in, persisted book out.
// One import is fully sequential; concurrent imports are safe because each
// run works under its own generated book id.
type Ingester struct {
	store   ImageStore
	persist Persister
}

func New(store ImageStore, persist Persister) *Ingester {
	return &Ingester{store: store, persist: persist}
}

// ImportFile imports the EPUB at path and returns the new book's id.
func (in *Ingester) ImportFile(ctx context.Context, path string, opts Options) (string, error) {
	arc, err := epub.Open(path)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer arc.Close()
	if opts.EpubPath == "" {
		opts.EpubPath = path
	}
	return in.run(ctx, arc, filepath.Base(path), opts)
}

// ImportReader imports an EPUB from an in-memory or uploaded byte source.
// name is used only as a title fallback when the archive declares none.
func (in *Ingester) ImportReader(ctx context.Context, r io.ReaderAt, size int64, name string, opts Options) (string, error) {
	arc, err := epub.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer arc.Close()
	return in.run(ctx, arc, name, opts)
}

func (in *Ingester) run(ctx context.Context, arc *epub.Archive, sourceName string, opts Options) (string, error) {
	bookID := uuid.New().String()
	log.Printf("[ingest] importing %s as book %s", sourceName, bookID)

	images, err := ExtractImages(arc, bookID, in.store)
	if err != nil {
		return "", in.fail(bookID, len(images) > 0, fmt.Errorf("extract images: %w", err))
	}

	docs := classifyDocuments(arc, images)
	cover := ResolveCover(arc, images)
	chapters := NormalizeChapters(docs, arc.TOCTitles())
	vocab := ExtractVocabulary(docs)

	book := in.buildBook(bookID, arc, sourceName, cover, chapters, opts)
	for i := range chapters {
		chapters[i].ID = uuid.New().String()
		chapters[i].BookID = bookID
	}
	for i := range vocab {
		vocab[i].ID = uuid.New().String()
		vocab[i].BookID = bookID
	}

	if err := in.persist.Save(ctx, book, chapters, vocab); err != nil {
		return "", in.fail(bookID, len(images) > 0, fmt.Errorf("save book: %w", err))
	}
	log.Printf("[ingest] imported %q: %d chapters, %d words, %d vocabulary entries",
		book.Title, len(chapters), book.WordCount, len(vocab))
	return bookID, nil
}

// fail runs best-effort image cleanup when any upload happened, then hands
// back the original error. Cleanup problems are logged, never returned.
func (in *Ingester) fail(bookID string, uploaded bool, err error) error {
	if uploaded {
		if !in.store.DeleteAll(bookID) {
			log.Printf("[ingest] cleanup for book %s failed, stored images may remain", bookID)
		}
	}
	return err
}

// classifyDocuments walks the spine in reading order, rewriting each
// document's image references and assigning it a structural role.
func classifyDocuments(arc *epub.Archive, images []*ManifestImage) []*ClassifiedDocument {
	var docs []*ClassifiedDocument
	for _, item := range arc.Spine() {
		data, err := arc.Read(item.Href)
		if err != nil {
			log.Printf("[ingest] skipping unreadable document %s: %v", item.Href, err)
			continue
		}
		rewritten := RewriteDocImages(data, images)
		text := epub.ExtractText(rewritten)
		heading := epub.FirstHeading(rewritten)
		hasImage := epub.HasImage(rewritten)
		role, title := Classify(text, heading, hasImage)
		docs = append(docs, &ClassifiedDocument{
			Href:     item.Href,
			Text:     text,
			Heading:  heading,
			HasImage: hasImage,
			Role:     role,
			Title:    title,
			HTML:     epub.BodyHTML(rewritten),
		})
	}
	return docs
}

func (in *Ingester) buildBook(bookID string, arc *epub.Archive, sourceName, cover string, chapters []models.Chapter, opts Options) *models.Book {
	meta := arc.Metadata()
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = strings.TrimSuffix(sourceName, filepath.Ext(sourceName))
	}
	author := strings.TrimSpace(meta.Author)
	if author == "" {
		author = "Unknown"
	}
	description := opts.Description
	if description == "" {
		description = strings.TrimSpace(meta.Description)
	}
	total := 0
	for _, ch := range chapters {
		total += ch.WordCount
	}
	return &models.Book{
		ID:          bookID,
		Title:       title,
		Author:      author,
		Cover:       cover,
		Level:       opts.Level,
		Lexile:      opts.Lexile,
		Series:      opts.Series,
		Category:    opts.Category,
		WordCount:   total,
		Description: description,
		EpubPath:    opts.EpubPath,
		CreatedAt:   time.Now().UTC(),
	}
}
