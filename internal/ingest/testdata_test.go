package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"readinghub/internal/epub"
	"readinghub/pkg/models"
)

// buildZip assembles an in-memory zip. The mimetype entry is written first
// and uncompressed, as the container format requires.
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if mt, ok := files["mimetype"]; ok {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
		if err != nil {
			t.Fatalf("create mimetype: %v", err)
		}
		if _, err := w.Write([]byte(mt)); err != nil {
			t.Fatalf("write mimetype: %v", err)
		}
	}
	for name, content := range files {
		if name == "mimetype" {
			continue
		}
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func openArchive(t *testing.T, files map[string]string) *epub.Archive {
	t.Helper()
	data := buildZip(t, files)
	arc, err := epub.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { arc.Close() })
	return arc
}

const testContainerXML = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

func xhtmlDoc(body string) string {
	return `<?xml version="1.0" encoding="utf-8"?><html xmlns="http://www.w3.org/1999/xhtml"><head><title></title></head><body>` + body + `</body></html>`
}

// fakeStore is an in-memory ImageStore that records every call.
type fakeStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	putErr     error
	putCalls   int
	failAfter  int // fail Put calls past this count when putErr is set
	deleteArgs []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, failAfter: 0}
}

func (s *fakeStore) Put(data []byte, objectName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCalls++
	if s.putErr != nil && s.putCalls > s.failAfter {
		return "", s.putErr
	}
	s.objects[objectName] = data
	return "/static/images/" + objectName, nil
}

func (s *fakeStore) DeleteAll(bookID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteArgs = append(s.deleteArgs, bookID)
	for name := range s.objects {
		if len(name) > len(bookID) && name[:len(bookID)+1] == bookID+"/" {
			delete(s.objects, name)
		}
	}
	return true
}

func (s *fakeStore) deleteCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleteArgs...)
}

// fakePersister records the saved rows, or refuses to.
type fakePersister struct {
	saveErr  error
	book     *models.Book
	chapters []models.Chapter
	vocab    []models.VocabularyEntry
}

func (p *fakePersister) Save(_ context.Context, book *models.Book, chapters []models.Chapter, vocab []models.VocabularyEntry) error {
	if p.saveErr != nil {
		return p.saveErr
	}
	p.book = book
	p.chapters = chapters
	p.vocab = vocab
	return nil
}

var errStoreDown = errors.New("store unavailable")

// manifestImg builds a ManifestImage the way ExtractImages would, with a
// predictable object name.
func manifestImg(id, href string) *ManifestImage {
	objectName := fmt.Sprintf("book1/test_%s", baseName(href))
	return &ManifestImage{
		ManifestID: id,
		Href:       href,
		Path:       "OEBPS/" + href,
		ObjectName: objectName,
		URL:        "/static/images/" + objectName,
		Aliases:    pathAliases(href),
	}
}
