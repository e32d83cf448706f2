// Package replica mirrors imported books to a remote PostgREST-compatible
// document store. Every call is best-effort: a replica outage must never
// fail the primary write path, so methods log and report success instead of
// returning errors.
package replica

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"readinghub/pkg/models"
	"readinghub/pkg/utils"
)

type Client struct {
	baseURL    string
	serviceKey string
	http       *http.Client
	enabled    bool
}

func New(cfg utils.ReplicaConfig) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		serviceKey: cfg.ServiceKey,
		http:       &http.Client{Timeout: 15 * time.Second},
		enabled:    cfg.Configured(),
	}
	if c.enabled {
		log.Printf("[replica] mirroring writes to %s", c.baseURL)
	}
	return c
}

func (c *Client) Enabled() bool { return c.enabled }

// PushBook mirrors a complete import: book row, chapter rows, vocabulary
// rows, inserted in that order so the replica's foreign keys hold.
func (c *Client) PushBook(book *models.Book, chapters []models.Chapter, vocab []models.VocabularyEntry) bool {
	if !c.enabled {
		return false
	}
	ok := c.insert("books", book)
	if len(chapters) > 0 {
		ok = c.insert("chapters", chapters) && ok
	}
	if len(vocab) > 0 {
		ok = c.insert("book_vocabulary", vocab) && ok
	}
	return ok
}

// DeleteBook removes the book row; the replica cascades chapters and
// vocabulary the same way the local schema does.
func (c *Client) DeleteBook(bookID string) bool {
	if !c.enabled {
		return false
	}
	endpoint := fmt.Sprintf("%s/rest/v1/books?id=eq.%s", c.baseURL, url.QueryEscape(bookID))
	req, err := http.NewRequest(http.MethodDelete, endpoint, nil)
	if err != nil {
		log.Printf("[replica] delete book %s: %v", bookID, err)
		return false
	}
	return c.do(req, "delete books/"+bookID)
}

func (c *Client) insert(table string, payload any) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[replica] marshal %s: %v", table, err)
		return false
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/rest/v1/"+table, bytes.NewReader(body))
	if err != nil {
		log.Printf("[replica] insert %s: %v", table, err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")
	return c.do(req, "insert "+table)
}

func (c *Client) do(req *http.Request, op string) bool {
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("[replica] %s: %v", op, err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Printf("[replica] %s: status %d", op, resp.StatusCode)
		return false
	}
	return true
}
