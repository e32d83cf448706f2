package models

// Chapter is one reading unit of a book. ChapterNumber values for a book are
// always 1..N with no gaps; the importer renumbers before saving.
type Chapter struct {
	ID            string `json:"id"`
	BookID        string `json:"book_id"`
	ChapterNumber int    `json:"chapter_number"`
	Title         string `json:"title,omitempty"`
	Content       string `json:"content,omitempty"` // HTML, image srcs already rewritten
	WordCount     int    `json:"word_count"`
}
