package models

import "time"

// Book is one imported EPUB. Chapters and vocabulary belong to it and are
// removed with it (ON DELETE CASCADE in the schema).
type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author,omitempty"`
	Cover       string    `json:"cover,omitempty"`
	Level       string    `json:"level,omitempty"`    // reading level, e.g. "一年级"
	Lexile      string    `json:"lexile,omitempty"`   // lexile measure, e.g. "520L"
	Series      string    `json:"series,omitempty"`
	Category    string    `json:"category,omitempty"`
	WordCount   int       `json:"word_count"`
	Description string    `json:"description,omitempty"`
	EpubPath    string    `json:"epub_path,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
