package models

// VocabularyEntry is one high-frequency word extracted from a book's chapters.
// Word is unique per book. Phonetic and Definition stay empty at import time;
// dictionary lookups fill them in later.
type VocabularyEntry struct {
	ID         string `json:"id"`
	BookID     string `json:"book_id"`
	Word       string `json:"word"`
	Frequency  int    `json:"frequency"`
	Phonetic   string `json:"phonetic,omitempty"`
	Definition string `json:"definition,omitempty"`
}
