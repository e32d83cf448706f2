// Package dictionary proxies word lookups for the reader: English
// definitions from the Free Dictionary API and Chinese translations from
// the Youdao API, merged into one response and cached in memory.
package dictionary

type Definition struct {
	Definition string `json:"definition"`
	Example    string `json:"example,omitempty"`
}

type Meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []Definition `json:"definitions"`
	Lang         string       `json:"lang,omitempty"` // "en" or "zh"
}

// Entry is the merged lookup result. SearchedWord and Lemma are set only
// when the answer came from a lemmatized retry ("went" answered as "go").
type Entry struct {
	Word         string    `json:"word"`
	Phonetic     string    `json:"phonetic"`
	Meanings     []Meaning `json:"meanings"`
	Audio        string    `json:"audio,omitempty"`
	SearchedWord string    `json:"searched_word,omitempty"`
	Lemma        string    `json:"lemma,omitempty"`
}
