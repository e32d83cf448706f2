package dictionary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const freeDictBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en/"

type freeDictClient struct {
	http *http.Client
}

func newFreeDictClient() *freeDictClient {
	return &freeDictClient{http: &http.Client{Timeout: 2 * time.Second}}
}

type freeDictEntry struct {
	Word      string `json:"word"`
	Phonetic  string `json:"phonetic"`
	Phonetics []struct {
		Text  string `json:"text"`
		Audio string `json:"audio"`
	} `json:"phonetics"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string `json:"definition"`
			Example    string `json:"example"`
		} `json:"definitions"`
	} `json:"meanings"`
}

// Lookup queries the Free Dictionary API for English definitions. A miss of
// any kind (404, timeout, empty payload) returns nil without error; the
// caller merges whatever sources did answer.
func (f *freeDictClient) Lookup(ctx context.Context, word string) *Entry {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		freeDictBaseURL+url.PathEscape(strings.ToLower(word)), nil)
	if err != nil {
		return nil
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var entries []freeDictEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil || len(entries) == 0 {
		return nil
	}
	e := entries[0]

	phonetic := e.Phonetic
	audio := ""
	for _, p := range e.Phonetics {
		if phonetic == "" && p.Text != "" {
			phonetic = p.Text
		}
		if audio == "" && p.Audio != "" {
			audio = p.Audio
		}
	}

	var meanings []Meaning
	for _, m := range e.Meanings {
		var defs []Definition
		for _, d := range m.Definitions {
			defs = append(defs, Definition{Definition: d.Definition, Example: d.Example})
		}
		if len(defs) > 0 {
			meanings = append(meanings, Meaning{
				PartOfSpeech: m.PartOfSpeech,
				Definitions:  defs,
				Lang:         "en",
			})
		}
	}
	if len(meanings) == 0 {
		return nil
	}

	out := &Entry{Word: e.Word, Phonetic: phonetic, Meanings: meanings, Audio: audio}
	if out.Word == "" {
		out.Word = word
	}
	return out
}
