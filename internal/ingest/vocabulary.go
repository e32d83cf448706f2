package ingest

import (
	"sort"
	"strings"

	"readinghub/pkg/models"
)

const (
	vocabCandidateLimit = 200
	vocabMinFrequency   = 3
	vocabLimit          = 100
)

// tokenizeWords splits text into lowercase runs of ASCII letters, dropping
// anything two letters or shorter.
func tokenizeWords(text string) []string {
	var words []string
	start := -1
	for i := 0; i <= len(text); i++ {
		var isLetter bool
		if i < len(text) {
			c := text[i]
			isLetter = (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		}
		switch {
		case isLetter && start < 0:
			start = i
		case !isLetter && start >= 0:
			if i-start > 2 {
				words = append(words, strings.ToLower(text[start:i]))
			}
			start = -1
		}
	}
	return words
}

// ExtractVocabulary builds the high-frequency word list from the chapter
// documents. Stopwords are removed, then the 200 most frequent remaining
// words are cut to those seen at least 3 times and capped at 100 entries.
// Ordering is by descending frequency; ties keep first-seen order, so the
// output is stable for a given book.
func ExtractVocabulary(docs []*ClassifiedDocument) []models.VocabularyEntry {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for _, d := range docs {
		if d.Role != RoleChapter {
			continue
		}
		for _, w := range tokenizeWords(d.Text) {
			if isStopword(w) {
				continue
			}
			if _, ok := counts[w]; !ok {
				firstSeen[w] = len(firstSeen)
			}
			counts[w]++
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return firstSeen[words[i]] < firstSeen[words[j]]
	})

	if len(words) > vocabCandidateLimit {
		words = words[:vocabCandidateLimit]
	}
	out := make([]models.VocabularyEntry, 0, vocabLimit)
	for _, w := range words {
		if counts[w] < vocabMinFrequency {
			continue
		}
		out = append(out, models.VocabularyEntry{Word: w, Frequency: counts[w]})
		if len(out) == vocabLimit {
			break
		}
	}
	return out
}
