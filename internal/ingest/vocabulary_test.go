package ingest

import (
	"strings"
	"testing"
)

func TestTokenizeWords(t *testing.T) {
	got := tokenizeWords("The dragon's egg — 3 eggs, actually — hatched on day two!")
	want := []string{"the", "dragon", "egg", "eggs", "actually", "hatched", "day", "two"}
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tokens[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractVocabulary(t *testing.T) {
	docs := []*ClassifiedDocument{
		{Role: RoleChapter, Text: strings.Repeat("dragon ", 5) + strings.Repeat("wizard ", 4) + strings.Repeat("castle ", 3) + "moat moat"},
		{Role: RoleChapter, Text: strings.Repeat("the and for with ", 10) + "moat"},
		// Non-chapter text must not contribute.
		{Role: RoleTestimonial, Text: strings.Repeat("goblin ", 20)},
	}

	vocab := ExtractVocabulary(docs)

	want := []struct {
		word string
		freq int
	}{
		{"dragon", 5},
		{"wizard", 4},
		{"castle", 3},
		{"moat", 3},
	}
	if len(vocab) != len(want) {
		t.Fatalf("vocab = %+v, want %d entries", vocab, len(want))
	}
	for i, w := range want {
		if vocab[i].Word != w.word || vocab[i].Frequency != w.freq {
			t.Errorf("vocab[%d] = {%q %d}, want {%q %d}", i, vocab[i].Word, vocab[i].Frequency, w.word, w.freq)
		}
	}

	for _, v := range vocab {
		if isStopword(v.Word) {
			t.Errorf("stopword %q in vocabulary", v.Word)
		}
		if len(v.Word) <= 2 {
			t.Errorf("short word %q in vocabulary", v.Word)
		}
	}
}

func TestExtractVocabularyDropsRareWords(t *testing.T) {
	docs := []*ClassifiedDocument{
		{Role: RoleChapter, Text: "griffin griffin phoenix phoenix phoenix basilisk"},
	}
	vocab := ExtractVocabulary(docs)
	if len(vocab) != 1 || vocab[0].Word != "phoenix" {
		t.Fatalf("vocab = %+v, want only phoenix (frequency 3)", vocab)
	}
}

func TestExtractVocabularyCapsAtLimit(t *testing.T) {
	// 150 distinct words, each at the minimum frequency.
	var b strings.Builder
	for i := 0; i < 150; i++ {
		w := wordFor(i)
		for j := 0; j < vocabMinFrequency; j++ {
			b.WriteString(w)
			b.WriteByte(' ')
		}
	}
	docs := []*ClassifiedDocument{{Role: RoleChapter, Text: b.String()}}

	vocab := ExtractVocabulary(docs)
	if len(vocab) != vocabLimit {
		t.Errorf("len(vocab) = %d, want %d", len(vocab), vocabLimit)
	}
	// Ties on frequency keep first-seen order.
	if vocab[0].Word != wordFor(0) {
		t.Errorf("vocab[0] = %q, want %q", vocab[0].Word, wordFor(0))
	}
	for i := 1; i < len(vocab); i++ {
		if vocab[i].Word != wordFor(i) {
			t.Fatalf("vocab[%d] = %q, want first-seen order %q", i, vocab[i].Word, wordFor(i))
		}
	}
}

// wordFor generates distinct non-stopword tokens: waaa, wbaa, wcaa, ...
func wordFor(i int) string {
	return "w" + string([]byte{'a' + byte(i%26), 'a' + byte((i/26)%26), 'a'})
}
