package dictionary

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestTruncate(t *testing.T) {
	if got := truncate("hello"); got != "hello" {
		t.Errorf("truncate short = %q", got)
	}

	long := "abcdefghijklmnopqrstuvwxyz" // 26 runes
	if got, want := truncate(long), "abcdefghij26qrstuvwxyz"; got != want {
		t.Errorf("truncate = %q, want %q", got, want)
	}

	// Rune-based, not byte-based.
	zh := "一二三四五六七八九十甲乙丙丁戊己庚辛壬癸子丑"
	got := truncate(zh)
	want := "一二三四五六七八九十" + "22" + "丙丁戊己庚辛壬癸子丑"
	if got != want {
		t.Errorf("truncate(zh) = %q, want %q", got, want)
	}
}

func TestYoudaoSign(t *testing.T) {
	sum := sha256.Sum256([]byte("key" + "hello" + "salt" + "1700000000" + "secret"))
	want := hex.EncodeToString(sum[:])
	if got := youdaoSign("key", "hello", "salt", "1700000000", "secret"); got != want {
		t.Errorf("sign = %q, want %q", got, want)
	}
}

func TestYoudaoMeanings(t *testing.T) {
	var resp youdaoResponse
	resp.Basic.Explains = []string{"vt. 放弃；抛弃", "自由自在"}
	resp.Translation = []string{"放弃"}
	resp.Web = []struct {
		Key   string   `json:"key"`
		Value []string `json:"value"`
	}{{Key: "give up", Value: []string{"放弃", "认输"}}}

	meanings := youdaoMeanings(resp)
	if len(meanings) < 4 {
		t.Fatalf("got %d meanings: %+v", len(meanings), meanings)
	}

	if meanings[0].PartOfSpeech != "vt" {
		t.Errorf("pos = %q, want vt", meanings[0].PartOfSpeech)
	}
	if len(meanings[0].Definitions) != 2 ||
		meanings[0].Definitions[0].Definition != "放弃" ||
		meanings[0].Definitions[1].Definition != "抛弃" {
		t.Errorf("explain fragments = %+v", meanings[0].Definitions)
	}
	if meanings[1].PartOfSpeech != "" || meanings[1].Definitions[0].Definition != "自由自在" {
		t.Errorf("unprefixed explain = %+v", meanings[1])
	}
	if meanings[2].PartOfSpeech != "翻译" {
		t.Errorf("translation pos = %q", meanings[2].PartOfSpeech)
	}
	if meanings[3].PartOfSpeech != "网络释义" || meanings[3].Definitions[0].Example != "give up" {
		t.Errorf("web meaning = %+v", meanings[3])
	}
	for _, m := range meanings {
		if m.Lang != "zh" {
			t.Errorf("lang = %q, want zh", m.Lang)
		}
	}
}

func TestIsPhrase(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"hello", false},
		{"give up", true},
		{"what?", true},
		{"你好。", true},
		{"dragon's", true}, // apostrophes route to translation too
		{"dragons", false},
	}
	for _, tc := range cases {
		if got := isPhrase(tc.text); got != tc.want {
			t.Errorf("isPhrase(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}
