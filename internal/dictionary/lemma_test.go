package dictionary

import "testing"

func TestLemmatize(t *testing.T) {
	cases := []struct{ word, want string }{
		// Irregular table.
		{"was", "be"},
		{"went", "go"},
		{"children", "child"},
		{"People", "person"},
		// Plurals.
		{"babies", "baby"},
		{"glasses", "glass"},
		{"churches", "church"},
		{"boxes", "box"},
		{"dragons", "dragon"},
		// -ing forms.
		{"running", "run"},
		{"hoping", "hope"},
		{"making", "make"},
		{"walking", "walk"},
		{"falling", "fall"},
		{"raining", "rain"},
		// -ed forms.
		{"stopped", "stop"},
		{"walked", "walk"},
		{"carried", "carry"},
		// Nothing to strip.
		{"dragon", "dragon"},
		{"gas", "gas"},
		{"red", "red"},
	}
	for _, tc := range cases {
		if got := Lemmatize(tc.word); got != tc.want {
			t.Errorf("Lemmatize(%q) = %q, want %q", tc.word, got, tc.want)
		}
	}
}
