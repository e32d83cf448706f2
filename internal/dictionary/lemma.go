package dictionary

import "strings"

// irregularForms maps inflected surface forms to their base word. These are
// the cases suffix stripping gets wrong.
var irregularForms = map[string]string{
	"was": "be", "were": "be", "been": "be", "am": "be", "is": "be", "are": "be",
	"had": "have", "has": "have",
	"did": "do", "does": "do", "done": "do",
	"went": "go", "gone": "go", "goes": "go",
	"said": "say", "says": "say",
	"made": "make", "makes": "make",
	"knew": "know", "known": "know", "knows": "know",
	"thought": "think", "thinks": "think",
	"took": "take", "taken": "take", "takes": "take",
	"saw": "see", "seen": "see", "sees": "see",
	"came": "come", "comes": "come",
	"gave": "give", "given": "give", "gives": "give",
	"got": "get", "gotten": "get", "gets": "get",
	"found": "find", "finds": "find",
	"told": "tell", "tells": "tell",
	"felt": "feel", "feels": "feel",
	"became": "become", "becomes": "become",
	"left": "leave", "leaves": "leave",
	"brought": "bring", "brings": "bring",
	"began": "begin", "begun": "begin", "begins": "begin",
	"kept": "keep", "keeps": "keep",
	"held": "hold", "holds": "hold",
	"wrote": "write", "written": "write", "writes": "write",
	"stood": "stand", "stands": "stand",
	"heard": "hear", "hears": "hear",
	"let": "let", "lets": "let",
	"meant": "mean", "means": "mean",
	"set": "set", "sets": "set",
	"met": "meet", "meets": "meet",
	"ran": "run", "runs": "run",
	"paid": "pay", "pays": "pay",
	"sat": "sit", "sits": "sit",
	"spoke": "speak", "spoken": "speak", "speaks": "speak",
	"lay": "lie", "lain": "lie", "lies": "lie",
	"led": "lead", "leads": "lead",
	"read": "read", "reads": "read",
	"grew": "grow", "grown": "grow", "grows": "grow",
	"lost": "lose", "loses": "lose",
	"fell": "fall", "fallen": "fall", "falls": "fall",
	"sent": "send", "sends": "send",
	"built": "build", "builds": "build",
	"spent": "spend", "spends": "spend",
	"won": "win", "wins": "win",
	"caught": "catch", "catches": "catch",
	"taught": "teach", "teaches": "teach",
	"bought": "buy", "buys": "buy",
	"wore": "wear", "worn": "wear", "wears": "wear",
	"chose": "choose", "chosen": "choose", "chooses": "choose",
	"broke": "break", "broken": "break", "breaks": "break",
	"drove": "drive", "driven": "drive", "drives": "drive",
	"ate": "eat", "eaten": "eat", "eats": "eat",
	"drew": "draw", "drawn": "draw", "draws": "draw",
	"flew": "fly", "flown": "fly", "flies": "fly",
	"threw": "throw", "thrown": "throw", "throws": "throw",
	"children": "child",
	"men":      "man",
	"women":    "woman",
	"feet":     "foot",
	"teeth":    "tooth",
	"mice":     "mouse",
	"geese":    "goose",
	"people":   "person",
}

// Lemmatize reduces a regular inflected form to a base word candidate:
// running → run, babies → baby, walked → walk. The irregular table is
// consulted first; after that plain suffix stripping applies. The result is
// only a retry key for the English dictionary, so an occasional wrong guess
// costs one failed lookup, nothing more.
func Lemmatize(word string) string {
	w := strings.ToLower(word)
	if base, ok := irregularForms[w]; ok {
		return base
	}

	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "sses") || strings.HasSuffix(w, "ches") || strings.HasSuffix(w, "shes") || strings.HasSuffix(w, "xes"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && len(w) > 3:
		return w[:len(w)-1]
	case strings.HasSuffix(w, "ing") && len(w) > 5:
		stem := w[:len(w)-3]
		if hasDoubledFinal(stem) {
			return stem[:len(stem)-1]
		}
		if needsFinalE(stem) {
			return stem + "e"
		}
		return stem
	case strings.HasSuffix(w, "ied") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "ed") && len(w) > 4:
		stem := w[:len(w)-2]
		if hasDoubledFinal(stem) {
			return stem[:len(stem)-1]
		}
		return stem
	}
	return w
}

// hasDoubledFinal reports a stem ending in a doubled consonant, as left by
// forms like "running" or "stopped".
func hasDoubledFinal(stem string) bool {
	n := len(stem)
	if n < 2 || stem[n-1] != stem[n-2] {
		return false
	}
	switch stem[n-1] {
	case 'l', 's', 'z': // "falling", "passing" keep their doubles
		return false
	}
	return !isVowel(stem[n-1])
}

// needsFinalE guesses whether -ing dropped a silent e: stems ending
// consonant + single vowel + consonant usually did ("hoping" → "hope",
// "making" → "make"), stems with a vowel cluster did not ("raining").
func needsFinalE(stem string) bool {
	n := len(stem)
	if n < 3 {
		return false
	}
	return !isVowel(stem[n-1]) && isVowel(stem[n-2]) && !isVowel(stem[n-3])
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
