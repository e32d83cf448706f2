package ingest

// stopwords are common function words, pronouns, auxiliaries, and a handful
// of high-frequency irregular verb forms that would otherwise dominate every
// book's vocabulary list.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "a", "an", "is", "are", "was", "were", "be", "been", "being",
		"have", "has", "had", "do", "does", "did", "will", "would", "could",
		"should", "may", "might", "must", "shall", "can", "need", "dare",
		"and", "or", "but", "if", "then", "else", "when", "where", "why",
		"how", "what", "which", "who", "whom", "this", "that", "these",
		"those", "for", "with", "about", "against", "between", "into",
		"through", "during", "before", "after", "above", "below", "from",
		"up", "down", "in", "out", "on", "off", "over", "under", "again",
		"further", "once", "here", "there", "all", "each", "few",
		"more", "most", "other", "some", "such", "no", "nor", "not", "only",
		"own", "same", "so", "than", "too", "very", "just", "also", "now",
		"you", "your", "yours", "yourself", "he", "him", "his", "himself",
		"she", "her", "hers", "herself", "it", "its", "itself", "they",
		"them", "their", "theirs", "themselves", "we", "us", "our", "ours",
		"ourselves", "said", "say", "says", "saying", "got", "get", "gets",
		"getting", "went", "go", "goes", "going", "come", "comes", "coming",
		"came", "see", "saw", "seen", "look", "looked", "looking", "looks",
	} {
		stopwords[w] = struct{}{}
	}
}

func isStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}
