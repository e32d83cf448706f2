package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// The classifier is an ordered rule list: the first rule that matches
// decides the document's role and title. The rules encode editorial
// heuristics collected from real children's-book EPUBs (English body text,
// Chinese structural keywords), not any formal grammar. Their order is
// load-bearing: reordering them changes classifications.

// docFacts is the classifier's input: one document reduced to the features
// the rules look at.
type docFacts struct {
	text     string // plain text, whitespace-normalized, quotes normalized
	lower    string // lowercase of text
	heading  string // first heading text, quotes normalized
	hlower   string // lowercase of heading
	hasImage bool
}

type rule struct {
	name  string
	apply func(d docFacts) (Role, string, bool)
}

var (
	byAuthorPattern    = regexp.MustCompile(`\bby [A-Z][A-Za-z]+`)
	seriesEntryPattern = regexp.MustCompile(`#\d+:`)
	dedicationPattern  = regexp.MustCompile(`(?i)^for \w+( and \w+)?,? (who|with)`)
	headingNumPattern  = regexp.MustCompile(`^(\d+)\s+\S`)
	chapterNumPattern  = regexp.MustCompile(`(?i)\bchapter\s+(\d+)`)
)

var skipHeadingKeywords = []string{"封面", "cover", "扉页", "title page"}

var frontmatterHeadingKeywords = []string{
	"前言", "版权", "序言", "preface", "copyright", "foreword", "dedication",
}

var tocKeywords = []string{"table of contents", "contents", "目录"}

// testimonialKeywords is reader-praise boilerplate found on the praise pages
// publishers put before chapter one.
var testimonialKeywords = []string{
	"love your books", "i love your book", "best author", "favorite author",
	"my favorite book", "your biggest fan", "can't wait for your next",
	"dear mary pope osborne", "what kids say", "what readers are saying",
	"praise for", "读者评价", "读者来信", "小读者",
}

// bonusKeywords marks back-matter bonus sections that are not chapters.
var bonusKeywords = []string{
	"podcast", "appendix", "acknowledgments", "acknowledgements",
	"author's note", "authors note", "about the author", "bonus content",
	"sneak peek", "special preview", "discussion questions", "fun facts",
	"activities to do",
}

var promoKeywords = []string{"visit www.", "order the cd", "available on audio"}

// seriesListKeywords flags pages that enumerate every book of a series.
var seriesListKeywords = []string{
	"don't miss", "read all the", "books in the", "other books by",
	"look for the", "collect them all",
}

var frontmatterBodyKeywords = []string{
	"copyright", "all rights reserved", "published by", "dedication",
	"acknowledgment", "preface", "foreword", "isbn",
	"版权", "前言", "序言", "献给",
}

// praiseOverrideKeywords downgrades an apparent chapter to a testimonial:
// praise letters quote "Chapter 1" often enough to trip the chapter rule.
var praiseOverrideKeywords = []string{"love your books", "best author", "imagination"}

var classifyRules = []rule{
	{"cover-page", func(d docFacts) (Role, string, bool) {
		if d.hasImage && utf8.RuneCountInString(d.text) < 100 &&
			(containsAny(d.hlower, []string{"封面", "cover"}) || d.heading == "") {
			return RoleCover, d.heading, true
		}
		return "", "", false
	}},
	{"blank-image-page", func(d docFacts) (Role, string, bool) {
		if d.hasImage && utf8.RuneCountInString(d.text) < 30 && d.heading == "" {
			return RoleSkip, "", true
		}
		return "", "", false
	}},
	{"title-page", func(d docFacts) (Role, string, bool) {
		if d.hasImage && utf8.RuneCountInString(d.text) < 150 && byAuthorPattern.MatchString(d.text) {
			return RoleSkip, "", true
		}
		return "", "", false
	}},
	{"skip-heading", func(d docFacts) (Role, string, bool) {
		if containsAny(d.hlower, skipHeadingKeywords) {
			return RoleSkip, "", true
		}
		return "", "", false
	}},
	{"frontmatter-heading", func(d docFacts) (Role, string, bool) {
		if containsAny(d.hlower, frontmatterHeadingKeywords) {
			return RoleFrontmatter, d.heading, true
		}
		return "", "", false
	}},
	{"toc", func(d docFacts) (Role, string, bool) {
		if containsAny(d.lower, tocKeywords) {
			return RoleTOC, d.heading, true
		}
		return "", "", false
	}},
	{"testimonial", func(d docFacts) (Role, string, bool) {
		if containsAny(d.lower, testimonialKeywords) {
			return RoleTestimonial, d.heading, true
		}
		return "", "", false
	}},
	{"bonus-content", func(d docFacts) (Role, string, bool) {
		if containsAny(d.lower, bonusKeywords) {
			return RoleSkip, "", true
		}
		return "", "", false
	}},
	{"promo", func(d docFacts) (Role, string, bool) {
		if containsAny(d.lower, promoKeywords) {
			return RoleSkip, "", true
		}
		return "", "", false
	}},
	{"series-list", func(d docFacts) (Role, string, bool) {
		n := len(seriesEntryPattern.FindAllString(d.text, -1))
		if n >= 3 || (n >= 2 && containsAny(d.lower, seriesListKeywords)) {
			return RoleSkip, "", true
		}
		return "", "", false
	}},
	{"frontmatter-body", func(d docFacts) (Role, string, bool) {
		if containsAny(d.lower, frontmatterBodyKeywords) {
			return RoleFrontmatter, d.heading, true
		}
		return "", "", false
	}},
	{"dedication", func(d docFacts) (Role, string, bool) {
		if dedicationPattern.MatchString(d.text) {
			return RoleFrontmatter, "献辞", true
		}
		return "", "", false
	}},
	{"too-short", func(d docFacts) (Role, string, bool) {
		if utf8.RuneCountInString(d.text) < 50 {
			return RoleSkip, "", true
		}
		return "", "", false
	}},
	{"numbered-heading", func(d docFacts) (Role, string, bool) {
		if headingNumPattern.MatchString(d.heading) {
			return RoleChapter, d.heading, true
		}
		return "", "", false
	}},
	{"chapter-marker", func(d docFacts) (Role, string, bool) {
		m := chapterNumPattern.FindStringSubmatch(d.text)
		if m == nil {
			return "", "", false
		}
		// Praise letters quote chapter markers; reclassify those.
		if containsAny(d.lower, praiseOverrideKeywords) {
			return RoleTestimonial, d.heading, true
		}
		if d.heading != "" {
			return RoleChapter, d.heading, true
		}
		return RoleChapter, fmt.Sprintf("Chapter %s", m[1]), true
	}},
	{"headed-chapter", func(d docFacts) (Role, string, bool) {
		if d.heading != "" {
			return RoleChapter, d.heading, true
		}
		return "", "", false
	}},
}

// Classify assigns a structural role and display title to one document.
// It never fails: a document matching no rule is a chapter with an empty
// title, resolved to a placeholder later. Deterministic for identical input.
func Classify(text, heading string, hasImage bool) (Role, string) {
	d := docFacts{
		text:     normalizeQuotes(text),
		heading:  normalizeQuotes(heading),
		hasImage: hasImage,
	}
	d.lower = strings.ToLower(d.text)
	d.hlower = strings.ToLower(d.heading)

	for _, r := range classifyRules {
		if role, title, ok := r.apply(d); ok {
			return role, strings.TrimSpace(title)
		}
	}
	return RoleChapter, ""
}

// normalizeQuotes maps curly quotes and apostrophes to their ASCII
// equivalents so keyword matching is not defeated by typographic encoding.
var quoteNormalizer = strings.NewReplacer(
	"‘", "'", "’", "'", "‚", "'", "ʼ", "'",
	"“", `"`, "”", `"`, "„", `"`,
)

func normalizeQuotes(s string) string {
	return quoteNormalizer.Replace(s)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
