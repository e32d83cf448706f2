package ingest

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"readinghub/pkg/models"
)

var (
	chineseChapterPattern = regexp.MustCompile(`第(\d+)章`)
	leadingIntPattern     = regexp.MustCompile(`^(\d+)`)
	tocNumPrefixPattern   = regexp.MustCompile(`^\d+\.\s*`)
)

// NormalizeChapters turns the chapter-role documents into an ordered,
// contiguously numbered chapter list. A chapter's number comes from an
// explicit marker in its text ("Chapter 3", "第3章"), then from a leading
// integer in its detected title, then from its position among chapters in
// spine order. Those numbers only sort; the persisted chapter_number is
// always the contiguous 1..N position after sorting.
func NormalizeChapters(docs []*ClassifiedDocument, tocTitles map[string]string) []models.Chapter {
	type numbered struct {
		doc *ClassifiedDocument
		num int
	}
	var chaps []numbered
	for _, d := range docs {
		if d.Role != RoleChapter {
			continue
		}
		num := len(chaps) + 1
		if m := chapterNumPattern.FindStringSubmatch(d.Text); m != nil {
			num, _ = strconv.Atoi(m[1])
		} else if m := chineseChapterPattern.FindStringSubmatch(d.Text); m != nil {
			num, _ = strconv.Atoi(m[1])
		} else if m := leadingIntPattern.FindStringSubmatch(strings.TrimSpace(d.Title)); m != nil {
			num, _ = strconv.Atoi(m[1])
		}
		chaps = append(chaps, numbered{d, num})
	}

	sort.SliceStable(chaps, func(i, j int) bool { return chaps[i].num < chaps[j].num })

	out := make([]models.Chapter, 0, len(chaps))
	for i, c := range chaps {
		n := i + 1
		title := strings.TrimSpace(c.doc.Title)
		// The TOC's declared title wins over the detected one; NCX entries
		// often carry a "3. " prefix that duplicates the number.
		if toc := strings.TrimSpace(tocTitles[c.doc.Href]); toc != "" {
			if stripped := strings.TrimSpace(tocNumPrefixPattern.ReplaceAllString(toc, "")); stripped != "" {
				title = stripped
			}
		}
		if title == "" {
			title = fmt.Sprintf("Chapter %d", n)
		}
		out = append(out, models.Chapter{
			ChapterNumber: n,
			Title:         title,
			Content:       c.doc.HTML,
			WordCount:     countWords(c.doc.Text),
		})
	}
	return out
}

// countWords counts the alphabetic tokens longer than two letters.
func countWords(text string) int {
	return len(tokenizeWords(text))
}
