package dictionary

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"readinghub/pkg/utils"
)

const punctuationMarks = ",.;!?，。！？；：、“”\"'()"

type Handler struct {
	free   *freeDictClient
	youdao *youdaoClient
	cache  *cache.Cache
}

func NewHandler(cfg utils.YoudaoConfig) *Handler {
	return &Handler{
		free:   newFreeDictClient(),
		youdao: newYoudaoClient(cfg),
		cache:  cache.New(24*time.Hour, 1*time.Hour),
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:word", h.lookup) // GET /dictionary/:word
}

// isPhrase treats anything with whitespace or punctuation as a phrase or
// sentence, which routes it to translation instead of the dictionary.
func isPhrase(text string) bool {
	s := strings.TrimSpace(text)
	if s == "" {
		return false
	}
	return strings.ContainsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || strings.ContainsRune(punctuationMarks, r)
	})
}

func (h *Handler) lookup(c *gin.Context) {
	word := strings.TrimSpace(c.Param("word"))
	if word == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty query"})
		return
	}

	key := strings.ToLower(word)
	if cached, ok := h.cache.Get(key); ok {
		c.JSON(http.StatusOK, cached.(*Entry))
		return
	}

	ctx := c.Request.Context()
	var english, chinese *Entry
	lemma := ""

	if isPhrase(word) {
		// Phrases go to translation; the English dictionary only serves as
		// a fallback when translation is unavailable.
		chinese = h.youdao.Lookup(ctx, word)
		if chinese == nil {
			english = h.free.Lookup(ctx, word)
		}
	} else {
		english, chinese = h.lookupWord(ctx, word)
		if english == nil {
			if candidate := Lemmatize(word); candidate != key {
				if retry := h.free.Lookup(ctx, candidate); retry != nil {
					english = retry
					lemma = candidate
				}
			}
		}
	}

	if english == nil && chinese == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "word not found",
			"word":  word,
		})
		return
	}

	entry := merge(word, english, chinese)
	if lemma != "" {
		entry.SearchedWord = word
		entry.Lemma = lemma
	}
	h.cache.Set(key, entry, cache.DefaultExpiration)
	c.JSON(http.StatusOK, entry)
}

// lookupWord queries both sources concurrently; single words want both the
// English definitions and the Chinese gloss.
func (h *Handler) lookupWord(ctx context.Context, word string) (english, chinese *Entry) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		english = h.free.Lookup(ctx, word)
	}()
	go func() {
		defer wg.Done()
		chinese = h.youdao.Lookup(ctx, word)
	}()
	wg.Wait()
	return english, chinese
}

func merge(word string, english, chinese *Entry) *Entry {
	out := &Entry{Word: word}
	if english != nil {
		out.Meanings = append(out.Meanings, english.Meanings...)
		out.Phonetic = english.Phonetic
		out.Audio = english.Audio
	}
	if chinese != nil {
		out.Meanings = append(out.Meanings, chinese.Meanings...)
		if out.Phonetic == "" {
			out.Phonetic = chinese.Phonetic
		}
	}
	return out
}
