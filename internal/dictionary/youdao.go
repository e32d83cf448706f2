package dictionary

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"readinghub/pkg/utils"
)

const youdaoAPIURL = "https://openapi.youdao.com/api"

var explainSplitPattern = regexp.MustCompile(`[；;，、]+`)

// youdaoClient translates words and phrases to Chinese through the Youdao
// open API. Requests are rate limited; Youdao bills per call and throttles
// hard (error 411) when flooded.
type youdaoClient struct {
	cfg     utils.YoudaoConfig
	http    *http.Client
	limiter *rate.Limiter
}

func newYoudaoClient(cfg utils.YoudaoConfig) *youdaoClient {
	return &youdaoClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: 3 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
}

func (y *youdaoClient) Enabled() bool { return y.cfg.Configured() }

type youdaoResponse struct {
	ErrorCode   string   `json:"errorCode"`
	Translation []string `json:"translation"`
	Basic       struct {
		Phonetic   string   `json:"phonetic"`
		USPhonetic string   `json:"us-phonetic"`
		UKPhonetic string   `json:"uk-phonetic"`
		Explains   []string `json:"explains"`
		Wfs        []struct {
			Wf struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"wf"`
		} `json:"wfs"`
	} `json:"basic"`
	Web []struct {
		Key   string   `json:"key"`
		Value []string `json:"value"`
	} `json:"web"`
}

// Lookup translates a word or phrase. A miss returns nil; only missing
// configuration and API errors are logged, never surfaced.
func (y *youdaoClient) Lookup(ctx context.Context, word string) *Entry {
	if !y.Enabled() {
		return nil
	}
	if err := y.limiter.Wait(ctx); err != nil {
		return nil
	}

	q := strings.ToLower(word)
	salt := uuid.New().String()
	curtime := strconv.FormatInt(time.Now().Unix(), 10)
	sign := youdaoSign(y.cfg.AppKey, q, salt, curtime, y.cfg.AppSecret)

	params := url.Values{
		"q":        {q},
		"from":     {"en"},
		"to":       {"zh-CHS"},
		"appKey":   {y.cfg.AppKey},
		"salt":     {salt},
		"sign":     {sign},
		"signType": {"v3"},
		"curtime":  {curtime},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, youdaoAPIURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil
	}
	resp, err := y.http.Do(req)
	if err != nil {
		log.Printf("[dictionary] youdao request: %v", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("[dictionary] youdao status %d for %q", resp.StatusCode, word)
		return nil
	}

	var data youdaoResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil
	}
	if data.ErrorCode != "0" {
		log.Printf("[dictionary] youdao error %s for %q", data.ErrorCode, word)
		return nil
	}

	meanings := youdaoMeanings(data)
	if len(meanings) == 0 {
		return nil
	}
	phonetic := data.Basic.Phonetic
	if phonetic == "" {
		phonetic = data.Basic.USPhonetic
	}
	if phonetic == "" {
		phonetic = data.Basic.UKPhonetic
	}
	return &Entry{Word: word, Phonetic: phonetic, Meanings: meanings}
}

// youdaoSign computes the v3 request signature:
// sha256(appKey + truncate(q) + salt + curtime + appSecret).
func youdaoSign(appKey, q, salt, curtime, appSecret string) string {
	sum := sha256.Sum256([]byte(appKey + truncate(q) + salt + curtime + appSecret))
	return hex.EncodeToString(sum[:])
}

// truncate shortens long inputs the way the signature scheme requires:
// first 10 characters + length + last 10 characters once q exceeds 20.
func truncate(q string) string {
	r := []rune(q)
	if len(r) <= 20 {
		return q
	}
	return string(r[:10]) + strconv.Itoa(len(r)) + string(r[len(r)-10:])
}

func youdaoMeanings(data youdaoResponse) []Meaning {
	var meanings []Meaning

	// Dictionary explains carry a part-of-speech prefix ("vt. 放弃；抛弃")
	// and pack several senses into one line.
	for _, explain := range data.Basic.Explains {
		text := strings.TrimSpace(explain)
		pos := ""
		content := text
		if i := strings.Index(text, "."); i >= 0 {
			prefix := strings.TrimSpace(text[:i])
			if len(prefix) <= 6 {
				pos = prefix
				content = strings.TrimSpace(text[i+1:])
			}
		}
		fragments := explainSplitPattern.Split(content, -1)
		var defs []Definition
		for _, frag := range fragments {
			if frag = strings.TrimSpace(frag); frag != "" {
				defs = append(defs, Definition{Definition: frag})
			}
		}
		if len(defs) == 0 {
			defs = []Definition{{Definition: content}}
		}
		meanings = append(meanings, Meaning{PartOfSpeech: pos, Definitions: defs, Lang: "zh"})
	}

	for _, trans := range data.Translation {
		if trans == "" {
			continue
		}
		meanings = append(meanings, Meaning{
			PartOfSpeech: "翻译",
			Definitions:  []Definition{{Definition: trans}},
			Lang:         "zh",
		})
	}

	for _, entry := range data.Web {
		var defs []Definition
		for _, v := range entry.Value {
			if v != "" {
				defs = append(defs, Definition{Definition: v, Example: entry.Key})
			}
		}
		if len(defs) > 0 {
			meanings = append(meanings, Meaning{PartOfSpeech: "网络释义", Definitions: defs, Lang: "zh"})
		}
	}

	var wfDefs []Definition
	for _, wf := range data.Basic.Wfs {
		if wf.Wf.Value == "" {
			continue
		}
		name := wf.Wf.Name
		if name == "" {
			name = "词形"
		}
		wfDefs = append(wfDefs, Definition{Definition: fmt.Sprintf("%s: %s", name, wf.Wf.Value)})
	}
	if len(wfDefs) > 0 {
		meanings = append(meanings, Meaning{PartOfSpeech: "词形变化", Definitions: wfDefs, Lang: "zh"})
	}

	return meanings
}
