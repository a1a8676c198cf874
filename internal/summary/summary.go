// Package summary builds an extractive summary with citations from the
// best-scored pages.
package summary

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/julienpequegnot/topicrank/internal/config"
	"github.com/julienpequegnot/topicrank/internal/page"
	"github.com/julienpequegnot/topicrank/internal/script"
)

// Sentence scores.
const (
	TokenScore       = 50
	AllTokensBonus   = 20
	ThemeBonus       = 10
	ExplanatoryBonus = 5
	DenylistPenalty  = -1000
)

const terminators = "。！？!?.\n\r"

type Citation struct {
	Rank  int    `json:"rank"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

type Summary struct {
	Query      string     `json:"query"`
	Body       string     `json:"body"`
	Sentences  []string   `json:"sentences"`
	Citations  []Citation `json:"citations"`
	Sufficient bool       `json:"sufficient"`
}

type Extractor struct {
	themeKeywords []string
	denylist      []string
	explanatory   config.LocalizedList
	insufficient  config.LocalizedText
	scoring       config.ScoringConfig
	logger        zerolog.Logger
}

type Option func(*Extractor)

func WithLogger(logger zerolog.Logger) Option {
	return func(x *Extractor) { x.logger = logger }
}

func New(vocab config.Vocabulary, scoring config.ScoringConfig, opts ...Option) *Extractor {
	defaults := config.DefaultScoring()
	if scoring.SummaryPages <= 0 {
		scoring.SummaryPages = defaults.SummaryPages
	}
	if scoring.SummarySentences <= 0 {
		scoring.SummarySentences = defaults.SummarySentences
	}
	if scoring.SentenceMinNative <= 0 {
		scoring.SentenceMinNative = defaults.SentenceMinNative
	}
	if scoring.SentenceMaxNative < scoring.SentenceMinNative {
		scoring.SentenceMaxNative = defaults.SentenceMaxNative
	}
	if scoring.SentenceMinLatin <= 0 {
		scoring.SentenceMinLatin = defaults.SentenceMinLatin
	}
	if scoring.SentenceMaxLatin < scoring.SentenceMinLatin {
		scoring.SentenceMaxLatin = defaults.SentenceMaxLatin
	}

	x := &Extractor{
		themeKeywords: lowerAll(vocab.ThemeKeywords),
		denylist:      lowerAll(vocab.SentenceDenylist),
		explanatory: config.LocalizedList{
			Native: lowerAll(vocab.ExplanatoryWords.Native),
			Latin:  lowerAll(vocab.ExplanatoryWords.Latin),
		},
		insufficient: vocab.Insufficient,
		scoring:      scoring,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

type scored struct {
	text  string
	score int
}

// Summarize picks the best sentences from the leading pages. pages must
// already be sorted by descending score.
func (x *Extractor) Summarize(pages []*page.Page, query string) Summary {
	query = strings.Join(strings.Fields(query), " ")
	nonLatin := script.NonLatin(query)
	refs := page.Top(pages, x.scoring.SummaryPages)

	minLen, maxLen := x.scoring.SentenceMinLatin, x.scoring.SentenceMaxLatin
	explanatory := x.explanatory.Latin
	if nonLatin {
		minLen, maxLen = x.scoring.SentenceMinNative, x.scoring.SentenceMaxNative
		explanatory = x.explanatory.Native
	}
	tokens := strings.Fields(strings.ToLower(query))

	seen := make(map[string]bool)
	var candidates []scored
	for _, p := range refs {
		if p == nil {
			continue
		}
		for _, s := range Sentences(p.Content) {
			if n := utf8.RuneCountInString(s); n < minLen || n > maxLen {
				continue
			}
			if seen[s] {
				continue
			}
			seen[s] = true
			if score := x.score(s, tokens, explanatory); score > 0 {
				candidates = append(candidates, scored{text: s, score: score})
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > x.scoring.SummarySentences {
		candidates = candidates[:x.scoring.SummarySentences]
	}

	sum := Summary{Query: query, Citations: Citations(refs)}
	for _, c := range candidates {
		sum.Sentences = append(sum.Sentences, terminate(c.text, nonLatin))
	}
	sum.Sufficient = len(sum.Sentences) > 0

	switch {
	case !sum.Sufficient:
		tmpl := x.insufficient.Latin
		if nonLatin {
			tmpl = x.insufficient.Native
		}
		sum.Body = insufficientBody(tmpl, query)
	case nonLatin:
		sum.Body = strings.Join(sum.Sentences, "")
	default:
		sum.Body = strings.Join(sum.Sentences, " ")
	}

	x.logger.Debug().Str("query", query).Int("candidates", len(seen)).Int("selected", len(sum.Sentences)).Msg("summary extracted")
	return sum
}

// score returns 0 for a sentence that mentions neither a query token nor a
// theme keyword, whatever explanatory words it holds.
func (x *Extractor) score(sentence string, tokens, explanatory []string) int {
	lower := strings.ToLower(sentence)
	for _, d := range x.denylist {
		if strings.Contains(lower, d) {
			return DenylistPenalty
		}
	}

	score, found := 0, 0
	for _, tok := range tokens {
		if strings.Contains(lower, tok) {
			score += TokenScore
			found++
		}
	}
	if len(tokens) > 0 && found == len(tokens) {
		score += AllTokensBonus
	}
	for _, k := range x.themeKeywords {
		if strings.Contains(lower, k) {
			score += ThemeBonus
			break
		}
	}
	if score == 0 {
		return 0
	}

	words := " " + strings.Join(wordsOf(lower), " ") + " "
	for _, w := range explanatory {
		if latinWord(w) {
			if strings.Contains(words, " "+w+" ") {
				score += ExplanatoryBonus
			}
		} else if strings.Contains(lower, w) {
			score += ExplanatoryBonus
		}
	}
	return score
}

// wordsOf splits text into runs of letters and digits.
func wordsOf(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// latinWord reports whether w is written in Latin letters only (spaces
// allowed), so it must match on word boundaries.
func latinWord(w string) bool {
	for _, r := range w {
		if r != ' ' && !unicode.Is(unicode.Latin, r) {
			return false
		}
	}
	return w != ""
}

// insufficientBody fills the query into tmpl when tmpl has a verb for it.
func insufficientBody(tmpl, query string) string {
	if !strings.Contains(tmpl, "%") {
		return tmpl
	}
	return fmt.Sprintf(tmpl, query)
}

// Sentences strips private-use characters from text and splits it on
// sentence terminators and line breaks. Empty segments are dropped.
func Sentences(text string) []string {
	clean := strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Co, r) {
			return -1
		}
		return r
	}, text)

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return strings.ContainsRune(terminators, r)
	})
	out := parts[:0]
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Citations numbers the reference pages from 1.
func Citations(refs []*page.Page) []Citation {
	out := make([]Citation, 0, len(refs))
	for i, p := range refs {
		if p == nil {
			continue
		}
		out = append(out, Citation{Rank: i + 1, URL: p.URL, Title: p.Title})
	}
	return out
}

func terminate(s string, nonLatin bool) string {
	if r, _ := utf8.DecodeLastRuneInString(s); strings.ContainsRune(terminators, r) {
		return s
	}
	if nonLatin {
		return s + "。"
	}
	return s + "."
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
