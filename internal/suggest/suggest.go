// Package suggest mines related-keyword suggestions from the titles of the
// best-scored pages.
package suggest

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/width"

	"github.com/julienpequegnot/topicrank/internal/config"
	"github.com/julienpequegnot/topicrank/internal/page"
	"github.com/julienpequegnot/topicrank/internal/script"
)

// Candidate weights. A whole token following the query is a stronger
// signal than an arbitrary character n-gram.
const (
	WholeTokenWeight = 3
	NGramWeight      = 1
)

var bracketed = regexp.MustCompile(`[\[【〔(（<《「『][^\]】〕)）>》」』]*[\]】〕)）>》」』]`)

const separators = "-|｜:：_–—"

type Engine struct {
	stopWords     []string
	fallback      config.LocalizedList
	primaryScript string
	scoring       config.ScoringConfig
	logger        zerolog.Logger
}

type Option func(*Engine)

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func New(vocab config.Vocabulary, scoring config.ScoringConfig, opts ...Option) *Engine {
	defaults := config.DefaultScoring()
	if scoring.SuggestionPages <= 0 {
		scoring.SuggestionPages = defaults.SuggestionPages
	}
	if scoring.MaxSuggestions <= 0 {
		scoring.MaxSuggestions = defaults.MaxSuggestions
	}
	if scoring.MinSuggestions <= 0 {
		scoring.MinSuggestions = defaults.MinSuggestions
	}
	if scoring.MinSuggestions > scoring.MaxSuggestions {
		scoring.MinSuggestions = scoring.MaxSuggestions
	}
	if scoring.FuzzyTolerance <= 0 {
		scoring.FuzzyTolerance = defaults.FuzzyTolerance
	}
	if scoring.NGramMin <= 0 || scoring.NGramMax < scoring.NGramMin {
		scoring.NGramMin, scoring.NGramMax = defaults.NGramMin, defaults.NGramMax
	}
	if scoring.CandidateMinLen <= 0 {
		scoring.CandidateMinLen = defaults.CandidateMinLen
	}
	if scoring.CandidateMaxLen < scoring.CandidateMinLen {
		scoring.CandidateMaxLen = defaults.CandidateMaxLen
	}

	e := &Engine{
		fallback:      vocab.FallbackSuffixes,
		primaryScript: vocab.PrimaryScript,
		scoring:       scoring,
		logger:        zerolog.Nop(),
	}
	for _, w := range vocab.StopWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			e.stopWords = append(e.stopWords, w)
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Suggest returns up to MaxSuggestions strings of the form
// "query candidate". pages must already be sorted by descending score.
func (e *Engine) Suggest(pages []*page.Page, query string) []string {
	query = strings.Join(strings.Fields(query), " ")
	lowerQuery := strings.ToLower(query)

	term := lowerQuery
	if i := strings.IndexByte(term, ' '); i >= 0 {
		term = term[:i]
	}

	freq := make(map[string]int)
	if term != "" {
		for _, p := range page.Top(pages, e.scoring.SuggestionPages) {
			if p == nil {
				continue
			}
			e.collect(freq, CleanTitle(p.Title), term)
		}
	}

	var out []string
	seen := make(map[string]bool)
	used := make(map[rune]bool)
	for _, cand := range rank(freq) {
		if len(out) >= e.scoring.MaxSuggestions {
			break
		}
		if !e.eligible(cand, lowerQuery) || !claim(used, cand) {
			continue
		}
		s := join(query, cand)
		seen[s] = true
		out = append(out, s)
	}
	e.logger.Debug().Str("query", query).Int("candidates", len(freq)).Int("mined", len(out)).Msg("suggestions mined")

	if len(out) < e.scoring.MinSuggestions {
		suffixes := e.fallback.Latin
		if script.Is(query, e.primaryScript) {
			suffixes = e.fallback.Native
		}
		for _, suffix := range suffixes {
			if len(out) >= e.scoring.MinSuggestions {
				break
			}
			s := join(query, suffix)
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// collect adds the candidates following term in title to freq.
func (e *Engine) collect(freq map[string]int, title, term string) {
	lower := strings.ToLower(title)
	rest, ok := e.after(lower, term)
	if !ok {
		return
	}
	rest = e.trimLeadingStopWords(rest)
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return
	}

	if first := fields[0]; utf8.RuneCountInString(first) >= 2 && !e.isStopWord(first) {
		freq[first] += WholeTokenWeight
	}

	unspaced := []rune(strings.Join(fields, ""))
	for n := e.scoring.NGramMin; n <= e.scoring.NGramMax; n++ {
		if len(unspaced) < n {
			break
		}
		gram := string(unspaced[:n])
		if e.containsStopWord(gram) {
			continue
		}
		freq[gram] += NGramWeight
	}
}

// after returns the text following the first occurrence of term in title.
func (e *Engine) after(title, term string) (string, bool) {
	if i := strings.Index(title, term); i >= 0 {
		return title[i+len(term):], true
	}
	end := FuzzyFind(title, term, e.scoring.FuzzyTolerance)
	if end < 0 {
		return "", false
	}
	return string([]rune(title)[end:]), true
}

func (e *Engine) trimLeadingStopWords(s string) string {
	for {
		s = strings.TrimSpace(s)
		trimmed := false
		for _, w := range e.stopWords {
			if latinWord(w) {
				fields := strings.Fields(s)
				if len(fields) > 0 && fields[0] == w {
					s = s[len(w):]
					trimmed = true
				}
			} else if strings.HasPrefix(s, w) {
				s = s[len(w):]
				trimmed = true
			}
			if trimmed {
				break
			}
		}
		if !trimmed {
			return s
		}
	}
}

func (e *Engine) isStopWord(s string) bool {
	for _, w := range e.stopWords {
		if s == w {
			return true
		}
	}
	return false
}

// containsStopWord matches non-Latin stop words as substrings and Latin stop
// words only as the whole string, since short Latin words occur inside
// almost any n-gram.
func (e *Engine) containsStopWord(s string) bool {
	for _, w := range e.stopWords {
		if latinWord(w) {
			if s == w {
				return true
			}
		} else if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func (e *Engine) eligible(cand, lowerQuery string) bool {
	n := utf8.RuneCountInString(cand)
	if n < e.scoring.CandidateMinLen || n > e.scoring.CandidateMaxLen {
		return false
	}
	if numeric(cand) {
		return false
	}
	return lowerQuery == "" || !strings.Contains(cand, lowerQuery)
}

// rank orders candidates by frequency, then shorter first, then
// lexicographically so the result is deterministic.
func rank(freq map[string]int) []string {
	out := make([]string, 0, len(freq))
	for c := range freq {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if freq[a] != freq[b] {
			return freq[a] > freq[b]
		}
		la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
		if la != lb {
			return la < lb
		}
		return a < b
	})
	return out
}

// claim marks the candidate's letters and digits as used. It refuses
// candidates sharing any of them with an earlier one.
func claim(used map[rune]bool, cand string) bool {
	var chars []rune
	for _, r := range strings.ToLower(cand) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if used[r] {
				return false
			}
			chars = append(chars, r)
		}
	}
	if len(chars) == 0 {
		return false
	}
	for _, r := range chars {
		used[r] = true
	}
	return true
}

// CleanTitle drops site suffixes, bracketed segments and punctuation from a
// page title.
func CleanTitle(title string) string {
	t := width.Fold.String(title)
	if i := strings.LastIndexAny(t, separators); i > 0 {
		if head := strings.TrimSpace(t[:i]); head != "" {
			t = head
		}
	}
	t = bracketed.ReplaceAllString(t, " ")
	t = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, t)
	return strings.Join(strings.Fields(t), " ")
}

// FuzzyFind slides a window of len(term) runes over text and returns the
// rune offset just past the window with the fewest mismatches, or -1 when
// even the best window has more than max(1, tolerance*len(term)) mismatches.
// At least one rune must match.
func FuzzyFind(text, term string, tolerance float64) int {
	t, q := []rune(text), []rune(term)
	m := len(q)
	if m == 0 || len(t) < m {
		return -1
	}
	allowed := int(tolerance * float64(m))
	if allowed < 1 {
		allowed = 1
	}

	best, bestAt := m+1, -1
	for i := 0; i+m <= len(t); i++ {
		mismatches := 0
		for j := 0; j < m && mismatches < best; j++ {
			if unicode.ToLower(t[i+j]) != unicode.ToLower(q[j]) {
				mismatches++
			}
		}
		if mismatches < best {
			best, bestAt = mismatches, i
		}
	}
	if best > allowed || best >= m {
		return -1
	}
	return bestAt + m
}

func join(query, suffix string) string {
	if query == "" {
		return suffix
	}
	return query + " " + suffix
}

func numeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func latinWord(s string) bool {
	for _, r := range s {
		if r >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
