package scorer

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/julienpequegnot/topicrank/internal/config"
	"github.com/julienpequegnot/topicrank/internal/metrics"
	"github.com/julienpequegnot/topicrank/internal/page"
)

// Theme tier.
const (
	ThemeTitleAndContent = 60.0
	ThemeTitleOnly       = 40.0
	ThemeContentOnly     = 10.0
	ThemeMissing         = -50.0
)

// Keyword coverage.
const (
	PrimaryMatch        = 40.0
	PrimaryInTitle      = 20.0
	PrimarySecondary    = 10.0
	SecondaryOnlyBase   = 10.0
	SecondaryOnlyEach   = 5.0
	KeywordsMissing     = -30.0
	AuthorityBonus      = 15.0
	DefaultSubPageScale = 0.2
)

// VariantMatcher reports whether text contains keyword in any known
// language variant. translate.Cache is the production implementation.
type VariantMatcher interface {
	ContainsAnyVariant(ctx context.Context, text, keyword string) bool
}

type literalMatcher struct{}

func (literalMatcher) ContainsAnyVariant(_ context.Context, text, keyword string) bool {
	k := strings.ToLower(strings.TrimSpace(keyword))
	return k != "" && strings.Contains(strings.ToLower(text), k)
}

// RelevanceScorer scores pages against a query and a fixed topic vocabulary.
type RelevanceScorer struct {
	themeKeywords    []string
	authorityDomains []string
	matcher          VariantMatcher
	miner            *SubpageMiner
	subPageScale     float64
	concurrency      int
	logger           zerolog.Logger
	metrics          *metrics.Metrics
}

type Option func(*RelevanceScorer)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *RelevanceScorer) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *RelevanceScorer) { s.metrics = m }
}

func NewRelevanceScorer(vocab config.Vocabulary, scoring config.ScoringConfig, matcher VariantMatcher, opts ...Option) *RelevanceScorer {
	if matcher == nil {
		matcher = literalMatcher{}
	}
	scale := scoring.SubPageWeight
	if scale <= 0 {
		scale = DefaultSubPageScale
	}
	concurrency := scoring.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	s := &RelevanceScorer{
		themeKeywords:    lowerAll(vocab.ThemeKeywords),
		authorityDomains: lowerAll(vocab.AuthorityDomains),
		matcher:          matcher,
		miner:            NewSubpageMiner(vocab, scoring.MaxSubPages),
		subPageScale:     scale,
		concurrency:      concurrency,
		logger:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score recomputes p.TopicScore, p.ScoreDetails and p.SubPages from scratch
// and returns the score. doc may be nil, in which case sub-page mining is
// skipped.
func (s *RelevanceScorer) Score(ctx context.Context, p *page.Page, query string, doc *goquery.Document) float64 {
	title := strings.ToLower(p.Title)
	content := strings.ToLower(p.Content)

	var details []string

	theme, where := s.themeScore(title, content)
	details = append(details, fmt.Sprintf("theme %+g (%s)", theme, where))

	keywords, why := s.keywordScore(ctx, p.Title, p.Title+" "+p.Content, query)
	details = append(details, fmt.Sprintf("keywords %+g (%s)", keywords, why))

	total := theme + keywords

	// Authority only corroborates an on-topic, on-query page.
	if theme > 0 && keywords > 0 {
		if domain := s.authorityDomain(p.URL); domain != "" {
			total += AuthorityBonus
			details = append(details, fmt.Sprintf("authority %+g (%s)", AuthorityBonus, domain))
		}
	}

	p.ResetSubPages()
	if doc != nil {
		aggregate := s.miner.Mine(p, doc, query)
		bonus := aggregate * s.subPageScale
		total += bonus
		details = append(details, fmt.Sprintf("subpages %+.1f (%d links, %g x %g)", bonus, len(p.SubPages), aggregate, s.subPageScale))
	}

	details = append(details, fmt.Sprintf("total %.1f", total))
	p.TopicScore = total
	p.ScoreDetails = strings.Join(details, "; ")
	s.metrics.ObserveScore(total)
	return total
}

// ScoreAll scores every page using its own Links document. Pages are
// independent, so they are scored concurrently.
func (s *RelevanceScorer) ScoreAll(ctx context.Context, pages []*page.Page, query string) {
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, p := range pages {
		if p == nil {
			continue
		}
		p := p
		g.Go(func() error {
			s.Score(ctx, p, query, p.Links)
			s.logger.Debug().Str("url", p.URL).Float64("score", p.TopicScore).Msg("page scored")
			return nil
		})
	}
	_ = g.Wait()
}

func (s *RelevanceScorer) themeScore(title, content string) (float64, string) {
	inTitle := containsAny(title, s.themeKeywords)
	inText := containsAny(content, s.themeKeywords)
	switch {
	case inTitle && inText:
		return ThemeTitleAndContent, "title, content"
	case inTitle:
		return ThemeTitleOnly, "title"
	case inText:
		return ThemeContentOnly, "content"
	}
	return ThemeMissing, "absent"
}

func (s *RelevanceScorer) keywordScore(ctx context.Context, title, full, query string) (float64, string) {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return KeywordsMissing, "empty query"
	}

	primary := tokens[0]
	primaryHit := s.matcher.ContainsAnyVariant(ctx, full, primary)
	primaryTitle := primaryHit && s.matcher.ContainsAnyVariant(ctx, title, primary)

	secondary := tokens[1:]
	hits, titleHits := 0, 0
	for _, tok := range secondary {
		if !s.matcher.ContainsAnyVariant(ctx, full, tok) {
			continue
		}
		hits++
		if s.matcher.ContainsAnyVariant(ctx, title, tok) {
			titleHits++
		}
	}
	coverage := fmt.Sprintf("%d/%d secondary, %d in title", hits, len(secondary), titleHits)

	switch {
	case primaryHit:
		score := PrimaryMatch + PrimarySecondary*float64(hits)
		where := "primary"
		if primaryTitle {
			score += PrimaryInTitle
			where = "primary, primary in title"
		}
		return score, where + ", " + coverage
	case hits > 0:
		return SecondaryOnlyBase + SecondaryOnlyEach*float64(hits), "secondary only, " + coverage
	}
	return KeywordsMissing, "no match"
}

// authorityDomain returns the configured authority entry matching the URL,
// or "". A bare domain matches the host or any subdomain of it; an entry
// with a path also requires the URL path to start with that path.
func (s *RelevanceScorer) authorityDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	path := strings.ToLower(u.Path)
	for _, d := range s.authorityDomains {
		domain, prefix, _ := strings.Cut(d, "/")
		if domain == "" || !hostMatches(host, domain) {
			continue
		}
		if prefix == "" || pathHasPrefix(path, "/"+prefix) {
			return d
		}
	}
	return ""
}

func hostMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// pathHasPrefix matches whole path segments, so /r/brawlstars does not
// match /r/brawlstarsfake.
func pathHasPrefix(path, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
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
