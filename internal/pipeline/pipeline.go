// Package pipeline runs one query end to end: search, fetch, score, sort,
// suggest and summarize.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/julienpequegnot/topicrank/internal/config"
	"github.com/julienpequegnot/topicrank/internal/fetch"
	"github.com/julienpequegnot/topicrank/internal/metrics"
	"github.com/julienpequegnot/topicrank/internal/page"
	"github.com/julienpequegnot/topicrank/internal/scorer"
	"github.com/julienpequegnot/topicrank/internal/search"
	"github.com/julienpequegnot/topicrank/internal/suggest"
	"github.com/julienpequegnot/topicrank/internal/summary"
)

var ErrEmptyQuery = errors.New("empty query")

// Fetcher retrieves the full text and link document of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Document, error)
}

type Result struct {
	Query       string          `json:"query"`
	SearchTerm  string          `json:"searchTerm"`
	Pages       []*page.Page    `json:"pages"`
	Suggestions []string        `json:"suggestions"`
	Summary     summary.Summary `json:"summary"`
	Elapsed     time.Duration   `json:"elapsed"`
}

type Pipeline struct {
	provider   search.Provider
	fetcher    Fetcher
	scorer     *scorer.RelevanceScorer
	suggester  *suggest.Engine
	summarizer *summary.Extractor

	themeKeywords    []string
	expansionTerm    string
	expand           bool
	limit            int
	fetchConcurrency int

	logger  zerolog.Logger
	metrics *metrics.Metrics
}

type Option func(*Pipeline)

func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New wires the core components from cfg. provider and fetcher may be nil
// when only Rank is used; matcher may be nil to match keywords literally.
func New(cfg *config.Config, provider search.Provider, fetcher Fetcher, matcher scorer.VariantMatcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		provider:         provider,
		fetcher:          fetcher,
		themeKeywords:    cfg.Vocabulary.ThemeKeywords,
		expansionTerm:    cfg.Vocabulary.ExpansionTerm,
		expand:           cfg.Search.Expand,
		limit:            cfg.Search.Limit,
		fetchConcurrency: cfg.Fetch.Concurrency,
		logger:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.limit <= 0 {
		p.limit = 10
	}
	if p.fetchConcurrency <= 0 {
		p.fetchConcurrency = 1
	}

	p.scorer = scorer.NewRelevanceScorer(cfg.Vocabulary, cfg.Scoring, matcher,
		scorer.WithLogger(p.logger), scorer.WithMetrics(p.metrics))
	p.suggester = suggest.New(cfg.Vocabulary, cfg.Scoring, suggest.WithLogger(p.logger))
	p.summarizer = summary.New(cfg.Vocabulary, cfg.Scoring, summary.WithLogger(p.logger))
	return p
}

// Run searches for query and ranks the results. Only a failing search is an
// error; pages that cannot be fetched keep their snippet.
func (p *Pipeline) Run(ctx context.Context, query string) (*Result, error) {
	start := time.Now()
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if p.provider == nil {
		return nil, search.ErrNoProvider
	}

	term := query
	if p.expand {
		term = search.ExpandQuery(query, p.themeKeywords, p.expansionTerm)
	}

	results, err := p.provider.Search(ctx, term, p.limit)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", p.provider.Name(), err)
	}
	p.logger.Info().Str("query", query).Str("term", term).Int("results", len(results)).Msg("search complete")

	pages := make([]*page.Page, 0, len(results))
	for i, r := range results {
		pg := page.New(r.URL, r.Title)
		pg.EngineRank = i + 1
		pg.Content = r.Snippet
		pages = append(pages, pg)
	}
	p.fetchAll(ctx, pages)

	res := p.Rank(ctx, query, pages)
	res.SearchTerm = term
	res.Elapsed = time.Since(start)
	p.metrics.ObservePipeline(res.Elapsed)
	return res, nil
}

// Rank scores, sorts and summarizes already-fetched pages. It does no
// network I/O apart from translation lookups.
func (p *Pipeline) Rank(ctx context.Context, query string, pages []*page.Page) *Result {
	query = strings.TrimSpace(query)
	kept := make([]*page.Page, 0, len(pages))
	for _, pg := range pages {
		if pg != nil {
			kept = append(kept, pg)
		}
	}

	p.scorer.ScoreAll(ctx, kept, query)
	page.SortByScore(kept)

	return &Result{
		Query:       query,
		SearchTerm:  query,
		Pages:       kept,
		Suggestions: p.suggester.Suggest(kept, query),
		Summary:     p.summarizer.Summarize(kept, query),
	}
}

func (p *Pipeline) fetchAll(ctx context.Context, pages []*page.Page) {
	if p.fetcher == nil {
		return
	}
	g := new(errgroup.Group)
	g.SetLimit(p.fetchConcurrency)
	for _, pg := range pages {
		pg := pg
		g.Go(func() error {
			doc, err := p.fetcher.Fetch(ctx, pg.URL)
			if err != nil {
				p.logger.Debug().Err(err).Str("url", pg.URL).Msg("fetch failed, using snippet")
				return nil
			}
			if doc.Text != "" {
				pg.Content = doc.Text
			}
			if pg.Title == "" {
				pg.Title = doc.Title
			}
			pg.Links = doc.Links
			return nil
		})
	}
	_ = g.Wait()
}
