package cmd

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/julienpequegnot/topicrank/internal/config"
	"github.com/julienpequegnot/topicrank/internal/database"
	"github.com/julienpequegnot/topicrank/internal/fetch"
	"github.com/julienpequegnot/topicrank/internal/history"
	"github.com/julienpequegnot/topicrank/internal/llm"
	"github.com/julienpequegnot/topicrank/internal/metrics"
	"github.com/julienpequegnot/topicrank/internal/pipeline"
	"github.com/julienpequegnot/topicrank/internal/scorer"
	"github.com/julienpequegnot/topicrank/internal/search"
	"github.com/julienpequegnot/topicrank/internal/translate"
)

// newTranslator picks the translation backend named in the config. A nil
// translator means keywords are matched literally.
func newTranslator(cfg *config.Config) (translate.Translator, error) {
	switch strings.ToLower(cfg.Translate.Provider) {
	case "google":
		return &translate.Google{
			BaseURL:    cfg.Translate.BaseURL,
			HTTPClient: &http.Client{Timeout: cfg.Translate.Timeout},
			UserAgent:  cfg.Fetch.UserAgent,
		}, nil
	case "llm":
		return llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.Model, cfg.Translate.Timeout), nil
	case "glossary":
		return translate.Glossary(cfg.Translate.Glossary), nil
	case "", "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown translate provider %q", cfg.Translate.Provider)
}

func newMatcher(cfg *config.Config, m *metrics.Metrics) (scorer.VariantMatcher, error) {
	t, err := newTranslator(cfg)
	if err != nil || t == nil {
		return nil, err
	}
	return translate.NewCache(t,
		translate.WithLanguages(cfg.Translate.Languages),
		translate.WithTimeout(cfg.Translate.Timeout),
		translate.WithConcurrency(cfg.Translate.Concurrency),
		translate.WithLogger(logger),
		translate.WithMetrics(m),
	), nil
}

// newPipeline wires config into a ready pipeline. provider overrides the
// configured search provider when non-empty.
func newPipeline(cfg *config.Config, provider string, m *metrics.Metrics) (*pipeline.Pipeline, error) {
	matcher, err := newMatcher(cfg, m)
	if err != nil {
		return nil, err
	}

	searchCfg := cfg.Search
	if provider != "" {
		searchCfg.Provider = provider
	}
	timeout := time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second
	prov, err := search.New(searchCfg, &http.Client{Timeout: 10 * time.Second}, cfg.Fetch.UserAgent)
	if err != nil {
		return nil, err
	}
	fetcher := fetch.New(timeout, fetch.WithLogger(logger), fetch.WithUserAgent(cfg.Fetch.UserAgent))

	return pipeline.New(cfg, prov, fetcher, matcher,
		pipeline.WithLogger(logger), pipeline.WithMetrics(m)), nil
}

// newOfflinePipeline serves Rank only: no provider and no fetcher.
func newOfflinePipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	matcher, err := newMatcher(cfg, nil)
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg, nil, nil, matcher, pipeline.WithLogger(logger)), nil
}

func openHistory() (*database.DB, *history.Repository, error) {
	if err := os.MkdirAll(config.Dir(), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create directory: %w", err)
	}
	db, err := database.New(config.DBPath())
	if err != nil {
		return nil, nil, err
	}
	return db, history.NewRepository(db), nil
}
