// Package search queries upstream search engines for candidate pages.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/julienpequegnot/topicrank/internal/config"
)

var ErrNoProvider = errors.New("no search provider configured")

// Result is a single search hit from any provider.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source,omitempty"` // provider name for observability
}

// Provider is a minimal interface for search providers.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	Name() string
}

// ExpandQuery appends term to a query that mentions none of the theme
// keywords, so a generic word like "戰鬥" is searched within the topic.
func ExpandQuery(query string, themeKeywords []string, term string) string {
	query = strings.TrimSpace(query)
	term = strings.TrimSpace(term)
	if query == "" || term == "" {
		return query
	}
	lower := strings.ToLower(query)
	for _, k := range themeKeywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" && strings.Contains(lower, k) {
			return query
		}
	}
	return query + " " + term
}

// New builds the provider named by cfg.Provider.
func New(cfg config.SearchConfig, client *http.Client, userAgent string) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "google":
		if cfg.GoogleAPIKey == "" || cfg.GoogleCX == "" {
			return nil, fmt.Errorf("google provider needs google_api_key and google_cx: %w", ErrNoProvider)
		}
		return &Google{APIKey: cfg.GoogleAPIKey, CX: cfg.GoogleCX, Region: cfg.Region, HTTPClient: client, UserAgent: userAgent}, nil
	case "searxng":
		if cfg.SearxURL == "" {
			return nil, fmt.Errorf("searxng provider needs searx_url: %w", ErrNoProvider)
		}
		return &SearxNG{BaseURL: cfg.SearxURL, HTTPClient: client, UserAgent: userAgent}, nil
	case "feed":
		if len(cfg.Feeds) == 0 {
			return nil, fmt.Errorf("feed provider needs feeds: %w", ErrNoProvider)
		}
		return NewFeedProvider(cfg.Feeds, client, userAgent), nil
	case "file":
		return &FileProvider{Path: cfg.File}, nil
	case "":
		return nil, ErrNoProvider
	}
	return nil, fmt.Errorf("unknown search provider %q: %w", cfg.Provider, ErrNoProvider)
}
