package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const googleEndpoint = "https://www.googleapis.com/customsearch/v1"

// Google implements Provider against the Custom Search JSON API.
type Google struct {
	APIKey     string
	CX         string
	Region     string // two-letter country code, e.g. "tw"
	BaseURL    string // optional, defaults to the public endpoint
	HTTPClient *http.Client
	UserAgent  string
}

func (g *Google) Name() string { return "google" }

func (g *Google) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if g.APIKey == "" || g.CX == "" {
		return nil, fmt.Errorf("missing google api key or cx")
	}
	// The API returns at most 10 items per request.
	if limit <= 0 || limit > 10 {
		limit = 10
	}
	base := g.BaseURL
	if base == "" {
		base = googleEndpoint
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("key", g.APIKey)
	q.Set("cx", g.CX)
	q.Set("q", query)
	q.Set("num", strconv.Itoa(limit))
	if region := strings.ToLower(strings.TrimSpace(g.Region)); region != "" {
		q.Set("gl", region)
		q.Set("cr", "country"+strings.ToUpper(region))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if g.UserAgent != "" {
		req.Header.Set("User-Agent", g.UserAgent)
	}
	hc := g.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("google status: %d", resp.StatusCode)
	}

	var gr googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("failed to decode google response: %w", err)
	}
	out := make([]Result, 0, len(gr.Items))
	for _, it := range gr.Items {
		if it.Link == "" {
			continue
		}
		out = append(out, Result{
			Title:   strings.TrimSpace(it.Title),
			URL:     strings.TrimSpace(it.Link),
			Snippet: strings.TrimSpace(it.Snippet),
			Source:  g.Name(),
		})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type googleResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}
