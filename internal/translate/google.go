package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultGoogleURL = "https://translate.googleapis.com/translate_a/single"

// Google calls the public gtx endpoint of Google Translate.
type Google struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

func (g *Google) Translate(ctx context.Context, text, targetLang string) (string, error) {
	base := g.BaseURL
	if base == "" {
		base = defaultGoogleURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", targetLang)
	q.Set("dt", "t")
	q.Set("q", text)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	if g.UserAgent != "" {
		req.Header.Set("User-Agent", g.UserAgent)
	}
	hc := g.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 2 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate status: %d", resp.StatusCode)
	}

	// The body is a nested array: [[["translated","source",...],...],...]
	var raw []any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("failed to decode translation: %w", err)
	}
	return parseGoogle(raw)
}

func parseGoogle(raw []any) (string, error) {
	if len(raw) == 0 {
		return "", ErrEmptyTranslation
	}
	segments, ok := raw[0].([]any)
	if !ok {
		return "", ErrEmptyTranslation
	}
	var b strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			b.WriteString(s)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ErrEmptyTranslation
	}
	return out, nil
}
