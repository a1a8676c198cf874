// Package fetch downloads candidate pages and extracts their main text and
// link document.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 5 * 1024 * 1024

// Document is the usable part of a fetched page.
type Document struct {
	URL   string
	Title string
	Text  string
	// Links is the full page, kept for sub-page mining.
	Links *goquery.Document
}

type Fetcher struct {
	client    *http.Client
	userAgent string
	logger    zerolog.Logger
}

type Option func(*Fetcher)

func WithLogger(logger zerolog.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

func New(timeout time.Duration, opts ...Option) *Fetcher {
	return NewWithClient(&http.Client{Timeout: timeout}, opts...)
}

func NewWithClient(client *http.Client, opts ...Option) *Fetcher {
	f := &Fetcher{client: client, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads rawURL. The text is the readability main content when it
// can be found, otherwise the visible body text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %s: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	out := &Document{
		URL:   rawURL,
		Title: normalize(doc.Find("title").First().Text()),
		Links: doc,
	}

	parser := readability.NewParser()
	article, rerr := parser.Parse(bytes.NewReader(body), u)
	if rerr == nil {
		if article.Title != "" {
			out.Title = normalize(article.Title)
		}
		out.Text = articleText(article.Content)
	} else {
		f.logger.Debug().Err(rerr).Str("url", rawURL).Msg("readability failed, using body text")
	}
	if out.Text == "" {
		out.Text = bodyText(doc)
	}
	return out, nil
}

func articleText(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	var parts []string
	doc.Find("h1,h2,h3,h4,p,li,td,pre,blockquote").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("p,li,td,blockquote").Length() > 0 {
			return
		}
		if text := normalize(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		return normalize(doc.Text())
	}
	// Block boundaries become line breaks so the summarizer can split on them.
	return strings.Join(parts, "\n")
}

func bodyText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	body.Find("script,style,noscript,nav,footer").Remove()
	return normalize(body.Text())
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
