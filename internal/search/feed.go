package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
)

const maxSnippetRunes = 300

// FeedProvider searches the items of a fixed set of RSS/Atom feeds, such as
// community news sites for the topic. Configured entries may be site URLs;
// their feed is discovered on first use.
type FeedProvider struct {
	Feeds []string

	parser *gofeed.Parser
	client *http.Client
}

func NewFeedProvider(feeds []string, client *http.Client, userAgent string) *FeedProvider {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	if userAgent != "" {
		parser.UserAgent = userAgent
	}
	return &FeedProvider{Feeds: feeds, parser: parser, client: client}
}

func (f *FeedProvider) Name() string { return "feed" }

func (f *FeedProvider) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if len(f.Feeds) == 0 {
		return nil, errors.New("feed provider has no feeds")
	}

	perFeed := make([][]Result, len(f.Feeds))
	errs := make([]error, len(f.Feeds))

	g := new(errgroup.Group)
	g.SetLimit(4)
	for i, feedURL := range f.Feeds {
		i, feedURL := i, feedURL
		g.Go(func() error {
			perFeed[i], errs[i] = f.fetch(ctx, feedURL)
			return nil
		})
	}
	_ = g.Wait()

	tokens := strings.Fields(strings.ToLower(query))
	var out []Result
	failed := 0
	for i, items := range perFeed {
		if errs[i] != nil {
			failed++
			continue
		}
		for _, r := range items {
			if len(tokens) > 0 && !matchesAny(r.Title+" "+r.Snippet, tokens) {
				continue
			}
			out = append(out, r)
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
	}
	if failed == len(f.Feeds) {
		return nil, fmt.Errorf("all feeds failed: %w", errors.Join(errs...))
	}
	return out, nil
}

func (f *FeedProvider) fetch(ctx context.Context, feedURL string) ([]Result, error) {
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		discovered, derr := DiscoverFeed(ctx, f.client, feedURL)
		if derr != nil {
			return nil, derr
		}
		feed, err = f.parser.ParseURLWithContext(discovered, ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}

	out := make([]Result, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" || item.Title == "" {
			continue
		}
		body := item.Description
		if body == "" {
			body = item.Content
		}
		out = append(out, Result{
			Title:   strings.TrimSpace(item.Title),
			URL:     strings.TrimSpace(item.Link),
			Snippet: plainText(body),
			Source:  f.Name(),
		})
	}
	return out, nil
}

// plainText drops markup from a feed description and shortens it to a
// snippet.
func plainText(html string) string {
	text := html
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) > maxSnippetRunes {
		text = string([]rune(text)[:maxSnippetRunes])
	}
	return text
}
