package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var feedPatterns = []string{
	"/feed",
	"/feed.xml",
	"/atom.xml",
	"/rss.xml",
	"/rss",
	"/index.xml",
	"/feed/atom",
	"/feed/rss",
}

const feedLinkSelector = `link[type="application/rss+xml"], link[type="application/atom+xml"]`

// DiscoverFeed finds the feed URL of a site, first from its alternate links
// and then by probing common feed paths.
func DiscoverFeed(ctx context.Context, client *http.Client, siteURL string) (string, error) {
	base, err := url.Parse(siteURL)
	if err != nil {
		return "", fmt.Errorf("invalid site url %s: %w", siteURL, err)
	}

	if req, err := http.NewRequestWithContext(ctx, http.MethodGet, siteURL, nil); err == nil {
		if resp, err := client.Do(req); err == nil {
			doc, derr := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, 100000))
			resp.Body.Close()
			if derr == nil {
				if href, ok := doc.Find(feedLinkSelector).First().Attr("href"); ok {
					if u, err := base.Parse(strings.TrimSpace(href)); err == nil {
						return u.String(), nil
					}
				}
			}
		}
	}

	root := strings.TrimSuffix(base.Scheme+"://"+base.Host+base.Path, "/")
	for _, pattern := range feedPatterns {
		feedURL := root + pattern
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, feedURL, nil)
		if err != nil {
			continue
		}
		resp, err := client.Do(req)
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return feedURL, nil
		}
	}

	return "", fmt.Errorf("could not discover feed for %s", siteURL)
}
