package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julienpequegnot/topicrank/internal/config"
	"github.com/julienpequegnot/topicrank/internal/fetch"
	"github.com/julienpequegnot/topicrank/internal/metrics"
	"github.com/julienpequegnot/topicrank/internal/page"
	"github.com/julienpequegnot/topicrank/internal/search"
)

type fakeProvider struct {
	results []search.Result
	err     error
	gotTerm string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(_ context.Context, query string, limit int) ([]search.Result, error) {
	f.gotTerm = query
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > limit {
		return f.results[:limit], nil
	}
	return f.results, nil
}

type fakeFetcher struct {
	mu    sync.Mutex
	docs  map[string]*fetch.Document
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*fetch.Document, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if d, ok := f.docs[url]; ok {
		return d, nil
	}
	return nil, errors.New("connection refused")
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Search.Limit = 10
	return cfg
}

func TestRun_EmptyQuery(t *testing.T) {
	p := New(testConfig(), &fakeProvider{}, nil, nil)

	_, err := p.Run(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestRun_NoProvider(t *testing.T) {
	p := New(testConfig(), nil, nil, nil)

	_, err := p.Run(context.Background(), "戰鬥")
	assert.ErrorIs(t, err, search.ErrNoProvider)
}

func TestRun_ProviderError(t *testing.T) {
	boom := errors.New("quota exceeded")
	p := New(testConfig(), &fakeProvider{err: boom}, nil, nil)

	_, err := p.Run(context.Background(), "戰鬥")
	assert.ErrorIs(t, err, boom)
}

func TestRun_ExpandsSearchTermButScoresOriginalQuery(t *testing.T) {
	prov := &fakeProvider{}
	p := New(testConfig(), prov, nil, nil)

	res, err := p.Run(context.Background(), "戰鬥")
	require.NoError(t, err)

	assert.Equal(t, "戰鬥 荒野亂鬥", prov.gotTerm)
	assert.Equal(t, "戰鬥 荒野亂鬥", res.SearchTerm)
	assert.Equal(t, "戰鬥", res.Query)
	assert.Len(t, res.Suggestions, 5)
	assert.False(t, res.Summary.Sufficient)
}

func TestRun_NoExpansion(t *testing.T) {
	cfg := testConfig()
	cfg.Search.Expand = false
	prov := &fakeProvider{}
	p := New(cfg, prov, nil, nil)

	_, err := p.Run(context.Background(), "戰鬥")
	require.NoError(t, err)
	assert.Equal(t, "戰鬥", prov.gotTerm)
}

func TestRun_FetchesScoresAndSorts(t *testing.T) {
	links, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<a href="/battle">荒野亂鬥 戰鬥 技巧</a>`))
	require.NoError(t, err)

	prov := &fakeProvider{results: []search.Result{
		{Title: "Cooking tips", URL: "https://food.example.com/1", Snippet: "recipes"},
		{Title: "荒野亂鬥 戰鬥 攻略", URL: "https://zh.wikipedia.org/wiki/x", Snippet: "snippet"},
		{Title: "荒野亂鬥 新聞", URL: "https://news.example.com/3", Snippet: "荒野亂鬥的戰鬥更新"},
	}}
	fetcher := &fakeFetcher{docs: map[string]*fetch.Document{
		"https://zh.wikipedia.org/wiki/x": {
			Title: "ignored",
			Text:  "荒野亂鬥是一款多人戰鬥遊戲。戰鬥技巧：善用掩體與隊友配合。",
			Links: links,
		},
	}}
	m := metrics.New()
	p := New(testConfig(), prov, fetcher, nil, WithMetrics(m))

	res, err := p.Run(context.Background(), "戰鬥")
	require.NoError(t, err)

	assert.Equal(t, 3, fetcher.calls)
	require.Len(t, res.Pages, 3)

	top := res.Pages[0]
	assert.Equal(t, "https://zh.wikipedia.org/wiki/x", top.URL)
	assert.Equal(t, 2, top.EngineRank)
	assert.Equal(t, "荒野亂鬥 戰鬥 攻略", top.Title)
	assert.Contains(t, top.Content, "多人戰鬥遊戲")
	assert.Len(t, top.SubPages, 1)

	// Fetch failed: the snippet stands in for the content.
	assert.Equal(t, "荒野亂鬥的戰鬥更新", res.Pages[1].Content)
	assert.Equal(t, "https://food.example.com/1", res.Pages[2].URL)

	for i := 1; i < len(res.Pages); i++ {
		assert.GreaterOrEqual(t, res.Pages[i-1].TopicScore, res.Pages[i].TopicScore)
	}
	assert.True(t, res.Summary.Sufficient)
	assert.Len(t, res.Summary.Citations, 3)
	assert.LessOrEqual(t, len(res.Suggestions), 10)
	assert.True(t, res.Elapsed > 0)
}

func TestRun_RespectsLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Search.Limit = 2
	prov := &fakeProvider{results: []search.Result{
		{Title: "a", URL: "https://example.com/a"},
		{Title: "b", URL: "https://example.com/b"},
		{Title: "c", URL: "https://example.com/c"},
	}}
	p := New(cfg, prov, nil, nil)

	res, err := p.Run(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, res.Pages, 2)
}

func TestRank_Offline(t *testing.T) {
	p := New(testConfig(), nil, nil, nil)
	pages := []*page.Page{
		{URL: "https://example.com/1", Title: "unrelated", Content: "nothing"},
		nil,
		{URL: "https://example.com/2", Title: "荒野亂鬥 戰鬥", Content: "荒野亂鬥 戰鬥技巧是善用草叢與掩體"},
	}

	res := p.Rank(context.Background(), " 戰鬥 ", pages)

	require.Len(t, res.Pages, 2)
	assert.Equal(t, "https://example.com/2", res.Pages[0].URL)
	assert.Equal(t, "戰鬥", res.Query)
	assert.Equal(t, "戰鬥", res.SearchTerm)
	assert.NotEmpty(t, res.Pages[0].ScoreDetails)
}
