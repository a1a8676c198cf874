package translate

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/julienpequegnot/topicrank/internal/metrics"
	"github.com/julienpequegnot/topicrank/internal/script"
)

const (
	DefaultTimeout     = 1500 * time.Millisecond
	DefaultConcurrency = 4
)

// DefaultLanguages is the broad-coverage target list unioned with the
// languages implied by a keyword's script.
var DefaultLanguages = []string{"en", "zh-TW", "ja", "ko"}

// Cache memoizes cross-lingual variants of keywords for the lifetime of the
// process. Entries are never refreshed or evicted.
type Cache struct {
	translator  Translator
	languages   []string
	timeout     time.Duration
	concurrency int
	logger      zerolog.Logger
	metrics     *metrics.Metrics

	mu      sync.RWMutex
	entries map[string][]string
	group   singleflight.Group
}

type Option func(*Cache)

func WithLanguages(langs []string) Option {
	return func(c *Cache) {
		if len(langs) > 0 {
			c.languages = langs
		}
	}
}

// WithTimeout bounds each translator call.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithConcurrency(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// NewCache builds a cache over t. A nil translator yields caches whose
// variant sets only ever contain the keyword itself.
func NewCache(t Translator, opts ...Option) *Cache {
	c := &Cache{
		translator:  t,
		languages:   DefaultLanguages,
		timeout:     DefaultTimeout,
		concurrency: DefaultConcurrency,
		logger:      zerolog.Nop(),
		entries:     make(map[string][]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// VariantsOf returns the lowercased keyword followed by its distinct
// lowercased translations. The first call for a keyword queries the
// translator once per target language; later calls are served from memory.
func (c *Cache) VariantsOf(ctx context.Context, keyword string) []string {
	key := strings.ToLower(strings.TrimSpace(keyword))
	if key == "" {
		return nil
	}

	c.mu.RLock()
	variants, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.metrics.ObserveCache(true)
		return append([]string(nil), variants...)
	}
	c.metrics.ObserveCache(false)

	// Concurrent first requests for the same keyword share one lookup. The
	// lookup outlives any single caller's cancellation so that the memoized
	// entry is not poisoned by it.
	v, _, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		existing, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return existing, nil
		}
		found := c.lookup(context.WithoutCancel(ctx), key)
		c.mu.Lock()
		c.entries[key] = found
		c.mu.Unlock()
		return found, nil
	})
	return append([]string(nil), v.([]string)...)
}

// ContainsAnyVariant reports whether text contains keyword or any of its
// cached variants, case-insensitively.
func (c *Cache) ContainsAnyVariant(ctx context.Context, text, keyword string) bool {
	if strings.TrimSpace(keyword) == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, v := range c.VariantsOf(ctx, keyword) {
		if strings.Contains(lower, v) {
			return true
		}
	}
	return false
}

// Len reports the number of memoized keywords.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Targets lists the languages a keyword is translated into: the ones implied
// by its script first, then the configured broad-coverage list.
func (c *Cache) Targets(keyword string) []string {
	seen := make(map[string]bool)
	var out []string
	candidates := append(append([]string(nil), script.Languages(keyword)...), c.languages...)
	for _, lang := range candidates {
		if lang == "" || seen[lang] {
			continue
		}
		seen[lang] = true
		out = append(out, lang)
	}
	return out
}

func (c *Cache) lookup(ctx context.Context, key string) []string {
	if c.translator == nil {
		return []string{key}
	}

	targets := c.Targets(key)
	results := make([]string, len(targets))

	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)
	for i, lang := range targets {
		i, lang := i, lang
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			out, err := c.translator.Translate(callCtx, key, lang)
			if err != nil {
				c.metrics.ObserveTranslation("error")
				c.logger.Debug().Err(err).Str("keyword", key).Str("lang", lang).Msg("translation failed")
				return nil
			}
			out = strings.ToLower(strings.TrimSpace(out))
			if out == "" {
				c.metrics.ObserveTranslation("empty")
				return nil
			}
			c.metrics.ObserveTranslation("ok")
			results[i] = out
			return nil
		})
	}
	_ = g.Wait()

	set := make(map[string]bool)
	var extra []string
	for _, r := range results {
		if r == "" || r == key || set[r] {
			continue
		}
		set[r] = true
		extra = append(extra, r)
	}
	sort.Strings(extra)

	c.logger.Debug().Str("keyword", key).Strs("variants", extra).Msg("keyword variants cached")
	return append([]string{key}, extra...)
}
