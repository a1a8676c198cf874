package scorer

import (
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/julienpequegnot/topicrank/internal/config"
	"github.com/julienpequegnot/topicrank/internal/page"
)

// Link scores. A link matching both signals must outscore either alone.
const (
	LinkThemeScore = 10.0
	LinkQueryScore = 15.0
	LinkBothScore  = 30.0
)

// SubpageMiner discovers same-domain child links of a page and scores them
// by their visible text.
type SubpageMiner struct {
	themeKeywords []string
	denylist      []string
	max           int
}

func NewSubpageMiner(vocab config.Vocabulary, max int) *SubpageMiner {
	if max <= 0 {
		max = page.DefaultMaxSubPages
	}
	return &SubpageMiner{
		themeKeywords: lowerAll(vocab.ThemeKeywords),
		denylist:      lowerAll(vocab.LinkDenylist),
		max:           max,
	}
}

type linkCandidate struct {
	url   string
	text  string
	score float64
	why   string
}

// Mine appends up to max scored sub-pages to parent and returns the sum of
// their scores. It does not follow the sub-pages' own links.
func (m *SubpageMiner) Mine(parent *page.Page, doc *goquery.Document, query string) float64 {
	if parent == nil || doc == nil {
		return 0
	}
	base, _ := url.Parse(parent.URL)
	parentDomain := domainOf(parent.URL)
	q := strings.ToLower(strings.TrimSpace(query))

	seen := map[string]bool{resolve(base, parent.URL): true}
	var candidates []linkCandidate

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		abs := resolve(base, strings.TrimSpace(href))
		if abs == "" || seen[abs] {
			return
		}
		text := strings.Join(strings.Fields(s.Text()), " ")
		if utf8.RuneCountInString(text) < 2 {
			return
		}
		if parentDomain == "" || domainOf(abs) != parentDomain {
			return
		}
		lower := strings.ToLower(text)
		if containsAny(lower, m.denylist) {
			return
		}
		seen[abs] = true

		theme := containsAny(lower, m.themeKeywords)
		hasQuery := q != "" && strings.Contains(lower, q)
		c := linkCandidate{url: abs, text: text}
		switch {
		case theme && hasQuery:
			c.score, c.why = LinkBothScore, "theme+query"
		case hasQuery:
			c.score, c.why = LinkQueryScore, "query"
		case theme:
			c.score, c.why = LinkThemeScore, "theme"
		default:
			return
		}
		candidates = append(candidates, c)
	})

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > m.max {
		candidates = candidates[:m.max]
	}

	var total float64
	for _, c := range candidates {
		child := page.New(c.url, c.text)
		child.TopicScore = c.score
		child.ScoreDetails = "link " + c.why
		parent.AddSubPage(child, m.max)
		total += c.score
	}
	return total
}

func resolve(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	var u *url.URL
	var err error
	if base != nil {
		u, err = base.Parse(href)
	} else {
		u, err = url.Parse(href)
	}
	if err != nil {
		return ""
	}
	u.Fragment = ""
	return u.String()
}

// domainOf returns the text between "://" and the next "/".
func domainOf(rawURL string) string {
	i := strings.Index(rawURL, "://")
	if i < 0 {
		return ""
	}
	rest := rawURL[i+3:]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		rest = rest[:j]
	}
	return strings.ToLower(rest)
}
