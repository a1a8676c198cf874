package page

import (
	"sort"

	"github.com/PuerkitoBio/goquery"
)

// DefaultMaxSubPages bounds Page.SubPages when no explicit cap is given.
const DefaultMaxSubPages = 3

// Page is one candidate search result. Crawler collaborators fill URL, Title,
// Content, EngineRank and optionally Links; the scorer owns TopicScore,
// ScoreDetails and SubPages.
type Page struct {
	URL          string  `json:"url"`
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	EngineRank   int     `json:"engineRank"`
	TopicScore   float64 `json:"topicScore"`
	ScoreDetails string  `json:"scoreDetails"`
	SubPages     []*Page `json:"subPages,omitempty"`

	// Links is the parsed document used for sub-page mining, if the fetch
	// succeeded.
	Links *goquery.Document `json:"-"`
}

func New(url, title string) *Page {
	return &Page{URL: url, Title: title}
}

// AddSubPage appends child unless the page already holds max children.
// Children never get children of their own.
func (p *Page) AddSubPage(child *Page, max int) bool {
	if max <= 0 {
		max = DefaultMaxSubPages
	}
	if len(p.SubPages) >= max {
		return false
	}
	child.SubPages = nil
	child.Links = nil
	p.SubPages = append(p.SubPages, child)
	return true
}

func (p *Page) ResetSubPages() {
	p.SubPages = nil
}

// SortByScore orders pages by descending TopicScore, keeping engine order
// for ties.
func SortByScore(pages []*Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].TopicScore > pages[j].TopicScore
	})
}

// Top returns at most n leading pages of an already-sorted list.
func Top(pages []*Page, n int) []*Page {
	if n < 0 || len(pages) <= n {
		return pages
	}
	return pages[:n]
}
