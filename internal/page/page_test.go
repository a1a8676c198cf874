package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddSubPageIsCapacityBounded(t *testing.T) {
	parent := New("https://example.com", "parent")
	for i := 0; i < 5; i++ {
		parent.AddSubPage(New("https://example.com/child", "child"), 3)
	}
	assert.Len(t, parent.SubPages, 3)
}

func TestAddSubPageDropsGrandchildren(t *testing.T) {
	parent := New("https://example.com", "parent")
	child := New("https://example.com/a", "a")
	child.SubPages = []*Page{New("https://example.com/a/b", "b")}

	assert.True(t, parent.AddSubPage(child, 0))
	assert.Empty(t, parent.SubPages[0].SubPages)
}

func TestSortByScoreIsStable(t *testing.T) {
	pages := []*Page{
		{URL: "a", TopicScore: 10},
		{URL: "b", TopicScore: 50},
		{URL: "c", TopicScore: 10},
		{URL: "d", TopicScore: -50},
	}
	SortByScore(pages)

	var urls []string
	for _, p := range pages {
		urls = append(urls, p.URL)
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, urls)
}

func TestTop(t *testing.T) {
	pages := []*Page{{URL: "a"}, {URL: "b"}, {URL: "c"}}
	assert.Len(t, Top(pages, 2), 2)
	assert.Len(t, Top(pages, 5), 3)
	assert.Len(t, Top(pages, -1), 3)
}
