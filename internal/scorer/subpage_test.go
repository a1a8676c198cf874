package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julienpequegnot/topicrank/internal/page"
)

func TestMine_ScoresAndCaps(t *testing.T) {
	m := NewSubpageMiner(testVocabulary(), 3)
	parent := page.New("https://example.com/home", "home")

	total := m.Mine(parent, mustDoc(t, linkPage), "戰鬥")

	require.Len(t, parent.SubPages, 3)
	assert.Equal(t, LinkBothScore+LinkQueryScore+LinkThemeScore, total)

	assert.Equal(t, "https://example.com/battle-guide", parent.SubPages[0].URL)
	assert.Equal(t, LinkBothScore, parent.SubPages[0].TopicScore)
	assert.Equal(t, "link theme+query", parent.SubPages[0].ScoreDetails)
	assert.Equal(t, "https://example.com/battle", parent.SubPages[1].URL)
	assert.Equal(t, LinkQueryScore, parent.SubPages[1].TopicScore)
	// Ties keep document order.
	assert.Equal(t, "https://example.com/brawlers", parent.SubPages[2].URL)

	for _, sp := range parent.SubPages {
		assert.Empty(t, sp.SubPages)
	}
}

func TestMine_SkipsIneligibleLinks(t *testing.T) {
	html := `<html><body>
<a href="https://other.example.org/x">荒野亂鬥 戰鬥</a>
<a href="/login">Login 荒野亂鬥</a>
<a href="/a">荒</a>
<a href="/plain">about us</a>
<a href="#top">荒野亂鬥 top</a>
<a href="/ok#section">荒野亂鬥 ok</a>
<a href="/ok">荒野亂鬥 ok again</a>
</body></html>`
	m := NewSubpageMiner(testVocabulary(), 3)
	parent := page.New("https://example.com/home", "home")

	total := m.Mine(parent, mustDoc(t, html), "戰鬥")

	// "#top" points back at the parent itself.
	require.Len(t, parent.SubPages, 1)
	assert.Equal(t, "https://example.com/ok", parent.SubPages[0].URL)
	assert.Equal(t, LinkThemeScore, total)
}

func TestMine_NilInputs(t *testing.T) {
	m := NewSubpageMiner(testVocabulary(), 0)
	assert.Zero(t, m.Mine(nil, mustDoc(t, linkPage), "x"))
	assert.Zero(t, m.Mine(page.New("https://example.com", "x"), nil, "x"))
}

func TestMine_RelativeURLWithoutParentDomain(t *testing.T) {
	m := NewSubpageMiner(testVocabulary(), 3)
	parent := page.New("not a url", "x")

	assert.Zero(t, m.Mine(parent, mustDoc(t, linkPage), "戰鬥"))
	assert.Empty(t, parent.SubPages)
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "example.com", domainOf("https://Example.com/a/b"))
	assert.Equal(t, "example.com:8080", domainOf("http://example.com:8080"))
	assert.Equal(t, "", domainOf("example.com/a"))
}
