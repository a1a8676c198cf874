package suggest

import (
	"fmt"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julienpequegnot/topicrank/internal/config"
	"github.com/julienpequegnot/topicrank/internal/page"
)

func newEngine() *Engine {
	return New(config.DefaultVocabulary(), config.DefaultScoring())
}

func pagesWithTitles(titles ...string) []*page.Page {
	pages := make([]*page.Page, len(titles))
	for i, t := range titles {
		pages[i] = page.New(fmt.Sprintf("https://example.com/%d", i), t)
	}
	return pages
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"荒野亂鬥 戰鬥 技巧 - 巴哈姆特", "荒野亂鬥 戰鬥 技巧"},
		{"【攻略】荒野亂鬥 戰鬥 技巧大全", "荒野亂鬥 戰鬥 技巧大全"},
		{"戰鬥模式介紹｜Brawl Stars 中文網", "戰鬥模式介紹"},
		{"Shelly guide (2024): best build!", "Shelly guide"},
		{"Ｂｒａｗｌ　Ｓｔａｒｓ", "Brawl Stars"},
		{"  many   spaces  ", "many spaces"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanTitle(tt.in), tt.in)
	}
}

func TestFuzzyFind(t *testing.T) {
	assert.Equal(t, 18, FuzzyFind("brawl stars shelli build", "shelly", 0.25))
	assert.Equal(t, -1, FuzzyFind("brawl stars colt build", "shelly", 0.25))
	assert.Equal(t, -1, FuzzyFind("ab", "abc", 0.25))
	assert.Equal(t, -1, FuzzyFind("anything", "", 0.25))
	// A single-rune term still needs its rune to match.
	assert.Equal(t, -1, FuzzyFind("xyz", "q", 0.25))
	assert.Equal(t, 6, FuzzyFind("SHELLY build", "shelly", 0.25))
}

func TestSuggest_MinesFollowingText(t *testing.T) {
	e := newEngine()
	pages := pagesWithTitles(
		"荒野亂鬥 戰鬥 技巧 - 巴哈姆特",
		"【攻略】荒野亂鬥 戰鬥 技巧大全",
		"戰鬥模式介紹 | Brawl Stars",
	)

	got := e.Suggest(pages, "戰鬥")

	require.Len(t, got, 5)
	assert.Equal(t, "戰鬥 技巧", got[0])
	assert.Equal(t, "戰鬥 模式介紹", got[1])
	// Remaining slots come from the native fallback list, skipping the
	// duplicate "技巧".
	assert.Equal(t, []string{"戰鬥 攻略", "戰鬥 角色排名", "戰鬥 更新資訊"}, got[2:])
}

func TestSuggest_TrimsLeadingStopWords(t *testing.T) {
	e := newEngine()
	pages := pagesWithTitles("荒野亂鬥 戰鬥的技巧")

	got := e.Suggest(pages, "戰鬥")

	require.NotEmpty(t, got)
	assert.Equal(t, "戰鬥 技巧", got[0])
}

func TestSuggest_SkipsNumericAndQueryCandidates(t *testing.T) {
	e := newEngine()
	pages := pagesWithTitles("戰鬥 2024", "戰鬥 戰鬥")

	got := e.Suggest(pages, "戰鬥")

	for _, s := range got {
		assert.NotContains(t, s, "2024")
		assert.NotEqual(t, "戰鬥 戰鬥", s)
	}
	assert.Len(t, got, 5)
}

func TestSuggest_FuzzyMatch(t *testing.T) {
	e := newEngine()
	pages := pagesWithTitles("Brawl Stars Shelli Build Guide")

	got := e.Suggest(pages, "shelly")

	require.NotEmpty(t, got)
	assert.Equal(t, "shelly build", got[0])
}

func TestSuggest_MultiTokenQueryUsesFirstToken(t *testing.T) {
	e := newEngine()
	pages := pagesWithTitles("shelly supercharge guide")

	got := e.Suggest(pages, "shelly  tips")

	require.NotEmpty(t, got)
	assert.Equal(t, "shelly tips supercharge", got[0])
}

func TestSuggest_LatinFallback(t *testing.T) {
	e := newEngine()

	got := e.Suggest(nil, "combat")

	assert.Equal(t, []string{
		"combat guide",
		"combat tips",
		"combat tier list",
		"combat meta",
		"combat best brawlers",
	}, got)
}

func TestSuggest_EmptyQueryFallsBack(t *testing.T) {
	e := newEngine()

	got := e.Suggest(pagesWithTitles("荒野亂鬥 攻略"), "   ")

	assert.Len(t, got, 5)
	assert.Equal(t, "guide", got[0])
}

func TestSuggest_OnlyTopPagesAreMined(t *testing.T) {
	e := newEngine()
	titles := []string{"x", "x", "x", "x", "x", "戰鬥 寶石爭奪"}

	got := e.Suggest(pagesWithTitles(titles...), "戰鬥")

	assert.NotContains(t, got, "戰鬥 寶石爭奪")
	assert.Equal(t, "戰鬥 攻略", got[0])
}

func TestSuggest_BoundedAndDiverse(t *testing.T) {
	scoring := config.DefaultScoring()
	scoring.SuggestionPages = 50
	e := New(config.DefaultVocabulary(), scoring)

	var titles []string
	words := []string{"寶石爭奪", "荒野決鬥", "亂鬥足球", "極限淘汰", "金庫攻防", "機甲攻堅", "單人競技", "雙人競技",
		"搶星大作", "賞金獵人", "熱區爭奪", "超級技能", "能力之星", "武裝配件"}
	for _, w := range words {
		titles = append(titles, "戰鬥 "+w)
	}

	got := e.Suggest(pagesWithTitles(titles...), "戰鬥")

	require.LessOrEqual(t, len(got), 10)
	used := make(map[rune]string)
	for _, s := range got {
		cand := strings.TrimPrefix(s, "戰鬥 ")
		for _, r := range cand {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				continue
			}
			prev, dup := used[r]
			assert.False(t, dup, "%q shares %q with %q", cand, string(r), prev)
			used[r] = cand
		}
	}
}
