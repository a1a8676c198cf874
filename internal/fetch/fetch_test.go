package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<html><head><title>荒野亂鬥 戰鬥攻略 - 測試站</title></head>
<body>
<nav><a href="/login">登入</a> <a href="/guides">荒野亂鬥 攻略</a></nav>
<article>
<h1>荒野亂鬥 戰鬥攻略</h1>
<p>荒野亂鬥是一款由 Supercell 開發的多人對戰手機遊戲，玩家操控不同的英雄進行三對三的戰鬥。</p>
<p>在寶石爭奪模式中，隊伍需要收集並守住十顆寶石直到倒數結束，才能取得勝利。</p>
<p>戰鬥技巧包括善用草叢隱藏身形、與隊友集中火力，以及在適當時機使用超級技能。</p>
</article>
<script>var tracking = "should not appear";</script>
</body></html>`

func TestFetch_ExtractsTextAndLinks(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, articlePage)
	}))
	defer srv.Close()

	f := NewWithClient(srv.Client(), WithUserAgent("topicrank-test"))
	doc, err := f.Fetch(context.Background(), srv.URL+"/article")
	require.NoError(t, err)

	assert.Equal(t, "topicrank-test", gotUA)
	assert.Equal(t, srv.URL+"/article", doc.URL)
	assert.NotEmpty(t, doc.Title)
	assert.Contains(t, doc.Text, "寶石爭奪模式")
	assert.NotContains(t, doc.Text, "should not appear")
	require.NotNil(t, doc.Links)
	assert.Equal(t, 2, doc.Links.Find("a[href]").Length())
}

func TestFetch_BodyTextFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div>短短的內容</div><style>.x{}</style></body></html>`)
	}))
	defer srv.Close()

	f := NewWithClient(srv.Client())
	doc, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, doc.Text, "短短的內容")
	assert.False(t, strings.Contains(doc.Text, ".x{}"))
}

func TestFetch_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewWithClient(srv.Client())
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, articlePage)
	}))
	defer srv.Close()

	f := New(20 * time.Millisecond)
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}
