package history

import (
	"errors"
	"testing"
	"time"

	"github.com/julienpequegnot/topicrank/internal/page"
	"github.com/julienpequegnot/topicrank/internal/pipeline"
	"github.com/julienpequegnot/topicrank/internal/summary"
)

func sampleResult() *pipeline.Result {
	top := &page.Page{URL: "https://zh.wikipedia.org/wiki/x", Title: "荒野亂鬥 戰鬥", Content: "荒野亂鬥 戰鬥技巧", EngineRank: 2, TopicScore: 120, ScoreDetails: "theme=100"}
	top.SubPages = []*page.Page{
		{URL: "https://zh.wikipedia.org/battle-guide", Title: "戰鬥 指南", TopicScore: 30},
		{URL: "https://zh.wikipedia.org/battle", Title: "戰鬥", TopicScore: 15},
	}
	return &pipeline.Result{
		Query:       "戰鬥",
		SearchTerm:  "戰鬥 荒野亂鬥",
		Pages:       []*page.Page{top, {URL: "https://example.com/1", Title: "other", EngineRank: 1}},
		Suggestions: []string{"戰鬥 技巧", "戰鬥 攻略"},
		Summary:     summary.Summary{Query: "戰鬥", Body: "荒野亂鬥是一款多人戰鬥遊戲。", Sufficient: true},
		Elapsed:     1500 * time.Millisecond,
	}
}

func TestSaveAndGet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	id, err := repo.Save(sampleResult())
	if err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	run, err := repo.Get(id)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}

	if run.Query != "戰鬥" || run.SearchTerm != "戰鬥 荒野亂鬥" {
		t.Errorf("unexpected query fields: %q / %q", run.Query, run.SearchTerm)
	}
	if !run.Sufficient || run.Summary != "荒野亂鬥是一款多人戰鬥遊戲。" {
		t.Errorf("unexpected summary: %q sufficient=%v", run.Summary, run.Sufficient)
	}
	if run.Elapsed != 1500*time.Millisecond {
		t.Errorf("expected 1.5s elapsed, got %v", run.Elapsed)
	}
	if len(run.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(run.Pages))
	}
	top := run.Pages[0]
	if top.TopicScore != 120 || top.EngineRank != 2 || top.ScoreDetails != "theme=100" {
		t.Errorf("unexpected top page: %+v", top)
	}
	if len(top.SubPages) != 2 {
		t.Fatalf("expected 2 sub-pages, got %d", len(top.SubPages))
	}
	if top.SubPages[0].URL != "https://zh.wikipedia.org/battle-guide" {
		t.Errorf("expected sub-page order preserved, got %s", top.SubPages[0].URL)
	}
	if len(run.Pages[1].SubPages) != 0 {
		t.Errorf("expected no sub-pages on second page")
	}
	if len(run.Suggestions) != 2 || run.Suggestions[0] != "戰鬥 技巧" {
		t.Errorf("unexpected suggestions: %v", run.Suggestions)
	}
}

func TestGetNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	_, err := repo.Get(42)
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first, _ := repo.SaveAt(sampleResult(), base)
	second, _ := repo.SaveAt(&pipeline.Result{Query: "寶石", SearchTerm: "寶石"}, base.Add(time.Hour))

	runs, err := repo.List(10, 0)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second || runs[1].ID != first {
		t.Errorf("expected newest first, got %d then %d", runs[0].ID, runs[1].ID)
	}
	if runs[1].ResultCount != 2 {
		t.Errorf("expected sub-pages excluded from count, got %d", runs[1].ResultCount)
	}

	runs, _ = repo.List(1, 1)
	if len(runs) != 1 || runs[0].ID != first {
		t.Errorf("expected offset to skip newest run, got %+v", runs)
	}
}

func TestSuggestionsSince(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if _, err := repo.SaveAt(sampleResult(), base.AddDate(0, 0, -10)); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	recent := sampleResult()
	recent.Suggestions = []string{"戰鬥 模式介紹"}
	if _, err := repo.SaveAt(recent, base); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	got, err := repo.Suggestions(base.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("failed to load suggestions: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 recent suggestion, got %d", len(got))
	}
	if got[0].Keyword != "模式介紹" {
		t.Errorf("expected keyword without query prefix, got %q", got[0].Keyword)
	}

	all, _ := repo.Suggestions(time.Time{})
	if len(all) != 3 {
		t.Errorf("expected 3 suggestions overall, got %d", len(all))
	}
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	id, _ := repo.Save(sampleResult())

	if err := repo.Delete(id); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, err := repo.Get(id); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected run gone, got %v", err)
	}

	var n int
	db.QueryRow("SELECT COUNT(*) FROM results").Scan(&n)
	if n != 0 {
		t.Errorf("expected results removed, got %d", n)
	}

	if err := repo.Delete(id); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound on second delete, got %v", err)
	}
}
