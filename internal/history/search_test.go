package history

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/julienpequegnot/topicrank/internal/database"
	"github.com/julienpequegnot/topicrank/internal/page"
	"github.com/julienpequegnot/topicrank/internal/pipeline"
)

func setupTestDB(t *testing.T) *database.DB {
	tmpDir := t.TempDir()
	db, err := database.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	return db
}

func seedRun(t *testing.T, repo *Repository) int64 {
	res := &pipeline.Result{
		Query:      "brawler",
		SearchTerm: "brawler Brawl Stars",
		Pages: []*page.Page{
			{URL: "https://wiki.example.com/shelly", Title: "Shelly brawler guide", Content: "Shelly is a shotgun brawler with strong close range damage", TopicScore: 90},
			{URL: "https://news.example.com/update", Title: "Balance update", Content: "The latest update changes gem grab timers", TopicScore: 40},
			{URL: "https://food.example.com/soup", Title: "Soup recipes", Content: "Tomato soup with basil", TopicScore: 0},
		},
	}
	id, err := repo.Save(res)
	if err != nil {
		t.Fatalf("failed to save run: %v", err)
	}
	return id
}

func TestSearchByQuery(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	runID := seedRun(t, repo)

	results, err := repo.Search("shotgun", 10)
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result for 'shotgun', got %d", len(results))
	}
	if results[0].RunID != runID {
		t.Errorf("expected run %d, got %d", runID, results[0].RunID)
	}
	if results[0].Query != "brawler" {
		t.Errorf("expected query 'brawler', got %q", results[0].Query)
	}
}

func TestSearchNoResults(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	seedRun(t, repo)

	results, err := repo.Search("kubernetes", 10)
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}

	if len(results) != 0 {
		t.Errorf("expected no results for 'kubernetes', got %d", len(results))
	}
}

func TestSearchWithSnippet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	seedRun(t, repo)

	results, err := repo.Search("gem", 10)
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if !strings.Contains(results[0].Snippet, "<b>") {
		t.Errorf("expected highlighted snippet, got %q", results[0].Snippet)
	}
}

func TestSearchWithScore(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	seedRun(t, repo)

	results, err := repo.SearchWithScore("brawler OR update", 10)
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].TopicScore < results[1].TopicScore {
		t.Errorf("expected higher topic score first, got %.0f then %.0f", results[0].TopicScore, results[1].TopicScore)
	}
}

func TestRebuildIndex(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	seedRun(t, repo)

	if _, err := db.Exec("DELETE FROM results_fts"); err != nil {
		t.Fatalf("failed to clear index: %v", err)
	}
	results, _ := repo.Search("tomato", 10)
	if len(results) != 0 {
		t.Fatalf("expected empty index, got %d results", len(results))
	}

	if err := repo.RebuildIndex(); err != nil {
		t.Fatalf("failed to rebuild index: %v", err)
	}
	results, err := repo.Search("tomato", 10)
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result after rebuild, got %d", len(results))
	}
}
