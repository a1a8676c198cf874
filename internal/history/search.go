package history

import (
	"time"
)

type SearchResult struct {
	ResultID   int64
	RunID      int64
	Query      string
	URL        string
	Title      string
	Snippet    string
	Rank       float64
	TopicScore float64
	CreatedAt  time.Time
}

// Search runs a full-text query over every stored result, best bm25 match
// first.
func (r *Repository) Search(query string, limit int) ([]SearchResult, error) {
	rows, err := r.db.Query(`
		SELECT
			res.id,
			res.run_id,
			runs.query,
			res.url,
			COALESCE(res.title, ''),
			snippet(results_fts, -1, '<b>', '</b>', '...', 32) as snippet,
			bm25(results_fts) as rank,
			COALESCE(res.topic_score, 0),
			runs.created_at
		FROM results_fts
		JOIN results res ON results_fts.rowid = res.id
		JOIN runs ON res.run_id = runs.id
		WHERE results_fts MATCH ?
		ORDER BY bm25(results_fts)
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var sr SearchResult
		if err := rows.Scan(&sr.ResultID, &sr.RunID, &sr.Query, &sr.URL, &sr.Title, &sr.Snippet, &sr.Rank, &sr.TopicScore, &sr.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}

// SearchWithScore blends text relevance with the stored topic score.
func (r *Repository) SearchWithScore(query string, limit int) ([]SearchResult, error) {
	rows, err := r.db.Query(`
		SELECT
			res.id,
			res.run_id,
			runs.query,
			res.url,
			COALESCE(res.title, ''),
			snippet(results_fts, -1, '<b>', '</b>', '...', 32) as snippet,
			bm25(results_fts) as rank,
			COALESCE(res.topic_score, 0),
			runs.created_at
		FROM results_fts
		JOIN results res ON results_fts.rowid = res.id
		JOIN runs ON res.run_id = runs.id
		WHERE results_fts MATCH ?
		ORDER BY (COALESCE(res.topic_score, 0) * 0.3 - bm25(results_fts) * 0.7) DESC
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var sr SearchResult
		if err := rows.Scan(&sr.ResultID, &sr.RunID, &sr.Query, &sr.URL, &sr.Title, &sr.Snippet, &sr.Rank, &sr.TopicScore, &sr.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}

func (r *Repository) RebuildIndex() error {
	_, err := r.db.Exec("DELETE FROM results_fts")
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		INSERT INTO results_fts(rowid, title, content)
		SELECT id, COALESCE(title, ''), COALESCE(content, '') FROM results
	`)
	return err
}
