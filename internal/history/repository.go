// Package history stores finished query runs so they can be listed,
// re-read and searched later.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julienpequegnot/topicrank/internal/database"
	"github.com/julienpequegnot/topicrank/internal/page"
	"github.com/julienpequegnot/topicrank/internal/pipeline"
)

var ErrRunNotFound = errors.New("run not found")

type Run struct {
	ID          int64
	Query       string
	SearchTerm  string
	Summary     string
	Sufficient  bool
	Elapsed     time.Duration
	CreatedAt   time.Time
	ResultCount int

	// Filled by Get only.
	Pages       []*page.Page
	Suggestions []string
}

// Suggestion is one stored suggestion with the keyword fragment that was
// appended to the query.
type Suggestion struct {
	RunID     int64
	Text      string
	Keyword   string
	CreatedAt time.Time
}

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Save writes a run with its pages, sub-pages and suggestions in one
// transaction and returns the run ID.
func (r *Repository) Save(res *pipeline.Result) (int64, error) {
	return r.SaveAt(res, time.Now())
}

func (r *Repository) SaveAt(res *pipeline.Result, at time.Time) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO runs (query, search_term, summary, sufficient, elapsed_ms, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		res.Query, res.SearchTerm, res.Summary.Body, res.Summary.Sufficient, res.Elapsed.Milliseconds(), at.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, p := range res.Pages {
		parentID, err := insertResult(tx, runID, nil, i+1, p)
		if err != nil {
			return 0, err
		}
		for j, sub := range p.SubPages {
			if _, err := insertResult(tx, runID, &parentID, j+1, sub); err != nil {
				return 0, err
			}
		}
	}

	for i, s := range res.Suggestions {
		keyword := strings.TrimSpace(strings.TrimPrefix(s, res.Query))
		if _, err := tx.Exec(
			`INSERT INTO suggestions (run_id, position, text, keyword) VALUES (?, ?, ?, ?)`,
			runID, i+1, s, keyword,
		); err != nil {
			return 0, fmt.Errorf("failed to insert suggestion: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

func insertResult(tx *sql.Tx, runID int64, parentID *int64, position int, p *page.Page) (int64, error) {
	result, err := tx.Exec(`
		INSERT INTO results (run_id, parent_id, position, url, title, content, engine_rank, topic_score, score_details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, parentID, position, p.URL, p.Title, p.Content, p.EngineRank, p.TopicScore, p.ScoreDetails)
	if err != nil {
		return 0, fmt.Errorf("failed to insert result: %w", err)
	}
	return result.LastInsertId()
}

func (r *Repository) List(limit, offset int) ([]Run, error) {
	rows, err := r.db.Query(`
		SELECT r.id, r.query, r.search_term, COALESCE(r.summary, ''), r.sufficient,
		       COALESCE(r.elapsed_ms, 0), r.created_at,
		       (SELECT COUNT(*) FROM results res WHERE res.run_id = r.id AND res.parent_id IS NULL)
		FROM runs r
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var elapsedMS int64
		if err := rows.Scan(&run.ID, &run.Query, &run.SearchTerm, &run.Summary, &run.Sufficient,
			&elapsedMS, &run.CreatedAt, &run.ResultCount); err != nil {
			return nil, err
		}
		run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get loads a run with its ranked pages, their sub-pages and its
// suggestions.
func (r *Repository) Get(id int64) (*Run, error) {
	var run Run
	var elapsedMS int64
	err := r.db.QueryRow(`
		SELECT id, query, search_term, COALESCE(summary, ''), sufficient, COALESCE(elapsed_ms, 0), created_at
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.Query, &run.SearchTerm, &run.Summary, &run.Sufficient, &elapsedMS, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, err
	}
	run.Elapsed = time.Duration(elapsedMS) * time.Millisecond

	if run.Pages, err = r.pages(id); err != nil {
		return nil, err
	}
	run.ResultCount = len(run.Pages)

	rows, err := r.db.Query(`SELECT text FROM suggestions WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		run.Suggestions = append(run.Suggestions, s)
	}
	return &run, rows.Err()
}

func (r *Repository) pages(runID int64) ([]*page.Page, error) {
	rows, err := r.db.Query(`
		SELECT id, parent_id, url, COALESCE(title, ''), COALESCE(content, ''),
		       COALESCE(engine_rank, 0), COALESCE(topic_score, 0), COALESCE(score_details, '')
		FROM results
		WHERE run_id = ?
		ORDER BY parent_id IS NOT NULL, parent_id, position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var top []*page.Page
	byID := make(map[int64]*page.Page)
	for rows.Next() {
		var id int64
		var parentID sql.NullInt64
		p := &page.Page{}
		if err := rows.Scan(&id, &parentID, &p.URL, &p.Title, &p.Content, &p.EngineRank, &p.TopicScore, &p.ScoreDetails); err != nil {
			return nil, err
		}
		if !parentID.Valid {
			byID[id] = p
			top = append(top, p)
			continue
		}
		if parent, ok := byID[parentID.Int64]; ok {
			parent.SubPages = append(parent.SubPages, p)
		}
	}
	return top, rows.Err()
}

// Suggestions returns the suggestions of every run created at or after
// since, oldest first.
func (r *Repository) Suggestions(since time.Time) ([]Suggestion, error) {
	rows, err := r.db.Query(`
		SELECT s.run_id, s.text, COALESCE(s.keyword, ''), r.created_at
		FROM suggestions s
		JOIN runs r ON s.run_id = r.id
		WHERE r.created_at >= ?
		ORDER BY r.created_at, s.run_id, s.position
	`, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Suggestion
	for rows.Next() {
		var s Suggestion
		if err := rows.Scan(&s.RunID, &s.Text, &s.Keyword, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a run and everything stored with it.
func (r *Repository) Delete(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM results WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete results: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM suggestions WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete suggestions: %w", err)
	}
	result, err := tx.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	return tx.Commit()
}
