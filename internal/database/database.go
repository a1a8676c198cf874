package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	conn *sql.DB
	path string
}

func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_fts5=true")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Exec(query string, args ...any) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

func (db *DB) Query(query string, args ...any) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

func (db *DB) QueryRow(query string, args ...any) *sql.Row {
	return db.conn.QueryRow(query, args...)
}

// Begin starts a transaction for multi-statement writes.
func (db *DB) Begin() (*sql.Tx, error) {
	return db.conn.Begin()
}

func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY,
		query TEXT NOT NULL,
		search_term TEXT NOT NULL,
		summary TEXT,
		sufficient BOOLEAN DEFAULT FALSE,
		elapsed_ms INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		parent_id INTEGER REFERENCES results(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		title TEXT,
		content TEXT,
		engine_rank INTEGER,
		topic_score REAL,
		score_details TEXT
	);

	CREATE TABLE IF NOT EXISTS suggestions (
		id INTEGER PRIMARY KEY,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		text TEXT NOT NULL,
		keyword TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id, parent_id, position);
	CREATE INDEX IF NOT EXISTS idx_suggestions_run ON suggestions(run_id);

	CREATE VIRTUAL TABLE IF NOT EXISTS results_fts USING fts5(
		title,
		content
	);

	CREATE TRIGGER IF NOT EXISTS results_ai AFTER INSERT ON results BEGIN
		INSERT INTO results_fts(rowid, title, content) VALUES (new.id, COALESCE(new.title, ''), COALESCE(new.content, ''));
	END;

	CREATE TRIGGER IF NOT EXISTS results_ad AFTER DELETE ON results BEGIN
		DELETE FROM results_fts WHERE rowid = old.id;
	END;

	CREATE TRIGGER IF NOT EXISTS results_au AFTER UPDATE ON results BEGIN
		DELETE FROM results_fts WHERE rowid = old.id;
		INSERT INTO results_fts(rowid, title, content) VALUES (new.id, COALESCE(new.title, ''), COALESCE(new.content, ''));
	END;
	`

	_, err := db.conn.Exec(schema)
	return err
}
