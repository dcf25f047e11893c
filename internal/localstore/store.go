// Package localstore is the degraded-mode result persistence used when the
// shared backend is unreachable. Results imported from share tokens land here.
// It is scoped to the local process, is not shared across devices, and makes
// no consistency promise relative to the remote aggregate.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/BIJODEV/BibleQZ/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS local_results (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	quiz_key TEXT NOT NULL,
	payload  TEXT NOT NULL,
	added_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_local_results_quiz_key ON local_results (quiz_key);
`

// Store is a typed per-quiz result list: Append, List in insertion order,
// Clear. It never deduplicates; callers dedupe before appending.
type Store struct {
	db *sql.DB
}

// New prepares the schema on an opened sqlite handle.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("prepare local result store: %w", err)
	}
	return &Store{db: db}, nil
}

// quizKey is the single place the storage key for a quiz is constructed.
func quizKey(quizID string) string {
	return "bibleq_results_" + quizID
}

// Append adds one result to the quiz's list.
func (s *Store) Append(ctx context.Context, quizID string, result models.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal local result: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO local_results (quiz_key, payload, added_at) VALUES (?, ?, ?)`,
		quizKey(quizID), string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("append local result: %w", err)
	}
	return nil
}

// List returns the quiz's results in insertion order, empty when none exist.
func (s *Store) List(ctx context.Context, quizID string) ([]models.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM local_results WHERE quiz_key = ? ORDER BY id`,
		quizKey(quizID),
	)
	if err != nil {
		return nil, fmt.Errorf("list local results: %w", err)
	}
	defer rows.Close()

	results := []models.Result{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan local result: %w", err)
		}
		var result models.Result
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			return nil, fmt.Errorf("decode local result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// Clear irreversibly removes all results recorded for the quiz.
func (s *Store) Clear(ctx context.Context, quizID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM local_results WHERE quiz_key = ?`, quizKey(quizID),
	); err != nil {
		return fmt.Errorf("clear local results: %w", err)
	}
	return nil
}
