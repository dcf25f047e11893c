package pkg

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// OpenLocalDB opens the sqlite database backing the degraded-mode result
// store. WAL mode keeps concurrent readers from blocking the single writer.
func OpenLocalDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open local store %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open local store %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
