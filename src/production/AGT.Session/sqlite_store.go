package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists farm selections in a small local SQLite file so
// they survive restarts. All failures degrade to cache misses.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (and if needed creates) the selection database.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating session db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS farm_selection (
			user_id TEXT PRIMARY KEY,
			farm_id TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating farm_selection table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(userID string) (string, bool) {
	var farmID string
	err := s.db.QueryRow(`SELECT farm_id FROM farm_selection WHERE user_id = ?`, userID).Scan(&farmID)
	if err != nil || farmID == "" {
		return "", false
	}
	return farmID, true
}

func (s *SQLiteStore) Set(userID, farmID string) {
	// Best effort: a failed write is indistinguishable from a later miss.
	s.db.Exec(`
		INSERT INTO farm_selection (user_id, farm_id, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id)
		DO UPDATE SET farm_id = excluded.farm_id, updated_at = excluded.updated_at
	`, userID, farmID)
}

func (s *SQLiteStore) Clear(userID string) {
	s.db.Exec(`DELETE FROM farm_selection WHERE user_id = ?`, userID)
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
