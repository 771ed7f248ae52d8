package memory

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Store is the keyword lookup database: keyword → stored excuses. Lookups
// match by case-insensitive substring over the keyword.
type Store struct {
	db *sql.DB
}

// Open opens or creates the memory database at the given path.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS memory (
		keyword TEXT NOT NULL,
		excuse  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_memory_keyword ON memory(keyword);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Save stores one excuse under a keyword.
func (s *Store) Save(keyword, excuse string) error {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" || strings.TrimSpace(excuse) == "" {
		return fmt.Errorf("keyword and excuse are required")
	}
	_, err := s.db.Exec(`INSERT INTO memory (keyword, excuse) VALUES (?, ?)`, keyword, excuse)
	return err
}

// Lookup returns up to 5 distinct stored excuses whose keyword contains the
// query, oldest first.
func (s *Store) Lookup(query string) ([]string, error) {
	query = strings.ToLower(strings.TrimSpace(query))

	rows, err := s.db.Query(`
		SELECT excuse
		FROM memory
		WHERE instr(keyword, ?) > 0
		GROUP BY excuse
		ORDER BY MIN(rowid)
		LIMIT 5
	`, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		matches = append(matches, e)
	}
	return matches, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
