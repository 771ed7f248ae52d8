package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"alibi-backend/internal/model"
)

// SQLiteStore keeps score records in an embedded database, one row per
// (category, text). Updates are atomic per key, so concurrent bumps never
// lose increments the way the whole-file backend can.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the ledger database at the given path.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS scores (
		category      TEXT NOT NULL,
		text          TEXT NOT NULL,
		count         INTEGER NOT NULL DEFAULT 0,
		urgency_score INTEGER NOT NULL DEFAULT 0,
		favorited     INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (category, text)
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Bump(cat model.Category, text, urgency string) error {
	bonus := 0
	if cat == model.Excuse {
		bonus = urgencyBonus(urgency)
	}

	_, err := s.db.Exec(`
		INSERT INTO scores (category, text, count, urgency_score)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (category, text) DO UPDATE SET
			count = count + 1,
			urgency_score = urgency_score + ?
	`, string(cat), text, bonus, bonus)
	return err
}

func (s *SQLiteStore) MarkFavorite(cat model.Category, text string) (bool, error) {
	var existed bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM scores WHERE category=? AND text=?)
	`, string(cat), text).Scan(&existed)
	if err != nil {
		return false, err
	}

	_, err = s.db.Exec(`
		INSERT INTO scores (category, text, favorited)
		VALUES (?, ?, 1)
		ON CONFLICT (category, text) DO UPDATE SET favorited = 1
	`, string(cat), text)
	return existed, err
}

func (s *SQLiteStore) Reset(cat model.Category) error {
	_, err := s.db.Exec(`DELETE FROM scores WHERE category=?`, string(cat))
	return err
}

func (s *SQLiteStore) Snapshot(cat model.Category) (map[string]model.ScoreRecord, error) {
	rows, err := s.db.Query(`
		SELECT text, count, urgency_score, favorited
		FROM scores
		WHERE category=?
	`, string(cat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := map[string]model.ScoreRecord{}
	for rows.Next() {
		var text string
		var rec model.ScoreRecord
		if err := rows.Scan(&text, &rec.Count, &rec.UrgencyScore, &rec.Favorited); err != nil {
			return nil, err
		}
		scores[text] = rec
	}
	return scores, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
