package ledger

import (
	"fmt"
	"path/filepath"

	"alibi-backend/internal/model"
)

// Store is the score ledger: per-text aggregate records keyed by the exact
// string value of the generated text. Two identical strings are the same key
// even if produced independently.
type Store interface {
	// Bump increments the usage count for text, creating a zero record on
	// first sight. For excuses the urgency bonus is added to urgency_score.
	Bump(cat model.Category, text, urgency string) error

	// MarkFavorite sets favorited=true, creating a zero record if the text
	// was never bumped. Returns whether the record existed before.
	MarkFavorite(cat model.Category, text string) (existed bool, err error)

	// Reset replaces the category's ledger with an empty mapping.
	Reset(cat model.Category) error

	// Snapshot returns a copy of the category's full ledger.
	Snapshot(cat model.Category) (map[string]model.ScoreRecord, error)

	Close() error
}

// Open builds a ledger store for the configured backend.
// "file" keeps the legacy JSON object files, "sqlite" stores the same
// records in an embedded database with atomic per-key updates.
func Open(backend, dataDir string) (Store, error) {
	switch backend {
	case "", "file":
		return NewFileStore(dataDir), nil
	case "sqlite":
		return OpenSQLite(filepath.Join(dataDir, "ledger.db"))
	default:
		return nil, fmt.Errorf("unknown ledger backend: %q", backend)
	}
}

// urgencyBonus maps the request urgency to its score weight.
func urgencyBonus(urgency string) int {
	switch urgency {
	case "high":
		return 2
	case "critical":
		return 4
	case "medium":
		return 1
	default:
		return 0
	}
}
