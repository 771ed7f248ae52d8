package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"alibi-backend/internal/model"
)

func TestFileStore_BumpMonotonicCount(t *testing.T) {
	s := NewFileStore(t.TempDir())

	for i := 0; i < 5; i++ {
		if err := s.Bump(model.Excuse, "traffic was historic", "low"); err != nil {
			t.Fatalf("Bump() error = %v", err)
		}
	}

	scores, err := s.Snapshot(model.Excuse)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got := scores["traffic was historic"].Count; got != 5 {
		t.Errorf("count = %d, want 5", got)
	}
}

func TestFileStore_UrgencyBonuses(t *testing.T) {
	s := NewFileStore(t.TempDir())

	for _, urgency := range []string{"high", "critical", "medium", "whatever"} {
		if err := s.Bump(model.Excuse, "t", urgency); err != nil {
			t.Fatalf("Bump(%q) error = %v", urgency, err)
		}
	}

	scores, _ := s.Snapshot(model.Excuse)
	// 2 + 4 + 1 + 0
	if got := scores["t"].UrgencyScore; got != 7 {
		t.Errorf("urgency_score = %d, want 7", got)
	}
}

func TestFileStore_ApologyIgnoresUrgency(t *testing.T) {
	s := NewFileStore(t.TempDir())

	if err := s.Bump(model.Apology, "sorry", "critical"); err != nil {
		t.Fatalf("Bump() error = %v", err)
	}

	scores, _ := s.Snapshot(model.Apology)
	if got := scores["sorry"].UrgencyScore; got != 0 {
		t.Errorf("urgency_score = %d, want 0 for apology", got)
	}
}

func TestFileStore_CorruptFileRecovers(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	path := filepath.Join(dir, "smart_scores.json")
	if err := os.WriteFile(path, []byte("not json at all {{{"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.Bump(model.Excuse, "fresh start", "high"); err != nil {
		t.Fatalf("Bump() on corrupt file error = %v", err)
	}

	scores, err := s.Snapshot(model.Excuse)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("len(scores) = %d, want exactly the new record", len(scores))
	}
	if rec := scores["fresh start"]; rec.Count != 1 || rec.UrgencyScore != 2 {
		t.Errorf("record = %+v, want count=1 urgency=2", rec)
	}
}

func TestFileStore_WrongShapeRecovers(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	// array where an object is expected
	path := filepath.Join(dir, "apology_scores.json")
	if err := os.WriteFile(path, []byte(`["a","b"]`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.Bump(model.Apology, "sorry", ""); err != nil {
		t.Fatalf("Bump() error = %v", err)
	}
	scores, _ := s.Snapshot(model.Apology)
	if scores["sorry"].Count != 1 {
		t.Errorf("count = %d, want 1", scores["sorry"].Count)
	}
}

func TestFileStore_MarkFavorite(t *testing.T) {
	s := NewFileStore(t.TempDir())

	existed, err := s.MarkFavorite(model.Excuse, "never generated")
	if err != nil {
		t.Fatalf("MarkFavorite() error = %v", err)
	}
	if existed {
		t.Error("existed = true for a text never bumped")
	}

	if err := s.Bump(model.Excuse, "seen", ""); err != nil {
		t.Fatal(err)
	}
	existed, err = s.MarkFavorite(model.Excuse, "seen")
	if err != nil {
		t.Fatalf("MarkFavorite() error = %v", err)
	}
	if !existed {
		t.Error("existed = false for a bumped text")
	}

	scores, _ := s.Snapshot(model.Excuse)
	if !scores["seen"].Favorited || !scores["never generated"].Favorited {
		t.Errorf("favorited flags not set: %+v", scores)
	}
}

func TestFileStore_ResetIsolatesCategories(t *testing.T) {
	s := NewFileStore(t.TempDir())

	if err := s.Bump(model.Excuse, "e", "high"); err != nil {
		t.Fatal(err)
	}
	if err := s.Bump(model.Apology, "a", ""); err != nil {
		t.Fatal(err)
	}

	if err := s.Reset(model.Excuse); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	exc, _ := s.Snapshot(model.Excuse)
	apo, _ := s.Snapshot(model.Apology)
	if len(exc) != 0 {
		t.Errorf("excuse ledger not empty after reset: %v", exc)
	}
	if len(apo) != 1 {
		t.Errorf("apology ledger touched by excuse reset: %v", apo)
	}
}

func TestFileStore_LegacyFileShape(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	legacy := `{
  "the dog ate my laptop": {"count": 3, "urgency_score": 2, "favorited": true}
}`
	if err := os.WriteFile(filepath.Join(dir, "smart_scores.json"), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.Bump(model.Excuse, "the dog ate my laptop", "medium"); err != nil {
		t.Fatal(err)
	}

	scores, _ := s.Snapshot(model.Excuse)
	rec := scores["the dog ate my laptop"]
	if rec.Count != 4 || rec.UrgencyScore != 3 || !rec.Favorited {
		t.Errorf("record = %+v, want count=4 urgency=3 favorited", rec)
	}
}
