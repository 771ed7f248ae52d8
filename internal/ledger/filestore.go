package ledger

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"

	"alibi-backend/internal/fsutil"
	"alibi-backend/internal/model"
)

// FileStore keeps each category's ledger in its legacy JSON object file
// (smart_scores.json / apology_scores.json). Every mutation is a
// load-modify-store of the whole file, serialized per category; writes go
// through a temp file + rename so a crash never leaves a half-written ledger.
type FileStore struct {
	paths map[model.Category]string
	locks map[model.Category]*sync.Mutex
}

func NewFileStore(dataDir string) *FileStore {
	return &FileStore{
		paths: map[model.Category]string{
			model.Excuse:  filepath.Join(dataDir, "smart_scores.json"),
			model.Apology: filepath.Join(dataDir, "apology_scores.json"),
		},
		locks: map[model.Category]*sync.Mutex{
			model.Excuse:  {},
			model.Apology: {},
		},
	}
}

func (s *FileStore) Bump(cat model.Category, text, urgency string) error {
	s.locks[cat].Lock()
	defer s.locks[cat].Unlock()

	scores := s.load(cat)
	rec := scores[text]
	rec.Count++
	if cat == model.Excuse {
		rec.UrgencyScore += urgencyBonus(urgency)
	}
	scores[text] = rec

	return s.save(cat, scores)
}

func (s *FileStore) MarkFavorite(cat model.Category, text string) (bool, error) {
	s.locks[cat].Lock()
	defer s.locks[cat].Unlock()

	scores := s.load(cat)
	rec, existed := scores[text]
	rec.Favorited = true
	scores[text] = rec

	return existed, s.save(cat, scores)
}

func (s *FileStore) Reset(cat model.Category) error {
	s.locks[cat].Lock()
	defer s.locks[cat].Unlock()

	return s.save(cat, map[string]model.ScoreRecord{})
}

func (s *FileStore) Snapshot(cat model.Category) (map[string]model.ScoreRecord, error) {
	s.locks[cat].Lock()
	defer s.locks[cat].Unlock()

	return s.load(cat), nil
}

func (s *FileStore) Close() error { return nil }

// load reads the category's ledger file. A missing, unreadable or wrong-shaped
// file is treated as an empty ledger: the serving path never fails on corrupt
// storage, the content is replaced on the next write.
func (s *FileStore) load(cat model.Category) map[string]model.ScoreRecord {
	raw, err := os.ReadFile(s.paths[cat])
	if err != nil {
		if !os.IsNotExist(err) {
			log.Println("⚠️ Ledger unreadable, starting empty:", err)
		}
		return map[string]model.ScoreRecord{}
	}

	var scores map[string]model.ScoreRecord
	if err := json.Unmarshal(raw, &scores); err != nil || scores == nil {
		log.Printf("⚠️ Ledger %s corrupt, starting empty", s.paths[cat])
		return map[string]model.ScoreRecord{}
	}
	return scores
}

func (s *FileStore) save(cat model.Category, scores map[string]model.ScoreRecord) error {
	data, err := json.MarshalIndent(scores, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(s.paths[cat], data)
}
