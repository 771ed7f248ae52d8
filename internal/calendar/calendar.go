package calendar

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"

	"alibi-backend/internal/fsutil"
	"alibi-backend/internal/model"
)

// Log is the persisted, date-stamped journal of generated texts, one JSON
// array file per category. The log is advisory: reads never fail, a corrupt
// file is treated as empty and replaced on the next append.
type Log struct {
	paths map[model.Category]string
	locks map[model.Category]*sync.Mutex
}

func NewLog(dataDir string) *Log {
	return &Log{
		paths: map[model.Category]string{
			model.Excuse:  filepath.Join(dataDir, "excuse_calendar.json"),
			model.Apology: filepath.Join(dataDir, "apology_calendar.json"),
		},
		locks: map[model.Category]*sync.Mutex{
			model.Excuse:  {},
			model.Apology: {},
		},
	}
}

// Append adds one entry to the category's journal and rewrites the file.
func (l *Log) Append(cat model.Category, entry model.CalendarEntry) error {
	l.locks[cat].Lock()
	defer l.locks[cat].Unlock()

	entries := l.load(cat)
	entries = append(entries, entry)
	return l.save(cat, entries)
}

// List returns the category's journal, empty on any read problem.
func (l *Log) List(cat model.Category) []model.CalendarEntry {
	l.locks[cat].Lock()
	defer l.locks[cat].Unlock()

	return l.load(cat)
}

// Contains reports whether any entry in the category's journal carries
// exactly this text. Used by the fallback sync to avoid duplicate repairs.
func (l *Log) Contains(cat model.Category, text string) bool {
	l.locks[cat].Lock()
	defer l.locks[cat].Unlock()

	for _, e := range l.load(cat) {
		if e.Text == text {
			return true
		}
	}
	return false
}

func (l *Log) load(cat model.Category) []model.CalendarEntry {
	raw, err := os.ReadFile(l.paths[cat])
	if err != nil {
		if !os.IsNotExist(err) {
			log.Println("⚠️ Calendar unreadable, starting empty:", err)
		}
		return []model.CalendarEntry{}
	}

	var entries []model.CalendarEntry
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		log.Printf("⚠️ Calendar %s corrupt, starting empty", l.paths[cat])
		return []model.CalendarEntry{}
	}
	return entries
}

func (l *Log) save(cat model.Category, entries []model.CalendarEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(l.paths[cat], data)
}
