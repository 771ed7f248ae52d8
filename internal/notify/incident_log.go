package notify

import (
	"encoding/json"
	"log"
	"os"
	"sync"

	"alibi-backend/internal/fsutil"
)

// Incident is one row of the append-only emergency log.
type Incident struct {
	Timestamp  string   `json:"timestamp"`
	Excuse     string   `json:"excuse"`
	Apology    string   `json:"apology"`
	Recipients []string `json:"recipients"`
}

// IncidentLog persists incidents as a JSON array, same corruption policy as
// the calendar log: a broken file reads as empty and is replaced on write.
type IncidentLog struct {
	mu   sync.Mutex
	path string
}

func NewIncidentLog(path string) *IncidentLog {
	return &IncidentLog{path: path}
}

func (l *IncidentLog) Append(in Incident) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	incidents := l.load()
	incidents = append(incidents, in)

	data, err := json.MarshalIndent(incidents, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(l.path, data)
}

func (l *IncidentLog) List() []Incident {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

func (l *IncidentLog) load() []Incident {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return []Incident{}
	}

	var incidents []Incident
	if err := json.Unmarshal(raw, &incidents); err != nil || incidents == nil {
		log.Printf("⚠️ Incident log %s corrupt, starting empty", l.path)
		return []Incident{}
	}
	return incidents
}
