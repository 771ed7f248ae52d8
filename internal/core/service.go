package core

import (
	"log"
	"path/filepath"
	"sync"

	"alibi-backend/internal/calendar"
	"alibi-backend/internal/fsutil"
	"alibi-backend/internal/ledger"
	"alibi-backend/internal/model"
	"alibi-backend/internal/schedule"
)

// FavoriteOutcome describes what a favoriting request actually did.
type FavoriteOutcome string

const (
	FavoriteAdded   FavoriteOutcome = "added"
	FavoritePresent FavoriteOutcome = "already_present"
	FavoriteNothing FavoriteOutcome = "nothing_to_add"
)

// categoryState is one category's in-memory state. Guarded by its own lock so
// excuse and apology requests never block each other.
type categoryState struct {
	mu        sync.Mutex
	history   []model.HistoryEntry
	favorites []string
}

// Service owns all core state: per-category history and favorites, the score
// ledger, the calendar log and the latest pointer. Handlers get a *Service
// injected; there are no package globals.
type Service struct {
	ledger  ledger.Store
	cal     *calendar.Log
	clock   schedule.Clock
	dataDir string

	state map[model.Category]*categoryState

	latestMu sync.Mutex
	latest   model.LatestPointer
}

func New(store ledger.Store, cal *calendar.Log, clock schedule.Clock, dataDir string) *Service {
	return &Service{
		ledger:  store,
		cal:     cal,
		clock:   clock,
		dataDir: dataDir,
		state: map[model.Category]*categoryState{
			model.Excuse:  {},
			model.Apology: {},
		},
	}
}

// calendarTimeFormat mirrors the legacy journal formats: excuses carry
// seconds, apologies do not.
func calendarTimeFormat(cat model.Category) string {
	if cat == model.Excuse {
		return "03:04:05 PM"
	}
	return "03:04 PM"
}

// RecordGeneration ingests one successful generation: history, latest-text
// file, ledger bump, calendar entry and the latest pointer, as one logical
// unit. Each persisted piece is independent; a failing ledger write does not
// undo the history append.
func (s *Service) RecordGeneration(text string, cat model.Category, urgency string) error {
	now := s.clock.Now()

	st := s.state[cat]
	st.mu.Lock()
	st.history = append(st.history, model.HistoryEntry{
		Text: text,
		Time: now.Format("2006-01-02 15:04"),
	})
	st.mu.Unlock()

	if err := fsutil.WriteFileAtomic(s.latestTextPath(cat), []byte(text)); err != nil {
		log.Println("⚠️ Failed to write latest text file:", err)
	}

	if err := s.ledger.Bump(cat, text, urgency); err != nil {
		return err
	}

	if err := s.cal.Append(cat, model.CalendarEntry{
		Text: text,
		Date: now.Format("2006-01-02"),
		Time: now.Format(calendarTimeFormat(cat)),
	}); err != nil {
		return err
	}

	s.setLatest(text, cat)
	return nil
}

// SaveHistoryEntry is the manual insertion path: the client already has the
// text (e.g. after a tone adjustment) and wants it logged without another
// generation. History is deduplicated here, the calendar is not, and the
// ledger is untouched.
func (s *Service) SaveHistoryEntry(text, timeStr string, cat model.Category) error {
	st := s.state[cat]
	st.mu.Lock()
	seen := false
	for _, h := range st.history {
		if h.Text == text {
			seen = true
			break
		}
	}
	if !seen {
		if timeStr == "" {
			timeStr = s.clock.Now().Format("2006-01-02 15:04")
		}
		st.history = append(st.history, model.HistoryEntry{Text: text, Time: timeStr})
	}
	st.mu.Unlock()

	now := s.clock.Now()
	if err := s.cal.Append(cat, model.CalendarEntry{
		Text: text,
		Date: now.Format("2006-01-02"),
		Time: now.Format(calendarTimeFormat(cat)),
	}); err != nil {
		return err
	}

	s.setLatest(text, cat)
	return nil
}

// History returns the category's history, newest last.
func (s *Service) History(cat model.Category) []model.HistoryEntry {
	st := s.state[cat]
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]model.HistoryEntry, len(st.history))
	copy(out, st.history)
	return out
}

// Calendar returns the category's persisted journal.
func (s *Service) Calendar(cat model.Category) []model.CalendarEntry {
	return s.cal.List(cat)
}

// Rankings returns the category's texts ordered by composite score.
func (s *Service) Rankings(cat model.Category) ([]model.RankedText, error) {
	scores, err := s.ledger.Snapshot(cat)
	if err != nil {
		return nil, err
	}
	return ledger.Rank(cat, scores), nil
}

// ClearRankings empties the category's score ledger. History, calendar and
// the other category are untouched.
func (s *Service) ClearRankings(cat model.Category) error {
	return s.ledger.Reset(cat)
}

// AddFavorite marks the latest pointer's text as favorite for the category.
// It is idempotent: a repeat call reports already_present without touching
// the set, and a missing or mismatched latest pointer is a no-op.
func (s *Service) AddFavorite(cat model.Category) (FavoriteOutcome, error) {
	latest := s.Latest()
	if latest.Text == "" || latest.Category != cat {
		return FavoriteNothing, nil
	}

	st := s.state[cat]
	st.mu.Lock()
	for _, f := range st.favorites {
		if f == latest.Text {
			st.mu.Unlock()
			return FavoritePresent, nil
		}
	}
	st.favorites = append(st.favorites, latest.Text)
	st.mu.Unlock()

	if _, err := s.ledger.MarkFavorite(cat, latest.Text); err != nil {
		return FavoriteAdded, err
	}
	return FavoriteAdded, nil
}

// Favorites returns the category's favorites in insertion order.
func (s *Service) Favorites(cat model.Category) []string {
	st := s.state[cat]
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]string, len(st.favorites))
	copy(out, st.favorites)
	return out
}

// Latest returns the most recently generated text of either category.
func (s *Service) Latest() model.LatestPointer {
	s.latestMu.Lock()
	defer s.latestMu.Unlock()
	return s.latest
}

func (s *Service) setLatest(text string, cat model.Category) {
	s.latestMu.Lock()
	s.latest = model.LatestPointer{Text: text, Category: cat}
	s.latestMu.Unlock()
}

// FallbackSync repairs the calendar log from the latest pointer: if the last
// generated text never made it into its category's journal (e.g. the process
// died mid-request), an entry is appended. Already-logged text is left alone.
func (s *Service) FallbackSync() {
	latest := s.Latest()
	if latest.Text == "" {
		return
	}

	if s.cal.Contains(latest.Category, latest.Text) {
		return
	}

	now := s.clock.Now()
	err := s.cal.Append(latest.Category, model.CalendarEntry{
		Text: latest.Text,
		Date: now.Format("2006-01-02"),
		Time: now.Format("03:04 PM"),
	})
	if err != nil {
		log.Println("⚠️ Fallback sync failed:", err)
		return
	}
	log.Printf("📅 Synced last %s to calendar.", latest.Category)
}

func (s *Service) latestTextPath(cat model.Category) string {
	if cat == model.Excuse {
		return filepath.Join(s.dataDir, "latest_excuse.txt")
	}
	return filepath.Join(s.dataDir, "latest_apology.txt")
}
