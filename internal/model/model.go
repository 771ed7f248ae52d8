package model

// Category is one of the two independent domains tracked in parallel.
// Each category has its own history, calendar log, score ledger and favorites.
type Category string

const (
	Excuse  Category = "excuse"
	Apology Category = "apology"
)

// Label returns the display form used in proof pages and emergency emails.
func (c Category) Label() string {
	switch c {
	case Excuse:
		return "Excuse"
	case Apology:
		return "Apology"
	default:
		return string(c)
	}
}

// Valid reports whether c is one of the two known categories.
func (c Category) Valid() bool {
	return c == Excuse || c == Apology
}

// HistoryEntry is one generated text with a human-readable timestamp.
// History is append-only and never deduplicated.
type HistoryEntry struct {
	Text string `json:"text"`
	Time string `json:"time"`
}

// CalendarEntry is one row of the persisted calendar journal.
type CalendarEntry struct {
	Text string `json:"text"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// ScoreRecord is the aggregate ledger value for a single text.
// Count only increases; Favorited never reverts except via a full reset.
type ScoreRecord struct {
	Count        int  `json:"count"`
	UrgencyScore int  `json:"urgency_score,omitempty"`
	Favorited    bool `json:"favorited"`
}

// RankedText is one row of a ranking response.
type RankedText struct {
	Text      string `json:"text"`
	Score     int    `json:"score"`
	Count     int    `json:"count"`
	Favorited bool   `json:"favorited"`
}

// LatestPointer is the most recently generated artifact of either kind.
type LatestPointer struct {
	Text     string   `json:"text"`
	Category Category `json:"category"`
}
