package analytics

import (
	"encoding/json"
	"net/http"
)

// SummaryHandler — счётчики событий для админки
func SummaryHandler(sink *Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if sink == nil {
			_ = json.NewEncoder(w).Encode(map[string]any{"enabled": false})
			return
		}

		rows, err := sink.db.QueryContext(r.Context(), `
			SELECT event_name, COUNT(*)
			FROM analytics_events
			GROUP BY event_name
			ORDER BY event_name
		`)
		if err != nil {
			http.Error(w, "db query error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		counts := map[string]int{}
		for rows.Next() {
			var name string
			var n int
			if err := rows.Scan(&name, &n); err != nil {
				http.Error(w, "db scan error", http.StatusInternalServerError)
				return
			}
			counts[name] = n
		}
		if err := rows.Err(); err != nil {
			http.Error(w, "db rows error", http.StatusInternalServerError)
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"enabled": true,
			"events":  counts,
		})
	}
}
