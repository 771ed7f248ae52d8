package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"alibi-backend/internal/analytics"
	"alibi-backend/internal/memory"
	"alibi-backend/internal/notify"
	"alibi-backend/internal/schedule"
	"alibi-backend/internal/screenshot"
)

func EmergencyHandler(d *notify.Dispatcher, sink *analytics.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email string `json:"email"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		d.Trigger(body.Email)

		_ = sink.Log(r.Context(), analytics.FromRequest(r), "emergency_triggered", map[string]any{
			"override_recipient": body.Email != "",
		}, analytics.SourceEventKeyFromRequest(r))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	}
}

func ScheduleHandler(sched *schedule.Scheduler, d *notify.Dispatcher, clock schedule.Clock, sink *analytics.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Date  string `json:"date"`
			Time  string `json:"time"`
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		when, err := time.ParseInLocation("2006-01-02 15:04", body.Date+" "+body.Time, clock.Now().Location())
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"message": fmt.Sprintf("❌ Scheduling failed: %v", err),
			})
			return
		}

		email := body.Email
		if _, err := sched.At(when, func() { d.Trigger(email) }); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"message": fmt.Sprintf("❌ Scheduling failed: %v", err),
			})
			return
		}

		_ = sink.Log(r.Context(), analytics.FromRequest(r), "emergency_scheduled", map[string]any{
			"run_at": when.Format(time.RFC3339),
		}, analytics.SourceEventKeyFromRequest(r))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": fmt.Sprintf("🚨 Emergency scheduled for %s", when.Format("2006-01-02 15:04")),
		})
	}
}

func ScreenshotHandler(shot *screenshot.Client, proofURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, err := shot.Render(r.Context(), proofURL)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"url": "null"})
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Disposition", `attachment; filename="proof.png"`)
		http.ServeFile(w, r, path)
	}
}

func MemoryLookupHandler(store *memory.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "" {
			http.Error(w, "q is required", http.StatusBadRequest)
			return
		}

		matches, err := store.Lookup(q)
		if err != nil {
			http.Error(w, "lookup error", http.StatusInternalServerError)
			return
		}
		if matches == nil {
			matches = []string{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"matches": matches})
	}
}

func MemorySaveHandler(store *memory.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Keyword string `json:"keyword"`
			Excuse  string `json:"excuse"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := store.Save(body.Keyword, body.Excuse); err != nil {
			http.Error(w, "keyword and excuse are required", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "Saved"})
	}
}

func AdminLogHandler(d *notify.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"logs": d.Incidents(),
		})
	}
}
