package api

import (
	"encoding/json"
	"net/http"

	"alibi-backend/internal/analytics"
	"alibi-backend/internal/core"
	"alibi-backend/internal/model"
)

func HistoryHandler(svc *core.Service, cat model.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"history": svc.History(cat),
		})
	}
}

func CalendarHandler(svc *core.Service, cat model.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(svc.Calendar(cat))
	}
}

func RankingsHandler(svc *core.Service, cat model.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ranked, err := svc.Rankings(cat)
		if err != nil {
			http.Error(w, "ledger error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ranked)
	}
}

func ClearRankingsHandler(svc *core.Service, cat model.Category) http.HandlerFunc {
	msg := "Smart rankings cleared."
	if cat == model.Apology {
		msg = "Top apologies cleared."
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearRankings(cat); err != nil {
			http.Error(w, "ledger error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"message": msg})
	}
}

func favoriteMessage(cat model.Category, outcome core.FavoriteOutcome) string {
	if cat == model.Excuse {
		if outcome == core.FavoriteAdded {
			return "✅ Excuse added to favourites!"
		}
		return "⚠️ Already in favourites or nothing to add."
	}

	switch outcome {
	case core.FavoriteAdded:
		return "✅ Apology added to favourites!"
	case core.FavoritePresent:
		return "⚠️ Already in favourites."
	default:
		return "⚠️ No apology to save."
	}
}

func AddFavoriteHandler(svc *core.Service, cat model.Category, sink *analytics.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		outcome, err := svc.AddFavorite(cat)
		if err != nil {
			http.Error(w, "ledger error", http.StatusInternalServerError)
			return
		}

		if outcome == core.FavoriteAdded {
			_ = sink.Log(r.Context(), analytics.FromRequest(r), "favorite_added", map[string]any{
				"category": string(cat),
			}, analytics.SourceEventKeyFromRequest(r))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result":  string(outcome),
			"message": favoriteMessage(cat, outcome),
		})
	}
}

func FavoritesHandler(svc *core.Service, cat model.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"favorites": svc.Favorites(cat),
		})
	}
}

func SaveApologyHistoryHandler(svc *core.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
			Time string `json:"time"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.Text == "" {
			http.Error(w, "text is required", http.StatusBadRequest)
			return
		}

		if err := svc.SaveHistoryEntry(body.Text, body.Time, model.Apology); err != nil {
			http.Error(w, "save error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "✅ Apology saved to history and calendar.",
		})
	}
}

func ProofHandler(svc *core.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		latest := svc.Latest()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": latest.Text,
			"label":   latest.Category.Label(),
		})
	}
}
