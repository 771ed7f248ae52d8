package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"alibi-backend/internal/analytics"
	"alibi-backend/internal/core"
	"alibi-backend/internal/model"
)

// Generator is the text-generation collaborator. The core never looks
// inside it, only at the returned (text, translated) pair.
type Generator interface {
	GenerateExcuse(ctx context.Context, scenario, urgency, language, style string) (string, string, error)
	GenerateApology(ctx context.Context, situation, tone, typ, style, language string) (string, string, error)
	AdjustTone(ctx context.Context, text, tone string) (string, error)
	CompleteApology(ctx context.Context, start, tone string) (string, error)
	GuiltScore(ctx context.Context, text string) (string, error)
}

func ExcuseHandler(gen Generator, svc *core.Service, sink *analytics.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Scenario string `json:"scenario"`
			Urgency  string `json:"urgency"`
			Language string `json:"language"`
			Style    string `json:"style"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.Scenario == "" {
			http.Error(w, "scenario is required", http.StatusBadRequest)
			return
		}

		english, translated, err := gen.GenerateExcuse(r.Context(), body.Scenario, body.Urgency, body.Language, body.Style)
		if err != nil {
			http.Error(w, "generation failed", http.StatusBadGateway)
			return
		}

		// ledger/history/calendar updates are our own responsibility and
		// must not be skipped because of anything downstream
		if err := svc.RecordGeneration(english, model.Excuse, body.Urgency); err != nil {
			http.Error(w, "record error", http.StatusInternalServerError)
			return
		}

		_ = sink.Log(r.Context(), analytics.FromRequest(r), "excuse_generated", map[string]any{
			"urgency":  body.Urgency,
			"language": body.Language,
			"style":    body.Style,
			"text_len": len(english),
		}, analytics.SourceEventKeyFromRequest(r))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"english":    english,
			"translated": translated,
		})
	}
}

func ApologyHandler(gen Generator, svc *core.Service, sink *analytics.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Context  string `json:"context"`
			Tone     string `json:"tone"`
			Type     string `json:"type"`
			Style    string `json:"style"`
			Language string `json:"language"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.Context == "" {
			http.Error(w, "context is required", http.StatusBadRequest)
			return
		}

		message, translated, err := gen.GenerateApology(r.Context(), body.Context, body.Tone, body.Type, body.Style, body.Language)
		if err != nil {
			http.Error(w, "generation failed", http.StatusBadGateway)
			return
		}

		if err := svc.RecordGeneration(message, model.Apology, ""); err != nil {
			http.Error(w, "record error", http.StatusInternalServerError)
			return
		}

		_ = sink.Log(r.Context(), analytics.FromRequest(r), "apology_generated", map[string]any{
			"tone":     body.Tone,
			"type":     body.Type,
			"language": body.Language,
			"text_len": len(message),
		}, analytics.SourceEventKeyFromRequest(r))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message":    message,
			"translated": translated,
		})
	}
}

func AdjustToneHandler(gen Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Tone string `json:"tone"`
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		tone := strings.TrimSpace(body.Tone)
		text := strings.TrimSpace(body.Text)
		if tone == "" || text == "" {
			http.Error(w, "missing tone or text", http.StatusBadRequest)
			return
		}

		adjusted, err := gen.AdjustTone(r.Context(), text, tone)
		if err != nil {
			http.Error(w, "adjust failed", http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"adjusted": adjusted})
	}
}

func CompleteApologyHandler(gen Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Start string `json:"start"`
			Tone  string `json:"tone"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		start := strings.TrimSpace(body.Start)
		if start == "" {
			http.Error(w, "no start provided", http.StatusBadRequest)
			return
		}
		tone := strings.TrimSpace(body.Tone)
		if tone == "" {
			tone = "formal"
		}

		completed, err := gen.CompleteApology(r.Context(), start, tone)
		if err != nil {
			http.Error(w, "completion failed", http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"completed": completed})
	}
}

func GuiltScoreHandler(gen Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Text) == "" {
			http.Error(w, "text is required", http.StatusBadRequest)
			return
		}

		feedback, err := gen.GuiltScore(r.Context(), body.Text)
		if err != nil {
			http.Error(w, "scoring failed", http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"feedback": feedback})
	}
}
