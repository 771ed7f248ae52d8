package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"alibi-backend/internal/calendar"
	"alibi-backend/internal/core"
	"alibi-backend/internal/ledger"
	"alibi-backend/internal/model"
	"alibi-backend/internal/testutil"
)

// stubGenerator returns canned text, or fails when broken is set.
type stubGenerator struct {
	broken bool
}

func (g *stubGenerator) GenerateExcuse(_ context.Context, scenario, urgency, language, style string) (string, string, error) {
	if g.broken {
		return "", "", errors.New("upstream down")
	}
	return "excuse for " + scenario, "translated excuse", nil
}

func (g *stubGenerator) GenerateApology(_ context.Context, situation, tone, typ, style, language string) (string, string, error) {
	if g.broken {
		return "", "", errors.New("upstream down")
	}
	return "apology for " + situation, "translated apology", nil
}

func (g *stubGenerator) AdjustTone(_ context.Context, text, tone string) (string, error) {
	return tone + ": " + text, nil
}

func (g *stubGenerator) CompleteApology(_ context.Context, start, tone string) (string, error) {
	return start + " (completed, " + tone + ")", nil
}

func (g *stubGenerator) GuiltScore(_ context.Context, text string) (string, error) {
	return "50/100 – neutral", nil
}

func newTestCore(t *testing.T) *core.Service {
	t.Helper()
	dir := t.TempDir()
	return core.New(ledger.NewFileStore(dir), calendar.NewLog(dir), testutil.FixedClock(), dir)
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestExcuseHandler_RecordsGeneration(t *testing.T) {
	svc := newTestCore(t)
	h := ExcuseHandler(&stubGenerator{}, svc, nil)

	rec := postJSON(t, h, "/api/excuse", map[string]string{
		"scenario": "late again",
		"urgency":  "critical",
		"language": "en",
		"style":    "professional",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["english"] != "excuse for late again" || resp["translated"] != "translated excuse" {
		t.Errorf("response = %v", resp)
	}

	ranked, _ := svc.Rankings(model.Excuse)
	if len(ranked) != 1 {
		t.Fatalf("rankings = %v", ranked)
	}
	// count 1 + critical 4
	if ranked[0].Score != 5 {
		t.Errorf("score = %d, want 5", ranked[0].Score)
	}
	if got := svc.Latest(); got.Category != model.Excuse {
		t.Errorf("latest = %+v", got)
	}
}

func TestExcuseHandler_UpstreamFailureRecordsNothing(t *testing.T) {
	svc := newTestCore(t)
	h := ExcuseHandler(&stubGenerator{broken: true}, svc, nil)

	rec := postJSON(t, h, "/api/excuse", map[string]string{"scenario": "x"})
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if got := len(svc.History(model.Excuse)); got != 0 {
		t.Errorf("history has %d entries after failed generation", got)
	}
}

func TestExcuseHandler_MissingScenario(t *testing.T) {
	h := ExcuseHandler(&stubGenerator{}, newTestCore(t), nil)

	rec := postJSON(t, h, "/api/excuse", map[string]string{"urgency": "high"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestApologyHandler_RecordsGeneration(t *testing.T) {
	svc := newTestCore(t)
	h := ApologyHandler(&stubGenerator{}, svc, nil)

	rec := postJSON(t, h, "/api/apology", map[string]string{
		"context": "missed the meeting",
		"tone":    "formal",
		"type":    "personal",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if got := len(svc.Calendar(model.Apology)); got != 1 {
		t.Errorf("calendar entries = %d, want 1", got)
	}
	if got := svc.Latest(); got.Category != model.Apology {
		t.Errorf("latest = %+v", got)
	}
}

func TestFavoriteFlow(t *testing.T) {
	svc := newTestCore(t)
	gen := ExcuseHandler(&stubGenerator{}, svc, nil)
	fav := AddFavoriteHandler(svc, model.Excuse, nil)

	postJSON(t, gen, "/api/excuse", map[string]string{"scenario": "s"})

	rec := postJSON(t, fav, "/api/favorite", nil)
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["result"] != "added" {
		t.Errorf("first favorite result = %q", resp["result"])
	}
	if !strings.Contains(resp["message"], "added to favourites") {
		t.Errorf("message = %q", resp["message"])
	}

	rec = postJSON(t, fav, "/api/favorite", nil)
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["result"] != "already_present" {
		t.Errorf("second favorite result = %q", resp["result"])
	}
}

func TestFavorite_WrongCategory(t *testing.T) {
	svc := newTestCore(t)
	gen := ApologyHandler(&stubGenerator{}, svc, nil)
	fav := AddFavoriteHandler(svc, model.Excuse, nil)

	postJSON(t, gen, "/api/apology", map[string]string{"context": "c"})

	rec := postJSON(t, fav, "/api/favorite", nil)
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["result"] != "nothing_to_add" {
		t.Errorf("result = %q, want nothing_to_add", resp["result"])
	}
}

func TestClearRankingsHandler_Messages(t *testing.T) {
	svc := newTestCore(t)

	rec := postJSON(t, ClearRankingsHandler(svc, model.Excuse), "/api/clear-rankings", nil)
	if !strings.Contains(rec.Body.String(), "Smart rankings cleared.") {
		t.Errorf("excuse clear message = %s", rec.Body.String())
	}

	rec = postJSON(t, ClearRankingsHandler(svc, model.Apology), "/api/clear-apology-rankings", nil)
	if !strings.Contains(rec.Body.String(), "Top apologies cleared.") {
		t.Errorf("apology clear message = %s", rec.Body.String())
	}
}

func TestSaveApologyHistoryHandler(t *testing.T) {
	svc := newTestCore(t)
	h := SaveApologyHistoryHandler(svc)

	rec := postJSON(t, h, "/api/save-apology-history", map[string]string{
		"text": "manually saved",
		"time": "2026-03-01 08:00",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := len(svc.History(model.Apology)); got != 1 {
		t.Errorf("history = %d entries, want 1", got)
	}

	rec = postJSON(t, h, "/api/save-apology-history", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d for empty text, want 400", rec.Code)
	}
}

func TestHistoryAndCalendarHandlers(t *testing.T) {
	svc := newTestCore(t)
	postJSON(t, ExcuseHandler(&stubGenerator{}, svc, nil), "/api/excuse", map[string]string{"scenario": "s"})

	req := httptest.NewRequest("GET", "/api/history", nil)
	rec := httptest.NewRecorder()
	HistoryHandler(svc, model.Excuse)(rec, req)
	var hist struct {
		History []model.HistoryEntry `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
		t.Fatal(err)
	}
	if len(hist.History) != 1 {
		t.Errorf("history = %v", hist.History)
	}

	req = httptest.NewRequest("GET", "/api/calendar", nil)
	rec = httptest.NewRecorder()
	CalendarHandler(svc, model.Excuse)(rec, req)
	var cal []model.CalendarEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &cal); err != nil {
		t.Fatal(err)
	}
	if len(cal) != 1 {
		t.Errorf("calendar = %v", cal)
	}
}

func TestProofHandler(t *testing.T) {
	svc := newTestCore(t)
	postJSON(t, ApologyHandler(&stubGenerator{}, svc, nil), "/api/apology", map[string]string{"context": "c"})

	req := httptest.NewRequest("GET", "/api/proof", nil)
	rec := httptest.NewRecorder()
	ProofHandler(svc)(rec, req)

	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["label"] != "Apology" {
		t.Errorf("label = %q, want Apology", resp["label"])
	}
	if resp["message"] != "apology for c" {
		t.Errorf("message = %q", resp["message"])
	}
}

func TestAdjustToneHandler(t *testing.T) {
	h := AdjustToneHandler(&stubGenerator{})

	rec := postJSON(t, h, "/api/adjust-tone", map[string]string{"tone": "warm", "text": "sorry"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "warm: sorry") {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = postJSON(t, h, "/api/adjust-tone", map[string]string{"tone": "warm"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d for missing text, want 400", rec.Code)
	}
}
