package main

import (
	"log"
	"net/http"
	"time"

	"github.com/rs/cors"

	"alibi-backend/internal/ai"
	"alibi-backend/internal/analytics"
	"alibi-backend/internal/api"
	"alibi-backend/internal/auth"
	"alibi-backend/internal/calendar"
	"alibi-backend/internal/config"
	"alibi-backend/internal/core"
	"alibi-backend/internal/ledger"
	"alibi-backend/internal/memory"
	"alibi-backend/internal/model"
	"alibi-backend/internal/notify"
	"alibi-backend/internal/schedule"
	"alibi-backend/internal/screenshot"
)

func main() {
	cfg := config.Load()

	store, err := ledger.Open(cfg.LedgerBackend, cfg.DataDir)
	if err != nil {
		log.Fatal("❌ Failed to open ledger:", err)
	}
	defer store.Close()
	log.Printf("✅ Ledger ready (%s backend)", cfg.LedgerBackend)

	memStore, err := memory.Open(cfg.DataDir + "/memory.db")
	if err != nil {
		log.Fatal("❌ Failed to open memory db:", err)
	}
	defer memStore.Close()

	sink, err := analytics.Open(cfg.AnalyticsDSN)
	if err != nil {
		log.Println("⚠️ Analytics disabled:", err)
		sink = nil
	} else if sink != nil {
		log.Println("✅ Connected to PostgreSQL (analytics)")
	}

	clock := schedule.RealClock{}
	ids := schedule.UUIDGenerator{}

	svc := core.New(store, calendar.NewLog(cfg.DataDir), clock, cfg.DataDir)
	gen := ai.New(cfg.OpenAIKey, cfg.OpenAIModel)
	shot := screenshot.New(cfg.ScreenshotAPIURL, cfg.DataDir)
	dispatcher := notify.NewDispatcher(
		cfg.SMTPHost, cfg.SMTPPort,
		cfg.EmailUsername, cfg.EmailPassword, cfg.EmailRecipients,
		cfg.DataDir, cfg.AlertSoundCmd,
		clock, ids,
	)

	sched := schedule.New(clock, ids)
	defer sched.Stop()

	// Раз в 30 минут чиним календарь из latest pointer
	sched.Every(30*time.Minute, svc.FallbackSync)

	adminMw := auth.New([]byte(cfg.JWTSecret))

	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// ----- GENERATION -----
	mux.HandleFunc("/api/excuse", post(api.ExcuseHandler(gen, svc, sink)))
	mux.HandleFunc("/api/apology", post(api.ApologyHandler(gen, svc, sink)))
	mux.HandleFunc("/api/adjust-tone", post(api.AdjustToneHandler(gen)))
	mux.HandleFunc("/api/complete-apology", post(api.CompleteApologyHandler(gen)))
	mux.HandleFunc("/api/guilt-score", post(api.GuiltScoreHandler(gen)))

	// ----- EXCUSE DATA -----
	mux.HandleFunc("/api/history", get(api.HistoryHandler(svc, model.Excuse)))
	mux.HandleFunc("/api/calendar", get(api.CalendarHandler(svc, model.Excuse)))
	mux.HandleFunc("/api/rankings", get(api.RankingsHandler(svc, model.Excuse)))
	mux.HandleFunc("/api/favorite", post(api.AddFavoriteHandler(svc, model.Excuse, sink)))
	mux.HandleFunc("/api/favorites", get(api.FavoritesHandler(svc, model.Excuse)))
	mux.HandleFunc("/api/clear-rankings", post(adminMw.Wrap(api.ClearRankingsHandler(svc, model.Excuse))))

	// ----- APOLOGY DATA -----
	mux.HandleFunc("/api/apology-history", get(api.HistoryHandler(svc, model.Apology)))
	mux.HandleFunc("/api/apology-calendar", get(api.CalendarHandler(svc, model.Apology)))
	mux.HandleFunc("/api/top-apologies", get(api.RankingsHandler(svc, model.Apology)))
	mux.HandleFunc("/api/apology-favorite", post(api.AddFavoriteHandler(svc, model.Apology, sink)))
	mux.HandleFunc("/api/apology-favorites", get(api.FavoritesHandler(svc, model.Apology)))
	mux.HandleFunc("/api/save-apology-history", post(api.SaveApologyHistoryHandler(svc)))
	mux.HandleFunc("/api/clear-apology-rankings", post(adminMw.Wrap(api.ClearRankingsHandler(svc, model.Apology))))

	// ----- PROOF / EMERGENCY -----
	proofURL := "http://127.0.0.1" + cfg.Addr() + "/api/proof"
	mux.HandleFunc("/api/proof", get(api.ProofHandler(svc)))
	mux.HandleFunc("/api/screenshot", post(api.ScreenshotHandler(shot, proofURL)))
	mux.HandleFunc("/api/emergency", post(api.EmergencyHandler(dispatcher, sink)))
	mux.HandleFunc("/api/schedule", post(api.ScheduleHandler(sched, dispatcher, clock, sink)))

	// ----- MEMORY -----
	mux.HandleFunc("/api/memory", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			api.MemoryLookupHandler(memStore)(w, r)
		case http.MethodPost:
			api.MemorySaveHandler(memStore)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// ----- ADMIN -----
	mux.HandleFunc("/api/admin/login", post(auth.LoginHandler(cfg.AdminPassword, []byte(cfg.JWTSecret))))
	mux.HandleFunc("/admin/log", get(adminMw.Wrap(api.AdminLogHandler(dispatcher))))
	mux.HandleFunc("/admin/analytics", get(adminMw.Wrap(analytics.SummaryHandler(sink))))

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	log.Println("🚀 API server is running on", cfg.Addr())
	log.Fatal(http.ListenAndServe(cfg.Addr(), handler))
}

func post(h http.HandlerFunc) http.HandlerFunc {
	return allow(http.MethodPost, h)
}

func get(h http.HandlerFunc) http.HandlerFunc {
	return allow(http.MethodGet, h)
}

func allow(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case method:
			h(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
