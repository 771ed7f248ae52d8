package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"alibi-backend/internal/db"
)

// Envelope is what we store with every event.
type Envelope struct {
	SessionID    string
	Platform     string
	AppVersion   string
	DeviceLocale string
}

// FromRequest extracts event envelope fields from request.
// Backend-trustable fields only.
func FromRequest(r *http.Request) Envelope {
	platform := strings.TrimSpace(r.Header.Get("X-Platform"))
	if platform == "" {
		platform = "unknown"
	} else {
		platform = strings.ToLower(platform)
		if platform != "ios" && platform != "android" && platform != "web" {
			platform = "unknown"
		}
	}

	locale := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if locale == "" {
		locale = strings.TrimSpace(r.Header.Get("X-Device-Locale"))
	}

	return Envelope{
		SessionID:    strings.TrimSpace(r.Header.Get("X-Session-Id")),
		Platform:     platform,
		AppVersion:   strings.TrimSpace(r.Header.Get("X-App-Version")),
		DeviceLocale: locale,
	}
}

// Client-provided idempotency key (optional)
// If present and duplicates, insert is ignored.
func SourceEventKeyFromRequest(r *http.Request) string {
	k := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if k != "" {
		return k
	}
	return strings.TrimSpace(r.Header.Get("X-Source-Event-Key"))
}

// Sink writes usage events to Postgres. A nil Sink drops everything, so the
// core flow never depends on the analytics database being configured.
type Sink struct {
	db *sql.DB
}

// Open connects the sink; an empty DSN disables analytics.
func Open(dsn string) (*Sink, error) {
	if dsn == "" {
		return nil, nil
	}
	database, err := db.Connect(dsn)
	if err != nil {
		return nil, err
	}
	return &Sink{db: database}, nil
}

// Log inserts one analytics event.
// Never logs raw generated text; caller passes sanitized props.
func (s *Sink) Log(ctx context.Context, env Envelope, eventName string, props any, sourceEventKey string) error {
	if s == nil || eventName == "" {
		return nil
	}

	b, err := json.Marshal(props)
	if err != nil {
		// if props can't marshal, don't break core flow
		return nil
	}

	// If source_event_key duplicates -> do nothing
	if sourceEventKey != "" {
		_, _ = s.db.ExecContext(ctx, `
			INSERT INTO analytics_events (
				event_name, event_time,
				session_id, platform, app_version, device_locale,
				source_event_key,
				properties
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb)
			ON CONFLICT (source_event_key) DO NOTHING
		`, eventName, time.Now().UTC(),
			nullIfEmpty(env.SessionID), env.Platform, env.AppVersion, nullIfEmpty(env.DeviceLocale),
			sourceEventKey,
			string(b),
		)
		return nil
	}

	_, _ = s.db.ExecContext(ctx, `
		INSERT INTO analytics_events (
			event_name, event_time,
			session_id, platform, app_version, device_locale,
			properties
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
	`, eventName, time.Now().UTC(),
		nullIfEmpty(env.SessionID), env.Platform, env.AppVersion, nullIfEmpty(env.DeviceLocale),
		string(b),
	)

	return nil
}

func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
