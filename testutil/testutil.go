// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/db"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/refresh"
	"github.com/danielhkuo/livepoll/store"
	"github.com/danielhkuo/livepoll/vote"
)

// SetupTestDB opens a fresh sqlite database in a temp dir with the schema applied
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(cliparse.DatabaseSQLite, filepath.Join(t.TempDir(), "livepoll.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	cfg := cliparse.Defaults()
	cfg.DatabaseURL = ":memory:"
	cfg.LogSalt = "test-log-salt"
	cfg.Voting.SeedSamples = false
	cfg.Refresh.Interval = cliparse.Duration{Duration: time.Hour}
	return cfg
}

// Recorder is a vote.Publisher that keeps every event it receives
type Recorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *Recorder) Publish(ctx context.Context, ev models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Event(nil), r.events...)
}

// App bundles the pieces a handler test needs
type App struct {
	Config    cliparse.Config
	Store     *store.Store
	Processor *vote.Processor
	Loop      *refresh.Loop
	Events    *Recorder
}

// SetupApp wires a processor and refresh loop over a fresh database. When
// seed is true the sample polls are written first.
func SetupApp(t *testing.T, cfg cliparse.Config, seed bool) *App {
	t.Helper()

	st := store.New(store.NewSQLKV(SetupTestDB(t)))
	rec := &Recorder{}
	proc := vote.NewProcessor(st, rec, vote.PolicyFromConfig(cfg.Voting), cfg.Currency)

	if seed {
		if _, err := proc.Seed(context.Background()); err != nil {
			t.Fatalf("Failed to seed sample polls: %v", err)
		}
	}

	loop := refresh.NewLoop(st, cfg.Refresh.Interval.Duration)
	loop.Refresh(context.Background())

	return &App{Config: cfg, Store: st, Processor: proc, Loop: loop, Events: rec}
}

// CastTestVote submits a ballot and refreshes the loop
func CastTestVote(t *testing.T, app *App, pollID string, option int, name string, donation float64) vote.Receipt {
	t.Helper()

	rcpt, err := app.Processor.Submit(context.Background(), vote.Ballot{
		PollID:      pollID,
		OptionIndex: &option,
		VoterName:   name,
		Donation:    donation,
	})
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}
	app.Loop.Refresh(context.Background())

	return rcpt
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
