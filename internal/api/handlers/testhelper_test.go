package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/hoanghai1803/tickerwire/internal/mailer"
	"github.com/hoanghai1803/tickerwire/internal/models"
	"github.com/hoanghai1803/tickerwire/internal/news"
	"github.com/hoanghai1803/tickerwire/internal/storage"
)

// newTestStore creates an in-memory SQLite store with migrations applied. It
// registers a cleanup function to close the database when the test
// completes.
func newTestStore(t *testing.T) *storage.Store {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return storage.NewStore(db)
}

// seedUser registers a user and returns its ID.
func seedUser(t *testing.T, store *storage.Store, email string) int64 {
	t.Helper()
	id, err := store.CreateUser(context.Background(), &models.User{Email: email, Name: "Test"})
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return id
}

// finnhubStub serves canned upstream responses keyed by path and symbol.
type finnhubStub struct {
	mu       sync.Mutex
	general  []map[string]any
	company  map[string][]map[string]any
	status   int
	requests []string
}

func (f *finnhubStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.URL.Path+"?"+r.URL.Query().Get("symbol"))
	if f.status != 0 {
		http.Error(w, "upstream failure", f.status)
		return
	}

	var payload any = f.general
	switch r.URL.Path {
	case "/company-news":
		payload = f.company[r.URL.Query().Get("symbol")]
	case "/search":
		payload = map[string]any{
			"count": 1,
			"result": []map[string]any{{
				"description":   "APPLE INC",
				"displaySymbol": "AAPL",
				"symbol":        "AAPL",
				"type":          "Common Stock",
			}},
		}
	}
	if payload == nil {
		payload = []any{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func (f *finnhubStub) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// newTestFinnhub starts stub and returns its base URL.
func newTestFinnhub(t *testing.T, stub *finnhubStub) string {
	t.Helper()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	return srv.URL
}

func article(id int, headline string, datetime int64) map[string]any {
	return map[string]any{
		"id":       id,
		"headline": headline,
		"url":      "https://example.com/" + headline,
		"datetime": datetime,
		"source":   "Reuters",
	}
}

func newTestAggregator(apiKey, baseURL string) *news.Aggregator {
	return news.NewAggregator(news.NewClient(apiKey, baseURL), news.DefaultLookbackDays)
}

// recordingTransport captures outgoing mail.
type recordingTransport struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (r *recordingTransport) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingTransport) messages() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mailer.Message(nil), r.sent...)
}

