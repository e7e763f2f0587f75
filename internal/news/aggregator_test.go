package news

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hoanghai1803/tickerwire/internal/models"
)

// fakeFinnhub serves canned /news and /company-news responses and records
// every request it receives.
type fakeFinnhub struct {
	mu       sync.Mutex
	general  any
	company  map[string]any
	failures map[string]int // symbol (or "general") -> status code
	requests []string
}

func (f *fakeFinnhub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := "general"
	payload := f.general
	if r.URL.Path == "/company-news" {
		key = r.URL.Query().Get("symbol")
		payload = f.company[key]
	}
	f.requests = append(f.requests, key)

	if code, ok := f.failures[key]; ok {
		http.Error(w, "upstream failure", code)
		return
	}
	if payload == nil {
		payload = []any{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func (f *fakeFinnhub) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// newTestAggregator wires an Aggregator to fake with a fixed clock.
func newTestAggregator(t *testing.T, fake *fakeFinnhub, apiKey string) *Aggregator {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	agg := NewAggregator(NewClient(apiKey, srv.URL), DefaultLookbackDays)
	agg.now = func() time.Time { return time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC) }
	return agg
}

func raw(id int, headline, url string, datetime int64) map[string]any {
	return map[string]any{
		"id":       id,
		"headline": headline,
		"url":      url,
		"datetime": datetime,
		"summary":  "summary of " + headline,
		"source":   "Reuters",
		"category": "general",
	}
}

func assertSortedNewestFirst(t *testing.T, articles []models.Article) {
	t.Helper()
	for i := 1; i < len(articles); i++ {
		if articles[i-1].Datetime < articles[i].Datetime {
			t.Errorf("articles[%d].Datetime = %d < articles[%d].Datetime = %d",
				i-1, articles[i-1].Datetime, i, articles[i].Datetime)
		}
	}
}

func TestGetNews_GeneralDedupAndValidation(t *testing.T) {
	fake := &fakeFinnhub{
		general: []any{
			raw(1, "One", "https://n.com/1", 100),
			map[string]any{"id": 2, "url": "https://n.com/2", "datetime": 200},
			raw(3, "Three", "https://n.com/3", 300),
			raw(1, "One", "https://n.com/1", 150),
			raw(4, "Four", "https://n.com/4", 400),
			map[string]any{"id": 5, "headline": "", "url": "https://n.com/5", "datetime": 500},
			raw(6, "Six", "https://n.com/6", 50),
			raw(7, "Seven", "https://n.com/7", 700),
		},
	}
	agg := newTestAggregator(t, fake, "k")

	got, err := agg.GetNews(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetNews() error: %v", err)
	}

	wantHeadlines := []string{"Seven", "Four", "Three", "One", "Six"}
	if len(got) != len(wantHeadlines) {
		t.Fatalf("got %d articles, want %d", len(got), len(wantHeadlines))
	}
	for i, want := range wantHeadlines {
		if got[i].Headline != want {
			t.Errorf("got[%d].Headline = %q, want %q", i, got[i].Headline, want)
		}
		if got[i].IsSymbolScoped {
			t.Errorf("got[%d] should not be symbol scoped", i)
		}
	}

	// The first occurrence of the duplicate wins.
	if got[3].Datetime != 100 {
		t.Errorf("duplicate kept datetime %d, want 100", got[3].Datetime)
	}

	seen := make(map[string]bool)
	for _, a := range got {
		key := a.ID + "-" + a.URL + "-" + a.Headline
		if seen[key] {
			t.Errorf("duplicate key %q in result", key)
		}
		seen[key] = true
	}
}

func TestGetNews_NeverEmitsNonPositiveDatetime(t *testing.T) {
	fake := &fakeFinnhub{
		general: []any{
			map[string]any{"id": 1, "headline": "h", "url": "https://n.com/1", "datetime": 0.5},
			map[string]any{"id": 2, "headline": "k", "url": "https://n.com/2", "datetime": 1760000000.75},
		},
		company: map[string]any{
			"AAPL": []any{
				map[string]any{"id": 3, "headline": "a", "url": "https://n.com/3", "datetime": 0.9},
				raw(4, "b", "https://n.com/4", 1760000001),
			},
		},
	}
	agg := newTestAggregator(t, fake, "k")

	for _, symbols := range [][]string{nil, {"AAPL"}} {
		got, err := agg.GetNews(context.Background(), symbols)
		if err != nil {
			t.Fatalf("GetNews(%v) error: %v", symbols, err)
		}
		if len(got) != 1 {
			t.Fatalf("GetNews(%v) got %d articles, want 1", symbols, len(got))
		}
		for _, a := range got {
			if a.Datetime <= 0 {
				t.Errorf("GetNews(%v) emitted datetime %d for %q", symbols, a.Datetime, a.Headline)
			}
		}
	}
}

func TestGetNews_GeneralCapsAtSix(t *testing.T) {
	var items []any
	for i := range 10 {
		items = append(items, raw(i, "Headline", "https://n.com/"+string(rune('a'+i)), int64(1000+i)))
	}
	fake := &fakeFinnhub{general: items}
	agg := newTestAggregator(t, fake, "k")

	got, err := agg.GetNews(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetNews() error: %v", err)
	}
	if len(got) != MaxArticles {
		t.Fatalf("got %d articles, want %d", len(got), MaxArticles)
	}

	// Truncation keeps the first six in upstream order, then sorts.
	if got[0].Datetime != 1005 || got[5].Datetime != 1000 {
		t.Errorf("got datetimes %d..%d, want 1005..1000", got[0].Datetime, got[5].Datetime)
	}
	assertSortedNewestFirst(t, got)
}

func TestGetNews_EmptyUpstream(t *testing.T) {
	tests := []struct {
		name    string
		general any
	}{
		{"empty array", []any{}},
		{"all invalid", []any{map[string]any{"headline": "x"}}},
		{"not an array", map[string]any{"error": "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := newTestAggregator(t, &fakeFinnhub{general: tt.general}, "k")

			got, err := agg.GetNews(context.Background(), nil)
			if err != nil {
				t.Fatalf("GetNews() error: %v", err)
			}
			if got == nil {
				t.Fatal("got nil slice, want empty")
			}
			if len(got) != 0 {
				t.Errorf("got %d articles, want 0", len(got))
			}
		})
	}
}

func TestGetNews_SymbolRounds(t *testing.T) {
	fake := &fakeFinnhub{
		company: map[string]any{
			"AAPL": []any{
				map[string]any{"headline": "", "url": "https://n.com/bad", "datetime": 999},
				raw(10, "Apple first", "https://n.com/aapl1", 500),
				raw(11, "Apple second", "https://n.com/aapl2", 900),
			},
			"MSFT": []any{
				raw(20, "Microsoft first", "https://n.com/msft1", 800),
			},
		},
	}
	agg := newTestAggregator(t, fake, "k")

	got, err := agg.GetNews(context.Background(), []string{" aapl ", "msft"})
	if err != nil {
		t.Fatalf("GetNews() error: %v", err)
	}

	if reqs := fake.seen(); len(reqs) != 2 || reqs[0] != "AAPL" || reqs[1] != "MSFT" {
		t.Errorf("requests = %v, want [AAPL MSFT]", reqs)
	}
	if len(got) != 2 {
		t.Fatalf("got %d articles, want 2", len(got))
	}

	msft, aapl := got[0], got[1]
	if msft.Headline != "Microsoft first" || msft.RelatedSymbol != "MSFT" {
		t.Errorf("got[0] = %q/%q, want Microsoft first/MSFT", msft.Headline, msft.RelatedSymbol)
	}
	if msft.RoundIndex == nil || *msft.RoundIndex != 1 {
		t.Errorf("MSFT RoundIndex = %v, want 1", msft.RoundIndex)
	}
	if aapl.Headline != "Apple first" || aapl.RelatedSymbol != "AAPL" {
		t.Errorf("got[1] = %q/%q, want Apple first/AAPL", aapl.Headline, aapl.RelatedSymbol)
	}
	if aapl.RoundIndex == nil || *aapl.RoundIndex != 0 {
		t.Errorf("AAPL RoundIndex = %v, want 0", aapl.RoundIndex)
	}
	for _, a := range got {
		if !a.IsSymbolScoped {
			t.Errorf("%s should be symbol scoped", a.Headline)
		}
	}
}

func TestGetNews_SymbolRoundFailureIsAbsorbed(t *testing.T) {
	fake := &fakeFinnhub{
		company: map[string]any{
			"AAPL": []any{raw(1, "Apple", "https://n.com/a", 100)},
			"NVDA": []any{raw(3, "Nvidia", "https://n.com/n", 300)},
		},
		failures: map[string]int{"MSFT": http.StatusInternalServerError},
	}
	agg := newTestAggregator(t, fake, "k")

	got, err := agg.GetNews(context.Background(), []string{"AAPL", "MSFT", "NVDA"})
	if err != nil {
		t.Fatalf("GetNews() error: %v", err)
	}

	if reqs := fake.seen(); len(reqs) != 3 {
		t.Errorf("requests = %v, want 3 rounds", reqs)
	}
	if len(got) != 2 {
		t.Fatalf("got %d articles, want 2", len(got))
	}
	if got[0].RelatedSymbol != "NVDA" || got[1].RelatedSymbol != "AAPL" {
		t.Errorf("symbols = %s,%s, want NVDA,AAPL", got[0].RelatedSymbol, got[1].RelatedSymbol)
	}
}

func TestGetNews_SymbolRoundsCappedAtSix(t *testing.T) {
	symbols := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	company := make(map[string]any)
	for i, s := range symbols {
		company[s] = []any{raw(i, "News "+s, "https://n.com/"+s, int64(100+i))}
	}
	fake := &fakeFinnhub{company: company}
	agg := newTestAggregator(t, fake, "k")

	got, err := agg.GetNews(context.Background(), symbols)
	if err != nil {
		t.Fatalf("GetNews() error: %v", err)
	}

	reqs := fake.seen()
	if len(reqs) != MaxArticles {
		t.Fatalf("made %d requests, want %d", len(reqs), MaxArticles)
	}
	for _, r := range reqs {
		if r == "G" || r == "H" {
			t.Errorf("symbol %s beyond the round cap was requested", r)
		}
	}
	if len(got) != MaxArticles {
		t.Errorf("got %d articles, want %d", len(got), MaxArticles)
	}
	assertSortedNewestFirst(t, got)
}

func TestGetNews_TiesKeepRoundOrder(t *testing.T) {
	fake := &fakeFinnhub{
		company: map[string]any{
			"AAA": []any{raw(1, "first", "https://n.com/1", 500)},
			"BBB": []any{raw(2, "second", "https://n.com/2", 500)},
			"CCC": []any{raw(3, "third", "https://n.com/3", 500)},
		},
	}
	agg := newTestAggregator(t, fake, "k")

	got, err := agg.GetNews(context.Background(), []string{"AAA", "BBB", "CCC"})
	if err != nil {
		t.Fatalf("GetNews() error: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if got[i].Headline != want {
			t.Errorf("got[%d] = %q, want %q", i, got[i].Headline, want)
		}
	}
}

func TestGetNews_BlankSymbolsFallBackToGeneral(t *testing.T) {
	tests := []struct {
		name    string
		symbols []string
	}{
		{"nil", nil},
		{"empty", []string{}},
		{"whitespace", []string{"  ", "\t", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeFinnhub{general: []any{raw(1, "Market", "https://n.com/m", 100)}}
			agg := newTestAggregator(t, fake, "k")

			got, err := agg.GetNews(context.Background(), tt.symbols)
			if err != nil {
				t.Fatalf("GetNews() error: %v", err)
			}
			if reqs := fake.seen(); len(reqs) != 1 || reqs[0] != "general" {
				t.Errorf("requests = %v, want [general]", reqs)
			}
			if len(got) != 1 || got[0].IsSymbolScoped {
				t.Errorf("got %+v, want one general article", got)
			}
		})
	}
}

func TestGetNews_MissingAPIKey(t *testing.T) {
	fake := &fakeFinnhub{}
	agg := newTestAggregator(t, fake, "")

	for _, symbols := range [][]string{nil, {"AAPL"}} {
		_, err := agg.GetNews(context.Background(), symbols)
		if !errors.Is(err, ErrMissingAPIKey) {
			t.Errorf("GetNews(%v) error = %v, want ErrMissingAPIKey", symbols, err)
		}
		if !errors.Is(err, ErrAggregation) {
			t.Errorf("GetNews(%v) error = %v, want ErrAggregation", symbols, err)
		}
	}

	if reqs := fake.seen(); len(reqs) != 0 {
		t.Errorf("made %d requests, want 0", len(reqs))
	}
}

func TestGetNews_GeneralFailureAborts(t *testing.T) {
	fake := &fakeFinnhub{failures: map[string]int{"general": http.StatusBadGateway}}
	agg := newTestAggregator(t, fake, "k")

	got, err := agg.GetNews(context.Background(), nil)
	if !errors.Is(err, ErrAggregation) {
		t.Fatalf("error = %v, want ErrAggregation", err)
	}
	if got != nil {
		t.Errorf("got %d articles alongside error, want nil", len(got))
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadGateway {
		t.Errorf("error = %v, want wrapped 502 StatusError", err)
	}
}

func TestNormalizeSymbols(t *testing.T) {
	got := NormalizeSymbols([]string{" aapl", "", "msft ", "  ", "Tsla"})
	want := []string{"AAPL", "MSFT", "TSLA"}

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
