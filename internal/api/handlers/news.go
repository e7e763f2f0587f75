package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/hoanghai1803/tickerwire/internal/news"
	"github.com/hoanghai1803/tickerwire/internal/storage"
)

// GetNews handles GET /api/news. With a "symbols" query parameter
// (comma-separated) it returns watchlist-style round-robin news for those
// symbols; without it, general market news.
func GetNews(agg *news.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbols := parseSymbols(r.URL.Query().Get("symbols"))

		articles, err := agg.GetNews(r.Context(), symbols)
		if err != nil {
			writeNewsError(w, err, "Failed to fetch news")
			return
		}

		writeJSON(w, http.StatusOK, articles)
	}
}

// GetWatchlistNews handles GET /api/watchlist/news?email=. It resolves the
// user's watchlist symbols and returns news for them. An unknown user or an
// empty watchlist yields general market news.
func GetWatchlistNews(store *storage.Store, agg *news.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		email := strings.TrimSpace(r.URL.Query().Get("email"))
		if email == "" {
			writeError(w, http.StatusBadRequest, "email is required")
			return
		}

		symbols := store.GetWatchlistSymbolsByEmail(ctx, email)
		slog.Debug("watchlist news", "email", email, "symbols", symbols)

		articles, err := agg.GetNews(ctx, symbols)
		if err != nil {
			writeNewsError(w, err, "Failed to fetch news")
			return
		}

		writeJSON(w, http.StatusOK, articles)
	}
}
