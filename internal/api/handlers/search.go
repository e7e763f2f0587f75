package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/tickerwire/internal/news"
)

// SearchStocks handles GET /api/search?q=. It returns matching ticker
// symbols; a blank query returns an empty list.
func SearchStocks(searcher *news.Searcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")

		matches, err := searcher.Search(r.Context(), query)
		if err != nil {
			slog.Error("stock search failed", "query", query, "error", err)
			writeNewsError(w, err, "Failed to search stocks")
			return
		}

		writeJSON(w, http.StatusOK, matches)
	}
}
