package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hoanghai1803/tickerwire/internal/models"
	"github.com/hoanghai1803/tickerwire/internal/storage"
)

// lookupUser resolves the email query or body value to a user, writing the
// error response itself when it fails.
func lookupUser(w http.ResponseWriter, r *http.Request, store *storage.Store, email string) (*models.User, bool) {
	email = strings.TrimSpace(email)
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return nil, false
	}

	user, err := store.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return nil, false
		}
		slog.Error("failed to look up user", "email", email, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to look up user")
		return nil, false
	}
	return user, true
}

// GetWatchlist handles GET /api/watchlist?email=. It returns the user's
// watchlist, most recently added first.
func GetWatchlist(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := lookupUser(w, r, store, r.URL.Query().Get("email"))
		if !ok {
			return
		}

		items, err := store.GetWatchlist(r.Context(), user.ID)
		if err != nil {
			slog.Error("failed to get watchlist", "user_id", user.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to get watchlist")
			return
		}

		if items == nil {
			items = []models.WatchlistItem{}
		}

		writeJSON(w, http.StatusOK, items)
	}
}

// AddToWatchlist handles POST /api/watchlist. The body carries the user's
// email plus the symbol and optional company name.
func AddToWatchlist(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email   string `json:"email"`
			Symbol  string `json:"symbol"`
			Company string `json:"company"`
		}
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		symbol := strings.ToUpper(strings.TrimSpace(body.Symbol))
		if symbol == "" {
			writeError(w, http.StatusBadRequest, "symbol is required")
			return
		}

		user, ok := lookupUser(w, r, store, body.Email)
		if !ok {
			return
		}

		company := strings.TrimSpace(body.Company)
		if company == "" {
			company = symbol
		}

		item, err := store.AddToWatchlist(r.Context(), user.ID, symbol, company)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				writeError(w, http.StatusConflict, symbol+" is already in the watchlist")
				return
			}
			slog.Error("failed to add to watchlist", "user_id", user.ID, "symbol", symbol, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to add to watchlist")
			return
		}

		writeJSON(w, http.StatusCreated, item)
	}
}

// RemoveFromWatchlist handles DELETE /api/watchlist/{symbol}?email=.
func RemoveFromWatchlist(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol, err := parseSymbol(r, "symbol")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		user, ok := lookupUser(w, r, store, r.URL.Query().Get("email"))
		if !ok {
			return
		}

		if err := store.RemoveFromWatchlist(r.Context(), user.ID, symbol); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Watchlist item not found")
				return
			}
			slog.Error("failed to remove from watchlist", "user_id", user.ID, "symbol", symbol, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to remove from watchlist")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
	}
}
