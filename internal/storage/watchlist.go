package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hoanghai1803/tickerwire/internal/models"
)

// AddToWatchlist adds symbol (uppercased) to the user's watchlist.
// It returns ErrDuplicate if the symbol is already present.
func (s *Store) AddToWatchlist(ctx context.Context, userID int64, symbol, company string) (*models.WatchlistItem, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, errors.New("symbol is required")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO watchlist (user_id, symbol, company) VALUES (?, ?, ?)`,
		userID, symbol, strings.TrimSpace(company))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("adding %s to watchlist of user %d: %w", symbol, userID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting watchlist item id: %w", err)
	}

	var (
		item    models.WatchlistItem
		addedAt string
	)
	if err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, symbol, company, added_at FROM watchlist WHERE id = ?`, id,
	).Scan(&item.ID, &item.UserID, &item.Symbol, &item.Company, &addedAt); err != nil {
		return nil, fmt.Errorf("reading watchlist item %d: %w", id, err)
	}
	item.AddedAt = parseTime(addedAt)
	return &item, nil
}

// RemoveFromWatchlist deletes symbol from the user's watchlist.
// It returns ErrNotFound if the symbol was not on the list.
func (s *Store) RemoveFromWatchlist(ctx context.Context, userID int64, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM watchlist WHERE user_id = ? AND symbol = ?`, userID, symbol)
	if err != nil {
		return fmt.Errorf("removing %s from watchlist of user %d: %w", symbol, userID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetWatchlist returns the user's watchlist, most recently added first.
func (s *Store) GetWatchlist(ctx context.Context, userID int64) ([]models.WatchlistItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, symbol, company, added_at
		 FROM watchlist WHERE user_id = ?
		 ORDER BY added_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying watchlist of user %d: %w", userID, err)
	}
	defer rows.Close()

	items := []models.WatchlistItem{}
	for rows.Next() {
		var (
			item    models.WatchlistItem
			addedAt string
		)
		if err := rows.Scan(&item.ID, &item.UserID, &item.Symbol, &item.Company, &addedAt); err != nil {
			return nil, fmt.Errorf("scanning watchlist row: %w", err)
		}
		item.AddedAt = parseTime(addedAt)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating watchlist rows: %w", err)
	}
	return items, nil
}

// GetWatchlistSymbolsByEmail returns the watchlist symbols of the user with
// the given email. Unknown users and lookup failures yield an empty slice;
// failures are logged rather than returned.
func (s *Store) GetWatchlistSymbolsByEmail(ctx context.Context, email string) []string {
	rows, err := s.db.QueryContext(ctx,
		`SELECT w.symbol
		 FROM watchlist w JOIN users u ON u.id = w.user_id
		 WHERE u.email = ?
		 ORDER BY w.added_at DESC, w.id DESC`, strings.TrimSpace(email))
	if err != nil {
		slog.Error("failed to fetch watchlist symbols", "email", email, "error", err)
		return []string{}
	}
	defer rows.Close()

	symbols := []string{}
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			slog.Error("failed to scan watchlist symbol", "email", email, "error", err)
			return []string{}
		}
		symbols = append(symbols, symbol)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate watchlist symbols", "email", email, "error", err)
		return []string{}
	}
	return symbols
}
