package storage

import (
	"context"
	"errors"
	"testing"
)

func TestAddToWatchlist(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, store, "w@example.com")

	item, err := store.AddToWatchlist(ctx, userID, " aapl ", "Apple Inc.")
	if err != nil {
		t.Fatalf("AddToWatchlist() error: %v", err)
	}
	if item.Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want %q", item.Symbol, "AAPL")
	}
	if item.Company != "Apple Inc." {
		t.Errorf("Company = %q, want %q", item.Company, "Apple Inc.")
	}
	if item.UserID != userID {
		t.Errorf("UserID = %d, want %d", item.UserID, userID)
	}

	t.Run("duplicate", func(t *testing.T) {
		_, err := store.AddToWatchlist(ctx, userID, "AAPL", "")
		if !errors.Is(err, ErrDuplicate) {
			t.Fatalf("error = %v, want ErrDuplicate", err)
		}
	})

	t.Run("empty symbol", func(t *testing.T) {
		if _, err := store.AddToWatchlist(ctx, userID, "  ", ""); err == nil {
			t.Fatal("expected error for empty symbol")
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := store.AddToWatchlist(ctx, 9999, "MSFT", ""); err == nil {
			t.Fatal("expected foreign key error for unknown user")
		}
	})
}

func TestRemoveFromWatchlist(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, store, "r@example.com")

	if _, err := store.AddToWatchlist(ctx, userID, "TSLA", "Tesla"); err != nil {
		t.Fatalf("AddToWatchlist() error: %v", err)
	}

	if err := store.RemoveFromWatchlist(ctx, userID, "tsla"); err != nil {
		t.Fatalf("RemoveFromWatchlist() error: %v", err)
	}

	items, err := store.GetWatchlist(ctx, userID)
	if err != nil {
		t.Fatalf("GetWatchlist() error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items after removal, want 0", len(items))
	}

	if err := store.RemoveFromWatchlist(ctx, userID, "TSLA"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second removal error = %v, want ErrNotFound", err)
	}
}

func TestGetWatchlistSymbolsByEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com")
	bob := seedUser(t, store, "bob@example.com")

	for _, sym := range []string{"AAPL", "MSFT", "NVDA"} {
		if _, err := store.AddToWatchlist(ctx, alice, sym, ""); err != nil {
			t.Fatalf("AddToWatchlist(%s) error: %v", sym, err)
		}
	}
	if _, err := store.AddToWatchlist(ctx, bob, "AMZN", ""); err != nil {
		t.Fatalf("AddToWatchlist(AMZN) error: %v", err)
	}

	got := store.GetWatchlistSymbolsByEmail(ctx, "Alice@Example.com")
	want := []string{"NVDA", "MSFT", "AAPL"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	t.Run("unknown email", func(t *testing.T) {
		got := store.GetWatchlistSymbolsByEmail(ctx, "ghost@example.com")
		if got == nil || len(got) != 0 {
			t.Errorf("got %v, want empty non-nil slice", got)
		}
	})

	t.Run("closed database", func(t *testing.T) {
		db, err := OpenDatabase(":memory:")
		if err != nil {
			t.Fatalf("OpenDatabase() error: %v", err)
		}
		closed := NewStore(db)
		db.Close()

		got := closed.GetWatchlistSymbolsByEmail(ctx, "alice@example.com")
		if got == nil || len(got) != 0 {
			t.Errorf("got %v, want empty non-nil slice", got)
		}
	})
}
