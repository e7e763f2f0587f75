// Package news aggregates market news from the Finnhub API.
//
// The Aggregator returns at most MaxArticles articles, newest first, either
// for the general market or round-robin across a list of ticker symbols.
// Per-symbol and per-article failures are absorbed; only a missing
// credential or a failed general-news request aborts the call.
package news

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/hoanghai1803/tickerwire/internal/models"
)

const (
	// MaxArticles caps the number of articles returned by GetNews.
	MaxArticles = 6

	// DefaultLookbackDays is the default size of the news date window.
	DefaultLookbackDays = 5

	generalCategory = "general"
)

// ErrAggregation is returned when no result, not even a partial one, can
// be produced.
var ErrAggregation = errors.New("failed to fetch news")

// Aggregator builds bounded, deduplicated news lists. It holds no state
// between calls apart from the client's response cache.
type Aggregator struct {
	client       *Client
	lookbackDays int
	now          func() time.Time
}

// NewAggregator creates an Aggregator over client. A non-positive
// lookbackDays selects DefaultLookbackDays.
func NewAggregator(client *Client, lookbackDays int) *Aggregator {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	return &Aggregator{
		client:       client,
		lookbackDays: lookbackDays,
		now:          time.Now,
	}
}

// GetNews returns up to MaxArticles articles sorted by datetime descending.
// With no usable symbols it returns general market news; otherwise one
// article per symbol round. An empty result is not an error.
//
// Errors wrap ErrAggregation. A missing credential additionally wraps
// ErrMissingAPIKey and is reported before any request is made.
func (a *Aggregator) GetNews(ctx context.Context, symbols []string) ([]models.Article, error) {
	if err := a.client.checkCredential(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAggregation, err)
	}

	window := DateWindow(a.lookbackDays, a.now())

	var (
		articles []models.Article
		err      error
	)
	if clean := NormalizeSymbols(symbols); len(clean) > 0 {
		articles, err = a.symbolNews(ctx, clean, window)
	} else {
		articles, err = a.generalNews(ctx, window)
	}
	if err != nil {
		slog.Error("failed to fetch news", "symbols", symbols, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrAggregation, err)
	}

	slices.SortStableFunc(articles, func(x, y models.Article) int {
		return cmp.Compare(y.Datetime, x.Datetime)
	})
	return articles, nil
}

// NormalizeSymbols trims and uppercases symbols, dropping empty entries.
func NormalizeSymbols(symbols []string) []string {
	clean := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			clean = append(clean, s)
		}
	}
	return clean
}

// symbolNews runs min(MaxArticles, len(symbols)) sequential rounds and
// keeps the first valid article of each. Failed rounds are skipped.
func (a *Aggregator) symbolNews(ctx context.Context, symbols []string, w Window) ([]models.Article, error) {
	maxRounds := min(MaxArticles, len(symbols))
	articles := make([]models.Article, 0, maxRounds)

	for round := range maxRounds {
		symbol := symbols[round%len(symbols)]

		raw, err := a.client.CompanyNews(ctx, symbol, w, FetchOptions{})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			slog.Warn("failed to fetch company news",
				"symbol", symbol,
				"round", round,
				"error", err,
			)
			continue
		}

		for article := range validArticles(raw) {
			articles = append(articles, FormatArticle(article, true, symbol, round))
			break
		}
	}

	return articles, nil
}

// generalNews fetches general market news, keeping the first MaxArticles
// unique valid articles in upstream order.
func (a *Aggregator) generalNews(ctx context.Context, w Window) ([]models.Article, error) {
	raw, err := a.client.MarketNews(ctx, generalCategory, w, FetchOptions{})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(raw))
	articles := make([]models.Article, 0, MaxArticles)

	for article := range validArticles(raw) {
		key := dedupKey(article)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		articles = append(articles, FormatArticle(article, false, "", 0))
		if len(articles) == MaxArticles {
			break
		}
	}

	return articles, nil
}
