package news

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/hoanghai1803/tickerwire/internal/models"
)

// DefaultSearchCacheTTL is how long symbol lookups are reused.
const DefaultSearchCacheTTL = 30 * time.Minute

// Searcher looks up ticker symbols through the Finnhub SDK.
type Searcher struct {
	apiKey string
	api    *finnhub.DefaultApiService
	cache  *expirable.LRU[string, []models.StockMatch]
}

// NewSearcher creates a Searcher. An empty baseURL keeps the SDK default
// server; ttl <= 0 selects DefaultSearchCacheTTL.
func NewSearcher(apiKey, baseURL string, ttl time.Duration) *Searcher {
	if ttl <= 0 {
		ttl = DefaultSearchCacheTTL
	}

	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader(tokenHeaderName, apiKey)
	cfg.HTTPClient = &http.Client{Timeout: httpTimeout}
	if baseURL != "" {
		cfg.Servers = finnhub.ServerConfigurations{
			{URL: strings.TrimRight(baseURL, "/")},
		}
	}

	return &Searcher{
		apiKey: apiKey,
		api:    finnhub.NewAPIClient(cfg).DefaultApi,
		cache:  expirable.NewLRU[string, []models.StockMatch](cacheSize, nil, ttl),
	}
}

// Search returns symbols matching query. A blank query matches nothing.
func (s *Searcher) Search(ctx context.Context, query string) ([]models.StockMatch, error) {
	if s.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return []models.StockMatch{}, nil
	}

	key := strings.ToUpper(query)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	res, _, err := s.api.SymbolSearch(ctx).Q(query).Execute()
	if err != nil {
		return nil, fmt.Errorf("searching symbols for %q: %w", query, err)
	}

	results := res.GetResult()
	matches := make([]models.StockMatch, 0, len(results))
	for _, r := range results {
		if r.GetSymbol() == "" {
			continue
		}
		matches = append(matches, models.StockMatch{
			Symbol:        r.GetSymbol(),
			DisplaySymbol: r.GetDisplaySymbol(),
			Description:   r.GetDescription(),
			Type:          r.GetType(),
		})
	}

	s.cache.Add(key, matches)
	return matches, nil
}
