package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hoanghai1803/tickerwire/internal/api/handlers"
	"github.com/hoanghai1803/tickerwire/internal/events"
	"github.com/hoanghai1803/tickerwire/internal/mailer"
	"github.com/hoanghai1803/tickerwire/internal/news"
	"github.com/hoanghai1803/tickerwire/internal/storage"
)

// Deps are the services the HTTP handlers are built from.
type Deps struct {
	Store      *storage.Store
	Aggregator *news.Aggregator
	Searcher   *news.Searcher
	Mailer     *mailer.Sender
	Dispatcher *events.Dispatcher
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// API sub-router.
	r.Route("/api", func(api chi.Router) {
		api.Get("/news", handlers.GetNews(d.Aggregator))
		api.Get("/search", handlers.SearchStocks(d.Searcher))

		api.Post("/users", handlers.CreateUser(d.Store, d.Dispatcher))

		api.Get("/watchlist", handlers.GetWatchlist(d.Store))
		api.Post("/watchlist", handlers.AddToWatchlist(d.Store))
		api.Get("/watchlist/news", handlers.GetWatchlistNews(d.Store, d.Aggregator))
		api.Delete("/watchlist/{symbol}", handlers.RemoveFromWatchlist(d.Store))

		api.Get("/test-db", handlers.CheckDatabase(d.Store))
		api.Post("/test-db", handlers.CheckDatabaseWrite(d.Store))
		api.Post("/test-email", handlers.SendTestEmail(d.Mailer, d.Dispatcher))
	})

	return r
}
