package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hoanghai1803/tickerwire/internal/ai"
	"github.com/hoanghai1803/tickerwire/internal/api"
	"github.com/hoanghai1803/tickerwire/internal/config"
	"github.com/hoanghai1803/tickerwire/internal/events"
	"github.com/hoanghai1803/tickerwire/internal/jobs"
	"github.com/hoanghai1803/tickerwire/internal/mailer"
	"github.com/hoanghai1803/tickerwire/internal/news"
	"github.com/hoanghai1803/tickerwire/internal/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	dataDir := flag.String("data-dir", "", "directory for the database file (overrides [database] path)")
	flag.Parse()

	if err := run(*configPath, *dataDir); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(configPath, dataDir string) error {
	// Load configuration (auto-creates default if missing).
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dbPath := cfg.Database.Path
	if dataDir != "" {
		dbPath = filepath.Join(dataDir, filepath.Base(dbPath))
	}

	// Open database with WAL mode and pragmas.
	db, err := storage.OpenDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	store := storage.NewStore(db)

	client := news.NewClient(cfg.Finnhub.APIKey, cfg.Finnhub.BaseURL)
	aggregator := news.NewAggregator(client, cfg.Finnhub.LookbackDays)
	searcher := news.NewSearcher(cfg.Finnhub.APIKey, cfg.Finnhub.BaseURL,
		time.Duration(cfg.Finnhub.SearchCacheSeconds)*time.Second)

	sender, err := mailer.NewSender(cfg.Email)
	if err != nil {
		return fmt.Errorf("creating mailer: %w", err)
	}

	// AI provider is optional (nil if no API key; jobs fall back to static text).
	var aiProvider ai.AIProvider
	if cfg.AI.APIKey != "" {
		aiProvider, err = ai.NewProvider(ai.ProviderConfig{
			Provider: cfg.AI.Provider,
			APIKey:   cfg.AI.APIKey,
			Model:    cfg.AI.Model,
		})
		if err != nil {
			return fmt.Errorf("creating AI provider: %w", err)
		}
		slog.Info("AI provider configured", "provider", cfg.AI.Provider, "model", cfg.AI.Model)
	} else {
		slog.Warn("no AI provider API key configured, emails will use default text")
	}

	dispatcher := events.NewDispatcher(cfg.Jobs.Workers)
	jobs.New(store, aggregator, sender, aiProvider).Register(dispatcher)

	scheduler, err := jobs.NewScheduler(cfg.Jobs.DailyDigestCron, dispatcher)
	if err != nil {
		return err
	}
	scheduler.Start()

	router := api.NewRouter(api.Deps{
		Store:      store,
		Aggregator: aggregator,
		Searcher:   searcher,
		Mailer:     sender,
		Dispatcher: dispatcher,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr, "daily_digest_cron", cfg.Jobs.DailyDigestCron)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown incomplete", "error", err)
	}
	<-scheduler.Stop().Done()
	dispatcher.Close()

	return nil
}
