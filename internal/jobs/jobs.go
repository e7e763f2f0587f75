// Package jobs implements the background functions triggered by events:
// the sign-up welcome email and the daily news digest.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hoanghai1803/tickerwire/internal/ai"
	"github.com/hoanghai1803/tickerwire/internal/events"
	"github.com/hoanghai1803/tickerwire/internal/mailer"
	"github.com/hoanghai1803/tickerwire/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultWelcomeIntro is used when no AI provider is configured or it
	// fails.
	DefaultWelcomeIntro = "Thanks for joining Tickerwire. You now have the tools to track markets and make smarter moves."

	digestConcurrency = 4
	digestTimeout     = 2 * time.Minute
)

// UserStore is the subset of storage the jobs need.
type UserStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetWatchlistSymbolsByEmail(ctx context.Context, email string) []string
}

// NewsSource produces market news for a list of symbols.
type NewsSource interface {
	GetNews(ctx context.Context, symbols []string) ([]models.Article, error)
}

// Mailer sends the emails produced by the jobs.
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, data mailer.WelcomeEmail) error
	SendNewsSummary(ctx context.Context, data mailer.NewsSummaryEmail) error
}

// UserCreatedPayload is the data of an events.UserCreated event.
type UserCreatedPayload struct {
	Email             string `json:"email"`
	Name              string `json:"name"`
	Country           string `json:"country"`
	InvestmentGoals   string `json:"investment_goals"`
	RiskTolerance     string `json:"risk_tolerance"`
	PreferredIndustry string `json:"preferred_industry"`
}

// Functions holds the dependencies of the background functions.
type Functions struct {
	store UserStore
	news  NewsSource
	mail  Mailer
	ai    ai.AIProvider // nil disables AI-written text
	now   func() time.Time
}

// New creates Functions. aiProvider may be nil.
func New(store UserStore, news NewsSource, mail Mailer, aiProvider ai.AIProvider) *Functions {
	return &Functions{
		store: store,
		news:  news,
		mail:  mail,
		ai:    aiProvider,
		now:   time.Now,
	}
}

// Register wires the functions to their events on d.
func (f *Functions) Register(d *events.Dispatcher) {
	d.Handle(events.UserCreated, f.SendSignUpEmail)
	d.Handle(events.SendDailyNews, f.SendDailyNewsSummary)
}

// SendSignUpEmail sends the welcome email for a UserCreated event.
func (f *Functions) SendSignUpEmail(ctx context.Context, e events.Event) error {
	var p UserCreatedPayload
	if err := e.Decode(&p); err != nil {
		return err
	}

	intro := DefaultWelcomeIntro
	if f.ai != nil {
		generated, err := f.ai.WelcomeIntro(ctx, ai.Profile{
			Name:              p.Name,
			Country:           p.Country,
			InvestmentGoals:   p.InvestmentGoals,
			RiskTolerance:     p.RiskTolerance,
			PreferredIndustry: p.PreferredIndustry,
		})
		switch {
		case err != nil:
			slog.Warn("failed to generate welcome intro", "email", p.Email, "error", err)
		case strings.TrimSpace(generated) != "":
			intro = generated
		}
	}

	return f.mail.SendWelcomeEmail(ctx, mailer.WelcomeEmail{
		Email: p.Email,
		Name:  p.Name,
		Intro: intro,
	})
}

// SendDailyNewsSummary emails every user a digest of their watchlist news,
// or general market news when the watchlist is empty or yields nothing.
// Failures for one user do not stop the others.
func (f *Functions) SendDailyNewsSummary(ctx context.Context, _ events.Event) error {
	ctx, cancel := context.WithTimeout(ctx, digestTimeout)
	defer cancel()

	users, err := f.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("listing users for daily news: %w", err)
	}

	date := f.now().Format("2006-01-02")

	var sent, failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(digestConcurrency)

	for _, user := range users {
		if user.Email == "" {
			continue
		}
		g.Go(func() error {
			if err := f.sendDigest(gctx, user, date); err != nil {
				slog.Warn("failed to send daily news", "email", user.Email, "error", err)
				failed.Add(1)
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	slog.Info("daily news summary finished",
		"users", len(users),
		"sent", sent.Load(),
		"failed", failed.Load(),
	)
	return nil
}

// sendDigest gathers news for one user and emails it.
func (f *Functions) sendDigest(ctx context.Context, user models.User, date string) error {
	symbols := f.store.GetWatchlistSymbolsByEmail(ctx, user.Email)

	var articles []models.Article
	if len(symbols) > 0 {
		var err error
		articles, err = f.news.GetNews(ctx, symbols)
		if err != nil {
			slog.Warn("watchlist news failed, using general news", "email", user.Email, "error", err)
			articles = nil
		}
	}
	if len(articles) == 0 {
		general, err := f.news.GetNews(ctx, nil)
		if err != nil {
			return fmt.Errorf("fetching general news: %w", err)
		}
		articles = general
	}

	var intro string
	if f.ai != nil && len(articles) > 0 {
		entries := make([]ai.NewsEntry, len(articles))
		for i, a := range articles {
			entries[i] = ai.NewsEntry{
				Headline: a.Headline,
				Source:   a.Source,
				Symbol:   a.RelatedSymbol,
				Summary:  a.Summary,
			}
		}
		summary, err := f.ai.SummarizeNews(ctx, entries)
		if err != nil {
			slog.Warn("failed to summarize news", "email", user.Email, "error", err)
		} else {
			intro = summary
		}
	}

	return f.mail.SendNewsSummary(ctx, mailer.NewsSummaryEmail{
		Email:    user.Email,
		Name:     user.Name,
		Date:     date,
		Intro:    intro,
		Articles: articles,
	})
}
