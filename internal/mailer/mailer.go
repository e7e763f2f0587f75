// Package mailer renders and delivers transactional email.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/hoanghai1803/tickerwire/internal/config"
	"github.com/hoanghai1803/tickerwire/internal/models"
	"github.com/yuin/goldmark"
)

// Message is a rendered email ready for delivery.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// Transport delivers rendered messages.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// WelcomeEmail is the data for the post sign-up welcome email. Intro is
// markdown.
type WelcomeEmail struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Intro string `json:"intro"`
}

// NewsSummaryEmail is the data for the daily news digest. Intro is markdown
// and may be empty.
type NewsSummaryEmail struct {
	Email    string
	Name     string
	Date     string
	Intro    string
	Articles []models.Article
}

// Sender renders templates and hands messages to a Transport.
type Sender struct {
	from      string
	transport Transport
	markdown  goldmark.Markdown
}

// NewSender creates a Sender that delivers over SMTP using cfg.
func NewSender(cfg config.EmailConfig) (*Sender, error) {
	transport, err := newSMTPTransport(cfg)
	if err != nil {
		return nil, err
	}
	return NewSenderWithTransport(cfg.From, transport), nil
}

// NewSenderWithTransport creates a Sender that delivers through t.
func NewSenderWithTransport(from string, t Transport) *Sender {
	return &Sender{
		from:      from,
		transport: t,
		markdown:  goldmark.New(),
	}
}

// SendWelcomeEmail renders and sends the welcome email.
func (s *Sender) SendWelcomeEmail(ctx context.Context, data WelcomeEmail) error {
	if strings.TrimSpace(data.Email) == "" {
		return errors.New("welcome email: recipient is required")
	}

	introHTML, err := s.renderMarkdown(data.Intro)
	if err != nil {
		return fmt.Errorf("welcome email: %w", err)
	}

	var body bytes.Buffer
	if err := welcomeTemplate.Execute(&body, struct {
		Name      string
		IntroHTML template.HTML
	}{data.Name, introHTML}); err != nil {
		return fmt.Errorf("welcome email: rendering template: %w", err)
	}

	msg := Message{
		From:    s.from,
		To:      data.Email,
		Subject: "Welcome to Tickerwire - your simple market toolkit",
		HTML:    body.String(),
		Text:    strings.TrimSpace(data.Intro),
	}
	if err := s.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("welcome email to %s: %w", data.Email, err)
	}

	slog.Info("sent welcome email", "to", data.Email)
	return nil
}

// SendNewsSummary renders and sends the daily news digest.
func (s *Sender) SendNewsSummary(ctx context.Context, data NewsSummaryEmail) error {
	if strings.TrimSpace(data.Email) == "" {
		return errors.New("news summary email: recipient is required")
	}

	introHTML, err := s.renderMarkdown(data.Intro)
	if err != nil {
		return fmt.Errorf("news summary email: %w", err)
	}

	var body bytes.Buffer
	if err := newsSummaryTemplate.Execute(&body, struct {
		Date      string
		IntroHTML template.HTML
		Articles  []models.Article
	}{data.Date, introHTML, data.Articles}); err != nil {
		return fmt.Errorf("news summary email: rendering template: %w", err)
	}

	var text strings.Builder
	for _, a := range data.Articles {
		fmt.Fprintf(&text, "%s\n%s\n\n", a.Headline, a.URL)
	}

	msg := Message{
		From:    s.from,
		To:      data.Email,
		Subject: "Market News Summary Today - " + data.Date,
		HTML:    body.String(),
		Text:    text.String(),
	}
	if err := s.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("news summary email to %s: %w", data.Email, err)
	}

	slog.Info("sent news summary email", "to", data.Email, "articles", len(data.Articles))
	return nil
}

// renderMarkdown converts markdown to HTML. Raw HTML in the source is
// escaped by goldmark's default renderer.
func (s *Sender) renderMarkdown(src string) (template.HTML, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // goldmark output with unsafe HTML disabled
}
