package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hoanghai1803/tickerwire/internal/events"
	"github.com/hoanghai1803/tickerwire/internal/jobs"
	"github.com/hoanghai1803/tickerwire/internal/mailer"
	"github.com/hoanghai1803/tickerwire/internal/storage"
)

const testRecipient = "test@example.com"

// diagnosticResult is the body returned by the connectivity checks.
type diagnosticResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

func diagnostic(ok bool, message string, err error) diagnosticResult {
	res := diagnosticResult{
		Success:   ok,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

// CheckDatabase handles GET /api/test-db. It checks that the database
// answers a ping.
func CheckDatabase(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			slog.Error("database connection failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, diagnostic(false, "Database connection failed", err))
			return
		}
		writeJSON(w, http.StatusOK, diagnostic(true, "Database connection successful!", nil))
	}
}

// CheckDatabaseWrite handles POST /api/test-db. It writes and deletes a probe
// row to check the database accepts writes.
func CheckDatabaseWrite(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.ProbeWrite(r.Context()); err != nil {
			slog.Error("database write test failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, diagnostic(false, "Database test failed", err))
			return
		}
		writeJSON(w, http.StatusOK, diagnostic(true, "Database connection and write operation successful!", nil))
	}
}

// SendTestEmail handles POST /api/test-email. testType "direct" sends a welcome
// email synchronously; "event" queues a user.created event so the whole
// background path runs.
func SendTestEmail(sender *mailer.Sender, dispatcher *events.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TestType string `json:"testType"`
		}
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		switch body.TestType {
		case "direct":
			err := sender.SendWelcomeEmail(r.Context(), mailer.WelcomeEmail{
				Email: testRecipient,
				Name:  "Test User",
				Intro: "This is a test email to verify that outgoing mail is configured correctly.",
			})
			if err != nil {
				slog.Error("direct email test failed", "error", err)
				writeJSON(w, http.StatusInternalServerError, diagnostic(false, "Email test failed", err))
				return
			}
			writeJSON(w, http.StatusOK, diagnostic(true, "Direct email test sent successfully", nil))

		case "event":
			event, err := events.NewEvent(events.UserCreated, jobs.UserCreatedPayload{
				Email:             testRecipient,
				Name:              "Test User",
				Country:           "United States",
				InvestmentGoals:   "Long-term growth",
				RiskTolerance:     "Moderate",
				PreferredIndustry: "Technology",
			})
			if err == nil {
				_, err = dispatcher.Send(r.Context(), event)
			}
			if err != nil {
				slog.Error("event email test failed", "error", err)
				writeJSON(w, http.StatusInternalServerError, diagnostic(false, "Email test failed", err))
				return
			}
			writeJSON(w, http.StatusAccepted, diagnostic(true, "Event sent successfully - check your email!", nil))

		default:
			writeError(w, http.StatusBadRequest, `Invalid test type. Use "direct" or "event"`)
		}
	}
}
