package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hoanghai1803/tickerwire/internal/events"
	"github.com/hoanghai1803/tickerwire/internal/jobs"
	"github.com/hoanghai1803/tickerwire/internal/models"
	"github.com/hoanghai1803/tickerwire/internal/storage"
)

// CreateUser handles POST /api/users. It registers the user and queues the
// welcome email. A failure to queue the email does not fail the sign-up.
func CreateUser(store *storage.Store, dispatcher *events.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body jobs.UserCreatedPayload
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		body.Email = strings.ToLower(strings.TrimSpace(body.Email))
		body.Name = strings.TrimSpace(body.Name)
		if !validEmail(body.Email) {
			writeError(w, http.StatusBadRequest, "A valid email is required")
			return
		}
		if body.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		user := &models.User{
			Email:             body.Email,
			Name:              body.Name,
			Country:           body.Country,
			InvestmentGoals:   body.InvestmentGoals,
			RiskTolerance:     body.RiskTolerance,
			PreferredIndustry: body.PreferredIndustry,
		}
		id, err := store.CreateUser(ctx, user)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				writeError(w, http.StatusConflict, "A user with this email already exists")
				return
			}
			slog.Error("failed to create user", "email", body.Email, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		created, err := store.GetUserByEmail(ctx, body.Email)
		if err != nil {
			slog.Error("failed to read back user", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		event, err := events.NewEvent(events.UserCreated, body)
		if err == nil {
			_, err = dispatcher.Send(ctx, event)
		}
		if err != nil {
			slog.Warn("failed to queue welcome email", "email", body.Email, "error", err)
		}

		writeJSON(w, http.StatusCreated, created)
	}
}
