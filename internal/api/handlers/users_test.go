package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hoanghai1803/tickerwire/internal/events"
	"github.com/hoanghai1803/tickerwire/internal/jobs"
	"github.com/hoanghai1803/tickerwire/internal/models"
)

func TestCreateUser(t *testing.T) {
	store := newTestStore(t)

	received := make(chan jobs.UserCreatedPayload, 1)
	d := events.NewDispatcher(1)
	d.Handle(events.UserCreated, func(_ context.Context, e events.Event) error {
		var p jobs.UserCreatedPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		received <- p
		return nil
	})
	h := CreateUser(store, d)

	body, _ := json.Marshal(map[string]string{
		"email":            " Ada@Example.com ",
		"name":             "Ada",
		"country":          "UK",
		"investment_goals": "Growth",
	})
	r := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var user models.User
	if err := json.NewDecoder(w.Body).Decode(&user); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if user.ID == 0 || user.Email != "ada@example.com" || user.Country != "UK" {
		t.Errorf("got user %+v", user)
	}

	d.Close()
	select {
	case p := <-received:
		if p.Email != "ada@example.com" || p.InvestmentGoals != "Growth" {
			t.Errorf("event payload = %+v", p)
		}
	default:
		t.Fatal("user.created event was not dispatched")
	}

	// Same email again is a conflict.
	r = httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBuffer(body))
	w = httptest.NewRecorder()
	CreateUser(store, events.NewDispatcher(1)).ServeHTTP(w, r)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate got status %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestCreateUser_Validation(t *testing.T) {
	store := newTestStore(t)
	h := CreateUser(store, events.NewDispatcher(1))

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "{"},
		{"missing email", `{"name":"Ada"}`},
		{"bad email", `{"email":"ada","name":"Ada"}`},
		{"missing name", `{"email":"ada@example.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			if w.Code != http.StatusBadRequest {
				t.Errorf("got status %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestCreateUser_NoHandlerStillSucceeds(t *testing.T) {
	store := newTestStore(t)

	body := `{"email":"bob@example.com","name":"Bob"}`
	r := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	CreateUser(store, events.NewDispatcher(1)).ServeHTTP(w, r)

	if w.Code != http.StatusCreated {
		t.Errorf("got status %d, want %d", w.Code, http.StatusCreated)
	}
}
