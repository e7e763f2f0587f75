package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hoanghai1803/tickerwire/internal/news"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// writeJSON encodes v as JSON and writes it to the response with the given
// HTTP status code. Content-Type is always set to application/json.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// At this point headers are already sent; log but cannot change status.
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// writeError writes a JSON error response with the given HTTP status code.
// The response body is {"error": "message"}.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeNewsError maps an error from the news package to a response. A
// missing Finnhub key is a server configuration problem and reported as 503.
func writeNewsError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, news.ErrMissingAPIKey) {
		writeError(w, http.StatusServiceUnavailable, "Finnhub API key is not configured")
		return
	}
	writeError(w, http.StatusInternalServerError, message)
}

// decodeJSON decodes a size-limited JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// parseSymbols splits a comma-separated symbols query value.
func parseSymbols(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return news.NormalizeSymbols(strings.Split(raw, ","))
}

// parseSymbol extracts a normalized ticker symbol from a chi URL parameter.
func parseSymbol(r *http.Request, param string) (string, error) {
	raw := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, param)))
	if raw == "" {
		return "", fmt.Errorf("missing URL parameter %q", param)
	}
	if len(raw) > 20 || strings.ContainsAny(raw, " /?#") {
		return "", fmt.Errorf("invalid %q parameter: %q", param, raw)
	}
	return raw, nil
}

// validEmail reports whether s looks like an email address.
func validEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t\r\n")
}
