package server

import (
	"encoding/json"
	"net/http"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// Mutating routes authenticate via the auth_token field of the request body,
// checked against the token store; subscription read-back is deliberately
// unauthenticated (the uuid itself is the capability).
func (s *LogServer) NewHTTPHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/subscriptions", s.handleCreateSubscription)
	mux.HandleFunc("GET /v1/subscriptions/{uuid}", s.handleGetSubscription)
	mux.HandleFunc("POST /v1/subscriptions/unsubscribe", s.handleUnsubscribe)
	mux.HandleFunc("POST /v1/values", s.handleSubmitValues)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.Handle("GET /v1/metrics", s.metrics.Handler())
	return Recovery(RequestLogger(Instrument(s.metrics, mux)))
}

// handleHealth handles GET /v1/health.
func (s *LogServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
