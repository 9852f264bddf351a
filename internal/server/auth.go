package server

import (
	"context"
	"net/http"
)

// authorize reports whether token matches a record in the token store.
// An absent token is simply unauthorized, never an error.
func (s *LogServer) authorize(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return s.store.TokenExists(ctx, token)
}

// requireAuth authorizes the body-supplied token and writes the failure
// response itself. Returns true when the request may proceed.
func (s *LogServer) requireAuth(w http.ResponseWriter, r *http.Request, token string) bool {
	ok, err := s.authorize(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check auth_token")
		return false
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid or missing auth_token")
		return false
	}
	return true
}
