package backendtest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type ctxKey string

const userIDKey ctxKey = "userID"

var (
	errDuplicateEmail = errors.New("duplicate email")
	errNoUser         = errors.New("no such user")
)

func userID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func (s *Server) countHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) availability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.unavailable.Load() {
			writeError(w, http.StatusServiceUnavailable, "Service unavailable")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth accepts "Authorization: Bearer <jwt>" and puts the user id on
// the request context. The account must still exist.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Not authorized to access this route")
			return
		}

		s.mu.Lock()
		secret := s.secret
		s.mu.Unlock()

		id, err := UserIDFromToken(token, secret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Not authorized to access this route")
			return
		}

		s.mu.Lock()
		_, exists := s.users[id]
		s.mu.Unlock()
		if !exists {
			writeError(w, http.StatusUnauthorized, "Not authorized to access this route")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"success": true, "data": data})
}

func writeToken(w http.ResponseWriter, token string) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token})
}

func decode(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}
