package service

import (
	"context"
	"net/http"

	"signal_server/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// authenticated resolves the caller via the X-API-Key header (or api_key
// query parameter for WebSocket clients that cannot set headers).
func (s *Server) authenticated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawKey := r.Header.Get("X-API-Key")
		if rawKey == "" {
			rawKey = r.URL.Query().Get("api_key")
		}

		user, err := s.accounts.Authenticate(r.Context(), rawKey)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid API key.")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func userFrom(r *http.Request) *models.User {
	user, _ := r.Context().Value(userKey).(*models.User)
	return user
}
