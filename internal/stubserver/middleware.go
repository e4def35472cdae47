package stubserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ma-crm/crm-go/pkg/httpext"
)

type contextKey string

const userIDKey contextKey = "userID"

// requireAuth guards the resource routes: a request must carry a valid
// access-grant bearer token. Error bodies follow the backend's DRF shape.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractBearer(r)
		if tokenString == "" {
			httpext.JsonError(w, "Authentication credentials were not provided.", http.StatusUnauthorized)
			return
		}

		claims, err := s.validateToken(tokenString, grantAccess)
		if err != nil {
			log.Debug().Err(err).Msg("Rejecting request with invalid access token")
			httpext.JsonError(w, "Given token not valid for any token type", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func userIDFrom(ctx context.Context) int {
	id, _ := ctx.Value(userIDKey).(int)
	return id
}
