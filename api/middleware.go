package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"pairchat/domain"
	"pairchat/errors"
	"pairchat/services"
)

type contextKey int

const userContextKey contextKey = iota

// currentUser returns the authenticated user injected by requireAuth.
func currentUser(r *http.Request) domain.User {
	user, _ := r.Context().Value(userContextKey).(domain.User)
	return user
}

// requireAuth authorizes every request of a subrouter: the access token is
// read from the httpOnly cookie or the Authorization header, resolved to a
// user, and stored on the request context.
func requireAuth(log *slog.Logger, authService services.IAuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				respondError(log, w, errors.Unauthorized("Unauthorized request"))
				return
			}

			user, err := authService.CheckAuth(r.Context(), token)
			if err != nil {
				respondError(log, w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
