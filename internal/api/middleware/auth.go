package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rpsarena/rps-arena-go/internal/api/apierr"
	"github.com/rpsarena/rps-arena-go/internal/model"
	"github.com/rpsarena/rps-arena-go/internal/services/auth"
)

type contextKey string

const userContextKey contextKey = "user"

// Auth verifies the request's bearer token and attaches the
// authenticated user to the request context
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			user, err := authService.Verify(r.Context(), token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken pulls the token from the Authorization header, falling
// back to a token cookie for EventSource clients that cannot set headers
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

// GetUser retrieves the authenticated user from the request context
func GetUser(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	return user, ok
}

// MustGetUser retrieves the authenticated user from the request context,
// panicking if absent. Only for handlers behind the Auth middleware.
func MustGetUser(ctx context.Context) *model.User {
	user, ok := GetUser(ctx)
	if !ok {
		panic("no authenticated user in request context")
	}
	return user
}
