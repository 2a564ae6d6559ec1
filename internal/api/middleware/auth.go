package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/nirvachan/server/internal/api/problem"
	"github.com/nirvachan/server/internal/auth"
	"github.com/nirvachan/server/internal/domain/users"
)

type contextKeyUser string

const currentUserKey contextKeyUser = "currentUser"

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(ctx context.Context) *users.User {
	if user, ok := ctx.Value(currentUserKey).(*users.User); ok {
		return user
	}
	return nil
}

// WithCurrentUser attaches an authenticated user to the context.
func WithCurrentUser(ctx context.Context, user *users.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// bearerToken extracts the token from the Authorization header, or "".
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// OptionalIdentity resolves a bearer token when one is presented and attaches
// the user to the request context. Requests without credentials, or with
// credentials that do not resolve, proceed anonymously.
func OptionalIdentity(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authService.ResolveAccess(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCurrentUser(r.Context(), user)))
		})
	}
}

// RequireIdentity rejects requests that do not carry a valid access token.
func RequireIdentity(authService *auth.Service, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
					"Authentication required", errors.New("missing bearer token"), env)
				return
			}

			user, err := authService.ResolveAccess(r.Context(), token)
			if err != nil {
				title := "Invalid access token"
				switch {
				case errors.Is(err, auth.ErrTokenExpired):
					title = "Access token expired"
				case errors.Is(err, auth.ErrUserMissing):
					title = "Unknown user"
				}
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, title, err, env)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCurrentUser(r.Context(), user)))
		})
	}
}
