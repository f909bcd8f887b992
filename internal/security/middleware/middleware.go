package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/threadline/internal/domain"
	"github.com/aryan0dhankhar/threadline/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/threadline/internal/security/auth"
)

type userContextKey struct{}
type tokenContextKey struct{}

// Authenticator resolves a bearer token to a user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, *auth.Claims, error)
}

// ErrorResponder writes err to the client. Auth failures arrive as *domain.AuthError.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(authn Authenticator, respond ErrorResponder) func(http.Handler) http.Handler {
	return bearer(authn, respond, true)
}

// OptionalAuth attaches the user when a valid token is sent. A missing header
// passes through; a bad token is still rejected.
func OptionalAuth(authn Authenticator, respond ErrorResponder) func(http.Handler) http.Handler {
	return bearer(authn, respond, false)
}

func bearer(authn Authenticator, respond ErrorResponder, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" && !required {
				next.ServeHTTP(w, r)
				return
			}

			token, err := auth.ExtractToken(header)
			if err != nil {
				respond(w, r, err)
				return
			}

			user, _, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				respond(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey{}, user)
			ctx = context.WithValue(ctx, tokenContextKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user, or nil
func UserFromContext(ctx context.Context) *domain.User {
	if u, ok := ctx.Value(userContextKey{}).(*domain.User); ok {
		return u
	}
	return nil
}

// TokenFromContext returns the raw bearer token that authenticated the request
func TokenFromContext(ctx context.Context) string {
	if t, ok := ctx.Value(tokenContextKey{}).(string); ok {
		return t
	}
	return ""
}

// RequestID attaches a request id to the context and response headers.
// An incoming X-Request-ID is kept so ids follow a request across services.
func RequestID(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" || len(reqID) > 64 {
				reqID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", reqID)

			ctx := logger.WithRequestID(r.Context(), reqID)
			start := time.Now()

			next.ServeHTTP(w, r.WithContext(ctx))

			log.Info("request completed",
				slog.String("request_id", reqID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// CORS answers preflight requests and echoes allowed origins
func CORS(allowed []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if originAllowed(allowed, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization, X-Request-ID")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
