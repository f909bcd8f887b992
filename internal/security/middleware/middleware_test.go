package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aryan0dhankhar/threadline/internal/domain"
	"github.com/aryan0dhankhar/threadline/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/threadline/internal/security/auth"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// stubAuthenticator accepts the single token "good"
type stubAuthenticator struct{}

func (stubAuthenticator) Authenticate(_ context.Context, token string) (*domain.User, *auth.Claims, error) {
	if token != "good" {
		return nil, nil, &domain.AuthError{Reason: domain.AuthMalformed}
	}
	return &domain.User{ID: 1, Username: "alice1"}, &auth.Claims{Subject: "alice1"}, nil
}

func recordError(w http.ResponseWriter, _ *http.Request, err error) {
	status := http.StatusInternalServerError
	var ae *domain.AuthError
	if errors.As(err, &ae) {
		status = http.StatusUnauthorized
	}
	http.Error(w, err.Error(), status)
}

func whoami(w http.ResponseWriter, r *http.Request) {
	if u := UserFromContext(r.Context()); u != nil {
		_, _ = io.WriteString(w, u.Username+" "+TokenFromContext(r.Context()))
		return
	}
	_, _ = io.WriteString(w, "anonymous")
}

func serve(h http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	h := RequireAuth(stubAuthenticator{}, recordError)(http.HandlerFunc(whoami))

	rec := serve(h, "Bearer good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice1 good", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer bad").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Basic good").Code)
}

func TestOptionalAuth(t *testing.T) {
	h := OptionalAuth(stubAuthenticator{}, recordError)(http.HandlerFunc(whoami))

	rec := serve(h, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	rec = serve(h, "Bearer good")
	assert.Equal(t, "alice1 good", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer bad").Code, "a bad token is rejected even when optional")
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(quietLogger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 65))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Len(t, seen, 36, "oversized ids are replaced with a uuid")
}

func TestValidateJSONContentType(t *testing.T) {
	h := ValidateJSONContentType(quietLogger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	post := func(contentType, body string) int {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, post("application/json", `{"a":1}`))
	assert.Equal(t, http.StatusNoContent, post("application/json; charset=utf-8", `{}`))
	assert.Equal(t, http.StatusUnsupportedMediaType, post("text/plain", "hello"))
	assert.Equal(t, http.StatusNoContent, post("", ""), "empty bodies pass")
	assert.Equal(t, http.StatusRequestEntityTooLarge, post("application/json", strings.Repeat("a", maxBodyBytes+1)))
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
