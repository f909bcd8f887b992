package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/aryan0dhankhar/threadline/internal/domain"
	"github.com/aryan0dhankhar/threadline/internal/observability/metrics"
	"github.com/aryan0dhankhar/threadline/internal/observability/tracing"
	"github.com/aryan0dhankhar/threadline/internal/security/audit"
	"github.com/aryan0dhankhar/threadline/internal/security/auth"
	"github.com/aryan0dhankhar/threadline/internal/validation"
)

// TokenLifetimes picks the access token lifetime by login mode
type TokenLifetimes struct {
	Default    time.Duration
	RememberMe time.Duration
}

// DefaultTokenLifetimes returns 30 minutes and 30 days
func DefaultTokenLifetimes() TokenLifetimes {
	return TokenLifetimes{Default: auth.DefaultTokenTTL, RememberMe: auth.RememberMeTokenTTL}
}

// AuthService handles registration, login and token checks
type AuthService struct {
	users       domain.UserRepository
	hasher      auth.PasswordHasher
	tokens      *auth.TokenManager
	revocations domain.RevocationStore
	lifetimes   TokenLifetimes
	audit       *audit.Logger
	logger      *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users domain.UserRepository,
	hasher auth.PasswordHasher,
	tokens *auth.TokenManager,
	revocations domain.RevocationStore,
	lifetimes TokenLifetimes,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	if lifetimes.Default <= 0 {
		lifetimes.Default = auth.DefaultTokenTTL
	}
	if lifetimes.RememberMe <= 0 {
		lifetimes.RememberMe = auth.RememberMeTokenTTL
	}

	return &AuthService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		revocations: revocations,
		lifetimes:   lifetimes,
		audit:       auditLog,
		logger:      logger,
	}
}

// LoginResult is returned by a successful login
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
}

// Register validates the candidate and creates an active user
func (s *AuthService) Register(ctx context.Context, candidate domain.UserCandidate) (*domain.User, error) {
	ctx, span := tracing.Tracer().Start(ctx, "AuthService.Register")
	defer span.End()

	if err := validation.Candidate(candidate); err != nil {
		metrics.ObserveRegistration("invalid")
		s.audit.LogRegister(ctx, candidate.Username, audit.StatusFailure, err.Error())
		return nil, err
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, candidate.Username, candidate.Email)
	switch {
	case err == nil && existing != nil:
		metrics.ObserveRegistration("conflict")
		s.audit.LogRegister(ctx, candidate.Username, audit.StatusFailure, "already registered")
		return nil, &domain.ConflictError{Message: "Username or email already registered"}
	case err != nil && !domain.IsNotFound(err):
		metrics.ObserveRegistration("error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := s.hasher.Hash(candidate.Password)
	if err != nil {
		metrics.ObserveRegistration("error")
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("register user: %w", err)
	}

	user := &domain.User{
		Username:     candidate.Username,
		Email:        candidate.Email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			metrics.ObserveRegistration("conflict")
			s.audit.LogRegister(ctx, candidate.Username, audit.StatusFailure, "already registered")
			return nil, err
		}
		metrics.ObserveRegistration("error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, fmt.Errorf("register user: %w", err)
	}

	span.SetAttributes(attribute.Int64("user.id", user.ID))
	metrics.ObserveRegistration("success")
	s.audit.LogRegister(ctx, user.Username, audit.StatusSuccess, "")
	s.logger.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Login checks the password for identifier (a username or an email) and issues a token.
// Every credential failure is the same *domain.AuthError so callers cannot probe which part was wrong.
func (s *AuthService) Login(ctx context.Context, identifier, password string, rememberMe bool) (*LoginResult, error) {
	ctx, span := tracing.Tracer().Start(ctx, "AuthService.Login")
	defer span.End()

	invalid := func(details string) error {
		metrics.ObserveLogin("invalid_credentials")
		s.audit.LogLogin(ctx, identifier, audit.StatusFailure, details)
		return &domain.AuthError{Reason: domain.AuthInvalidCredentials}
	}

	if identifier == "" || password == "" {
		return nil, invalid("missing credentials")
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, identifier, identifier)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, invalid("unknown user")
		}
		metrics.ObserveLogin("error")
		span.RecordError(err)
		return nil, fmt.Errorf("login lookup: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, invalid("wrong password")
	}

	ttl := s.lifetimes.Default
	if rememberMe {
		ttl = s.lifetimes.RememberMe
	}

	token, expiresAt, err := s.tokens.Issue(user.Username, ttl)
	if err != nil {
		metrics.ObserveLogin("error")
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.ObserveLogin("success")
	s.audit.LogLogin(ctx, user.Username, audit.StatusSuccess, "")
	s.logger.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.Bool("remember_me", rememberMe),
	)

	return &LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		Username:    user.Username,
		Email:       user.Email,
	}, nil
}

// Authenticate resolves a bearer token to its user.
// Revoked tokens and tokens naming an unknown user are rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, *auth.Claims, error) {
	ctx, span := tracing.Tracer().Start(ctx, "AuthService.Authenticate")
	defer span.End()

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, nil, err
	}

	if claims.TokenID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			span.RecordError(err)
			return nil, nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, nil, &domain.AuthError{Reason: domain.AuthRevoked}
		}
	}

	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil, &domain.AuthError{Reason: domain.AuthInvalidCredentials}
		}
		return nil, nil, fmt.Errorf("resolve token subject: %w", err)
	}

	return user, claims, nil
}

// Logout revokes the token until its own expiry
func (s *AuthService) Logout(ctx context.Context, token string) error {
	user, claims, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	if claims.TokenID == "" {
		return &domain.AuthError{Reason: domain.AuthMalformed}
	}

	if err := s.revocations.Revoke(ctx, claims.TokenID, s.tokens.Remaining(claims)); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.audit.LogLogout(ctx, user.Username, claims.TokenID)
	s.logger.Info("user logged out", slog.String("username", user.Username))
	return nil
}
