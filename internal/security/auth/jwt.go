package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/aryan0dhankhar/threadline/internal/domain"
)

// Token lifetimes
const (
	DefaultTokenTTL    = 30 * time.Minute
	RememberMeTokenTTL = 30 * 24 * time.Hour
)

// Claims is the verified content of an access token
type Claims struct {
	Subject   string
	TokenID   string
	ExpiresAt time.Time
}

// TokenManager issues and verifies HS256 access tokens
type TokenManager struct {
	secret []byte
	issuer string
	clock  Clock
}

func NewTokenManager(secret, issuer string, clock Clock) *TokenManager {
	if issuer == "" {
		issuer = "threadline"
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, clock: clock}
}

// Issue signs a token for subject that expires ttl from now
func (tm *TokenManager) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, fmt.Errorf("subject required")
	}
	if ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	now := tm.clock.Now()
	expiresAt := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		Issuer:    tm.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry.
// Failures are *domain.AuthError with reason "malformed" or "expired".
func (tm *TokenManager) Verify(tokenString string) (*Claims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	},
		jwt.WithTimeFunc(tm.clock.Now),
		jwt.WithIssuer(tm.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &domain.AuthError{Reason: domain.AuthExpired}
		}
		return nil, &domain.AuthError{Reason: domain.AuthMalformed}
	}
	if claims.Subject == "" {
		return nil, &domain.AuthError{Reason: domain.AuthMalformed}
	}

	return &Claims{
		Subject:   claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ExtractToken pulls the bearer token out of an Authorization header
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", &domain.AuthError{Reason: domain.AuthNotAuthenticated}
	}
	return parts[1], nil
}

// Remaining is how long the claims stay valid from now. Zero or negative once expired.
func (tm *TokenManager) Remaining(c *Claims) time.Duration {
	return c.ExpiresAt.Sub(tm.clock.Now())
}
