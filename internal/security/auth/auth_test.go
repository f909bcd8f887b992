package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aryan0dhankhar/threadline/internal/domain"
	"github.com/aryan0dhankhar/threadline/internal/security/auth"
)

func TestBcryptHasher(t *testing.T) {
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)

	t.Run("round trip verifies", func(t *testing.T) {
		hash, err := hasher.Hash("Abcdef1!")
		require.NoError(t, err)
		assert.NotEqual(t, "Abcdef1!", hash)
		assert.True(t, hasher.Verify("Abcdef1!", hash))
	})

	t.Run("different password does not verify", func(t *testing.T) {
		hash, err := hasher.Hash("Abcdef1!")
		require.NoError(t, err)
		assert.False(t, hasher.Verify("Abcdef2!", hash))
	})

	t.Run("same password produces different hashes (salt)", func(t *testing.T) {
		h1, err := hasher.Hash("Abcdef1!")
		require.NoError(t, err)
		h2, err := hasher.Hash("Abcdef1!")
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)
		assert.True(t, hasher.Verify("Abcdef1!", h1))
		assert.True(t, hasher.Verify("Abcdef1!", h2))
	})

	t.Run("malformed hash is a mismatch", func(t *testing.T) {
		assert.False(t, hasher.Verify("Abcdef1!", "not-a-hash"))
	})

	t.Run("invalid cost falls back to default", func(t *testing.T) {
		hash, err := auth.NewBcryptHasher(0).Hash("Abcdef1!")
		require.NoError(t, err)
		cost, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, bcrypt.DefaultCost, cost)
	})
}

func TestTokenManager(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("verifies before expiry", func(t *testing.T) {
		clock := &auth.FixedClock{T: start}
		tm := auth.NewTokenManager("secret", "threadline", clock)

		token, expiresAt, err := tm.Issue("alice1", auth.DefaultTokenTTL)
		require.NoError(t, err)
		assert.Equal(t, start.Add(30*time.Minute), expiresAt)

		clock.T = start.Add(29 * time.Minute)
		claims, err := tm.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "alice1", claims.Subject)
		assert.NotEmpty(t, claims.TokenID)
		assert.True(t, claims.ExpiresAt.Equal(expiresAt))
	})

	t.Run("expired after the expiry instant", func(t *testing.T) {
		clock := &auth.FixedClock{T: start}
		tm := auth.NewTokenManager("secret", "threadline", clock)

		token, _, err := tm.Issue("alice1", auth.DefaultTokenTTL)
		require.NoError(t, err)

		clock.T = start.Add(31 * time.Minute)
		_, err = tm.Verify(token)
		assert.True(t, domain.HasAuthReason(err, domain.AuthExpired), "got %v", err)
	})

	t.Run("remember me outlives the default lifetime", func(t *testing.T) {
		clock := &auth.FixedClock{T: start}
		tm := auth.NewTokenManager("secret", "threadline", clock)

		token, _, err := tm.Issue("alice1", auth.RememberMeTokenTTL)
		require.NoError(t, err)

		clock.T = start.Add(29 * 24 * time.Hour)
		_, err = tm.Verify(token)
		assert.NoError(t, err)
	})

	t.Run("wrong secret is malformed", func(t *testing.T) {
		clock := &auth.FixedClock{T: start}
		token, _, err := auth.NewTokenManager("secret", "", clock).Issue("alice1", time.Hour)
		require.NoError(t, err)

		_, err = auth.NewTokenManager("other", "", clock).Verify(token)
		assert.True(t, domain.HasAuthReason(err, domain.AuthMalformed))
	})

	t.Run("tampered payload is malformed", func(t *testing.T) {
		clock := &auth.FixedClock{T: start}
		tm := auth.NewTokenManager("secret", "", clock)
		token, _, err := tm.Issue("alice1", time.Hour)
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		forged, _, err := auth.NewTokenManager("secret", "", clock).Issue("mallory1", time.Hour)
		require.NoError(t, err)
		parts[1] = strings.Split(forged, ".")[1]

		_, err = tm.Verify(strings.Join(parts, "."))
		assert.True(t, domain.HasAuthReason(err, domain.AuthMalformed))
	})

	t.Run("garbage is malformed", func(t *testing.T) {
		tm := auth.NewTokenManager("secret", "", nil)
		_, err := tm.Verify("not.a.token")
		assert.True(t, domain.HasAuthReason(err, domain.AuthMalformed))
	})

	t.Run("non-HMAC algorithm is rejected", func(t *testing.T) {
		tm := auth.NewTokenManager("secret", "", nil)
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "alice1",
			Issuer:    "threadline",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = tm.Verify(token)
		assert.True(t, domain.HasAuthReason(err, domain.AuthMalformed))
	})

	t.Run("rejects non-positive ttl", func(t *testing.T) {
		_, _, err := auth.NewTokenManager("secret", "", nil).Issue("alice1", 0)
		assert.Error(t, err)
	})
}

func TestExtractToken(t *testing.T) {
	token, err := auth.ExtractToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = auth.ExtractToken("Basic xyz")
	assert.True(t, domain.HasAuthReason(err, domain.AuthNotAuthenticated))

	_, err = auth.ExtractToken("")
	assert.Error(t, err)
}
