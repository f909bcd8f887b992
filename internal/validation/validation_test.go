package validation_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/threadline/internal/domain"
	"github.com/aryan0dhankhar/threadline/internal/validation"
)

func reasonOf(t *testing.T, err error) string {
	t.Helper()
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "expected *domain.ValidationError, got %T", err)
	return ve.Reason
}

func TestUsername(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason string
		msg    string
	}{
		{"empty", "", validation.ReasonEmpty, "Username cannot be empty"},
		{"at sign", "user@name", validation.ReasonNonAlphanumeric, "Username can only contain letters and numbers"},
		{"underscore", "user_name", validation.ReasonNonAlphanumeric, "Username can only contain letters and numbers"},
		{"too short", "user", validation.ReasonLength, "Username must be between 5-20 characters"},
		{"too long", "averyveryverylongusername", validation.ReasonLength, "Username must be between 5-20 characters"},
		{"long with underscore reports charset first", "a_very_long_username_that_exceeds_limit", validation.ReasonNonAlphanumeric, "Username can only contain letters and numbers"},
		{"valid", "ValidUser123", "", ""},
		{"min length", "abcde", "", ""},
		{"max length", strings.Repeat("a", 20), "", ""},
		{"unicode letters counted as runes", "ñandúes", "", ""},
		{"superscript digit is a number", "abcd²", "", ""},
		{"roman numeral is a number", "abcdⅧ", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validation.Username(tt.input)
			if tt.reason == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.input, got)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.reason, reasonOf(t, err))
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		input  string
		reason string
	}{
		{"", validation.ReasonEmpty},
		{"plainaddress", validation.ReasonFormat},
		{"a@b", validation.ReasonFormat},
		{"a@@b.com", validation.ReasonFormat},
		{"@x.com", validation.ReasonFormat},
		{"a@x.", validation.ReasonFormat},
		{"a@x.com", ""},
		{"first.last@sub.example.org", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := validation.Email(tt.input)
			if tt.reason == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.input, got)
				return
			}
			assert.Equal(t, tt.reason, reasonOf(t, err))
		})
	}
}

func TestPassword(t *testing.T) {
	const valid = "Abcdef1!"

	t.Run("accepts password meeting every rule", func(t *testing.T) {
		got, err := validation.Password(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, got)
		assert.Empty(t, validation.PasswordViolations(valid))
	})

	flips := []struct {
		name   string
		input  string
		reason string
	}{
		{"empty", "", validation.ReasonEmpty},
		{"too short", "Ab1!", validation.ReasonLength},
		{"too long", "Abcdefghijklmnopqr1!x", validation.ReasonLength},
		{"no uppercase", "abcdef1!", validation.ReasonUppercase},
		{"no lowercase", "ABCDEF1!", validation.ReasonLowercase},
		{"no digit", "Abcdefg!", validation.ReasonDigit},
		{"no symbol", "Abcdefg1", validation.ReasonSymbol},
	}

	for _, tt := range flips {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validation.Password(tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.reason, reasonOf(t, err))
		})
	}

	t.Run("aggregate mode reports every failure in check order", func(t *testing.T) {
		violations := validation.PasswordViolations("")
		reasons := make([]string, 0, len(violations))
		for _, v := range violations {
			reasons = append(reasons, v.Reason)
		}
		assert.Equal(t, []string{
			validation.ReasonEmpty,
			validation.ReasonLength,
			validation.ReasonUppercase,
			validation.ReasonLowercase,
			validation.ReasonDigit,
			validation.ReasonSymbol,
		}, reasons)
	})

	t.Run("non-ascii letter counts as symbol", func(t *testing.T) {
		_, err := validation.Password("Abcdefé1")
		assert.NoError(t, err)
	})
}

func TestCommentContent(t *testing.T) {
	t.Run("trims surrounding whitespace", func(t *testing.T) {
		got, err := validation.CommentContent("  hello world \n")
		require.NoError(t, err)
		assert.Equal(t, "hello world", got)
	})

	t.Run("trims information separators and unicode spaces", func(t *testing.T) {
		got, err := validation.CommentContent("\x1c\x1fhey\u00a0\u3000\x1e")
		require.NoError(t, err)
		assert.Equal(t, "hey", got)

		_, err = validation.CommentContent("\x1fhi\x1f")
		assert.Equal(t, validation.ReasonLength, reasonOf(t, err))
	})

	t.Run("whitespace only is empty", func(t *testing.T) {
		_, err := validation.CommentContent(" \t\n ")
		assert.Equal(t, validation.ReasonEmpty, reasonOf(t, err))
	})

	t.Run("length is checked after trimming", func(t *testing.T) {
		_, err := validation.CommentContent("   ab   ")
		assert.Equal(t, validation.ReasonLength, reasonOf(t, err))
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		got, err := validation.CommentContent(strings.Repeat("日", 200))
		require.NoError(t, err)
		assert.Len(t, []rune(got), 200)

		_, err = validation.CommentContent(strings.Repeat("日", 201))
		assert.Equal(t, validation.ReasonLength, reasonOf(t, err))
	})
}

func TestCandidate(t *testing.T) {
	err := validation.Candidate(domain.UserCandidate{Username: "alice1", Email: "bad", Password: "nope"})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "email", ve.Field)

	assert.NoError(t, validation.Candidate(domain.UserCandidate{Username: "alice1", Email: "a@x.com", Password: "Abcdef1!"}))
}
