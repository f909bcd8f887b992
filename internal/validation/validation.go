// Package validation holds the input rules for accounts and comments.
// Every function is pure; failures are *domain.ValidationError values.
package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aryan0dhankhar/threadline/internal/domain"
)

// Rule bounds, counted in runes
const (
	UsernameMinLen = 5
	UsernameMaxLen = 20
	PasswordMinLen = 8
	PasswordMaxLen = 20
	CommentMinLen  = 3
	CommentMaxLen  = 200
)

// Failure reasons
const (
	ReasonEmpty           = "empty"
	ReasonNonAlphanumeric = "non-alphanumeric"
	ReasonLength          = "length"
	ReasonFormat          = "format"
	ReasonUppercase       = "uppercase"
	ReasonLowercase       = "lowercase"
	ReasonDigit           = "digit"
	ReasonSymbol          = "symbol"
)

var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

func fail(field, reason, message string) *domain.ValidationError {
	return &domain.ValidationError{Field: field, Reason: reason, Message: message}
}

// Username checks empty, then non-alphanumeric, then length
func Username(s string) (string, error) {
	if s == "" {
		return "", fail("username", ReasonEmpty, "Username cannot be empty")
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return "", fail("username", ReasonNonAlphanumeric, "Username can only contain letters and numbers")
		}
	}
	if n := utf8.RuneCountInString(s); n < UsernameMinLen || n > UsernameMaxLen {
		return "", fail("username", ReasonLength, "Username must be between 5-20 characters")
	}
	return s, nil
}

// Email requires exactly one "@" with a "." somewhere after it
func Email(s string) (string, error) {
	if s == "" {
		return "", fail("email", ReasonEmpty, "Email cannot be empty")
	}
	if !emailPattern.MatchString(s) {
		return "", fail("email", ReasonFormat, "Invalid email format")
	}
	return s, nil
}

// Password returns the first rule the password breaks
func Password(s string) (string, error) {
	if violations := PasswordViolations(s); len(violations) > 0 {
		return "", violations[0]
	}
	return s, nil
}

// PasswordViolations runs every password check and returns all failures
// in check order: empty, length, uppercase, lowercase, digit, symbol.
func PasswordViolations(s string) []*domain.ValidationError {
	var out []*domain.ValidationError

	if s == "" {
		out = append(out, fail("password", ReasonEmpty, "Password cannot be empty"))
	}
	if n := utf8.RuneCountInString(s); n < PasswordMinLen || n > PasswordMaxLen {
		out = append(out, fail("password", ReasonLength, "Password must be 8-20 characters"))
	}

	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}

	if !upper {
		out = append(out, fail("password", ReasonUppercase, "Password must contain at least one uppercase letter"))
	}
	if !lower {
		out = append(out, fail("password", ReasonLowercase, "Password must contain at least one lowercase letter"))
	}
	if !digit {
		out = append(out, fail("password", ReasonDigit, "Password must contain at least one number"))
	}
	if !symbol {
		out = append(out, fail("password", ReasonSymbol, "Password must contain at least one special character"))
	}
	return out
}

// isStripSpace is unicode.IsSpace plus the ASCII information separators
// U+001C..U+001F, which are also trimmed from comment text.
func isStripSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// CommentContent trims surrounding whitespace and returns the trimmed text,
// which is the value that gets stored.
func CommentContent(s string) (string, error) {
	content := strings.TrimFunc(s, isStripSpace)
	if content == "" {
		return "", fail("content", ReasonEmpty, "Comment cannot be empty")
	}
	if n := utf8.RuneCountInString(content); n < CommentMinLen || n > CommentMaxLen {
		return "", fail("content", ReasonLength, "Comment must be between 3-200 characters")
	}
	return content, nil
}

// Candidate validates all registration fields, reporting the first failure
// in field order: username, email, password.
func Candidate(c domain.UserCandidate) error {
	if _, err := Username(c.Username); err != nil {
		return err
	}
	if _, err := Email(c.Email); err != nil {
		return err
	}
	if _, err := Password(c.Password); err != nil {
		return err
	}
	return nil
}
