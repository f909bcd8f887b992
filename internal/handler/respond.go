package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aryan0dhankhar/threadline/internal/domain"
	"github.com/aryan0dhankhar/threadline/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/threadline/internal/security/middleware"
)

// Error codes carried in ErrorResponse.Code
const (
	CodeValidation = "validation"
	CodeConflict   = "conflict"
	CodeAuth       = "auth"
	CodeNotFound   = "not_found"
	CodeTooLarge   = "too_large"
	CodeInternal   = "internal"
)

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Reason string `json:"reason,omitempty"`
	Field  string `json:"field,omitempty"`
}

// MessageResponse carries a plain confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes. Anything unrecognised is a logged 500.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var (
		validationErr *domain.ValidationError
		conflictErr   *domain.ConflictError
		authErr       *domain.AuthError
		notFoundErr   *domain.NotFoundError
		tooLargeErr   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  validationErr.Message,
			Code:   CodeValidation,
			Reason: validationErr.Reason,
			Field:  validationErr.Field,
		})
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: conflictErr.Message, Code: CodeConflict})
	case errors.As(err, &authErr):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:  authErr.Error(),
			Code:   CodeAuth,
			Reason: authErr.Reason,
		})
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: capitalize(notFoundErr.Error()), Code: CodeNotFound})
	case errors.As(err, &tooLargeErr):
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Request body too large", Code: CodeTooLarge})
	default:
		log.Error("request failed",
			slog.String("request_id", logger.RequestID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error", Code: CodeInternal})
	}
}

// ErrorResponder adapts writeError for the auth middleware
func ErrorResponder(log *slog.Logger) middleware.ErrorResponder {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		writeError(w, r, log, err)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// newValidator reports struct fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// Failures come back as *domain.ValidationError so they map to 400.
func decodeAndValidate(r *http.Request, v *validator.Validate, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return &domain.ValidationError{Field: "body", Reason: "empty", Message: "Request body is required"}
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &domain.ValidationError{Field: "body", Reason: "format", Message: "Invalid JSON body"}
	}

	if err := v.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &domain.ValidationError{
				Field:   fe.Field(),
				Reason:  fe.Tag(),
				Message: fieldMessage(fe),
			}
		}
		return fmt.Errorf("validate request: %w", err)
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return fe.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}
