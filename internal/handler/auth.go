package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aryan0dhankhar/threadline/internal/domain"
	"github.com/aryan0dhankhar/threadline/internal/security/middleware"
	"github.com/aryan0dhankhar/threadline/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
		logger:      logger,
	}
}

// RegisterRequest represents registration request. Field rules live in the validation package.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is returned on 201
type RegisterResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// LoginRequest accepts either identifier or username, so OAuth2-style clients work unchanged
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required_without=Username"`
	Username   string `json:"username"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

func (r LoginRequest) login() string {
	if r.Identifier != "" {
		return r.Identifier
	}
	return r.Username
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.authService.Register(r.Context(), domain.UserCandidate{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{Message: "User created successfully", User: user})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req.login(), req.Password, req.RememberMe)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), middleware.TokenFromContext(r.Context())); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Successfully logged out"})
}

// Me handles GET /api/v1/user/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, r, h.logger, &domain.AuthError{Reason: domain.AuthNotAuthenticated})
		return
	}
	writeJSON(w, http.StatusOK, user.Profile())
}
