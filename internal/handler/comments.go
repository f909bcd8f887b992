package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aryan0dhankhar/threadline/internal/domain"
	"github.com/aryan0dhankhar/threadline/internal/security/middleware"
	"github.com/aryan0dhankhar/threadline/internal/service"
)

// Renderer turns comment text into safe HTML
type Renderer interface {
	Render(source string) string
}

// CommentHandler serves the comment endpoints
type CommentHandler struct {
	comments *service.CommentService
	renderer Renderer
	validate *validator.Validate
	logger   *slog.Logger
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(comments *service.CommentService, renderer Renderer, logger *slog.Logger) *CommentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentHandler{
		comments: comments,
		renderer: renderer,
		validate: newValidator(),
		logger:   logger,
	}
}

// CreateCommentRequest is the body of POST /comments. A missing parent_id posts at the top level.
type CreateCommentRequest struct {
	Content  string `json:"content"`
	ParentID *int64 `json:"parent_id" validate:"omitempty,min=0"`
}

// CommentResponse is a comment as returned by the API
type CommentResponse struct {
	ID          int64          `json:"id"`
	Content     string         `json:"content"`
	ContentHTML string         `json:"content_html"`
	CreatedAt   time.Time      `json:"created_at"`
	UserID      int64          `json:"user_id"`
	ParentID    int64          `json:"parent_id"`
	User        domain.Profile `json:"user"`
}

// CommentNodeResponse is a comment with its replies
type CommentNodeResponse struct {
	CommentResponse
	Children []CommentNodeResponse `json:"children"`
}

// Create handles POST /api/v1/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, r, h.logger, &domain.AuthError{Reason: domain.AuthNotAuthenticated})
		return
	}

	var req CreateCommentRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	parentID := domain.RootParentID
	if req.ParentID != nil {
		parentID = *req.ParentID
	}

	comment, err := h.comments.Create(r.Context(), req.Content, user.ID, parentID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.toResponse(comment))
}

// List handles GET /api/v1/comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	forest, err := h.comments.ListTree(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toNodeResponses(forest))
}

// Get handles GET /api/v1/comments/{id}
func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, h.logger, &domain.ValidationError{
			Field:   "id",
			Reason:  "format",
			Message: "Comment id must be an integer",
		})
		return
	}

	comment, err := h.comments.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(comment))
}

func (h *CommentHandler) toResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:          c.ID,
		Content:     c.Content,
		ContentHTML: h.renderer.Render(c.Content),
		CreatedAt:   c.CreatedAt,
		UserID:      c.UserID,
		ParentID:    c.ParentID,
		User:        c.Author,
	}
}

func (h *CommentHandler) toNodeResponses(nodes []domain.CommentNode) []CommentNodeResponse {
	out := make([]CommentNodeResponse, 0, len(nodes))
	for i := range nodes {
		out = append(out, CommentNodeResponse{
			CommentResponse: h.toResponse(&nodes[i].Comment),
			Children:        h.toNodeResponses(nodes[i].Children),
		})
	}
	return out
}
