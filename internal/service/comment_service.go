package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/aryan0dhankhar/threadline/internal/domain"
	"github.com/aryan0dhankhar/threadline/internal/observability/metrics"
	"github.com/aryan0dhankhar/threadline/internal/observability/tracing"
	"github.com/aryan0dhankhar/threadline/internal/security/audit"
	"github.com/aryan0dhankhar/threadline/internal/security/auth"
	"github.com/aryan0dhankhar/threadline/internal/validation"
)

// CommentService handles posting and reading comments
type CommentService struct {
	comments domain.CommentRepository
	clock    auth.Clock
	audit    *audit.Logger
	logger   *slog.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(
	comments domain.CommentRepository,
	clock auth.Clock,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = auth.SystemClock{}
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	return &CommentService{
		comments: comments,
		clock:    clock,
		audit:    auditLog,
		logger:   logger,
	}
}

// Create stores a new comment by authorID. parentID 0 posts at the top level;
// any other value must name an existing comment.
func (s *CommentService) Create(ctx context.Context, content string, authorID, parentID int64) (*domain.Comment, error) {
	ctx, span := tracing.Tracer().Start(ctx, "CommentService.Create")
	defer span.End()

	trimmed, err := validation.CommentContent(content)
	if err != nil {
		return nil, err
	}

	if parentID < domain.RootParentID {
		return nil, &domain.ValidationError{
			Field:   "parent_id",
			Reason:  validation.ReasonFormat,
			Message: "Parent id must be 0 or an existing comment id",
		}
	}
	if parentID != domain.RootParentID {
		if _, err := s.comments.FindByID(ctx, parentID); err != nil {
			if domain.IsNotFound(err) {
				return nil, &domain.NotFoundError{Entity: "parent comment", Key: strconv.FormatInt(parentID, 10)}
			}
			return nil, fmt.Errorf("look up parent comment: %w", err)
		}
	}

	comment := &domain.Comment{
		Content:   trimmed,
		CreatedAt: s.clock.Now(),
		UserID:    authorID,
		ParentID:  parentID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create comment: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("comment.id", comment.ID),
		attribute.Int64("comment.parent_id", comment.ParentID),
	)
	metrics.ObserveCommentCreated(comment.IsRoot())
	s.audit.LogCommentCreated(ctx, comment.Author.Username,
		strconv.FormatInt(comment.ID, 10), strconv.FormatInt(comment.ParentID, 10))
	s.logger.Info("comment created",
		slog.Int64("comment_id", comment.ID),
		slog.Int64("parent_id", comment.ParentID),
		slog.Int64("user_id", comment.UserID),
	)
	return comment, nil
}

// ListTree returns every comment arranged as a forest, newest first at each level
func (s *CommentService) ListTree(ctx context.Context) ([]domain.CommentNode, error) {
	ctx, span := tracing.Tracer().Start(ctx, "CommentService.ListTree")
	defer span.End()

	flat, err := s.comments.ListOrderedByCreatedDesc(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list comments: %w", err)
	}

	start := time.Now()
	forest, dropped := buildCommentTree(flat)
	metrics.ObserveTreeBuild(time.Since(start), dropped)

	span.SetAttributes(
		attribute.Int("comments.total", len(flat)),
		attribute.Int("comments.roots", len(forest)),
		attribute.Int("comments.dropped", dropped),
	)
	if dropped > 0 {
		s.logger.DebugContext(ctx, "comments left out of tree", slog.Int("dropped", dropped))
	}
	return forest, nil
}

// Get returns a single comment without its replies
func (s *CommentService) Get(ctx context.Context, id int64) (*domain.Comment, error) {
	ctx, span := tracing.Tracer().Start(ctx, "CommentService.Get")
	defer span.End()
	span.SetAttributes(attribute.Int64("comment.id", id))

	// ids start at 1, so nothing below that can exist
	if id < 1 {
		return nil, &domain.NotFoundError{Entity: "comment", Key: strconv.FormatInt(id, 10)}
	}
	return s.comments.FindByID(ctx, id)
}
