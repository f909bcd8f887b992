package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aryan0dhankhar/threadline/internal/domain"
)

const commentSelect = `
	SELECT c.id, c.content, c.created_at, c.user_id, c.parent_id,
	       u.username AS "author.username", u.email AS "author.email"
	FROM comments c
	JOIN users u ON u.id = c.user_id
`

// PostgresCommentRepository implements domain.CommentRepository using PostgreSQL
type PostgresCommentRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresCommentRepository creates a new comment repository
func NewPostgresCommentRepository(db *sqlx.DB, logger *slog.Logger) *PostgresCommentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCommentRepository{db: db, logger: logger}
}

// Create inserts the comment and fills in ID, CreatedAt and Author in one round trip
func (r *PostgresCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		WITH inserted AS (
			INSERT INTO comments (content, user_id, parent_id, created_at)
			VALUES ($1, $2, $3, COALESCE($4::timestamptz, NOW()))
			RETURNING id, created_at, user_id
		)
		SELECT i.id, i.created_at, u.username, u.email
		FROM inserted i
		JOIN users u ON u.id = i.user_id
	`

	var createdAt *time.Time
	if !comment.CreatedAt.IsZero() {
		createdAt = &comment.CreatedAt
	}

	err := r.db.QueryRowxContext(ctx, query,
		comment.Content,
		comment.UserID,
		comment.ParentID,
		createdAt,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.Author.Username, &comment.Author.Email)

	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.NotFoundError{Entity: "user", Key: strconv.FormatInt(comment.UserID, 10)}
		}
		r.logger.Error("failed to create comment",
			slog.Int64("user_id", comment.UserID),
			slog.Int64("parent_id", comment.ParentID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// ListOrderedByCreatedDesc returns every comment newest first, ties broken by id
func (r *PostgresCommentRepository) ListOrderedByCreatedDesc(ctx context.Context) ([]domain.Comment, error) {
	comments := []domain.Comment{}
	query := commentSelect + ` ORDER BY c.created_at DESC, c.id DESC`

	if err := r.db.SelectContext(ctx, &comments, query); err != nil {
		r.logger.Error("failed to list comments", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// FindByID retrieves a single comment with its author
func (r *PostgresCommentRepository) FindByID(ctx context.Context, id int64) (*domain.Comment, error) {
	comment := &domain.Comment{}
	query := commentSelect + ` WHERE c.id = $1`

	if err := r.db.GetContext(ctx, comment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "comment", Key: strconv.FormatInt(id, 10)}
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}
