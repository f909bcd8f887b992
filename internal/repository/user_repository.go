package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/aryan0dhankhar/threadline/internal/domain"
)

const userColumns = `id, username, email, password_hash, is_active, created_at`

// PostgresUserRepository implements domain.UserRepository using PostgreSQL
type PostgresUserRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresUserRepository creates a new user repository
func NewPostgresUserRepository(db *sqlx.DB, logger *slog.Logger) *PostgresUserRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the user. A duplicate username or email becomes *domain.ConflictError.
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{Message: "Username or email already registered"}
		}
		r.logger.Error("failed to create user",
			slog.String("username", user.Username),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByUsernameOrEmail matches either unique column in one query
func (r *PostgresUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $2 ORDER BY id LIMIT 1`
	return r.get(ctx, username, query, username, email)
}

// FindByUsername retrieves a user by username
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.get(ctx, username, query, username)
}

func (r *PostgresUserRepository) get(ctx context.Context, key, query string, args ...interface{}) (*domain.User, error) {
	user := &domain.User{}
	if err := r.db.GetContext(ctx, user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "user", Key: key}
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
