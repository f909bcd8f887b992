package repository

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/aryan0dhankhar/threadline/internal/domain"
)

// MemoryUserRepository is a domain.UserRepository kept in process memory.
// Used when no DATABASE_URL is configured and in tests.
type MemoryUserRepository struct {
	mu         sync.RWMutex
	nextID     int64
	byID       map[int64]*domain.User
	byUsername map[string]*domain.User
	byEmail    map[string]*domain.User
}

// NewMemoryUserRepository creates an empty user store
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:       make(map[int64]*domain.User),
		byUsername: make(map[string]*domain.User),
		byEmail:    make(map[string]*domain.User),
	}
}

func (m *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byUsername[user.Username]; taken {
		return &domain.ConflictError{Message: "Username or email already registered"}
	}
	if _, taken := m.byEmail[user.Email]; taken {
		return &domain.ConflictError{Message: "Username or email already registered"}
	}

	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now().UTC()

	stored := *user
	m.byID[stored.ID] = &stored
	m.byUsername[stored.Username] = &stored
	m.byEmail[stored.Email] = &stored
	return nil
}

func (m *MemoryUserRepository) FindByUsernameOrEmail(_ context.Context, username, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// lowest id wins when username and email belong to different users, like the SQL ORDER BY
	var found *domain.User
	for _, u := range []*domain.User{m.byUsername[username], m.byEmail[email]} {
		if u != nil && (found == nil || u.ID < found.ID) {
			found = u
		}
	}
	if found == nil {
		return nil, &domain.NotFoundError{Entity: "user", Key: username}
	}
	out := *found
	return &out, nil
}

func (m *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if u, ok := m.byUsername[username]; ok {
		out := *u
		return &out, nil
	}
	return nil, &domain.NotFoundError{Entity: "user", Key: username}
}

func (m *MemoryUserRepository) profile(id int64) (domain.Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byID[id]
	if !ok {
		return domain.Profile{}, false
	}
	return u.Profile(), true
}

// MemoryCommentRepository is a domain.CommentRepository kept in process memory.
// Authors are resolved against the given user store, like the SQL join.
type MemoryCommentRepository struct {
	mu       sync.RWMutex
	users    *MemoryUserRepository
	nextID   int64
	comments []domain.Comment
}

// NewMemoryCommentRepository creates an empty comment store
func NewMemoryCommentRepository(users *MemoryUserRepository) *MemoryCommentRepository {
	return &MemoryCommentRepository{users: users}
}

func (m *MemoryCommentRepository) Create(_ context.Context, comment *domain.Comment) error {
	author, ok := m.users.profile(comment.UserID)
	if !ok {
		return &domain.NotFoundError{Entity: "user", Key: strconv.FormatInt(comment.UserID, 10)}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	comment.ID = m.nextID
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	comment.Author = author
	m.comments = append(m.comments, *comment)
	return nil
}

func (m *MemoryCommentRepository) ListOrderedByCreatedDesc(_ context.Context) ([]domain.Comment, error) {
	m.mu.RLock()
	out := make([]domain.Comment, len(m.comments))
	copy(out, m.comments)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryCommentRepository) FindByID(_ context.Context, id int64) (*domain.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// ids are assigned sequentially from 1 and never deleted
	if id >= 1 && id <= int64(len(m.comments)) {
		c := m.comments[id-1]
		return &c, nil
	}
	return nil, &domain.NotFoundError{Entity: "comment", Key: strconv.FormatInt(id, 10)}
}

// MemoryRevocationStore is a domain.RevocationStore kept in process memory
type MemoryRevocationStore struct {
	mu      sync.Mutex
	now     func() time.Time
	revoked map[string]time.Time // jti -> forget after
}

// NewMemoryRevocationStore creates an empty store. A nil now uses time.Now.
func NewMemoryRevocationStore(now func() time.Time) *MemoryRevocationStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryRevocationStore{now: now, revoked: make(map[string]time.Time)}
}

func (m *MemoryRevocationStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.prune(now)
	m.revoked[tokenID] = now.Add(ttl)
	return nil
}

// prune forgets revocations whose tokens have expired anyway. Callers hold mu.
func (m *MemoryRevocationStore) prune(now time.Time) {
	for id, until := range m.revoked {
		if !now.Before(until) {
			delete(m.revoked, id)
		}
	}
}

func (m *MemoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.revoked[tokenID]
	return ok && m.now().Before(until), nil
}
