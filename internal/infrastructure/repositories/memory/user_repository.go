package memory

import (
	"context"
	"strings"
	"sync"

	"telecare/internal/core/domain"
)

// UserRepository is an in-memory user store for development and tests.
type UserRepository struct {
	mu      sync.RWMutex
	users   map[domain.UserID]*domain.User
	byEmail map[string]domain.UserID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[domain.UserID]*domain.User),
		byEmail: make(map[string]domain.UserID),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := r.byEmail[email]; exists {
		return domain.ErrEmailTaken
	}

	stored := *user
	r.users[user.ID] = &stored
	r.byEmail[email] = user.ID
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *r.users[id]
	return &copied, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}

	if !strings.EqualFold(existing.Email, user.Email) {
		email := strings.ToLower(user.Email)
		if _, taken := r.byEmail[email]; taken {
			return domain.ErrEmailTaken
		}
		delete(r.byEmail, strings.ToLower(existing.Email))
		r.byEmail[email] = user.ID
	}

	stored := *user
	r.users[user.ID] = &stored
	return nil
}
