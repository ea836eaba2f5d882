package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory user store used for demos/tests.
type Repository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewRepository constructs an empty store.
func NewRepository() *Repository {
	return &Repository{users: map[string]domain.User{}}
}

// Save inserts or replaces a user keyed by id. Emails stay unique.
func (r *Repository) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.users {
		if id != user.ID && strings.EqualFold(existing.Email, user.Email) {
			return nil, ports.ErrDuplicateEmail
		}
	}
	r.users[user.ID] = *user
	saved := *user
	return &saved, nil
}

// GetByID fetches a user if present.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[strings.TrimSpace(id)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &user, nil
}

// GetByEmail fetches a user by case-insensitive email.
func (r *Repository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, strings.TrimSpace(email)) {
			found := user
			return &found, nil
		}
	}
	return nil, ports.ErrNotFound
}

// Delete removes a user by id.
func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// List returns all users ordered by id.
func (r *Repository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		u := user
		list = append(list, &u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}
