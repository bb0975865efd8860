// Package memory keeps users and posts in process memory. It backs the
// "memory" database driver and the service and handler tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"blog-api/internal/domain"
	"blog-api/internal/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Init(ctx context.Context) error {
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return repository.ErrDuplicate
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Update(ctx context.Context, id string, upd repository.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if upd.PasswordHash != nil {
		user.PasswordHash = *upd.PasswordHash
	}
	if upd.AvatarURL != nil {
		user.Profile.AvatarURL = *upd.AvatarURL
	}
	if upd.AvatarStorageID != nil {
		user.Profile.AvatarStorageID = *upd.AvatarStorageID
	}
	if upd.Bio != nil {
		user.Profile.Bio = *upd.Bio
	}
	if upd.RefreshToken != nil {
		user.RefreshToken = *upd.RefreshToken
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return &user, nil
}

func (r *UserRepository) RotateRefreshToken(ctx context.Context, id, current, next string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if current == "" || user.RefreshToken != current {
		return repository.ErrRefreshTokenMismatch
	}
	user.RefreshToken = next
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return nil
}
