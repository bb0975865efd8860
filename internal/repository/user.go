package repository

import (
	"context"
	"errors"

	"blog-api/internal/domain"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("duplicate record")
	// ErrRefreshTokenMismatch is returned when the stored refresh token is not the expected one.
	ErrRefreshTokenMismatch = errors.New("refresh token mismatch")
)

// UserUpdate lists the mutable user fields. Nil fields are left untouched;
// an empty RefreshToken unsets the stored token.
type UserUpdate struct {
	PasswordHash    *string
	AvatarURL       *string
	AvatarStorageID *string
	Bio             *string
	RefreshToken    *string
}

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*domain.User, error)
	// RotateRefreshToken replaces the stored refresh token with next only if
	// it still equals current.
	RotateRefreshToken(ctx context.Context, id, current, next string) error
}

// String returns a pointer to s, for building updates.
func String(s string) *string {
	return &s
}
