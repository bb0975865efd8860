package repository

import (
	"context"

	"blog-api/internal/domain"
)

// PostUpdate lists the mutable post fields. Nil fields are left untouched.
type PostUpdate struct {
	Title   *string
	Content *string
}

// PostRepository exposes persistence operations for blog posts.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post) error
	Get(ctx context.Context, id string) (*domain.Post, error)
	List(ctx context.Context) ([]domain.Post, error)
	ListByTag(ctx context.Context, tag string) ([]domain.Post, error)
	Update(ctx context.Context, id string, upd PostUpdate) (*domain.Post, error)
	Delete(ctx context.Context, id string) (*domain.Post, error)
}
