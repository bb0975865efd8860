package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"blog-api/internal/domain"
	"blog-api/internal/repository"
)

type PostRepository struct {
	mu    sync.RWMutex
	order []string
	posts map[string]domain.Post
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[string]domain.Post)}
}

var _ repository.PostRepository = (*PostRepository)(nil)

func (r *PostRepository) Init(ctx context.Context) error {
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	r.posts[post.ID] = clonePost(*post)
	r.order = append(r.order, post.ID)
	return nil
}

func (r *PostRepository) Get(ctx context.Context, id string) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p := clonePost(post)
	return &p, nil
}

func (r *PostRepository) List(ctx context.Context) ([]domain.Post, error) {
	return r.filter(func(domain.Post) bool { return true }), nil
}

func (r *PostRepository) ListByTag(ctx context.Context, tag string) ([]domain.Post, error) {
	return r.filter(func(p domain.Post) bool { return p.HasTag(tag) }), nil
}

func (r *PostRepository) filter(keep func(domain.Post) bool) []domain.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := []domain.Post{}
	for _, id := range r.order {
		if post := r.posts[id]; keep(post) {
			posts = append(posts, clonePost(post))
		}
	}
	return posts
}

func (r *PostRepository) Update(ctx context.Context, id string, upd repository.PostUpdate) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if upd.Title != nil {
		post.Title = *upd.Title
	}
	if upd.Content != nil {
		post.Content = *upd.Content
	}
	post.UpdatedAt = time.Now().UTC()
	r.posts[id] = post
	p := clonePost(post)
	return &p, nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.posts, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return &post, nil
}

func clonePost(p domain.Post) domain.Post {
	p.Tags = append([]string{}, p.Tags...)
	return p
}
