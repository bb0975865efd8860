package service

import (
	"context"
	"errors"
	"strings"

	"github.com/mdobak/go-xerrors"

	"blog-api/internal/domain"
	"blog-api/internal/repository"
	"blog-api/internal/storage"
)

// CreatePostInput carries the text fields of a new post. Tags is the raw
// comma separated list.
type CreatePostInput struct {
	Title   string
	Content string
	Tags    string
}

// UpdatePostInput carries the fields a post update may change.
type UpdatePostInput struct {
	Title   string
	Content string
}

// PostService exposes blog post operations.
type PostService interface {
	Create(ctx context.Context, authorID string, in CreatePostInput, localImagePath, contentType string) (*domain.Post, error)
	List(ctx context.Context) ([]domain.Post, error)
	Get(ctx context.Context, id string) (*domain.Post, error)
	Update(ctx context.Context, id string, in UpdatePostInput) (*domain.Post, error)
	Delete(ctx context.Context, id string) error
	ListByTag(ctx context.Context, tag string) ([]domain.Post, error)
	AuthorDetails(ctx context.Context, postID string) (*domain.User, error)
}

type postService struct {
	posts   repository.PostRepository
	users   repository.UserRepository
	media   storage.Service
	cleaner *storage.Cleaner
}

func NewPostService(posts repository.PostRepository, users repository.UserRepository, media storage.Service, cleaner *storage.Cleaner) PostService {
	return &postService{
		posts:   posts,
		users:   users,
		media:   media,
		cleaner: cleaner,
	}
}

func (s *postService) Create(ctx context.Context, authorID string, in CreatePostInput, localImagePath, contentType string) (*domain.Post, error) {
	if strings.TrimSpace(localImagePath) == "" {
		return nil, xerrors.New(ErrImageRequired)
	}

	asset, err := uploadLocalImage(ctx, s.media, localImagePath, contentType)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		Title:          in.Title,
		Content:        in.Content,
		Image:          asset.URL,
		ImageStorageID: asset.StorageID,
		Tags:           domain.ParseTags(in.Tags),
		AuthorID:       authorID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.cleaner.Remove(asset.StorageID, "post create failed")
		return nil, xerrors.New(err)
	}
	return post, nil
}

func (s *postService) List(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, xerrors.New(err)
	}
	return posts, nil
}

func (s *postService) Get(ctx context.Context, id string) (*domain.Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, postError(err)
	}
	return post, nil
}

func (s *postService) Update(ctx context.Context, id string, in UpdatePostInput) (*domain.Post, error) {
	post, err := s.posts.Update(ctx, id, repository.PostUpdate{
		Title:   repository.String(in.Title),
		Content: repository.String(in.Content),
	})
	if err != nil {
		return nil, postError(err)
	}
	return post, nil
}

func (s *postService) Delete(ctx context.Context, id string) error {
	post, err := s.posts.Delete(ctx, id)
	if err != nil {
		return postError(err)
	}
	s.cleaner.Remove(post.ImageStorageID, "deleted post")
	return nil
}

func (s *postService) ListByTag(ctx context.Context, tag string) ([]domain.Post, error) {
	posts, err := s.posts.ListByTag(ctx, tag)
	if err != nil {
		return nil, xerrors.New(err)
	}
	return posts, nil
}

func (s *postService) AuthorDetails(ctx context.Context, postID string) (*domain.User, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, postError(err)
	}

	author, err := s.users.GetByID(ctx, post.AuthorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, xerrors.New(ErrAuthorNotFound)
		}
		return nil, xerrors.New(err)
	}
	return author.Sanitized(), nil
}

func postError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return xerrors.New(ErrPostNotFound)
	}
	return xerrors.New(err)
}
