// Package repotest holds behaviour checks shared by every repository implementation.
package repotest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-api/internal/domain"
	"blog-api/internal/repository"
)

func newUser(name string) *domain.User {
	return &domain.User{
		Username:     name,
		FullName:     "Full " + name,
		Email:        name + "@example.com",
		PasswordHash: "hash-" + name,
		Profile:      domain.Profile{AvatarURL: domain.DefaultAvatarURL},
	}
}

// Users exercises a UserRepository produced by newRepo.
func Users(t *testing.T, newRepo func(t *testing.T) repository.UserRepository) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		repo := newRepo(t)
		user := newUser("alice")
		require.NoError(t, repo.Create(ctx, user))
		require.NotEmpty(t, user.ID)
		assert.False(t, user.CreatedAt.IsZero())

		byID, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", byID.Username)
		assert.Equal(t, "Full alice", byID.FullName)
		assert.Equal(t, "hash-alice", byID.PasswordHash)
		assert.Equal(t, domain.DefaultAvatarURL, byID.Profile.AvatarURL)

		byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
	})

	t.Run("missing user", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = repo.GetByEmail(ctx, "nope@example.com")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = repo.Update(ctx, "nope", repository.UserUpdate{Bio: repository.String("x")})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("duplicate email or username", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, newUser("bob")))

		sameEmail := newUser("bobby")
		sameEmail.Email = "bob@example.com"
		assert.ErrorIs(t, repo.Create(ctx, sameEmail), repository.ErrDuplicate)

		sameName := newUser("bob")
		sameName.Email = "other@example.com"
		assert.ErrorIs(t, repo.Create(ctx, sameName), repository.ErrDuplicate)
	})

	t.Run("partial update", func(t *testing.T) {
		repo := newRepo(t)
		user := newUser("carol")
		require.NoError(t, repo.Create(ctx, user))

		updated, err := repo.Update(ctx, user.ID, repository.UserUpdate{
			Bio:             repository.String("a bio that is long enough"),
			AvatarURL:       repository.String("https://cdn.example.com/a.png"),
			AvatarStorageID: repository.String("a"),
		})
		require.NoError(t, err)
		assert.Equal(t, "a bio that is long enough", updated.Profile.Bio)
		assert.Equal(t, "https://cdn.example.com/a.png", updated.Profile.AvatarURL)
		assert.Equal(t, "a", updated.Profile.AvatarStorageID)
		assert.Equal(t, "hash-carol", updated.PasswordHash)
		assert.False(t, updated.UpdatedAt.Before(user.UpdatedAt))
	})

	t.Run("refresh token rotation", func(t *testing.T) {
		repo := newRepo(t)
		user := newUser("dave")
		require.NoError(t, repo.Create(ctx, user))

		assert.ErrorIs(t, repo.RotateRefreshToken(ctx, user.ID, "", "t1"), repository.ErrRefreshTokenMismatch)

		_, err := repo.Update(ctx, user.ID, repository.UserUpdate{RefreshToken: repository.String("t1")})
		require.NoError(t, err)

		require.NoError(t, repo.RotateRefreshToken(ctx, user.ID, "t1", "t2"))
		assert.ErrorIs(t, repo.RotateRefreshToken(ctx, user.ID, "t1", "t3"), repository.ErrRefreshTokenMismatch)
		assert.ErrorIs(t, repo.RotateRefreshToken(ctx, "nope", "t2", "t3"), repository.ErrNotFound)

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "t2", got.RefreshToken)

		_, err = repo.Update(ctx, user.ID, repository.UserUpdate{RefreshToken: repository.String("")})
		require.NoError(t, err)
		assert.ErrorIs(t, repo.RotateRefreshToken(ctx, user.ID, "t2", "t3"), repository.ErrRefreshTokenMismatch)
	})

	t.Run("concurrent rotation has one winner", func(t *testing.T) {
		repo := newRepo(t)
		user := newUser("erin")
		user.RefreshToken = "start"
		require.NoError(t, repo.Create(ctx, user))

		const workers = 8
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins []string
		)
		for i := 0; i < workers; i++ {
			next := string(rune('a' + i))
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := repo.RotateRefreshToken(ctx, user.ID, "start", next); err == nil {
					mu.Lock()
					wins = append(wins, next)
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		require.Len(t, wins, 1)
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, wins[0], got.RefreshToken)
	})
}

func newPost(title string, tags ...string) *domain.Post {
	return &domain.Post{
		Title:          title,
		Content:        "content of " + title,
		Image:          "https://cdn.example.com/" + title + ".png",
		ImageStorageID: title,
		Tags:           tags,
		AuthorID:       "author-1",
	}
}

// Posts exercises a PostRepository produced by newRepo.
func Posts(t *testing.T, newRepo func(t *testing.T) repository.PostRepository) {
	ctx := context.Background()

	t.Run("create get list", func(t *testing.T) {
		repo := newRepo(t)

		empty, err := repo.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)

		first := newPost("first", "x", "y")
		second := newPost("second")
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))
		require.NotEmpty(t, first.ID)

		got, err := repo.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "first", got.Title)
		assert.Equal(t, []string{"x", "y"}, got.Tags)
		assert.Equal(t, "author-1", got.AuthorID)
		assert.Equal(t, "first", got.ImageStorageID)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, first.ID, all[0].ID)
		assert.Equal(t, second.ID, all[1].ID)
		assert.NotNil(t, all[1].Tags)
	})

	t.Run("list by tag is exact", func(t *testing.T) {
		repo := newRepo(t)
		tagged := newPost("tagged", "x", "y")
		require.NoError(t, repo.Create(ctx, tagged))
		require.NoError(t, repo.Create(ctx, newPost("other", "xx", "z")))

		got, err := repo.ListByTag(ctx, "x")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, tagged.ID, got[0].ID)

		none, err := repo.ListByTag(ctx, "missing")
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("update touches only title and content", func(t *testing.T) {
		repo := newRepo(t)
		post := newPost("before", "x")
		require.NoError(t, repo.Create(ctx, post))

		updated, err := repo.Update(ctx, post.ID, repository.PostUpdate{Title: repository.String("after")})
		require.NoError(t, err)
		assert.Equal(t, "after", updated.Title)
		assert.Equal(t, "content of before", updated.Content)
		assert.Equal(t, post.Image, updated.Image)
		assert.Equal(t, []string{"x"}, updated.Tags)

		_, err = repo.Update(ctx, "nope", repository.PostUpdate{Title: repository.String("after")})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("delete returns the removed post", func(t *testing.T) {
		repo := newRepo(t)
		keep := newPost("keep")
		gone := newPost("gone")
		require.NoError(t, repo.Create(ctx, keep))
		require.NoError(t, repo.Create(ctx, gone))

		deleted, err := repo.Delete(ctx, gone.ID)
		require.NoError(t, err)
		assert.Equal(t, "gone", deleted.ImageStorageID)

		_, err = repo.Get(ctx, gone.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		_, err = repo.Delete(ctx, "nope")
		assert.ErrorIs(t, err, repository.ErrNotFound)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, keep.ID, all[0].ID)
	})
}
