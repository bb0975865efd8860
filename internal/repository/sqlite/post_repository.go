package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"blog-api/internal/domain"
	"blog-api/internal/repository"
)

const createPostsTable = `
CREATE TABLE IF NOT EXISTS posts (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	image TEXT NOT NULL DEFAULT '',
	image_storage_id TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '[]',
	author_id TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const createPostsAuthorIndex = `CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id);`

const postColumns = `id, title, content, image, image_storage_id, tags, author_id, created_at, updated_at`

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) repository.PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPostsTable); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createPostsAuthorIndex); err != nil {
		return fmt.Errorf("create posts author index: %w", err)
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	tags, err := json.Marshal(post.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	if _, err := r.db.ExecContext(ctx, `
INSERT INTO posts (`+postColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.Title,
		post.Content,
		post.Image,
		post.ImageStorageID,
		string(tags),
		post.AuthorID,
		post.CreatedAt,
		post.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *PostRepository) Get(ctx context.Context, id string) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPost(row)
}

func (r *PostRepository) List(ctx context.Context) ([]domain.Post, error) {
	return r.query(ctx, `SELECT `+postColumns+` FROM posts ORDER BY rowid ASC`)
}

func (r *PostRepository) ListByTag(ctx context.Context, tag string) ([]domain.Post, error) {
	return r.query(ctx, `
SELECT `+postColumns+` FROM posts
WHERE EXISTS (SELECT 1 FROM json_each(posts.tags) WHERE json_each.value = ?)
ORDER BY rowid ASC`, tag)
}

func (r *PostRepository) query(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) Update(ctx context.Context, id string, upd repository.PostUpdate) (*domain.Post, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *upd.Content)
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, `UPDATE posts SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, repository.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *PostRepository) Delete(ctx context.Context, id string) (*domain.Post, error) {
	post, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("delete post: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, repository.ErrNotFound
	}
	return post, nil
}

func scanPost(row rowScanner) (*domain.Post, error) {
	var (
		post domain.Post
		tags string
	)
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.Image,
		&post.ImageStorageID,
		&tags,
		&post.AuthorID,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &post.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	return &post, nil
}
