package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"blog-api/internal/domain"
	"blog-api/internal/repository"
)

const createPostsTable = `
CREATE TABLE IF NOT EXISTS posts (
	seq BIGSERIAL UNIQUE,
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	image TEXT NOT NULL DEFAULT '',
	image_storage_id TEXT NOT NULL DEFAULT '',
	tags TEXT[] NOT NULL DEFAULT '{}',
	author_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

const createPostsTagsIndex = `CREATE INDEX IF NOT EXISTS idx_posts_tags ON posts USING GIN (tags)`

const postColumns = `id, title, content, image, image_storage_id, tags, author_id, created_at, updated_at`

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) repository.PostRepository {
	return &PostRepository{pool: pool}
}

func (r *PostRepository) Init(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createPostsTable); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	if _, err := r.pool.Exec(ctx, createPostsTagsIndex); err != nil {
		return fmt.Errorf("create posts tags index: %w", err)
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
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	if _, err := r.pool.Exec(ctx, `
INSERT INTO posts (`+postColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		post.ID,
		post.Title,
		post.Content,
		post.Image,
		post.ImageStorageID,
		post.Tags,
		post.AuthorID,
		post.CreatedAt,
		post.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *PostRepository) Get(ctx context.Context, id string) (*domain.Post, error) {
	return scanPost(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
}

func (r *PostRepository) List(ctx context.Context) ([]domain.Post, error) {
	return r.query(ctx, `SELECT `+postColumns+` FROM posts ORDER BY seq`)
}

func (r *PostRepository) ListByTag(ctx context.Context, tag string) ([]domain.Post, error) {
	return r.query(ctx, `SELECT `+postColumns+` FROM posts WHERE $1 = ANY(tags) ORDER BY seq`, tag)
}

func (r *PostRepository) query(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
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
	sets := []string{"updated_at = $1"}
	args := []any{time.Now().UTC()}
	if upd.Title != nil {
		args = append(args, *upd.Title)
		sets = append(sets, "title = $"+strconv.Itoa(len(args)))
	}
	if upd.Content != nil {
		args = append(args, *upd.Content)
		sets = append(sets, "content = $"+strconv.Itoa(len(args)))
	}
	args = append(args, id)

	query := `UPDATE posts SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) + ` RETURNING ` + postColumns
	return scanPost(r.pool.QueryRow(ctx, query, args...))
}

func (r *PostRepository) Delete(ctx context.Context, id string) (*domain.Post, error) {
	return scanPost(r.pool.QueryRow(ctx, `DELETE FROM posts WHERE id = $1 RETURNING `+postColumns, id))
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var post domain.Post
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.Image,
		&post.ImageStorageID,
		&post.Tags,
		&post.AuthorID,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	return &post, nil
}
