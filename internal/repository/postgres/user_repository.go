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

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	full_name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	avatar_url TEXT NOT NULL DEFAULT '',
	avatar_storage_id TEXT NOT NULL DEFAULT '',
	bio TEXT NOT NULL DEFAULT '',
	refresh_token TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

const userColumns = `id, username, full_name, email, password_hash, avatar_url, avatar_storage_id, bio, refresh_token, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
INSERT INTO users (`+userColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		user.ID,
		user.Username,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.Profile.AvatarURL,
		user.Profile.AvatarStorageID,
		user.Profile.Bio,
		user.RefreshToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert user: %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) Update(ctx context.Context, id string, upd repository.UserUpdate) (*domain.User, error) {
	sets := []string{"updated_at = $1"}
	args := []any{time.Now().UTC()}

	add := func(column string, value *string) {
		if value != nil {
			args = append(args, *value)
			sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
		}
	}
	add("password_hash", upd.PasswordHash)
	add("avatar_url", upd.AvatarURL)
	add("avatar_storage_id", upd.AvatarStorageID)
	add("bio", upd.Bio)
	add("refresh_token", upd.RefreshToken)
	args = append(args, id)

	query := `UPDATE users SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) + ` RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

func (r *UserRepository) RotateRefreshToken(ctx context.Context, id, current, next string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE users SET refresh_token = $1, updated_at = $2
WHERE id = $3 AND refresh_token = $4 AND refresh_token <> ''`,
		next,
		time.Now().UTC(),
		id,
		current,
	)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return repository.ErrRefreshTokenMismatch
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.Profile.AvatarURL,
		&user.Profile.AvatarStorageID,
		&user.Profile.Bio,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
