package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

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
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const userColumns = `id, username, full_name, email, password_hash, avatar_url, avatar_storage_id, bio, refresh_token, created_at, updated_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
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

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (`+userColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
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
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *UserRepository) Update(ctx context.Context, id string, upd repository.UserUpdate) (*domain.User, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	add := func(column string, value *string) {
		if value != nil {
			sets = append(sets, column+" = ?")
			args = append(args, *value)
		}
	}
	add("password_hash", upd.PasswordHash)
	add("avatar_url", upd.AvatarURL)
	add("avatar_storage_id", upd.AvatarStorageID)
	add("bio", upd.Bio)
	add("refresh_token", upd.RefreshToken)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) RotateRefreshToken(ctx context.Context, id, current, next string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users SET refresh_token = ?, updated_at = ?
WHERE id = ? AND refresh_token = ? AND refresh_token <> ''`,
		next,
		time.Now().UTC(),
		id,
		current,
	)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rotate refresh token rows: %w", err)
	}
	if affected > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return repository.ErrRefreshTokenMismatch
}

func scanUser(row rowScanner) (*domain.User, error) {
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
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
