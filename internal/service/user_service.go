package service

import (
	"context"
	"errors"
	"strings"

	"github.com/mdobak/go-xerrors"

	"blog-api/internal/auth"
	"blog-api/internal/domain"
	"blog-api/internal/repository"
	"blog-api/internal/storage"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username string
	FullName string
	Email    string
	Password string
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, auth.TokenPair, error)
	Logout(ctx context.Context, userID string) error
	RefreshTokens(ctx context.Context, refreshToken string) (auth.TokenPair, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	UpdateAvatar(ctx context.Context, userID, localPath, contentType string) (*domain.User, error)
	UpdateBio(ctx context.Context, userID, bio string) (*domain.User, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

type userService struct {
	users   repository.UserRepository
	tokens  *auth.TokenIssuer
	media   storage.Service
	cleaner *storage.Cleaner
}

func NewUserService(users repository.UserRepository, tokens *auth.TokenIssuer, media storage.Service, cleaner *storage.Cleaner) UserService {
	return &userService{
		users:   users,
		tokens:  tokens,
		media:   media,
		cleaner: cleaner,
	}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	user := &domain.User{
		Username: in.Username,
		FullName: in.FullName,
		Email:    in.Email,
	}
	domain.NormalizeUser(user)
	if !domain.EmailPattern.MatchString(user.Email) {
		return nil, xerrors.New(ErrInvalidEmail)
	}

	if _, err := s.users.GetByEmail(ctx, user.Email); err == nil {
		return nil, xerrors.New(ErrEmailTaken)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, xerrors.New(err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, xerrors.New(err)
	}
	user.PasswordHash = hash

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// the email was free a moment ago, so either a racing
			// registration took it or the username clashes
			if _, lookupErr := s.users.GetByEmail(ctx, user.Email); lookupErr == nil {
				return nil, xerrors.New(ErrEmailTaken)
			}
			return nil, xerrors.New(ErrUsernameTaken)
		}
		return nil, xerrors.New(err)
	}

	return user.Sanitized(), nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*domain.User, auth.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.TokenPair{}, xerrors.New(ErrUserNotFoundByEmail)
		}
		return nil, auth.TokenPair{}, xerrors.New(err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, auth.TokenPair{}, xerrors.New(err)
	}
	if !ok {
		return nil, auth.TokenPair{}, xerrors.New(ErrInvalidPassword)
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, auth.TokenPair{}, xerrors.New(err)
	}
	updated, err := s.users.Update(ctx, user.ID, repository.UserUpdate{RefreshToken: repository.String(pair.RefreshToken)})
	if err != nil {
		return nil, auth.TokenPair{}, xerrors.New(err)
	}

	return updated.Sanitized(), pair, nil
}

func (s *userService) Logout(ctx context.Context, userID string) error {
	if _, err := s.users.Update(ctx, userID, repository.UserUpdate{RefreshToken: repository.String("")}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return xerrors.New(ErrUserNotFound)
		}
		return xerrors.New(err)
	}
	return nil
}

func (s *userService) RefreshTokens(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return auth.TokenPair{}, xerrors.New(ErrRefreshTokenMissing)
	}

	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return auth.TokenPair{}, xerrors.New(ErrInvalidRefreshToken)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return auth.TokenPair{}, xerrors.New(ErrRefreshTokenUser)
		}
		return auth.TokenPair{}, xerrors.New(err)
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return auth.TokenPair{}, xerrors.New(ErrRefreshTokenReused)
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return auth.TokenPair{}, xerrors.New(err)
	}
	if err := s.users.RotateRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken); err != nil {
		switch {
		case errors.Is(err, repository.ErrRefreshTokenMismatch):
			return auth.TokenPair{}, xerrors.New(ErrRefreshTokenReused)
		case errors.Is(err, repository.ErrNotFound):
			return auth.TokenPair{}, xerrors.New(ErrRefreshTokenUser)
		default:
			return auth.TokenPair{}, xerrors.New(err)
		}
	}

	return pair, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return xerrors.New(ErrUserNotFound)
		}
		return xerrors.New(err)
	}

	ok, err := auth.VerifyPassword(oldPassword, user.PasswordHash)
	if err != nil {
		return xerrors.New(err)
	}
	if !ok {
		return xerrors.New(ErrInvalidOldPassword)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return xerrors.New(err)
	}
	if _, err := s.users.Update(ctx, user.ID, repository.UserUpdate{PasswordHash: repository.String(hash)}); err != nil {
		return xerrors.New(err)
	}
	return nil
}

func (s *userService) UpdateAvatar(ctx context.Context, userID, localPath, contentType string) (*domain.User, error) {
	if strings.TrimSpace(localPath) == "" {
		return nil, xerrors.New(ErrAvatarRequired)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		removeLocalFile(localPath)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, xerrors.New(ErrUserNotFound)
		}
		return nil, xerrors.New(err)
	}
	previous := user.Profile.AvatarStorageID

	asset, err := uploadLocalImage(ctx, s.media, localPath, contentType)
	if err != nil {
		return nil, err
	}

	updated, err := s.users.Update(ctx, user.ID, repository.UserUpdate{
		AvatarURL:       repository.String(asset.URL),
		AvatarStorageID: repository.String(asset.StorageID),
	})
	if err != nil {
		s.cleaner.Remove(asset.StorageID, "avatar update failed")
		return nil, xerrors.New(err)
	}

	if previous != "" && previous != asset.StorageID {
		s.cleaner.Remove(previous, "replaced avatar")
	}
	return updated.Sanitized(), nil
}

func (s *userService) UpdateBio(ctx context.Context, userID, bio string) (*domain.User, error) {
	updated, err := s.users.Update(ctx, userID, repository.UserUpdate{Bio: repository.String(bio)})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, xerrors.New(ErrUserNotFound)
		}
		return nil, xerrors.New(err)
	}
	return updated.Sanitized(), nil
}

func (s *userService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, xerrors.New(ErrUserNotFound)
		}
		return nil, xerrors.New(err)
	}
	return user.Sanitized(), nil
}

func (s *userService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, xerrors.New(ErrUnauthenticated)
	}

	userID, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, xerrors.New(ErrInvalidAccessToken)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, xerrors.New(ErrUnauthenticated)
		}
		return nil, xerrors.New(err)
	}
	return user.Sanitized(), nil
}
