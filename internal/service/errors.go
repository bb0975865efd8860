package service

import "github.com/mdobak/go-xerrors"

var (
	ErrInvalidEmail        = xerrors.Message("invalid email address")
	ErrEmailTaken          = xerrors.Message("user already exists with this email")
	ErrUsernameTaken       = xerrors.Message("user already exists with this username")
	ErrUserNotFoundByEmail = xerrors.Message("user doesn't exist with this email")
	ErrInvalidPassword     = xerrors.Message("invalid password")
	ErrInvalidOldPassword  = xerrors.Message("invalid old password")
	ErrUserNotFound        = xerrors.Message("user not found")
	ErrUnauthenticated     = xerrors.Message("unauthorized request")
	ErrInvalidAccessToken  = xerrors.Message("invalid access token")
	ErrRefreshTokenMissing = xerrors.Message("refresh token is required")
	ErrInvalidRefreshToken = xerrors.Message("invalid refresh token")
	ErrRefreshTokenUser    = xerrors.Message("user not found for this refresh token")
	ErrRefreshTokenReused  = xerrors.Message("refresh token is expired or used")
	ErrImageRequired       = xerrors.Message("missing image local path")
	ErrAvatarRequired      = xerrors.Message("missing avatar local path")
	ErrUploadFailed        = xerrors.Message("failed to upload image")
	ErrPostNotFound        = xerrors.Message("post not found")
	ErrAuthorNotFound      = xerrors.Message("author not found with this author id")
)
