package http

import (
	"errors"
	"net/http"

	"github.com/mdobak/go-xerrors"

	"blog-api/internal/service"
)

var (
	ErrRouteNotFound   = xerrors.Message("route not found")
	ErrPayloadTooLarge = xerrors.Message("request entity too large")
	ErrMalformedBody   = xerrors.Message("invalid request body")
	ErrNotAnImage      = xerrors.Message("only image uploads are allowed")
	ErrMissingPostID   = xerrors.Message("missing post id")
)

// APIError is an error that already knows its HTTP status and client message.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func badRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message}
}

var errorStatuses = []struct {
	target error
	status int
}{
	{service.ErrInvalidEmail, http.StatusBadRequest},
	{service.ErrUserNotFoundByEmail, http.StatusBadRequest},
	{service.ErrInvalidPassword, http.StatusBadRequest},
	{service.ErrInvalidOldPassword, http.StatusBadRequest},
	{service.ErrRefreshTokenMissing, http.StatusBadRequest},
	{service.ErrRefreshTokenUser, http.StatusBadRequest},
	{service.ErrImageRequired, http.StatusBadRequest},
	{service.ErrAvatarRequired, http.StatusBadRequest},
	{ErrMalformedBody, http.StatusBadRequest},
	{ErrNotAnImage, http.StatusBadRequest},
	{ErrMissingPostID, http.StatusBadRequest},

	{service.ErrUnauthenticated, http.StatusUnauthorized},
	{service.ErrInvalidAccessToken, http.StatusUnauthorized},
	{service.ErrInvalidRefreshToken, http.StatusUnauthorized},
	{service.ErrRefreshTokenReused, http.StatusUnauthorized},

	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrPostNotFound, http.StatusNotFound},
	{service.ErrAuthorNotFound, http.StatusNotFound},
	{ErrRouteNotFound, http.StatusNotFound},

	{service.ErrEmailTaken, http.StatusConflict},
	{service.ErrUsernameTaken, http.StatusConflict},

	{ErrPayloadTooLarge, http.StatusRequestEntityTooLarge},

	{service.ErrUploadFailed, http.StatusInternalServerError},
}

// toAPIError classifies err. Anything unknown becomes a 500 that keeps err for logging.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	for _, entry := range errorStatuses {
		if errors.Is(err, entry.target) {
			return &APIError{Status: entry.status, Message: entry.target.Error(), Err: err}
		}
	}
	return &APIError{Status: http.StatusInternalServerError, Message: "internal server error", Err: err}
}
