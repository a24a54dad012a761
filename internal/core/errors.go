// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
	ErrRateLimited  = errors.New("rate limit exceeded")
)

// AppError is an error that already knows how it should be rendered to an
// HTTP client.
type AppError struct {
	Err         error
	Message     string
	StatusCode  int
	FieldErrors map[string]string
}

func NewAppError(err error, message string, statusCode int) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrNotFound, message, http.StatusNotFound)
}

func ConflictError(message string) *AppError {
	return NewAppError(ErrDuplicateKey, message, http.StatusConflict)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrInvalidInput, message, http.StatusBadRequest)
}

func ValidationError(fieldErrors map[string]string) *AppError {
	appErr := NewAppError(
		ErrInvalidInput,
		"Validation failed for one or more fields",
		http.StatusBadRequest,
	)
	appErr.FieldErrors = fieldErrors
	return appErr
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(ErrUnauthorized, message, http.StatusUnauthorized)
}

func ForbiddenError(message string) *AppError {
	return NewAppError(ErrForbidden, message, http.StatusForbidden)
}

func TokenExpiredError() *AppError {
	return NewAppError(ErrTokenExpired, "token has expired", http.StatusUnauthorized)
}

func TokenInvalidError() *AppError {
	return NewAppError(ErrTokenInvalid, "token is invalid", http.StatusUnauthorized)
}

func TooManyRequestsError(message string) *AppError {
	return NewAppError(ErrRateLimited, message, http.StatusTooManyRequests)
}

func InternalError(err error) *AppError {
	return NewAppError(
		err,
		"An unexpected error occurred. Please try again later.",
		http.StatusInternalServerError,
	)
}

// ToAppError classifies err by the sentinels it wraps. The message of the
// original error is kept for client errors and replaced for server errors.
func ToAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NewAppError(err, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDuplicateKey):
		return NewAppError(err, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidInput):
		return NewAppError(err, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrTokenExpired):
		return TokenExpiredError()
	case errors.Is(err, ErrTokenInvalid):
		return TokenInvalidError()
	case errors.Is(err, ErrUnauthorized):
		return UnauthorizedError("authentication required")
	case errors.Is(err, ErrForbidden):
		return ForbiddenError("insufficient permissions")
	case errors.Is(err, ErrRateLimited):
		return TooManyRequestsError(err.Error())
	default:
		return InternalError(err)
	}
}
