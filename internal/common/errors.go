package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict") // e.g., email already exists
	ErrInternalServer     = errors.New("internal server error")
	ErrValidation         = errors.New("validation failed")
)

// DomainError pairs one of the sentinel errors above with the exact message
// surfaced to the caller. errors.Is sees the sentinel through Unwrap, while
// Error() stays just the rule message (the first violated validation rule,
// a conflict description, etc.).
type DomainError struct {
	kind    error
	message string
}

func (e *DomainError) Error() string { return e.message }
func (e *DomainError) Unwrap() error { return e.kind }

func ValidationError(message string) error {
	return &DomainError{kind: ErrValidation, message: message}
}

func ConflictError(message string) error {
	return &DomainError{kind: ErrConflict, message: message}
}

func NotFoundError(message string) error {
	return &DomainError{kind: ErrNotFound, message: message}
}

// AuthError deliberately carries one shared message for both "no such user"
// and "wrong password" so callers cannot enumerate accounts. It surfaces as
// 400, matching the login contract, not as 401.
func AuthError(message string) error {
	return &DomainError{kind: ErrInvalidCredentials, message: message}
}

// HTTPStatusFromError maps domain errors to HTTP status codes. Conflicts are
// reported as 400 alongside validation failures; the API does not distinguish
// them at the HTTP layer.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConflict) || errors.Is(err, ErrInvalidCredentials) {
		return http.StatusBadRequest
	}

	// Unique-constraint violations that escaped repository translation.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return http.StatusBadRequest
		}
	}

	return http.StatusInternalServerError
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
