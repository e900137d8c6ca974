package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden access")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict") // e.g., email already registered
	ErrInternalServer     = errors.New("internal server error")
	ErrValidation         = errors.New("validation failed")
	ErrServiceUnavailable = errors.New("service unavailable") // e.g. storage timeout
)

// Rejection reasons. Each one wraps the category that decides its HTTP status.
var (
	ErrMissingFields          = fmt.Errorf("%w: missing fields", ErrValidation)
	ErrInvalidDomain          = fmt.Errorf("%w: invalid email domain", ErrValidation)
	ErrInvalidPosition        = fmt.Errorf("%w: invalid position", ErrValidation)
	ErrWeakPassword           = fmt.Errorf("%w: weak password", ErrValidation)
	ErrSamePassword           = fmt.Errorf("%w: same password", ErrValidation)
	ErrDuplicateEmail         = fmt.Errorf("%w: duplicate email", ErrConflict)
	ErrRegistrationInProgress = fmt.Errorf("%w: registration in progress", ErrConflict)
	ErrInvalidCredentials     = fmt.Errorf("%w: invalid email", ErrUnauthorized)
	ErrInvalidPassword        = fmt.Errorf("%w: invalid password", ErrUnauthorized)
	ErrInvalidAccount         = fmt.Errorf("%w: invalid account", ErrUnauthorized)
	ErrInvalidCurrentPassword = fmt.Errorf("%w: invalid current password", ErrUnauthorized)
	ErrNotRepresentative      = fmt.Errorf("%w: not a representative", ErrForbidden)
)

var reasonCodes = map[error]string{
	ErrMissingFields:          "MISSING_FIELDS",
	ErrInvalidDomain:          "INVALID_DOMAIN",
	ErrInvalidPosition:        "INVALID_POSITION",
	ErrWeakPassword:           "WEAK_PASSWORD",
	ErrSamePassword:           "SAME_PASSWORD",
	ErrDuplicateEmail:         "DUPLICATE_EMAIL",
	ErrRegistrationInProgress: "REGISTRATION_IN_PROGRESS",
	ErrInvalidCredentials:     "INVALID_CREDENTIALS",
	ErrInvalidPassword:        "INVALID_PASSWORD",
	ErrInvalidAccount:         "INVALID_ACCOUNT",
	ErrInvalidCurrentPassword: "INVALID_CURRENT_PASSWORD",
	ErrNotRepresentative:      "NOT_REPRESENTATIVE",
}

// CodeInternal is the oops code carried by every InternalError.
const CodeInternal = "INTERNAL"

// Reject builds an expected, user-facing failure. message is what the caller
// sees; attrs are logged context only.
func Reject(reason error, message string, attrs ...any) error {
	code, ok := reasonCodes[reason]
	if !ok {
		code = "REJECTED"
	}
	return oops.
		Code(code).
		With(attrs...).
		Public(message).
		Wrap(reason)
}

// Internal wraps a storage or hashing failure. The cause stays reachable
// through errors.Is/As but only message is ever shown to the caller.
func Internal(operation string, err error, message string, attrs ...any) error {
	return oops.
		Code(CodeInternal).
		With("operation", operation).
		With(attrs...).
		Public(message).
		Wrap(fmt.Errorf("%w: %w", ErrInternalServer, err))
}

// PublicMessage returns the caller-facing message attached to err.
func PublicMessage(err error, fallback string) string {
	return oops.GetPublic(err, fallback)
}

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrInternalServer) {
		return http.StatusInternalServerError
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrServiceUnavailable) {
		return http.StatusServiceUnavailable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // Unique violation
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}
