package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/jobfit-analyzer/internal/pipeline"
	"github.com/jonathan/jobfit-analyzer/internal/scoring"
)

// Public messages for errors whose detail stays in the logs.
const (
	msgRequestFailed = "request failed"
	msgNoProfile     = "no profile captured"
	msgInternal      = "internal error"
	msgNoHistory     = "scan history is not configured"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailExists *ErrEmailAlreadyExists
		badCreds    *ErrInvalidCredentials
		mismatch    *ErrPasswordMismatch
		notFound    *ErrUserNotFound
		validation  *ErrValidation
	)
	switch {
	case errors.As(err, &emailExists):
		return http.StatusConflict
	case errors.As(err, &badCreds), errors.As(err, &mismatch), errors.Is(err, pipeline.ErrNotSignedIn):
		return http.StatusUnauthorized
	case errors.As(err, &notFound), errors.Is(err, pipeline.ErrNoProfile):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, scoring.ErrScoringFailed):
		return http.StatusBadGateway
	case errors.Is(err, pipeline.ErrNoSink):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal detail for server-side and upstream failures.
func publicMessage(err error) string {
	switch HTTPStatus(err) {
	case http.StatusBadGateway:
		return msgRequestFailed
	case http.StatusUnauthorized:
		if errors.Is(err, pipeline.ErrNotSignedIn) {
			return pipeline.ErrNotSignedIn.Error()
		}
		return err.Error()
	case http.StatusNotFound:
		if errors.Is(err, pipeline.ErrNoProfile) {
			return msgNoProfile
		}
		return err.Error()
	case http.StatusServiceUnavailable:
		return msgNoHistory
	case http.StatusInternalServerError:
		return msgInternal
	default:
		return err.Error()
	}
}
