package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/jobfit-analyzer/internal/pipeline"
	"github.com/jonathan/jobfit-analyzer/internal/scoring"
	"github.com/stretchr/testify/assert"
)

func TestErrEmailAlreadyExists(t *testing.T) {
	err := &ErrEmailAlreadyExists{Email: "test@example.com"}
	assert.Equal(t, "email already registered: test@example.com", err.Error())
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
}

func TestErrInvalidCredentials(t *testing.T) {
	err := &ErrInvalidCredentials{}
	assert.Equal(t, "invalid email or password", err.Error())
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(err))
}

func TestErrUserNotFound(t *testing.T) {
	userID := uuid.New()
	err := &ErrUserNotFound{UserID: userID}
	assert.Equal(t, "user not found: "+userID.String(), err.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestErrPasswordMismatch(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(&ErrPasswordMismatch{}))
}

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "email", Message: "invalid format"}
	assert.Equal(t, "validation error: email - invalid format", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus_PipelineErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "no profile", err: pipeline.ErrNoProfile, status: http.StatusNotFound, message: "no profile captured"},
		{name: "not signed in", err: pipeline.ErrNotSignedIn, status: http.StatusUnauthorized, message: "not logged in"},
		{name: "no sink", err: pipeline.ErrNoSink, status: http.StatusServiceUnavailable, message: "scan history is not configured"},
		{
			name:    "scoring failure hides cause",
			err:     &scoring.Error{Message: "model returned no content", Cause: errors.New("secret detail")},
			status:  http.StatusBadGateway,
			message: "request failed",
		},
		{name: "wrapped", err: fmt.Errorf("outer: %w", &ErrEmailAlreadyExists{Email: "a@b.c"}), status: http.StatusConflict, message: "outer: email already registered: a@b.c"},
		{name: "unknown", err: errors.New("db down"), status: http.StatusInternalServerError, message: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
			assert.Equal(t, tt.message, publicMessage(tt.err))
		})
	}
}
