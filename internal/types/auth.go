//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CreateUserRequest is the sign-up body for the scan-history service.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User is the account a scan history belongs to (kept here to avoid an import cycle with db).
type User struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PasswordSet bool      `json:"password_set"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LoginResponse represents the login/register response with user data and authentication token.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// UpdatePasswordRequest represents a password update request.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// requestValidator is safe for concurrent use.
var requestValidator = validator.New()

// Validate checks the sign-up fields.
func (r *CreateUserRequest) Validate() error {
	return requestValidator.Struct(r)
}

// Validate checks the login fields.
func (r *LoginRequest) Validate() error {
	return requestValidator.Struct(r)
}

// Validate checks the password change fields.
func (r *UpdatePasswordRequest) Validate() error {
	return requestValidator.Struct(r)
}
