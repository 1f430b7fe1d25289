// Package auth provides authentication and authorization functionality.
// This file, `dto.go` (Data Transfer Object), defines structures used for
// transferring data in API requests and responses related to authentication.
// The `validate` tags are consumed by go-playground/validator in the handlers,
// replacing the schema-level validators of the original Mongoose models.
package auth

// RegisterRequest represents the registration request payload.
// Admin accounts are not self-service; registration accepts the user and
// employer roles only, with user as the default.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required" example:"John Doe"`
	Email    string `json:"email" validate:"required,email" example:"user@example.com"`
	Password string `json:"password" validate:"required,min=8" example:"strongpassword123"`
	Role     string `json:"role" validate:"omitempty,oneof=user employer" example:"user"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"user@example.com"`
	Password string `json:"password" validate:"required" example:"strongpassword123"`
}

// TokenResponse is returned whenever a credential is issued: registration,
// login, password update and password reset. The same token also travels in
// the `token` cookie.
type TokenResponse struct {
	Success bool   `json:"success" example:"true"`
	Token   string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// UpdatePasswordRequest carries a password change for a logged-in principal.
type UpdatePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// ForgotPasswordRequest starts the reset-token flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes the reset-token flow; the token itself
// arrives in the URL path.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// MessageResponse is the generic success envelope for operations that do not
// return an entity (logout, reset email sent).
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Successfully logged out"`
}
