package models

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// User is the profile returned by the "me" and "updatedetails" endpoints.
// The client passes it through without caching.
type User struct {
	ID        string `json:"_id,omitempty"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Bio       string `json:"bio,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// LoginCredentials is the body of POST /api/auth/login.
type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c LoginCredentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required),
	)
}

// RegisterCredentials is the body of POST /api/auth/register.
type RegisterCredentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c RegisterCredentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Username, validation.Required, validation.Length(1, 50)),
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required, validation.Length(6, 128)),
	)
}

// ForgotPasswordRequest is the body of POST /api/auth/forgotpassword.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// ResetPasswordRequest is the body of PUT /api/auth/resetpassword/{resetToken}.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.Length(6, 128)),
	)
}

// UpdatePasswordRequest is the body of PUT /api/auth/updatepassword.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r UpdatePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(6, 128)),
	)
}

// UpdateDetailsRequest is the body of PUT /api/auth/updatedetails. Nil
// fields are left out of the request and stay unchanged on the server.
type UpdateDetailsRequest struct {
	Username *string `json:"username,omitempty"`
	Bio      *string `json:"bio,omitempty"`
}

func (r UpdateDetailsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.NilOrNotEmpty, validation.Length(1, 50)),
		validation.Field(&r.Bio, validation.Length(0, 500)),
	)
}

// DeleteAccountRequest is the body of DELETE /api/auth/deleteaccount.
type DeleteAccountRequest struct {
	Password string `json:"password"`
}

func (r DeleteAccountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required),
	)
}

// TokenResponse carries the bearer token issued by login, password update
// and password reset.
type TokenResponse struct {
	Token string `json:"token"`
}

// ErrorResponse is the backend's error payload.
type ErrorResponse struct {
	Message string `json:"message"`
}
