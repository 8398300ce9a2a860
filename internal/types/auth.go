// Package types provides the data model shared by the resume builder packages.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Account request bodies carry `validate` tags checked by the HTTP layer.
type (
	// CreateUserRequest is a username and password signup.
	CreateUserRequest struct {
		Username string `json:"username" validate:"required,min=3,max=64"`
		Email    string `json:"email,omitempty" validate:"omitempty,email"`
		Password string `json:"password" validate:"required,min=8"`
	}

	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	UpdatePasswordRequest struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8"`
	}
)

// User is the API view of an account. Accounts delegated to Supabase only
// carry an ID.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email,omitempty"`
	External  bool      `json:"external,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse is returned by register and login.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
