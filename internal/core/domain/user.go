package domain

import (
	"context"
	"time"
)

// User is an account record. Email is the identity key; PasswordHash is a
// bcrypt hash and never contains the raw secret.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	CreatedAt    time.Time
}

// UserRepository defines the data-access contract for user operations.
// Implementations live in internal/core/repository, one per storage backend.
// The Logic layer depends on this interface only — never on SQL, pgx, or the
// Mongo driver directly.
type UserRepository interface {
	// GetByEmail returns the user matching the given email.
	// Returns (nil, nil) when no user is found.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID returns the user with the given id.
	// Returns (nil, nil) when no user is found.
	GetByID(ctx context.Context, id int64) (*User, error)

	// ExistsByEmail returns true when a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserts a new active, non-staff user and returns the stored
	// record with its generated id and creation timestamp.
	Create(ctx context.Context, email, passwordHash string) (*User, error)

	// UpdatePassword replaces the stored password hash for the given user.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// Identity is the authenticated caller, as established by the auth
// middleware. It carries both keys the storage backends scope by: the
// relational backend filters sessions by UserID, the document backend by
// Email.
type Identity struct {
	UserID int64
	Email  string
}

// RegisterRequest is the payload for POST /api/users/register/.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the payload for POST /api/users/login/.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserInfo is the public view of a user (id and email only).
type UserInfo struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// AuthResponse is returned from register and login.
type AuthResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}
