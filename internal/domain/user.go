package domain

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// User represents an end-user account on the hub
type User struct {
	ID           ulid.ULID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create persists a new user
	Create(ctx context.Context, user *User) error

	// FindByID finds a user by id
	FindByID(ctx context.Context, id ulid.ULID) (*User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*User, error)
}
