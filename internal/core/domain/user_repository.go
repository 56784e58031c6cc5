package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is returned by repositories when a unique constraint rejects a write.
var ErrDuplicate = errors.New("duplicate key")

// UserRow represents a user record returned from the database.
// It includes the password hash so the Logic layer can verify credentials.
type UserRow struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Admin        bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser carries the fields required to insert a user.
type NewUser struct {
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Admin        bool
}

// UserRepository defines the data-access contract for user operations.
// Implementations live in internal/core/repository (Core layer).
// The Logic layer depends on this interface only, never on SQL or pgx directly.
type UserRepository interface {
	// GetByID returns the user with the given id.
	// Returns (nil, nil) when no user is found.
	GetByID(ctx context.Context, id int64) (*UserRow, error)

	// GetByEmail returns the user matching the given (normalized) email.
	// Returns (nil, nil) when no user is found.
	GetByEmail(ctx context.Context, email string) (*UserRow, error)

	// ExistsByEmail returns true when a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserts a new user and returns the generated user ID.
	// Returns ErrDuplicate when the email is already registered.
	Create(ctx context.Context, u NewUser) (int64, error)

	// Delete removes the user. Roster entries referencing it are removed too.
	Delete(ctx context.Context, id int64) error
}
