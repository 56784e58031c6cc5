package domain

import (
	"context"
	"time"
)

// SessionRow represents a yoga session together with its roster.
type SessionRow struct {
	ID          int64
	Name        string
	Date        time.Time
	Description string
	TeacherID   int64
	// Users is the roster in join order. Each user id appears at most once.
	Users     []int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasParticipant reports whether userID is on the roster.
func (s *SessionRow) HasParticipant(userID int64) bool {
	for _, id := range s.Users {
		if id == userID {
			return true
		}
	}
	return false
}

// SessionFields holds the mutable, non-roster columns of a session.
type SessionFields struct {
	Name        string
	Date        time.Time
	Description string
	TeacherID   int64
}

// RosterFunc inspects a locked session and returns the new roster.
// Returning an error aborts the change without writing.
type RosterFunc func(s *SessionRow) ([]int64, error)

// SessionRepository defines the data-access contract for yoga sessions.
// Implementations live in internal/core/repository (Core layer).
type SessionRepository interface {
	// List returns every session ordered by id.
	List(ctx context.Context) ([]SessionRow, error)

	// GetByID returns the session with the given id.
	// Returns (nil, nil) when no session is found.
	GetByID(ctx context.Context, id int64) (*SessionRow, error)

	// Create inserts a session with an empty roster and returns it.
	Create(ctx context.Context, f SessionFields) (*SessionRow, error)

	// Update overwrites the non-roster fields and bumps updated_at.
	// Returns (nil, nil) when no session is found.
	Update(ctx context.Context, id int64, f SessionFields) (*SessionRow, error)

	// Delete removes the session. Returns false when it did not exist.
	Delete(ctx context.Context, id int64) (bool, error)

	// UpdateRoster loads the session under a row lock, applies fn and persists
	// the returned roster in the same transaction, bumping updated_at.
	// Returns (nil, nil) when no session is found; fn is not called then.
	UpdateRoster(ctx context.Context, id int64, fn RosterFunc) (*SessionRow, error)
}
