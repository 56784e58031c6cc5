package domain

import (
	"context"
	"time"
)

// TeacherRow represents a teacher record.
type TeacherRow struct {
	ID        int64
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TeacherRepository is read-only: teachers are provisioned out of band.
type TeacherRepository interface {
	List(ctx context.Context) ([]TeacherRow, error)

	// GetByID returns (nil, nil) when no teacher is found.
	GetByID(ctx context.Context, id int64) (*TeacherRow, error)
}
