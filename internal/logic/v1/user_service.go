package v1

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/yoga-service/internal/core/domain"
	"github.com/duynhne/yoga-service/middleware"
)

// Authorize allows p to act on a resource owned by ownerID only when p is
// that owner.
func Authorize(p domain.Principal, ownerID int64) error {
	if p.ID != ownerID {
		return fmt.Errorf("user %d acting on user %d: %w", p.ID, ownerID, ErrForbiddenResource)
	}
	return nil
}

// UserService serves account lookups and deletion.
type UserService struct {
	users domain.UserRepository
}

func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

// FindByID returns the public view of a user.
func (s *UserService) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "user.find_by_id", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", id),
	))
	defer span.End()

	row, err := s.users.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %d: %w", id, err)
	}
	if row == nil {
		return nil, fmt.Errorf("get user %d: %w", id, ErrUserNotFound)
	}

	u := row.ToUser()
	return &u, nil
}

// Delete removes the account with the given id. Only the owner may do so.
func (s *UserService) Delete(ctx context.Context, p domain.Principal, id int64) error {
	ctx, span := middleware.StartSpan(ctx, "user.delete", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", id),
		attribute.Int64("principal.id", p.ID),
	))
	defer span.End()

	row, err := s.users.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("query user %d: %w", id, err)
	}
	if row == nil {
		return fmt.Errorf("delete user %d: %w", id, ErrUserNotFound)
	}

	if err := Authorize(p, row.ID); err != nil {
		span.AddEvent("authorization.denied")
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

// LoadPrincipal resolves a token subject. Returns (nil, nil) for unknown users.
func (s *UserService) LoadPrincipal(ctx context.Context, username string) (*domain.Principal, error) {
	row, err := s.users.GetByEmail(ctx, NormalizeEmail(username))
	if err != nil {
		return nil, fmt.Errorf("load principal %q: %w", username, err)
	}
	if row == nil {
		return nil, nil
	}

	p := row.ToPrincipal()
	return &p, nil
}
