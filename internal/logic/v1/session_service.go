package v1

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/yoga-service/internal/core/domain"
	"github.com/duynhne/yoga-service/middleware"
)

// SessionService manages yoga sessions and their rosters.
type SessionService struct {
	sessions domain.SessionRepository
	users    domain.UserRepository
	teachers domain.TeacherRepository
}

// NewSessionService creates a SessionService. Users and teachers are only read,
// to check that referenced records exist.
func NewSessionService(sessions domain.SessionRepository, users domain.UserRepository, teachers domain.TeacherRepository) *SessionService {
	return &SessionService{
		sessions: sessions,
		users:    users,
		teachers: teachers,
	}
}

func (s *SessionService) FindAll(ctx context.Context) ([]domain.Session, error) {
	rows, err := s.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := make([]domain.Session, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToSession())
	}
	return out, nil
}

func (s *SessionService) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	row, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("query session %d: %w", id, err)
	}
	if row == nil {
		return nil, fmt.Errorf("get session %d: %w", id, ErrSessionNotFound)
	}

	out := row.ToSession()
	return &out, nil
}

// Create stores a new session with an empty roster. The teacher must exist.
func (s *SessionService) Create(ctx context.Context, in domain.Session) (*domain.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "session.create", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("teacher.id", in.TeacherID),
	))
	defer span.End()

	if err := validateSession(in); err != nil {
		return nil, err
	}
	if err := s.requireTeacher(ctx, in.TeacherID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	row, err := s.sessions.Create(ctx, in.Fields())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert session: %w", err)
	}

	out := row.ToSession()
	return &out, nil
}

// Update replaces the descriptive fields of a session; the roster is kept.
func (s *SessionService) Update(ctx context.Context, id int64, in domain.Session) (*domain.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "session.update", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("session.id", id),
	))
	defer span.End()

	if err := validateSession(in); err != nil {
		return nil, err
	}
	if err := s.requireTeacher(ctx, in.TeacherID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	row, err := s.sessions.Update(ctx, id, in.Fields())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update session %d: %w", id, err)
	}
	if row == nil {
		return nil, fmt.Errorf("update session %d: %w", id, ErrSessionNotFound)
	}

	out := row.ToSession()
	return &out, nil
}

func (s *SessionService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.sessions.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete session %d: %w", id, err)
	}
	if !deleted {
		return fmt.Errorf("delete session %d: %w", id, ErrSessionNotFound)
	}
	return nil
}

// Participate appends userID to the session roster.
//
// Errors: ErrUserNotFound, ErrSessionNotFound, ErrForbiddenResource when p is
// not userID, ErrAlreadyParticipating when the user is on the roster already.
// A rejected call never writes.
func (s *SessionService) Participate(ctx context.Context, p domain.Principal, sessionID, userID int64) (*domain.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "session.participate", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("session.id", sessionID),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	row, err := s.changeRoster(ctx, p, sessionID, userID, true, func(cur *domain.SessionRow) ([]int64, error) {
		if cur.HasParticipant(userID) {
			return nil, fmt.Errorf("join session %d as user %d: %w", sessionID, userID, ErrAlreadyParticipating)
		}
		next := make([]int64, 0, len(cur.Users)+1)
		next = append(next, cur.Users...)
		return append(next, userID), nil
	})
	recordRoster(span, "join", err)
	if err != nil {
		return nil, err
	}

	out := row.ToSession()
	return &out, nil
}

// NoLongerParticipate removes userID from the session roster.
//
// Errors: ErrSessionNotFound, ErrForbiddenResource when p is not userID,
// ErrNotParticipating when the user is not on the roster. A rejected call
// never writes.
func (s *SessionService) NoLongerParticipate(ctx context.Context, p domain.Principal, sessionID, userID int64) (*domain.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "session.no_longer_participate", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("session.id", sessionID),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	row, err := s.changeRoster(ctx, p, sessionID, userID, false, func(cur *domain.SessionRow) ([]int64, error) {
		if !cur.HasParticipant(userID) {
			return nil, fmt.Errorf("leave session %d as user %d: %w", sessionID, userID, ErrNotParticipating)
		}
		next := make([]int64, 0, len(cur.Users))
		for _, id := range cur.Users {
			if id != userID {
				next = append(next, id)
			}
		}
		return next, nil
	})
	recordRoster(span, "leave", err)
	if err != nil {
		return nil, err
	}

	out := row.ToSession()
	return &out, nil
}

// changeRoster reports a missing session before a missing user or a
// foreign principal. UpdateRoster re-reads the session under lock.
func (s *SessionService) changeRoster(ctx context.Context, p domain.Principal, sessionID, userID int64, requireUser bool, fn domain.RosterFunc) (*domain.SessionRow, error) {
	current, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session %d: %w", sessionID, err)
	}
	if current == nil {
		return nil, fmt.Errorf("get session %d: %w", sessionID, ErrSessionNotFound)
	}

	if requireUser {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("query user %d: %w", userID, err)
		}
		if user == nil {
			return nil, fmt.Errorf("get user %d: %w", userID, ErrUserNotFound)
		}
	}

	if err := Authorize(p, userID); err != nil {
		return nil, err
	}

	row, err := s.sessions.UpdateRoster(ctx, sessionID, fn)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("get session %d: %w", sessionID, ErrSessionNotFound)
	}
	return row, nil
}

func validateSession(in domain.Session) error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrBlankSessionName
	}
	return nil
}

func (s *SessionService) requireTeacher(ctx context.Context, id int64) error {
	t, err := s.teachers.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("query teacher %d: %w", id, err)
	}
	if t == nil {
		return fmt.Errorf("get teacher %d: %w", id, ErrTeacherNotFound)
	}
	return nil
}

func recordRoster(span trace.Span, action string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrBadRequest):
		outcome = "rejected"
	case errors.Is(err, ErrUnauthorized):
		outcome = "forbidden"
	default:
		outcome = "error"
		span.RecordError(err)
	}
	span.SetAttributes(attribute.String("roster.outcome", outcome))
	middleware.RecordParticipation(action, outcome)
}
