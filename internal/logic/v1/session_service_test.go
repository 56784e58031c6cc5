package v1

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/duynhne/yoga-service/internal/core/domain"
	"github.com/duynhne/yoga-service/internal/core/repository/memory"
)

type sessionFixture struct {
	svc      *SessionService
	sessions *memory.SessionRepository
	users    *memory.UserRepository
}

func newSessionFixture() *sessionFixture {
	users := memory.NewUserRepository()
	users.Add(domain.UserRow{ID: 10, Email: "user10@example.com"})
	users.Add(domain.UserRow{ID: 11, Email: "user11@example.com"})
	users.Add(domain.UserRow{ID: 12, Email: "user12@example.com"})

	sessions := memory.NewSessionRepository()
	teachers := memory.TeacherRepository{1: {ID: 1, FirstName: "Margot", LastName: "DELAHAYE"}}

	return &sessionFixture{
		svc:      NewSessionService(sessions, users, teachers),
		sessions: sessions,
		users:    users,
	}
}

func as(id int64) domain.Principal {
	return domain.Principal{ID: id}
}

func TestParticipationScenario(t *testing.T) {
	f := newSessionFixture()
	f.sessions.Seed(1)
	ctx := context.Background()

	if _, err := f.svc.Participate(ctx, as(10), 1, 10); err != nil {
		t.Fatalf("join: %v", err)
	}
	if got := f.sessions.Roster(1); !reflect.DeepEqual(got, []int64{10}) {
		t.Fatalf("roster after join = %v", got)
	}

	if _, err := f.svc.Participate(ctx, as(10), 1, 10); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("second join: err = %v, want bad request", err)
	}

	if _, err := f.svc.NoLongerParticipate(ctx, as(10), 1, 10); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if got := f.sessions.Roster(1); len(got) != 0 {
		t.Fatalf("roster after leave = %v", got)
	}

	if _, err := f.svc.NoLongerParticipate(ctx, as(10), 1, 10); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("second leave: err = %v, want bad request", err)
	}

	if f.sessions.RosterWrites() != 2 {
		t.Fatalf("writes = %d, rejected calls must not persist", f.sessions.RosterWrites())
	}
}

func TestJoinThenLeaveRestoresRoster(t *testing.T) {
	rosters := [][]int64{{}, {11}, {11, 12}, {12, 11}}
	for _, start := range rosters {
		f := newSessionFixture()
		f.sessions.Seed(7, start...)
		ctx := context.Background()

		if _, err := f.svc.Participate(ctx, as(10), 7, 10); err != nil {
			t.Fatalf("join from %v: %v", start, err)
		}
		if got := f.sessions.Roster(7); got[len(got)-1] != 10 {
			t.Fatalf("join must append, roster = %v", got)
		}
		if _, err := f.svc.NoLongerParticipate(ctx, as(10), 7, 10); err != nil {
			t.Fatalf("leave from %v: %v", start, err)
		}
		if got := f.sessions.Roster(7); !reflect.DeepEqual(got, start) && !(len(got) == 0 && len(start) == 0) {
			t.Fatalf("roster = %v, want %v", got, start)
		}
	}
}

func TestParticipateErrors(t *testing.T) {
	tests := []struct {
		name      string
		principal int64
		sessionID int64
		userID    int64
		want      error
	}{
		{name: "session missing", principal: 10, sessionID: 99, userID: 10, want: ErrSessionNotFound},
		{name: "session missing for other user", principal: 11, sessionID: 99, userID: 10, want: ErrSessionNotFound},
		{name: "session and user missing", principal: 10, sessionID: 99, userID: 404, want: ErrSessionNotFound},
		{name: "user missing", principal: 404, sessionID: 1, userID: 404, want: ErrUserNotFound},
		{name: "other user", principal: 11, sessionID: 1, userID: 10, want: ErrForbiddenResource},
		{name: "already in", principal: 12, sessionID: 1, userID: 12, want: ErrAlreadyParticipating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture()
			f.sessions.Seed(1, 12)

			_, err := f.svc.Participate(context.Background(), as(tt.principal), tt.sessionID, tt.userID)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if got := f.sessions.Roster(1); !reflect.DeepEqual(got, []int64{12}) {
				t.Fatalf("roster mutated: %v", got)
			}
			if f.sessions.RosterWrites() != 0 {
				t.Fatalf("writes = %d", f.sessions.RosterWrites())
			}
		})
	}
}

func TestNoLongerParticipateErrors(t *testing.T) {
	tests := []struct {
		name      string
		principal int64
		sessionID int64
		userID    int64
		want      error
	}{
		{name: "session missing", principal: 10, sessionID: 99, userID: 10, want: ErrSessionNotFound},
		{name: "session missing for other user", principal: 11, sessionID: 99, userID: 10, want: ErrSessionNotFound},
		{name: "not participating", principal: 10, sessionID: 1, userID: 10, want: ErrNotParticipating},
		{name: "other user", principal: 10, sessionID: 1, userID: 12, want: ErrForbiddenResource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture()
			f.sessions.Seed(1, 12)

			_, err := f.svc.NoLongerParticipate(context.Background(), as(tt.principal), tt.sessionID, tt.userID)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if got := f.sessions.Roster(1); !reflect.DeepEqual(got, []int64{12}) {
				t.Fatalf("roster mutated: %v", got)
			}
		})
	}
}

func TestRosterChangeBumpsUpdatedAt(t *testing.T) {
	f := newSessionFixture()
	f.sessions.Seed(1)
	later := time.Date(2026, 5, 5, 12, 0, 0, 0, time.UTC)
	f.sessions.SetClock(func() time.Time { return later })

	out, err := f.svc.Participate(context.Background(), as(10), 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !out.UpdatedAt.Equal(later) || !out.UpdatedAt.After(out.CreatedAt) {
		t.Fatalf("updatedAt = %v, createdAt = %v", out.UpdatedAt, out.CreatedAt)
	}
}

func TestSessionCRUD(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	in := domain.Session{
		Name:        "Yoga Session",
		Description: "A relaxing yoga session.",
		Date:        time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC),
		TeacherID:   1,
		Users:       []int64{10, 11},
	}

	created, err := f.svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.Name != "Yoga Session" {
		t.Fatalf("unexpected session %+v", created)
	}
	if len(created.Users) != 0 {
		t.Fatalf("create must ignore the users field, got %v", created.Users)
	}

	if _, err := f.svc.Participate(ctx, as(10), created.ID, 10); err != nil {
		t.Fatal(err)
	}

	in.Name = "Evening flow"
	updated, err := f.svc.Update(ctx, created.ID, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Evening flow" || !reflect.DeepEqual(updated.Users, []int64{10}) {
		t.Fatalf("update must keep the roster: %+v", updated)
	}

	all, err := f.svc.FindAll(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("find all = %v, %v", all, err)
	}

	if err := f.svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.GetByID(ctx, created.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
	if err := f.svc.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestSessionRequiresTeacher(t *testing.T) {
	f := newSessionFixture()
	f.sessions.Seed(1)
	ctx := context.Background()
	in := domain.Session{Name: "x", Date: time.Now(), Description: "y", TeacherID: 42}

	if _, err := f.svc.Create(ctx, in); !errors.Is(err, ErrTeacherNotFound) {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Update(ctx, 1, in); !errors.Is(err, ErrTeacherNotFound) {
		t.Fatalf("update: %v", err)
	}

	in.TeacherID = 1
	if _, err := f.svc.Update(ctx, 99, in); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("update missing: %v", err)
	}
}

func TestSessionRejectsBlankName(t *testing.T) {
	f := newSessionFixture()
	f.sessions.Seed(1)
	ctx := context.Background()
	in := domain.Session{Name: " \t ", Date: time.Now(), Description: "y", TeacherID: 1}

	if _, err := f.svc.Create(ctx, in); !errors.Is(err, ErrBlankSessionName) || !errors.Is(err, ErrBadRequest) {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Update(ctx, 1, in); !errors.Is(err, ErrBlankSessionName) {
		t.Fatalf("update: %v", err)
	}
	if s, _ := f.svc.GetByID(ctx, 1); s.Name != "Morning flow" {
		t.Fatalf("name changed to %q", s.Name)
	}
	if all, _ := f.svc.FindAll(ctx); len(all) != 1 {
		t.Fatalf("sessions = %d, want 1", len(all))
	}
}
