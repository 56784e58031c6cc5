// Package memory provides in-memory implementations of the domain
// repositories. They back the logic and web tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/duynhne/yoga-service/internal/core/domain"
)

// UserRepository is an in-memory domain.UserRepository.
type UserRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.UserRow
}

func NewUserRepository() *UserRepository {
	return &UserRepository{nextID: 1, rows: map[int64]domain.UserRow{}}
}

// Add inserts a user with a fixed id.
func (m *UserRepository) Add(row domain.UserRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[row.ID] = row
	if row.ID >= m.nextID {
		m.nextID = row.ID + 1
	}
}

func (m *UserRepository) GetByID(_ context.Context, id int64) (*domain.UserRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (m *UserRepository) GetByEmail(_ context.Context, email string) (*domain.UserRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Email == email {
			return &row, nil
		}
	}
	return nil, nil
}

func (m *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	row, err := m.GetByEmail(ctx, email)
	return row != nil, err
}

func (m *UserRepository) Create(_ context.Context, u domain.NewUser) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Email == u.Email {
			return 0, domain.ErrDuplicate
		}
	}

	id := m.nextID
	m.nextID++
	now := time.Now()
	m.rows[id] = domain.UserRow{
		ID:           id,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		Admin:        u.Admin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return id, nil
}

func (m *UserRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

// TeacherRepository is an in-memory domain.TeacherRepository keyed by id.
type TeacherRepository map[int64]domain.TeacherRow

func (m TeacherRepository) List(context.Context) ([]domain.TeacherRow, error) {
	out := make([]domain.TeacherRow, 0, len(m))
	for _, t := range m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m TeacherRepository) GetByID(_ context.Context, id int64) (*domain.TeacherRow, error) {
	t, ok := m[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// SessionRepository is an in-memory domain.SessionRepository. UpdateRoster
// runs fn under the repository lock, like the row lock of the pgx version.
type SessionRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.SessionRow
	writes int
	clock  func() time.Time
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{nextID: 1, rows: map[int64]domain.SessionRow{}, clock: time.Now}
}

// SetClock replaces the source of created_at/updated_at values.
func (m *SessionRepository) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = now
}

// Seed adds a session with the given id and roster.
func (m *SessionRepository) Seed(id int64, users ...int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	created := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	m.rows[id] = domain.SessionRow{
		ID:          id,
		Name:        "Morning flow",
		Date:        time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		Description: "Vinyasa for all levels",
		TeacherID:   1,
		Users:       append([]int64{}, users...),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	if id >= m.nextID {
		m.nextID = id + 1
	}
}

// Roster returns a copy of the roster of session id.
func (m *SessionRepository) Roster(id int64) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64{}, m.rows[id].Users...)
}

// RosterWrites counts persisted roster changes.
func (m *SessionRepository) RosterWrites() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *SessionRepository) List(context.Context) ([]domain.SessionRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SessionRow, 0, len(m.rows))
	for _, s := range m.rows {
		out = append(out, *clone(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *SessionRepository) GetByID(_ context.Context, id int64) (*domain.SessionRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return clone(s), nil
}

func (m *SessionRepository) Create(_ context.Context, f domain.SessionFields) (*domain.SessionRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock()
	s := domain.SessionRow{
		ID:          m.nextID,
		Name:        f.Name,
		Date:        f.Date,
		Description: f.Description,
		TeacherID:   f.TeacherID,
		Users:       []int64{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.rows[s.ID] = s
	m.nextID++
	return clone(s), nil
}

func (m *SessionRepository) Update(_ context.Context, id int64, f domain.SessionFields) (*domain.SessionRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	s.Name, s.Date, s.Description, s.TeacherID = f.Name, f.Date, f.Description, f.TeacherID
	s.UpdatedAt = m.clock()
	m.rows[id] = s
	return clone(s), nil
}

func (m *SessionRepository) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[id]
	delete(m.rows, id)
	return ok, nil
}

func (m *SessionRepository) UpdateRoster(_ context.Context, id int64, fn domain.RosterFunc) (*domain.SessionRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, nil
	}

	roster, err := fn(clone(s))
	if err != nil {
		return nil, err
	}

	s.Users = append([]int64{}, roster...)
	s.UpdatedAt = m.clock()
	m.rows[id] = s
	m.writes++
	return clone(s), nil
}

func clone(s domain.SessionRow) *domain.SessionRow {
	s.Users = append([]int64{}, s.Users...)
	return &s
}
