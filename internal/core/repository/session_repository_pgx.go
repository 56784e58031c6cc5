package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/yoga-service/internal/core/domain"
)

// sessionSelect returns sessions with their roster aggregated in join order.
const sessionSelect = `
	SELECT s.id, s.name, s.description, s.date, COALESCE(s.teacher_id, 0), s.created_at, s.updated_at,
		COALESCE(array_agg(p.user_id ORDER BY p.position) FILTER (WHERE p.user_id IS NOT NULL), '{}')
	FROM sessions s
	LEFT JOIN participate p ON p.session_id = s.id
`

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxSessionRepository implements domain.SessionRepository using pgxpool.
type PgxSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PgxSessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PgxSessionRepository {
	return &PgxSessionRepository{pool: pool}
}

// List returns every session ordered by id.
func (r *PgxSessionRepository) List(ctx context.Context) ([]domain.SessionRow, error) {
	rows, err := r.pool.Query(ctx, sessionSelect+` GROUP BY s.id ORDER BY s.id`)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SessionRow, error) {
		s, err := scanSession(row)
		if err != nil {
			return domain.SessionRow{}, err
		}
		return *s, nil
	})
}

// GetByID returns (nil, nil) when no session is found.
func (r *PgxSessionRepository) GetByID(ctx context.Context, id int64) (*domain.SessionRow, error) {
	return getSession(ctx, r.pool, id)
}

// Create inserts a session with an empty roster.
func (r *PgxSessionRepository) Create(ctx context.Context, f domain.SessionFields) (*domain.SessionRow, error) {
	query := `
		INSERT INTO sessions (name, description, date, teacher_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	s := domain.SessionRow{
		Name:        f.Name,
		Description: f.Description,
		Date:        f.Date,
		TeacherID:   f.TeacherID,
		Users:       []int64{},
	}
	err := r.pool.QueryRow(ctx, query, f.Name, f.Description, f.Date, f.TeacherID).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// Update overwrites the non-roster fields and bumps updated_at.
// Returns (nil, nil) when no session is found.
func (r *PgxSessionRepository) Update(ctx context.Context, id int64, f domain.SessionFields) (*domain.SessionRow, error) {
	query := `
		UPDATE sessions
		SET name = $2, description = $3, date = $4, teacher_id = $5, updated_at = clock_timestamp()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, f.Name, f.Description, f.Date, f.TeacherID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}

	return getSession(ctx, r.pool, id)
}

// Delete removes the session; participate rows cascade.
func (r *PgxSessionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateRoster locks the session row, lets fn compute the new roster and
// rewrites the participate rows in one transaction.
func (r *PgxSessionRepository) UpdateRoster(ctx context.Context, id int64, fn domain.RosterFunc) (*domain.SessionRow, error) {
	var result *domain.SessionRow

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx, `SELECT id FROM sessions WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}

		current, err := getSession(ctx, tx, id)
		if err != nil {
			return err
		}

		roster, err := fn(current)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM participate WHERE session_id = $1`, id); err != nil {
			return err
		}
		if len(roster) > 0 {
			insert := `
				INSERT INTO participate (session_id, user_id, position)
				SELECT $1, t.user_id, t.ord
				FROM unnest($2::bigint[]) WITH ORDINALITY AS t (user_id, ord)
			`
			if _, err := tx.Exec(ctx, insert, id, roster); err != nil {
				return err
			}
		}

		err = tx.QueryRow(ctx, `UPDATE sessions SET updated_at = clock_timestamp() WHERE id = $1 RETURNING updated_at`, id).
			Scan(&current.UpdatedAt)
		if err != nil {
			return err
		}

		current.Users = roster
		result = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func getSession(ctx context.Context, q querier, id int64) (*domain.SessionRow, error) {
	s, err := scanSession(q.QueryRow(ctx, sessionSelect+` WHERE s.id = $1 GROUP BY s.id`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func scanSession(row pgx.Row) (*domain.SessionRow, error) {
	var s domain.SessionRow
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Date, &s.TeacherID, &s.CreatedAt, &s.UpdatedAt, &s.Users)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
