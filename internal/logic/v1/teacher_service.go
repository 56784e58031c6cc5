package v1

import (
	"context"
	"fmt"

	"github.com/duynhne/yoga-service/internal/core/domain"
)

// TeacherService is a read-only view over teachers.
type TeacherService struct {
	teachers domain.TeacherRepository
}

func NewTeacherService(teachers domain.TeacherRepository) *TeacherService {
	return &TeacherService{teachers: teachers}
}

func (s *TeacherService) FindAll(ctx context.Context) ([]domain.Teacher, error) {
	rows, err := s.teachers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}

	out := make([]domain.Teacher, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToTeacher())
	}
	return out, nil
}

func (s *TeacherService) FindByID(ctx context.Context, id int64) (*domain.Teacher, error) {
	row, err := s.teachers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("query teacher %d: %w", id, err)
	}
	if row == nil {
		return nil, fmt.Errorf("get teacher %d: %w", id, ErrTeacherNotFound)
	}

	t := row.ToTeacher()
	return &t, nil
}
