package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/uniplex/academic-api/internal/models"
)

// StudentRepository reads student and teacher profiles.
type StudentRepository struct {
	db sqlx.ExtContext
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(db sqlx.ExtContext) *StudentRepository {
	return &StudentRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *StudentRepository) WithTx(tx *sqlx.Tx) *StudentRepository {
	return &StudentRepository{db: tx}
}

const studentColumns = `sp.id, sp.user_id, sp.group_id, sp.student_code, sp.enrolled_at,
        u.full_name, u.email`

// GetByID returns one student profile, or nil when absent.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*models.StudentProfile, error) {
	query := `SELECT ` + studentColumns + `
        FROM student_profiles sp
        JOIN users u ON u.id = sp.user_id
        WHERE sp.id = $1`
	var student models.StudentProfile
	if err := sqlx.GetContext(ctx, r.db, &student, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	return &student, nil
}

// GetByUserID returns the student profile of a user account, or nil.
func (r *StudentRepository) GetByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	query := `SELECT ` + studentColumns + `
        FROM student_profiles sp
        JOIN users u ON u.id = sp.user_id
        WHERE sp.user_id = $1`
	var student models.StudentProfile
	if err := sqlx.GetContext(ctx, r.db, &student, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student by user: %w", err)
	}
	return &student, nil
}

// GetByCode resolves a student by the institutional student code, or nil.
func (r *StudentRepository) GetByCode(ctx context.Context, code string) (*models.StudentProfile, error) {
	query := `SELECT ` + studentColumns + `
        FROM student_profiles sp
        JOIN users u ON u.id = sp.user_id
        WHERE sp.student_code = $1`
	var student models.StudentProfile
	if err := sqlx.GetContext(ctx, r.db, &student, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student by code: %w", err)
	}
	return &student, nil
}

// ListByGroup returns the active roster of a group ordered by name.
func (r *StudentRepository) ListByGroup(ctx context.Context, groupID string) ([]models.StudentProfile, error) {
	query := `SELECT ` + studentColumns + `
        FROM student_profiles sp
        JOIN users u ON u.id = sp.user_id
        WHERE sp.group_id = $1 AND u.active
        ORDER BY u.full_name`
	var students []models.StudentProfile
	if err := sqlx.SelectContext(ctx, r.db, &students, query, groupID); err != nil {
		return nil, fmt.Errorf("list group students: %w", err)
	}
	return students, nil
}

// GetTeacherByUserID returns the teacher profile of a user account, or nil.
func (r *StudentRepository) GetTeacherByUserID(ctx context.Context, userID string) (*models.TeacherProfile, error) {
	const query = `SELECT tp.id, tp.user_id, tp.department, tp.position, u.full_name
        FROM teacher_profiles tp
        JOIN users u ON u.id = tp.user_id
        WHERE tp.user_id = $1`
	var teacher models.TeacherProfile
	if err := sqlx.GetContext(ctx, r.db, &teacher, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get teacher by user: %w", err)
	}
	return &teacher, nil
}
