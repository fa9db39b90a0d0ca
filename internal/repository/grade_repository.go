package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniplex/academic-api/internal/models"
)

const gradeColumns = `g.id, g.student_id, g.subject_id, g.semester_id, g.grade_type_id,
        g.grade_system_id, g.grade_value_id, g.points, g.max_points, g.percentage,
        g.source, g.status, g.comments, g.date, g.graded_by, g.created_at, g.updated_at,
        gv.value AS value_label, gv.numeric_value, gv.is_passing, gv.min_percent AS value_min_percent`

// GradeRepository handles canonical grade persistence. It is bound to an
// sqlx.ExtContext so the same code runs against the pool or inside a
// transaction.
type GradeRepository struct {
	db sqlx.ExtContext
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db sqlx.ExtContext) *GradeRepository {
	return &GradeRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *GradeRepository) WithTx(tx *sqlx.Tx) *GradeRepository {
	return &GradeRepository{db: tx}
}

// Upsert inserts or updates the grade identified by
// (student, subject, semester, grade_type) and reports whether a previous
// value existed along with that value.
func (r *GradeRepository) Upsert(ctx context.Context, grade *models.Grade) (previous *models.Grade, err error) {
	existing, err := r.GetByKey(ctx, grade.StudentID, grade.SubjectID, grade.SemesterID, grade.GradeTypeID)
	if err != nil {
		return nil, err
	}
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now
	const query = `INSERT INTO grades (id, student_id, subject_id, semester_id, grade_type_id,
                grade_system_id, grade_value_id, points, max_points, percentage,
                source, status, comments, date, graded_by, created_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :semester_id, :grade_type_id,
                :grade_system_id, :grade_value_id, :points, :max_points, :percentage,
                :source, :status, :comments, :date, :graded_by, :created_at, :updated_at)
        ON CONFLICT (student_id, subject_id, semester_id, grade_type_id)
        DO UPDATE SET grade_system_id = EXCLUDED.grade_system_id,
                grade_value_id = EXCLUDED.grade_value_id,
                points = EXCLUDED.points,
                max_points = EXCLUDED.max_points,
                percentage = EXCLUDED.percentage,
                source = EXCLUDED.source,
                status = EXCLUDED.status,
                comments = EXCLUDED.comments,
                date = EXCLUDED.date,
                graded_by = EXCLUDED.graded_by,
                updated_at = EXCLUDED.updated_at`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, grade); err != nil {
		return nil, fmt.Errorf("upsert grade: %w", err)
	}
	if existing != nil {
		grade.ID = existing.ID
		grade.CreatedAt = existing.CreatedAt
	}
	return existing, nil
}

// GetByKey returns the grade for the natural key, or nil when absent.
func (r *GradeRepository) GetByKey(ctx context.Context, studentID, subjectID, semesterID, gradeTypeID string) (*models.Grade, error) {
	query := `SELECT ` + gradeColumns + `
        FROM grades g
        JOIN grade_values gv ON gv.id = g.grade_value_id
        WHERE g.student_id = $1 AND g.subject_id = $2 AND g.semester_id = $3 AND g.grade_type_id = $4`
	var grade models.Grade
	if err := sqlx.GetContext(ctx, r.db, &grade, query, studentID, subjectID, semesterID, gradeTypeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get grade: %w", err)
	}
	return &grade, nil
}

// GetByID returns a grade by primary key.
func (r *GradeRepository) GetByID(ctx context.Context, id string) (*models.Grade, error) {
	query := `SELECT ` + gradeColumns + `
        FROM grades g
        JOIN grade_values gv ON gv.id = g.grade_value_id
        WHERE g.id = $1`
	var grade models.Grade
	if err := sqlx.GetContext(ctx, r.db, &grade, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get grade by id: %w", err)
	}
	return &grade, nil
}

// List returns grades matching the filter, newest first.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, int, error) {
	query := `SELECT ` + gradeColumns + `
        FROM grades g
        JOIN grade_values gv ON gv.id = g.grade_value_id
        WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM grades g WHERE 1=1`
	var args []interface{}
	appendCond := func(cond, value string) {
		clause := fmt.Sprintf(" AND %s = $%d", cond, len(args)+1)
		query += clause
		countQuery += clause
		args = append(args, value)
	}
	if filter.StudentID != "" {
		appendCond("g.student_id", filter.StudentID)
	}
	if filter.SubjectID != "" {
		appendCond("g.subject_id", filter.SubjectID)
	}
	if filter.SemesterID != "" {
		appendCond("g.semester_id", filter.SemesterID)
	}
	if filter.GradeTypeID != "" {
		appendCond("g.grade_type_id", filter.GradeTypeID)
	}
	if filter.Status != nil {
		appendCond("g.status", string(*filter.Status))
	}
	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count grades: %w", err)
	}
	query += " ORDER BY g.date DESC, g.updated_at DESC"
	if filter.PageSize > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.PageSize, offset)
	}
	var grades []models.Grade
	if err := sqlx.SelectContext(ctx, r.db, &grades, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list grades: %w", err)
	}
	return grades, total, nil
}

// ListForPeriod returns final (non-annulled) grades for a student scoped to
// a semester, or all semesters when semesterID is empty.
func (r *GradeRepository) ListForPeriod(ctx context.Context, studentID, semesterID string) ([]models.Grade, error) {
	query := `SELECT ` + gradeColumns + `
        FROM grades g
        JOIN grade_values gv ON gv.id = g.grade_value_id
        WHERE g.student_id = $1 AND g.status <> $2`
	args := []interface{}{studentID, models.GradeStatusAnnulled}
	if semesterID != "" {
		query += " AND g.semester_id = $3"
		args = append(args, semesterID)
	}
	query += " ORDER BY g.date"
	var grades []models.Grade
	if err := sqlx.SelectContext(ctx, r.db, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list grades for period: %w", err)
	}
	return grades, nil
}

// SetStatus updates the lifecycle status of a grade.
func (r *GradeRepository) SetStatus(ctx context.Context, id string, status models.GradeStatus) error {
	const query = `UPDATE grades SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set grade status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
