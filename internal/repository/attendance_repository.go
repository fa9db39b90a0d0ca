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

// AttendanceRepository persists attendance marks and sheets.
type AttendanceRepository struct {
	db sqlx.ExtContext
}

// NewAttendanceRepository creates a new attendance repository.
func NewAttendanceRepository(db sqlx.ExtContext) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *AttendanceRepository) WithTx(tx *sqlx.Tx) *AttendanceRepository {
	return &AttendanceRepository{db: tx}
}

// Upsert inserts or updates the mark for (student, class).
func (r *AttendanceRepository) Upsert(ctx context.Context, att *models.Attendance) error {
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	att.MarkedAt = time.Now().UTC()
	const query = `INSERT INTO attendances (id, student_id, class_id, status, late_minutes,
                reason, marked_by, marked_at)
        VALUES (:id, :student_id, :class_id, :status, :late_minutes, :reason, :marked_by, :marked_at)
        ON CONFLICT (student_id, class_id)
        DO UPDATE SET status = EXCLUDED.status,
                late_minutes = EXCLUDED.late_minutes,
                reason = EXCLUDED.reason,
                marked_by = EXCLUDED.marked_by,
                marked_at = EXCLUDED.marked_at`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, att); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// ListForClass returns all marks of a class.
func (r *AttendanceRepository) ListForClass(ctx context.Context, classID string) ([]models.Attendance, error) {
	const query = `SELECT id, student_id, class_id, status, late_minutes, reason, marked_by, marked_at
        FROM attendances WHERE class_id = $1`
	var marks []models.Attendance
	if err := sqlx.SelectContext(ctx, r.db, &marks, query, classID); err != nil {
		return nil, fmt.Errorf("list class attendance: %w", err)
	}
	return marks, nil
}

// ListForStudent returns a student's marks within a semester, resolved
// through the class chain.
func (r *AttendanceRepository) ListForStudent(ctx context.Context, studentID, semesterID string) ([]models.Attendance, error) {
	const query = `SELECT a.id, a.student_id, a.class_id, a.status, a.late_minutes, a.reason,
                a.marked_by, a.marked_at
        FROM attendances a
        JOIN classes c ON c.id = a.class_id
        WHERE a.student_id = $1 AND c.semester_id = $2
        ORDER BY c.date`
	var marks []models.Attendance
	if err := sqlx.SelectContext(ctx, r.db, &marks, query, studentID, semesterID); err != nil {
		return nil, fmt.Errorf("list student attendance: %w", err)
	}
	return marks, nil
}

// Totals aggregates a student's presence within a semester. Late counts as
// attended; absent, sick and excused do not.
func (r *AttendanceRepository) Totals(ctx context.Context, studentID, semesterID string) (models.AttendanceTotals, error) {
	const query = `SELECT COUNT(*) AS total_classes,
                COUNT(*) FILTER (WHERE a.status IN ('present', 'late')) AS attended_classes
        FROM attendances a
        JOIN classes c ON c.id = a.class_id
        WHERE a.student_id = $1 AND c.semester_id = $2`
	var totals models.AttendanceTotals
	if err := sqlx.GetContext(ctx, r.db, &totals, query, studentID, semesterID); err != nil {
		return models.AttendanceTotals{}, fmt.Errorf("attendance totals: %w", err)
	}
	return totals, nil
}

// GetSheet returns the journal for a class, or nil when absent.
func (r *AttendanceRepository) GetSheet(ctx context.Context, classID string) (*models.AttendanceSheet, error) {
	const query = `SELECT id, class_id, filled_by, status, comments, created_at, updated_at
        FROM attendance_sheets WHERE class_id = $1`
	var sheet models.AttendanceSheet
	if err := sqlx.GetContext(ctx, r.db, &sheet, query, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attendance sheet: %w", err)
	}
	return &sheet, nil
}

// UpsertSheet inserts or updates the per-class journal row.
func (r *AttendanceRepository) UpsertSheet(ctx context.Context, sheet *models.AttendanceSheet) error {
	if sheet.ID == "" {
		sheet.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if sheet.CreatedAt.IsZero() {
		sheet.CreatedAt = now
	}
	sheet.UpdatedAt = now
	const query = `INSERT INTO attendance_sheets (id, class_id, filled_by, status, comments, created_at, updated_at)
        VALUES (:id, :class_id, :filled_by, :status, :comments, :created_at, :updated_at)
        ON CONFLICT (class_id)
        DO UPDATE SET filled_by = EXCLUDED.filled_by,
                status = EXCLUDED.status,
                comments = EXCLUDED.comments,
                updated_at = EXCLUDED.updated_at`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, sheet); err != nil {
		return fmt.Errorf("upsert attendance sheet: %w", err)
	}
	return nil
}
