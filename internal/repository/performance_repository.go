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

// PerformanceRepository persists academic performance summaries.
type PerformanceRepository struct {
	db sqlx.ExtContext
}

// NewPerformanceRepository creates a new performance repository.
func NewPerformanceRepository(db sqlx.ExtContext) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PerformanceRepository) WithTx(tx *sqlx.Tx) *PerformanceRepository {
	return &PerformanceRepository{db: tx}
}

// Upsert replaces the summary row for (student, period_type, semester). The
// whole row is overwritten so a recompute always lands fully.
func (r *PerformanceRepository) Upsert(ctx context.Context, summary *models.AcademicPerformanceSummary) error {
	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}
	summary.CalculatedAt = time.Now().UTC()
	const query = `INSERT INTO academic_performance_summaries (id, student_id, period_type,
                semester_id, academic_year_id, total_subjects, excellent_count, good_count,
                satisfactory_count, failed_count, gpa, total_credits, earned_credits,
                total_classes, attended_classes, attendance_percentage, calculated_at)
        VALUES (:id, :student_id, :period_type, :semester_id, :academic_year_id,
                :total_subjects, :excellent_count, :good_count, :satisfactory_count,
                :failed_count, :gpa, :total_credits, :earned_credits, :total_classes,
                :attended_classes, :attendance_percentage, :calculated_at)
        ON CONFLICT (student_id, period_type, semester_id)
        DO UPDATE SET academic_year_id = EXCLUDED.academic_year_id,
                total_subjects = EXCLUDED.total_subjects,
                excellent_count = EXCLUDED.excellent_count,
                good_count = EXCLUDED.good_count,
                satisfactory_count = EXCLUDED.satisfactory_count,
                failed_count = EXCLUDED.failed_count,
                gpa = EXCLUDED.gpa,
                total_credits = EXCLUDED.total_credits,
                earned_credits = EXCLUDED.earned_credits,
                total_classes = EXCLUDED.total_classes,
                attended_classes = EXCLUDED.attended_classes,
                attendance_percentage = EXCLUDED.attendance_percentage,
                calculated_at = EXCLUDED.calculated_at`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, summary); err != nil {
		return fmt.Errorf("upsert performance summary: %w", err)
	}
	return nil
}

// Get returns the summary for (student, period_type, semester), or nil when
// absent. semesterID may be empty for year/all-time scopes.
func (r *PerformanceRepository) Get(ctx context.Context, studentID string, periodType models.PeriodType, semesterID string) (*models.AcademicPerformanceSummary, error) {
	query := `SELECT id, student_id, period_type, semester_id, academic_year_id,
                total_subjects, excellent_count, good_count, satisfactory_count, failed_count,
                gpa, total_credits, earned_credits, total_classes, attended_classes,
                attendance_percentage, calculated_at
        FROM academic_performance_summaries
        WHERE student_id = $1 AND period_type = $2`
	args := []interface{}{studentID, periodType}
	if semesterID != "" {
		query += " AND semester_id = $3"
		args = append(args, semesterID)
	} else {
		query += " AND semester_id IS NULL"
	}
	var summary models.AcademicPerformanceSummary
	if err := sqlx.GetContext(ctx, r.db, &summary, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get performance summary: %w", err)
	}
	return &summary, nil
}

// ListForStudent returns all summaries of a student, semester scopes first.
func (r *PerformanceRepository) ListForStudent(ctx context.Context, studentID string) ([]models.AcademicPerformanceSummary, error) {
	const query = `SELECT id, student_id, period_type, semester_id, academic_year_id,
                total_subjects, excellent_count, good_count, satisfactory_count, failed_count,
                gpa, total_credits, earned_credits, total_classes, attended_classes,
                attendance_percentage, calculated_at
        FROM academic_performance_summaries
        WHERE student_id = $1
        ORDER BY period_type, calculated_at DESC`
	var summaries []models.AcademicPerformanceSummary
	if err := sqlx.SelectContext(ctx, r.db, &summaries, query, studentID); err != nil {
		return nil, fmt.Errorf("list performance summaries: %w", err)
	}
	return summaries, nil
}
