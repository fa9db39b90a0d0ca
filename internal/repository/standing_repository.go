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

// StandingRepository persists academic standings, debts and retake
// permissions.
type StandingRepository struct {
	db sqlx.ExtContext
}

// NewStandingRepository creates a new standing repository.
func NewStandingRepository(db sqlx.ExtContext) *StandingRepository {
	return &StandingRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *StandingRepository) WithTx(tx *sqlx.Tx) *StandingRepository {
	return &StandingRepository{db: tx}
}

// OpenStanding returns the student's standing with no end date, or nil when
// the student has no standing yet.
func (r *StandingRepository) OpenStanding(ctx context.Context, studentID string) (*models.AcademicStanding, error) {
	const query = `SELECT id, student_id, status, start_date, end_date, reason, semester_id,
                changed_by, created_at
        FROM academic_standings
        WHERE student_id = $1 AND end_date IS NULL`
	var standing models.AcademicStanding
	if err := sqlx.GetContext(ctx, r.db, &standing, query, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open standing: %w", err)
	}
	return &standing, nil
}

// CloseStanding sets the end date of an open standing interval.
func (r *StandingRepository) CloseStanding(ctx context.Context, id string, endDate time.Time) error {
	const query = `UPDATE academic_standings SET end_date = $2 WHERE id = $1 AND end_date IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, endDate)
	if err != nil {
		return fmt.Errorf("close standing: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateStanding opens a new standing interval.
func (r *StandingRepository) CreateStanding(ctx context.Context, standing *models.AcademicStanding) error {
	if standing.ID == "" {
		standing.ID = uuid.NewString()
	}
	if standing.CreatedAt.IsZero() {
		standing.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO academic_standings (id, student_id, status, start_date, end_date,
                reason, semester_id, changed_by, created_at)
        VALUES (:id, :student_id, :status, :start_date, :end_date,
                :reason, :semester_id, :changed_by, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, standing); err != nil {
		return fmt.Errorf("create standing: %w", err)
	}
	return nil
}

// StandingHistory returns all standing intervals of a student, newest first.
func (r *StandingRepository) StandingHistory(ctx context.Context, studentID string) ([]models.AcademicStanding, error) {
	const query = `SELECT id, student_id, status, start_date, end_date, reason, semester_id,
                changed_by, created_at
        FROM academic_standings
        WHERE student_id = $1
        ORDER BY start_date DESC, created_at DESC`
	var standings []models.AcademicStanding
	if err := sqlx.SelectContext(ctx, r.db, &standings, query, studentID); err != nil {
		return nil, fmt.Errorf("list standings: %w", err)
	}
	return standings, nil
}

// CountOutstandingDebts counts a student's debts in the states that weigh on
// standing derivation.
func (r *StandingRepository) CountOutstandingDebts(ctx context.Context, studentID string) (int, error) {
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM academic_debts
        WHERE student_id = ? AND status IN (?)`, studentID, models.OutstandingDebtStatuses)
	if err != nil {
		return 0, fmt.Errorf("build debt count query: %w", err)
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)
	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count outstanding debts: %w", err)
	}
	return count, nil
}

// ClearableDebts returns the active or extended debts a passing grade for
// (student, subject, semester) clears.
func (r *StandingRepository) ClearableDebts(ctx context.Context, studentID, subjectID, semesterID string) ([]models.AcademicDebt, error) {
	query, args, err := sqlx.In(`SELECT id, student_id, subject_id, semester_id, debt_type,
                description, deadline, status, cleared_at, grade_sheet_item_id, created_by, created_at
        FROM academic_debts
        WHERE student_id = ? AND subject_id = ? AND semester_id = ? AND status IN (?)`,
		studentID, subjectID, semesterID, models.ClearableDebtStatuses)
	if err != nil {
		return nil, fmt.Errorf("build clearable debts query: %w", err)
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)
	var debts []models.AcademicDebt
	if err := sqlx.SelectContext(ctx, r.db, &debts, query, args...); err != nil {
		return nil, fmt.Errorf("list clearable debts: %w", err)
	}
	return debts, nil
}

// CreateDebt inserts an academic debt.
func (r *StandingRepository) CreateDebt(ctx context.Context, debt *models.AcademicDebt) error {
	if debt.ID == "" {
		debt.ID = uuid.NewString()
	}
	if debt.CreatedAt.IsZero() {
		debt.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO academic_debts (id, student_id, subject_id, semester_id, debt_type,
                description, deadline, status, cleared_at, grade_sheet_item_id, created_by, created_at)
        VALUES (:id, :student_id, :subject_id, :semester_id, :debt_type,
                :description, :deadline, :status, :cleared_at, :grade_sheet_item_id, :created_by, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, debt); err != nil {
		return fmt.Errorf("create debt: %w", err)
	}
	return nil
}

// GetDebt returns one debt, or nil when absent.
func (r *StandingRepository) GetDebt(ctx context.Context, id string) (*models.AcademicDebt, error) {
	const query = `SELECT id, student_id, subject_id, semester_id, debt_type, description,
                deadline, status, cleared_at, grade_sheet_item_id, created_by, created_at
        FROM academic_debts WHERE id = $1`
	var debt models.AcademicDebt
	if err := sqlx.GetContext(ctx, r.db, &debt, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get debt: %w", err)
	}
	return &debt, nil
}

// ListDebts returns a student's debts, optionally narrowed by status.
func (r *StandingRepository) ListDebts(ctx context.Context, studentID string, status *models.DebtStatus) ([]models.AcademicDebt, error) {
	query := `SELECT id, student_id, subject_id, semester_id, debt_type, description,
                deadline, status, cleared_at, grade_sheet_item_id, created_by, created_at
        FROM academic_debts WHERE student_id = $1`
	args := []interface{}{studentID}
	if status != nil {
		query += " AND status = $2"
		args = append(args, *status)
	}
	query += " ORDER BY deadline"
	var debts []models.AcademicDebt
	if err := sqlx.SelectContext(ctx, r.db, &debts, query, args...); err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	return debts, nil
}

// SetDebtStatus transitions a debt and stamps cleared_at for the cleared
// state.
func (r *StandingRepository) SetDebtStatus(ctx context.Context, id string, status models.DebtStatus, clearedAt *time.Time) error {
	const query = `UPDATE academic_debts SET status = $2, cleared_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, clearedAt)
	if err != nil {
		return fmt.Errorf("set debt status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ExtendDebt moves the deadline forward and marks the debt extended.
func (r *StandingRepository) ExtendDebt(ctx context.Context, id string, deadline time.Time) error {
	const query = `UPDATE academic_debts SET deadline = $2, status = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, deadline, models.DebtStatusExtended)
	if err != nil {
		return fmt.Errorf("extend debt: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateRetake inserts a retake permission.
func (r *StandingRepository) CreateRetake(ctx context.Context, retake *models.RetakePermission) error {
	if retake.ID == "" {
		retake.ID = uuid.NewString()
	}
	if retake.CreatedAt.IsZero() {
		retake.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO retake_permissions (id, student_id, academic_debt_id, subject_id,
                semester_id, attempt_number, issue_date, expiration_date, status, grade_sheet_id,
                created_by, created_at)
        VALUES (:id, :student_id, :academic_debt_id, :subject_id,
                :semester_id, :attempt_number, :issue_date, :expiration_date, :status, :grade_sheet_id,
                :created_by, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, retake); err != nil {
		return fmt.Errorf("create retake permission: %w", err)
	}
	return nil
}

// MaxRetakeAttempt returns the highest attempt number already issued for
// (student, subject, semester); zero when none exist.
func (r *StandingRepository) MaxRetakeAttempt(ctx context.Context, studentID, subjectID, semesterID string) (int, error) {
	const query = `SELECT COALESCE(MAX(attempt_number), 0) FROM retake_permissions
        WHERE student_id = $1 AND subject_id = $2 AND semester_id = $3`
	var attempt int
	if err := sqlx.GetContext(ctx, r.db, &attempt, query, studentID, subjectID, semesterID); err != nil {
		return 0, fmt.Errorf("max retake attempt: %w", err)
	}
	return attempt, nil
}

// SetRetakeStatus transitions a retake permission.
func (r *StandingRepository) SetRetakeStatus(ctx context.Context, id string, status models.RetakeStatus) error {
	const query = `UPDATE retake_permissions SET status = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("set retake status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListRetakes returns a student's retake permissions, newest first.
func (r *StandingRepository) ListRetakes(ctx context.Context, studentID string) ([]models.RetakePermission, error) {
	const query = `SELECT id, student_id, academic_debt_id, subject_id, semester_id,
                attempt_number, issue_date, expiration_date, status, grade_sheet_id, created_by, created_at
        FROM retake_permissions
        WHERE student_id = $1
        ORDER BY issue_date DESC`
	var retakes []models.RetakePermission
	if err := sqlx.SelectContext(ctx, r.db, &retakes, query, studentID); err != nil {
		return nil, fmt.Errorf("list retake permissions: %w", err)
	}
	return retakes, nil
}
