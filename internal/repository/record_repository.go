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

// RecordRepository persists student record books and their entries.
type RecordRepository struct {
	db sqlx.ExtContext
}

// NewRecordRepository creates a new record repository.
func NewRecordRepository(db sqlx.ExtContext) *RecordRepository {
	return &RecordRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *RecordRepository) WithTx(tx *sqlx.Tx) *RecordRepository {
	return &RecordRepository{db: tx}
}

// Create inserts a record book.
func (r *RecordRepository) Create(ctx context.Context, record *models.StudentRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	const query = `INSERT INTO student_records (id, student_id, record_number, issue_date,
                closing_date, status, comments, created_at, updated_at)
        VALUES (:id, :student_id, :record_number, :issue_date,
                :closing_date, :status, :comments, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, record); err != nil {
		return fmt.Errorf("create student record: %w", err)
	}
	return nil
}

// GetByStudent returns the student's record book, or nil when absent.
func (r *RecordRepository) GetByStudent(ctx context.Context, studentID string) (*models.StudentRecord, error) {
	const query = `SELECT id, student_id, record_number, issue_date, closing_date, status,
                comments, created_at, updated_at
        FROM student_records WHERE student_id = $1`
	var record models.StudentRecord
	if err := sqlx.GetContext(ctx, r.db, &record, query, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student record: %w", err)
	}
	return &record, nil
}

// SetStatus transitions a record book and stamps the closing date for
// terminal states.
func (r *RecordRepository) SetStatus(ctx context.Context, id string, status models.RecordStatus, closingDate *time.Time) error {
	const query = `UPDATE student_records SET status = $2, closing_date = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, closingDate, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set record status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpsertEntry inserts or updates the entry identified by
// (record, subject, semester, entry_type).
func (r *RecordRepository) UpsertEntry(ctx context.Context, entry *models.RecordEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const query = `INSERT INTO record_entries (id, record_id, subject_id, semester_id, entry_type,
                hours, credits, grade_system_id, grade_value_id, grade_sheet_item_id, date,
                recorded_by, comments)
        VALUES (:id, :record_id, :subject_id, :semester_id, :entry_type,
                :hours, :credits, :grade_system_id, :grade_value_id, :grade_sheet_item_id, :date,
                :recorded_by, :comments)
        ON CONFLICT (record_id, subject_id, semester_id, entry_type)
        DO UPDATE SET hours = EXCLUDED.hours,
                credits = EXCLUDED.credits,
                grade_system_id = EXCLUDED.grade_system_id,
                grade_value_id = EXCLUDED.grade_value_id,
                grade_sheet_item_id = EXCLUDED.grade_sheet_item_id,
                date = EXCLUDED.date,
                recorded_by = EXCLUDED.recorded_by,
                comments = EXCLUDED.comments`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, entry); err != nil {
		return fmt.Errorf("upsert record entry: %w", err)
	}
	return nil
}

// ListEntries returns the entries of a record book, oldest first.
func (r *RecordRepository) ListEntries(ctx context.Context, recordID string) ([]models.RecordEntry, error) {
	const query = `SELECT id, record_id, subject_id, semester_id, entry_type, hours, credits,
                grade_system_id, grade_value_id, grade_sheet_item_id, date, recorded_by, comments
        FROM record_entries WHERE record_id = $1 ORDER BY date, subject_id`
	var entries []models.RecordEntry
	if err := sqlx.SelectContext(ctx, r.db, &entries, query, recordID); err != nil {
		return nil, fmt.Errorf("list record entries: %w", err)
	}
	return entries, nil
}
