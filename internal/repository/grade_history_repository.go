package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniplex/academic-api/internal/models"
)

// GradeHistoryRepository is the append-only grade transition ledger. It
// exposes no update or delete operations.
type GradeHistoryRepository struct {
	db sqlx.ExtContext
}

// NewGradeHistoryRepository creates a new history repository.
func NewGradeHistoryRepository(db sqlx.ExtContext) *GradeHistoryRepository {
	return &GradeHistoryRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *GradeHistoryRepository) WithTx(tx *sqlx.Tx) *GradeHistoryRepository {
	return &GradeHistoryRepository{db: tx}
}

// Append inserts one ledger row.
func (r *GradeHistoryRepository) Append(ctx context.Context, entry *models.GradeHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = time.Now().UTC()
	}
	const query = `INSERT INTO grade_history (id, student_id, subject_id, semester_id,
                grade_sheet_item_id, previous_value_id, new_value_id, changed_by, changed_at,
                change_type, comments)
        VALUES (:id, :student_id, :subject_id, :semester_id,
                :grade_sheet_item_id, :previous_value_id, :new_value_id, :changed_by, :changed_at,
                :change_type, :comments)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, entry); err != nil {
		return fmt.Errorf("append grade history: %w", err)
	}
	return nil
}

// List returns ledger rows matching the filter, newest first, with total
// count.
func (r *GradeHistoryRepository) List(ctx context.Context, filter models.HistoryFilter) ([]models.GradeHistory, int, error) {
	query := `SELECT id, student_id, subject_id, semester_id, grade_sheet_item_id,
                previous_value_id, new_value_id, changed_by, changed_at, change_type, comments
        FROM grade_history WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM grade_history WHERE 1=1`
	var args []interface{}
	appendCond := func(column, value string) {
		clause := fmt.Sprintf(" AND %s = $%d", column, len(args)+1)
		query += clause
		countQuery += clause
		args = append(args, value)
	}
	if filter.StudentID != "" {
		appendCond("student_id", filter.StudentID)
	}
	if filter.SubjectID != "" {
		appendCond("subject_id", filter.SubjectID)
	}
	if filter.SemesterID != "" {
		appendCond("semester_id", filter.SemesterID)
	}
	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count grade history: %w", err)
	}
	query += " ORDER BY changed_at DESC"
	if filter.PageSize > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.PageSize, offset)
	}
	var entries []models.GradeHistory
	if err := sqlx.SelectContext(ctx, r.db, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list grade history: %w", err)
	}
	return entries, total, nil
}
