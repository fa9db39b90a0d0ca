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

// GradeSheetRepository handles grade sheets and their items.
type GradeSheetRepository struct {
	db sqlx.ExtContext
}

// NewGradeSheetRepository creates a new grade sheet repository.
func NewGradeSheetRepository(db sqlx.ExtContext) *GradeSheetRepository {
	return &GradeSheetRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *GradeSheetRepository) WithTx(tx *sqlx.Tx) *GradeSheetRepository {
	return &GradeSheetRepository{db: tx}
}

// Create inserts a sheet.
func (r *GradeSheetRepository) Create(ctx context.Context, sheet *models.GradeSheet) error {
	if sheet.ID == "" {
		sheet.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sheet.CreatedAt = now
	sheet.UpdatedAt = now
	const query = `INSERT INTO grade_sheets (id, number, subject_id, group_id, semester_id,
                sheet_type, teacher_id, grade_system_id, status, issue_date, expiration_date,
                comments, issued_by, verified_by, approved_by, created_at, updated_at)
        VALUES (:id, :number, :subject_id, :group_id, :semester_id,
                :sheet_type, :teacher_id, :grade_system_id, :status, :issue_date, :expiration_date,
                :comments, :issued_by, :verified_by, :approved_by, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, sheet); err != nil {
		return fmt.Errorf("create grade sheet: %w", err)
	}
	return nil
}

// GetByID returns a sheet by primary key, or nil when absent.
func (r *GradeSheetRepository) GetByID(ctx context.Context, id string) (*models.GradeSheet, error) {
	const query = `SELECT id, number, subject_id, group_id, semester_id, sheet_type, teacher_id,
                grade_system_id, status, issue_date, expiration_date, comments, issued_by,
                verified_by, approved_by, created_at, updated_at
        FROM grade_sheets WHERE id = $1`
	var sheet models.GradeSheet
	if err := sqlx.GetContext(ctx, r.db, &sheet, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get grade sheet: %w", err)
	}
	return &sheet, nil
}

// List returns sheets matching the filter, newest first, with total count.
func (r *GradeSheetRepository) List(ctx context.Context, filter models.SheetFilter) ([]models.GradeSheet, int, error) {
	query := `SELECT id, number, subject_id, group_id, semester_id, sheet_type, teacher_id,
                grade_system_id, status, issue_date, expiration_date, comments, issued_by,
                verified_by, approved_by, created_at, updated_at
        FROM grade_sheets WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM grade_sheets WHERE 1=1`
	var args []interface{}
	appendCond := func(column, value string) {
		clause := fmt.Sprintf(" AND %s = $%d", column, len(args)+1)
		query += clause
		countQuery += clause
		args = append(args, value)
	}
	if filter.SubjectID != "" {
		appendCond("subject_id", filter.SubjectID)
	}
	if filter.GroupID != "" {
		appendCond("group_id", filter.GroupID)
	}
	if filter.SemesterID != "" {
		appendCond("semester_id", filter.SemesterID)
	}
	if filter.SheetType != nil {
		appendCond("sheet_type", string(*filter.SheetType))
	}
	if filter.Status != nil {
		appendCond("status", string(*filter.Status))
	}
	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count grade sheets: %w", err)
	}
	query += " ORDER BY issue_date DESC, created_at DESC"
	if filter.PageSize > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.PageSize, offset)
	}
	var sheets []models.GradeSheet
	if err := sqlx.SelectContext(ctx, r.db, &sheets, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list grade sheets: %w", err)
	}
	return sheets, total, nil
}

// SetStatus transitions a sheet's lifecycle status and stamps the actor
// column for the verify/approve steps.
func (r *GradeSheetRepository) SetStatus(ctx context.Context, id string, status models.SheetStatus, actorID *string) error {
	query := `UPDATE grade_sheets SET status = $2, updated_at = $3`
	args := []interface{}{id, status, time.Now().UTC()}
	switch status {
	case models.SheetStatusVerified:
		query += fmt.Sprintf(", verified_by = $%d", len(args)+1)
		args = append(args, actorID)
	case models.SheetStatusApproved:
		query += fmt.Sprintf(", approved_by = $%d", len(args)+1)
		args = append(args, actorID)
	}
	query += " WHERE id = $1"
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set sheet status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// InsertItems bulk-inserts sheet items, typically the roster rows created
// with the sheet.
func (r *GradeSheetRepository) InsertItems(ctx context.Context, items []models.GradeSheetItem) error {
	const query = `INSERT INTO grade_sheet_items (id, grade_sheet_id, student_id, grade_value_id,
                points, percentage, status, graded_at, graded_by, comments)
        VALUES (:id, :grade_sheet_id, :student_id, :grade_value_id,
                :points, :percentage, :status, :graded_at, :graded_by, :comments)`
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		if _, err := sqlx.NamedExecContext(ctx, r.db, query, items[i]); err != nil {
			return fmt.Errorf("insert sheet item: %w", err)
		}
	}
	return nil
}

// GetItem returns one sheet item, or nil when absent.
func (r *GradeSheetRepository) GetItem(ctx context.Context, itemID string) (*models.GradeSheetItem, error) {
	const query = `SELECT id, grade_sheet_id, student_id, grade_value_id, points, percentage,
                status, graded_at, graded_by, comments
        FROM grade_sheet_items WHERE id = $1`
	var item models.GradeSheetItem
	if err := sqlx.GetContext(ctx, r.db, &item, query, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sheet item: %w", err)
	}
	return &item, nil
}

// ListItems returns all items of a sheet ordered by student.
func (r *GradeSheetRepository) ListItems(ctx context.Context, sheetID string) ([]models.GradeSheetItem, error) {
	const query = `SELECT i.id, i.grade_sheet_id, i.student_id, i.grade_value_id, i.points,
                i.percentage, i.status, i.graded_at, i.graded_by, i.comments
        FROM grade_sheet_items i
        JOIN student_profiles sp ON sp.id = i.student_id
        WHERE i.grade_sheet_id = $1
        ORDER BY sp.full_name`
	var items []models.GradeSheetItem
	if err := sqlx.SelectContext(ctx, r.db, &items, query, sheetID); err != nil {
		return nil, fmt.Errorf("list sheet items: %w", err)
	}
	return items, nil
}

// UpdateItem persists a graded item row.
func (r *GradeSheetRepository) UpdateItem(ctx context.Context, item *models.GradeSheetItem) error {
	const query = `UPDATE grade_sheet_items
        SET grade_value_id = :grade_value_id, points = :points, percentage = :percentage,
                status = :status, graded_at = :graded_at, graded_by = :graded_by, comments = :comments
        WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, r.db, query, item)
	if err != nil {
		return fmt.Errorf("update sheet item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountUngraded returns how many items of a sheet are still not graded.
func (r *GradeSheetRepository) CountUngraded(ctx context.Context, sheetID string) (int, error) {
	const query = `SELECT COUNT(*) FROM grade_sheet_items
        WHERE grade_sheet_id = $1 AND status = $2`
	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, query, sheetID, models.ItemStatusNotGraded); err != nil {
		return 0, fmt.Errorf("count ungraded items: %w", err)
	}
	return count, nil
}
