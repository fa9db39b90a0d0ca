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

// GradeImportRepository tracks uploaded grade files and their outcomes.
type GradeImportRepository struct {
	db *sqlx.DB
}

// NewGradeImportRepository creates a new grade import repository.
func NewGradeImportRepository(db *sqlx.DB) *GradeImportRepository {
	return &GradeImportRepository{db: db}
}

// Create inserts a pending import row.
func (r *GradeImportRepository) Create(ctx context.Context, imp *models.GradeImport) error {
	if imp.ID == "" {
		imp.ID = uuid.NewString()
	}
	if imp.CreatedAt.IsZero() {
		imp.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO grade_imports (id, file_name, grade_sheet_id, status, total_rows,
                imported_rows, failed_rows, error_log, uploaded_by, created_at, completed_at)
        VALUES (:id, :file_name, :grade_sheet_id, :status, :total_rows,
                :imported_rows, :failed_rows, :error_log, :uploaded_by, :created_at, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, imp); err != nil {
		return fmt.Errorf("create grade import: %w", err)
	}
	return nil
}

// GetByID returns an import row, or nil when absent.
func (r *GradeImportRepository) GetByID(ctx context.Context, id string) (*models.GradeImport, error) {
	const query = `SELECT id, file_name, grade_sheet_id, status, total_rows, imported_rows,
                failed_rows, error_log, uploaded_by, created_at, completed_at
        FROM grade_imports WHERE id = $1`
	var imp models.GradeImport
	if err := r.db.GetContext(ctx, &imp, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get grade import: %w", err)
	}
	return &imp, nil
}

// SetProcessing marks an import as picked up by a worker.
func (r *GradeImportRepository) SetProcessing(ctx context.Context, id string) error {
	const query = `UPDATE grade_imports SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ImportProcessing); err != nil {
		return fmt.Errorf("mark import processing: %w", err)
	}
	return nil
}

// Finish records the terminal outcome of an import.
func (r *GradeImportRepository) Finish(ctx context.Context, imp *models.GradeImport) error {
	now := time.Now().UTC()
	imp.CompletedAt = &now
	const query = `UPDATE grade_imports
        SET status = :status, total_rows = :total_rows, imported_rows = :imported_rows,
                failed_rows = :failed_rows, error_log = :error_log, completed_at = :completed_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, imp); err != nil {
		return fmt.Errorf("finish grade import: %w", err)
	}
	return nil
}

// List returns import rows, newest first.
func (r *GradeImportRepository) List(ctx context.Context, page, pageSize int) ([]models.GradeImport, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM grade_imports`); err != nil {
		return nil, 0, fmt.Errorf("count grade imports: %w", err)
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	const query = `SELECT id, file_name, grade_sheet_id, status, total_rows, imported_rows,
                failed_rows, error_log, uploaded_by, created_at, completed_at
        FROM grade_imports ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	var imports []models.GradeImport
	if err := r.db.SelectContext(ctx, &imports, query, pageSize, (page-1)*pageSize); err != nil {
		return nil, 0, fmt.Errorf("list grade imports: %w", err)
	}
	return imports, total, nil
}
