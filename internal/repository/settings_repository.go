package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/uniplex/academic-api/internal/models"
)

// SettingsRepository reads and writes the single site settings row.
type SettingsRepository struct {
	db sqlx.ExtContext
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db sqlx.ExtContext) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the settings row, or nil when it was never seeded.
func (r *SettingsRepository) Get(ctx context.Context) (*models.SiteSettings, error) {
	const query = `SELECT id, current_academic_year_id, current_semester_id,
                default_grade_system_id, updated_by, updated_at
        FROM site_settings LIMIT 1`
	var settings models.SiteSettings
	if err := sqlx.GetContext(ctx, r.db, &settings, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get site settings: %w", err)
	}
	return &settings, nil
}

// Update overwrites the pointer columns of the settings row.
func (r *SettingsRepository) Update(ctx context.Context, settings *models.SiteSettings) error {
	settings.UpdatedAt = time.Now().UTC()
	const query = `UPDATE site_settings
        SET current_academic_year_id = :current_academic_year_id,
                current_semester_id = :current_semester_id,
                default_grade_system_id = :default_grade_system_id,
                updated_by = :updated_by,
                updated_at = :updated_at
        WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, r.db, query, settings)
	if err != nil {
		return fmt.Errorf("update site settings: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
