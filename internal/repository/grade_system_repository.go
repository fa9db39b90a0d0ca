package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniplex/academic-api/internal/models"
)

// GradeSystemRepository handles the grading vocabulary: systems, values,
// types, scales and conversions.
type GradeSystemRepository struct {
	db sqlx.ExtContext
}

// NewGradeSystemRepository creates a new grade system repository.
func NewGradeSystemRepository(db sqlx.ExtContext) *GradeSystemRepository {
	return &GradeSystemRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *GradeSystemRepository) WithTx(tx *sqlx.Tx) *GradeSystemRepository {
	return &GradeSystemRepository{db: tx}
}

// ListSystems returns all grade systems ordered by name.
func (r *GradeSystemRepository) ListSystems(ctx context.Context) ([]models.GradeSystem, error) {
	const query = `SELECT id, name, description, min_value, max_value, passing_value,
                system_type, rounding_method, decimal_places, is_default
        FROM grade_systems ORDER BY name`
	var systems []models.GradeSystem
	if err := sqlx.SelectContext(ctx, r.db, &systems, query); err != nil {
		return nil, fmt.Errorf("list grade systems: %w", err)
	}
	return systems, nil
}

// GetSystem returns one grade system, or nil when absent.
func (r *GradeSystemRepository) GetSystem(ctx context.Context, id string) (*models.GradeSystem, error) {
	const query = `SELECT id, name, description, min_value, max_value, passing_value,
                system_type, rounding_method, decimal_places, is_default
        FROM grade_systems WHERE id = $1`
	var system models.GradeSystem
	if err := sqlx.GetContext(ctx, r.db, &system, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get grade system: %w", err)
	}
	return &system, nil
}

// CreateSystem inserts a grade system.
func (r *GradeSystemRepository) CreateSystem(ctx context.Context, system *models.GradeSystem) error {
	if system.ID == "" {
		system.ID = uuid.NewString()
	}
	const query = `INSERT INTO grade_systems (id, name, description, min_value, max_value,
                passing_value, system_type, rounding_method, decimal_places, is_default)
        VALUES (:id, :name, :description, :min_value, :max_value,
                :passing_value, :system_type, :rounding_method, :decimal_places, :is_default)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, system); err != nil {
		return fmt.Errorf("create grade system: %w", err)
	}
	return nil
}

// ListValues returns the values of a grade system ordered by numeric value
// descending.
func (r *GradeSystemRepository) ListValues(ctx context.Context, systemID string) ([]models.GradeValue, error) {
	const query = `SELECT id, grade_system_id, value, numeric_value, min_percent, max_percent,
                description, is_passing
        FROM grade_values WHERE grade_system_id = $1 ORDER BY numeric_value DESC`
	var values []models.GradeValue
	if err := sqlx.SelectContext(ctx, r.db, &values, query, systemID); err != nil {
		return nil, fmt.Errorf("list grade values: %w", err)
	}
	return values, nil
}

// GetValue returns one grade value, or nil when absent.
func (r *GradeSystemRepository) GetValue(ctx context.Context, id string) (*models.GradeValue, error) {
	const query = `SELECT id, grade_system_id, value, numeric_value, min_percent, max_percent,
                description, is_passing
        FROM grade_values WHERE id = $1`
	var value models.GradeValue
	if err := sqlx.GetContext(ctx, r.db, &value, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get grade value: %w", err)
	}
	return &value, nil
}

// ValueForPercent resolves the grade value whose half-open percent range
// [min_percent, max_percent) contains the given percentage. Returns nil when
// no range matches.
func (r *GradeSystemRepository) ValueForPercent(ctx context.Context, systemID string, percent float64) (*models.GradeValue, error) {
	const query = `SELECT id, grade_system_id, value, numeric_value, min_percent, max_percent,
                description, is_passing
        FROM grade_values
        WHERE grade_system_id = $1 AND min_percent <= $2 AND max_percent > $2
        ORDER BY min_percent DESC LIMIT 1`
	var value models.GradeValue
	if err := sqlx.GetContext(ctx, r.db, &value, query, systemID, percent); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("value for percent: %w", err)
	}
	return &value, nil
}

// ValueByLabel resolves a grade value by its symbolic label within a system.
func (r *GradeSystemRepository) ValueByLabel(ctx context.Context, systemID, label string) (*models.GradeValue, error) {
	const query = `SELECT id, grade_system_id, value, numeric_value, min_percent, max_percent,
                description, is_passing
        FROM grade_values WHERE grade_system_id = $1 AND value = $2`
	var value models.GradeValue
	if err := sqlx.GetContext(ctx, r.db, &value, query, systemID, label); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("value by label: %w", err)
	}
	return &value, nil
}

// CreateValue inserts a grade value into a system.
func (r *GradeSystemRepository) CreateValue(ctx context.Context, value *models.GradeValue) error {
	if value.ID == "" {
		value.ID = uuid.NewString()
	}
	const query = `INSERT INTO grade_values (id, grade_system_id, value, numeric_value,
                min_percent, max_percent, description, is_passing)
        VALUES (:id, :grade_system_id, :value, :numeric_value,
                :min_percent, :max_percent, :description, :is_passing)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, value); err != nil {
		return fmt.Errorf("create grade value: %w", err)
	}
	return nil
}

// ListTypes returns all grade types ordered by code.
func (r *GradeSystemRepository) ListTypes(ctx context.Context) ([]models.GradeType, error) {
	const query = `SELECT id, name, code, description, weight_in_final, default_grade_system_id
        FROM grade_types ORDER BY code`
	var types []models.GradeType
	if err := sqlx.SelectContext(ctx, r.db, &types, query); err != nil {
		return nil, fmt.Errorf("list grade types: %w", err)
	}
	return types, nil
}

// TypeByCode resolves a grade type by its unique code, or nil when absent.
func (r *GradeSystemRepository) TypeByCode(ctx context.Context, code string) (*models.GradeType, error) {
	const query = `SELECT id, name, code, description, weight_in_final, default_grade_system_id
        FROM grade_types WHERE code = $1`
	var gt models.GradeType
	if err := sqlx.GetContext(ctx, r.db, &gt, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("grade type by code: %w", err)
	}
	return &gt, nil
}

// CreateType inserts a grade type.
func (r *GradeSystemRepository) CreateType(ctx context.Context, gt *models.GradeType) error {
	if gt.ID == "" {
		gt.ID = uuid.NewString()
	}
	const query = `INSERT INTO grade_types (id, name, code, description, weight_in_final, default_grade_system_id)
        VALUES (:id, :name, :code, :description, :weight_in_final, :default_grade_system_id)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, gt); err != nil {
		return fmt.Errorf("create grade type: %w", err)
	}
	return nil
}

// Conversion resolves the target value for a source value under an active
// scale between two systems. Returns nil when no mapping exists.
func (r *GradeSystemRepository) Conversion(ctx context.Context, sourceValueID, targetSystemID string) (*models.GradeValue, error) {
	const query = `SELECT gv.id, gv.grade_system_id, gv.value, gv.numeric_value, gv.min_percent,
                gv.max_percent, gv.description, gv.is_passing
        FROM grade_conversions gc
        JOIN grading_scales gs ON gs.id = gc.scale_id AND gs.is_active
        JOIN grade_values gv ON gv.id = gc.target_value_id
        WHERE gc.source_value_id = $1 AND gs.target_system_id = $2
        LIMIT 1`
	var value models.GradeValue
	if err := sqlx.GetContext(ctx, r.db, &value, query, sourceValueID, targetSystemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("grade conversion: %w", err)
	}
	return &value, nil
}

// CreateScale inserts a grading scale.
func (r *GradeSystemRepository) CreateScale(ctx context.Context, scale *models.GradingScale) error {
	if scale.ID == "" {
		scale.ID = uuid.NewString()
	}
	const query = `INSERT INTO grading_scales (id, name, description, source_system_id, target_system_id, is_active)
        VALUES (:id, :name, :description, :source_system_id, :target_system_id, :is_active)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, scale); err != nil {
		return fmt.Errorf("create grading scale: %w", err)
	}
	return nil
}

// CreateConversion inserts one value mapping into a scale. The unique
// (scale_id, source_value_id) constraint keeps mappings unambiguous.
func (r *GradeSystemRepository) CreateConversion(ctx context.Context, conv *models.GradeConversion) error {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	const query = `INSERT INTO grade_conversions (id, scale_id, source_value_id, target_value_id)
        VALUES (:id, :scale_id, :source_value_id, :target_value_id)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, conv); err != nil {
		return fmt.Errorf("create grade conversion: %w", err)
	}
	return nil
}
