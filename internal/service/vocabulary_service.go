package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/uniplex/academic-api/internal/models"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
)

// CreateSystemRequest registers a grade system.
type CreateSystemRequest struct {
	Name           string                 `json:"name" validate:"required"`
	Description    *string                `json:"description"`
	MinValue       float64                `json:"min_value"`
	MaxValue       float64                `json:"max_value" validate:"gtfield=MinValue"`
	PassingValue   float64                `json:"passing_value"`
	SystemType     models.GradeSystemType `json:"system_type" validate:"required,oneof=numeric letter pass_fail custom"`
	RoundingMethod models.RoundingMethod  `json:"rounding_method" validate:"omitempty,oneof=none ceil floor round"`
	DecimalPlaces  int                    `json:"decimal_places" validate:"gte=0,lte=4"`
}

// CreateValueRequest adds a value to a grade system.
type CreateValueRequest struct {
	GradeSystemID string  `json:"grade_system_id" validate:"required"`
	Value         string  `json:"value" validate:"required"`
	NumericValue  float64 `json:"numeric_value"`
	MinPercent    float64 `json:"min_percent" validate:"gte=0,lte=100"`
	MaxPercent    float64 `json:"max_percent" validate:"gtfield=MinPercent,lte=101"`
	Description   *string `json:"description"`
	IsPassing     bool    `json:"is_passing"`
}

// CreateTypeRequest registers a grade type.
type CreateTypeRequest struct {
	Name                 string  `json:"name" validate:"required"`
	Code                 string  `json:"code" validate:"required"`
	Description          *string `json:"description"`
	WeightInFinal        float64 `json:"weight_in_final" validate:"gte=0,lte=1"`
	DefaultGradeSystemID *string `json:"default_grade_system_id"`
}

// VocabularyService manages the grading vocabulary and value conversion.
type VocabularyService struct {
	db        *sqlx.DB
	stores    storesFactory
	validator *validator.Validate
	logger    *zap.Logger
}

// NewVocabularyService constructs VocabularyService.
func NewVocabularyService(db *sqlx.DB, validate *validator.Validate, logger *zap.Logger) *VocabularyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VocabularyService{db: db, stores: NewStores, validator: validate, logger: logger}
}

// ListSystems returns all grade systems.
func (s *VocabularyService) ListSystems(ctx context.Context) ([]models.GradeSystem, error) {
	systems, err := s.stores(s.db).Vocabulary.ListSystems(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grade systems")
	}
	return systems, nil
}

// CreateSystem registers a grade system.
func (s *VocabularyService) CreateSystem(ctx context.Context, req CreateSystemRequest) (*models.GradeSystem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade system payload")
	}
	rounding := req.RoundingMethod
	if rounding == "" {
		rounding = models.RoundingHalf
	}
	system := &models.GradeSystem{
		Name:           req.Name,
		Description:    req.Description,
		MinValue:       req.MinValue,
		MaxValue:       req.MaxValue,
		PassingValue:   req.PassingValue,
		SystemType:     req.SystemType,
		RoundingMethod: rounding,
		DecimalPlaces:  req.DecimalPlaces,
	}
	if err := s.stores(s.db).Vocabulary.CreateSystem(ctx, system); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade system")
	}
	return system, nil
}

// ListValues returns the values of a system.
func (s *VocabularyService) ListValues(ctx context.Context, systemID string) ([]models.GradeValue, error) {
	values, err := s.stores(s.db).Vocabulary.ListValues(ctx, systemID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grade values")
	}
	return values, nil
}

// CreateValue adds a value to a system. Overlapping percent bands within a
// system are the operator's responsibility; lookups use the narrowest
// matching band.
func (s *VocabularyService) CreateValue(ctx context.Context, req CreateValueRequest) (*models.GradeValue, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade value payload")
	}
	base := s.stores(s.db)
	system, err := base.Vocabulary.GetSystem(ctx, req.GradeSystemID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade system")
	}
	if system == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "grade system not found")
	}
	value := &models.GradeValue{
		GradeSystemID: req.GradeSystemID,
		Value:         req.Value,
		NumericValue:  req.NumericValue,
		MinPercent:    req.MinPercent,
		MaxPercent:    req.MaxPercent,
		Description:   req.Description,
		IsPassing:     req.IsPassing,
	}
	if err := base.Vocabulary.CreateValue(ctx, value); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade value")
	}
	return value, nil
}

// ValueForPercent maps a percentage onto a value of the system. The band is
// half-open, so a value's max percent belongs to the next band up.
func (s *VocabularyService) ValueForPercent(ctx context.Context, systemID string, percent float64) (*models.GradeValue, error) {
	value, err := s.stores(s.db).Vocabulary.ValueForPercent(ctx, systemID, percent)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve grade value")
	}
	if value == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no grade value matches the percentage")
	}
	return value, nil
}

// ListTypes returns all grade types.
func (s *VocabularyService) ListTypes(ctx context.Context) ([]models.GradeType, error) {
	types, err := s.stores(s.db).Vocabulary.ListTypes(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grade types")
	}
	return types, nil
}

// CreateType registers a grade type. The code is unique and referenced by
// the sheet propagation mapping.
func (s *VocabularyService) CreateType(ctx context.Context, req CreateTypeRequest) (*models.GradeType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade type payload")
	}
	base := s.stores(s.db)
	if existing, err := base.Vocabulary.TypeByCode(ctx, req.Code); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check grade type code")
	} else if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "grade type code already exists")
	}
	gt := &models.GradeType{
		Name:                 req.Name,
		Code:                 req.Code,
		Description:          req.Description,
		WeightInFinal:        req.WeightInFinal,
		DefaultGradeSystemID: req.DefaultGradeSystemID,
	}
	if err := base.Vocabulary.CreateType(ctx, gt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade type")
	}
	return gt, nil
}

// Convert maps a value into another system: first through an explicit
// conversion table, then by percent band as fallback.
func (s *VocabularyService) Convert(ctx context.Context, valueID, targetSystemID string) (*models.GradeValue, error) {
	base := s.stores(s.db)
	source, err := base.Vocabulary.GetValue(ctx, valueID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade value")
	}
	if source == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "grade value not found")
	}
	if source.GradeSystemID == targetSystemID {
		return source, nil
	}
	mapped, err := base.Vocabulary.Conversion(ctx, valueID, targetSystemID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve conversion")
	}
	if mapped != nil {
		return mapped, nil
	}
	fallback, err := base.Vocabulary.ValueForPercent(ctx, targetSystemID, source.MinPercent)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve conversion fallback")
	}
	if fallback == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no conversion path to target system")
	}
	return fallback, nil
}
