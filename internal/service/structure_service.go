package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/uniplex/academic-api/internal/models"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
)

// CreateAcademicYearRequest registers an academic year.
type CreateAcademicYearRequest struct {
	Name      string `json:"name" validate:"required"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// CreateSemesterRequest adds a semester to an academic year.
type CreateSemesterRequest struct {
	AcademicYearID string `json:"academic_year_id" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Number         int    `json:"number" validate:"required,gte=1,lte=4"`
	StartDate      string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// CreateSubjectRequest registers a subject.
type CreateSubjectRequest struct {
	Code    string  `json:"code" validate:"required"`
	Name    string  `json:"name" validate:"required"`
	Credits *int    `json:"credits" validate:"omitempty,gte=0"`
	Notes   *string `json:"notes"`
}

// CreateGroupRequest registers a study group.
type CreateGroupRequest struct {
	Name string `json:"name" validate:"required"`
	Year int    `json:"year" validate:"required,gte=1"`
}

// StructureService serves academic reference data.
type StructureService struct {
	db        *sqlx.DB
	stores    storesFactory
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStructureService constructs StructureService.
func NewStructureService(db *sqlx.DB, validate *validator.Validate, logger *zap.Logger) *StructureService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StructureService{db: db, stores: NewStores, validator: validate, logger: logger}
}

// ListAcademicYears returns all academic years.
func (s *StructureService) ListAcademicYears(ctx context.Context) ([]models.AcademicYear, error) {
	years, err := s.stores(s.db).Structure.ListAcademicYears(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic years")
	}
	return years, nil
}

// CreateAcademicYear registers an academic year.
func (s *StructureService) CreateAcademicYear(ctx context.Context, req CreateAcademicYearRequest) (*models.AcademicYear, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic year payload")
	}
	year := &models.AcademicYear{
		Name:      req.Name,
		StartDate: mustDate(req.StartDate),
		EndDate:   mustDate(req.EndDate),
	}
	if !year.EndDate.After(year.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must follow start date")
	}
	if err := s.stores(s.db).Structure.CreateAcademicYear(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create academic year")
	}
	return year, nil
}

// ListSemesters returns the semesters of an academic year.
func (s *StructureService) ListSemesters(ctx context.Context, academicYearID string) ([]models.Semester, error) {
	semesters, err := s.stores(s.db).Structure.ListSemesters(ctx, academicYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semesters")
	}
	return semesters, nil
}

// CreateSemester adds a semester to an academic year.
func (s *StructureService) CreateSemester(ctx context.Context, req CreateSemesterRequest) (*models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester payload")
	}
	base := s.stores(s.db)
	years, err := base.Structure.ListAcademicYears(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check academic year")
	}
	found := false
	for _, y := range years {
		if y.ID == req.AcademicYearID {
			found = true
			break
		}
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
	}
	semester := &models.Semester{
		AcademicYearID: req.AcademicYearID,
		Name:           req.Name,
		Number:         req.Number,
		StartDate:      mustDate(req.StartDate),
		EndDate:        mustDate(req.EndDate),
	}
	if err := base.Structure.CreateSemester(ctx, semester); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create semester")
	}
	return semester, nil
}

// ListSubjects returns all subjects.
func (s *StructureService) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	subjects, err := s.stores(s.db).Structure.ListSubjects(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// CreateSubject registers a subject.
func (s *StructureService) CreateSubject(ctx context.Context, req CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	subject := &models.Subject{
		Code:    req.Code,
		Name:    req.Name,
		Credits: req.Credits,
		Notes:   req.Notes,
	}
	if err := s.stores(s.db).Structure.CreateSubject(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	return subject, nil
}

// ListGroups returns all study groups.
func (s *StructureService) ListGroups(ctx context.Context) ([]models.Group, error) {
	groups, err := s.stores(s.db).Structure.ListGroups(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
	}
	return groups, nil
}

// CreateGroup registers a study group.
func (s *StructureService) CreateGroup(ctx context.Context, req CreateGroupRequest) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}
	group := &models.Group{Name: req.Name, Year: req.Year}
	if err := s.stores(s.db).Structure.CreateGroup(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create group")
	}
	return group, nil
}

// mustDate parses a date already checked by the datetime validator tag.
func mustDate(value string) time.Time {
	t, _ := time.Parse("2006-01-02", value)
	return t
}
