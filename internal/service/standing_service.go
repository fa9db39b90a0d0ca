package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/uniplex/academic-api/internal/models"
	"github.com/uniplex/academic-api/internal/repository"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
)

// manualStandingStatuses are set by deanery staff and never overridden by
// automatic derivation.
var manualStandingStatuses = map[models.StandingStatus]bool{
	models.StandingAcademicLeave: true,
	models.StandingExpulsion:     true,
	models.StandingReinstated:    true,
	models.StandingGraduated:     true,
	models.StandingTransferred:   true,
}

// CreateDebtRequest registers an academic debt.
type CreateDebtRequest struct {
	StudentID        string          `json:"student_id" validate:"required"`
	SubjectID        string          `json:"subject_id" validate:"required"`
	SemesterID       string          `json:"semester_id" validate:"required"`
	DebtType         models.DebtType `json:"debt_type" validate:"required,oneof=exam credit course_work practice attendance other"`
	Description      *string         `json:"description"`
	Deadline         time.Time       `json:"deadline" validate:"required"`
	GradeSheetItemID *string         `json:"grade_sheet_item_id"`
	CreatedBy        *string         `json:"created_by"`
}

// IssueRetakeRequest authorises another examination attempt.
type IssueRetakeRequest struct {
	StudentID      string    `json:"student_id" validate:"required"`
	AcademicDebtID *string   `json:"academic_debt_id"`
	SubjectID      string    `json:"subject_id" validate:"required"`
	SemesterID     string    `json:"semester_id" validate:"required"`
	ExpirationDate time.Time `json:"expiration_date" validate:"required"`
	GradeSheetID   *string   `json:"grade_sheet_id"`
	CreatedBy      *string   `json:"created_by"`
}

// SetStandingRequest manually places a student into a standing status.
type SetStandingRequest struct {
	StudentID  string                `json:"student_id" validate:"required"`
	Status     models.StandingStatus `json:"status" validate:"required"`
	Reason     *string               `json:"reason"`
	SemesterID *string               `json:"semester_id"`
	ChangedBy  *string               `json:"changed_by"`
}

// StandingService manages academic standings, debts and retake permissions.
type StandingService struct {
	db        *sqlx.DB
	stores    storesFactory
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStandingService constructs StandingService.
func NewStandingService(db *sqlx.DB, validate *validator.Validate, logger *zap.Logger) *StandingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StandingService{db: db, stores: NewStores, validator: validate, logger: logger}
}

// Current returns the student's open standing, defaulting to good when no
// interval was opened yet.
func (s *StandingService) Current(ctx context.Context, studentID string) (*models.AcademicStanding, error) {
	standing, err := s.stores(s.db).Standings.OpenStanding(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load standing")
	}
	if standing == nil {
		return &models.AcademicStanding{StudentID: studentID, Status: models.StandingGood}, nil
	}
	return standing, nil
}

// History returns all standing intervals of a student.
func (s *StandingService) History(ctx context.Context, studentID string) ([]models.AcademicStanding, error) {
	standings, err := s.stores(s.db).Standings.StandingHistory(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list standings")
	}
	return standings, nil
}

// SetStanding manually opens a standing interval, closing the previous one.
func (s *StandingService) SetStanding(ctx context.Context, req SetStandingRequest) (*models.AcademicStanding, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid standing payload")
	}
	var created *models.AcademicStanding
	err := repository.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		st := s.stores(tx)
		now := time.Now().UTC()
		open, err := st.Standings.OpenStanding(ctx, req.StudentID)
		if err != nil {
			return err
		}
		if open != nil {
			if open.Status == req.Status {
				created = open
				return nil
			}
			if err := st.Standings.CloseStanding(ctx, open.ID, now); err != nil {
				return err
			}
		}
		standing := &models.AcademicStanding{
			StudentID:  req.StudentID,
			Status:     req.Status,
			StartDate:  now,
			Reason:     req.Reason,
			SemesterID: req.SemesterID,
			ChangedBy:  req.ChangedBy,
		}
		if err := st.Standings.CreateStanding(ctx, standing); err != nil {
			return err
		}
		created = standing
		return nil
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return created, nil
}

// Reevaluate re-derives the student's standing from the outstanding debt
// count.
func (s *StandingService) Reevaluate(ctx context.Context, studentID string, actorID *string) (*models.AcademicStanding, error) {
	err := repository.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return reviseStanding(ctx, s.stores(tx), studentID, nil, actorID)
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return s.Current(ctx, studentID)
}

// CreateDebt registers a debt and re-derives the standing in the same
// transaction.
func (s *StandingService) CreateDebt(ctx context.Context, req CreateDebtRequest) (*models.AcademicDebt, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid debt payload")
	}
	debt := &models.AcademicDebt{
		StudentID:        req.StudentID,
		SubjectID:        req.SubjectID,
		SemesterID:       req.SemesterID,
		DebtType:         req.DebtType,
		Description:      req.Description,
		Deadline:         req.Deadline,
		Status:           models.DebtStatusActive,
		GradeSheetItemID: req.GradeSheetItemID,
		CreatedBy:        req.CreatedBy,
	}
	err := repository.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		st := s.stores(tx)
		if err := st.Standings.CreateDebt(ctx, debt); err != nil {
			return err
		}
		return reviseStanding(ctx, st, req.StudentID, &req.SemesterID, req.CreatedBy)
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	s.logger.Info("academic debt created",
		zap.String("debt_id", debt.ID),
		zap.String("student_id", debt.StudentID))
	return debt, nil
}

// ListDebts returns a student's debts.
func (s *StandingService) ListDebts(ctx context.Context, studentID string, status *models.DebtStatus) ([]models.AcademicDebt, error) {
	debts, err := s.stores(s.db).Standings.ListDebts(ctx, studentID, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list debts")
	}
	return debts, nil
}

// ExtendDebt grants a new deadline and re-derives the standing.
func (s *StandingService) ExtendDebt(ctx context.Context, debtID string, deadline time.Time, actorID *string) error {
	err := repository.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		st := s.stores(tx)
		debt, err := st.Standings.GetDebt(ctx, debtID)
		if err != nil {
			return err
		}
		if debt == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "debt not found")
		}
		if debt.Status == models.DebtStatusCleared || debt.Status == models.DebtStatusWaived {
			return appErrors.Clone(appErrors.ErrConflict, "debt is already settled")
		}
		if err := st.Standings.ExtendDebt(ctx, debtID, deadline); err != nil {
			return err
		}
		return reviseStanding(ctx, st, debt.StudentID, &debt.SemesterID, actorID)
	})
	return appErrors.FromError(err)
}

// WaiveDebt forgives a debt without a passing grade and re-derives the
// standing.
func (s *StandingService) WaiveDebt(ctx context.Context, debtID string, actorID *string) error {
	err := repository.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		st := s.stores(tx)
		debt, err := st.Standings.GetDebt(ctx, debtID)
		if err != nil {
			return err
		}
		if debt == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "debt not found")
		}
		if debt.Status == models.DebtStatusCleared || debt.Status == models.DebtStatusWaived {
			return appErrors.Clone(appErrors.ErrConflict, "debt is already settled")
		}
		if err := st.Standings.SetDebtStatus(ctx, debtID, models.DebtStatusWaived, nil); err != nil {
			return err
		}
		return reviseStanding(ctx, st, debt.StudentID, &debt.SemesterID, actorID)
	})
	return appErrors.FromError(err)
}

// ExpireDebt marks an overdue debt expired. Expired debts still count
// toward the standing, so no re-derivation is needed beyond consistency.
func (s *StandingService) ExpireDebt(ctx context.Context, debtID string, actorID *string) error {
	err := repository.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		st := s.stores(tx)
		debt, err := st.Standings.GetDebt(ctx, debtID)
		if err != nil {
			return err
		}
		if debt == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "debt not found")
		}
		if debt.Status != models.DebtStatusActive && debt.Status != models.DebtStatusExtended {
			return appErrors.Clone(appErrors.ErrConflict, "only open debts can expire")
		}
		if err := st.Standings.SetDebtStatus(ctx, debtID, models.DebtStatusExpired, nil); err != nil {
			return err
		}
		return reviseStanding(ctx, st, debt.StudentID, &debt.SemesterID, actorID)
	})
	return appErrors.FromError(err)
}

// IssueRetake creates a numbered retake permission for a debt.
func (s *StandingService) IssueRetake(ctx context.Context, req IssueRetakeRequest) (*models.RetakePermission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid retake payload")
	}
	var retake *models.RetakePermission
	err := repository.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		st := s.stores(tx)
		attempt, err := st.Standings.MaxRetakeAttempt(ctx, req.StudentID, req.SubjectID, req.SemesterID)
		if err != nil {
			return err
		}
		retake = &models.RetakePermission{
			StudentID:      req.StudentID,
			AcademicDebtID: req.AcademicDebtID,
			SubjectID:      req.SubjectID,
			SemesterID:     req.SemesterID,
			AttemptNumber:  attempt + 1,
			IssueDate:      time.Now().UTC(),
			ExpirationDate: req.ExpirationDate,
			Status:         models.RetakeIssued,
			GradeSheetID:   req.GradeSheetID,
			CreatedBy:      req.CreatedBy,
		}
		return st.Standings.CreateRetake(ctx, retake)
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return retake, nil
}

// ListRetakes returns a student's retake permissions.
func (s *StandingService) ListRetakes(ctx context.Context, studentID string) ([]models.RetakePermission, error) {
	retakes, err := s.stores(s.db).Standings.ListRetakes(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list retakes")
	}
	return retakes, nil
}

// clearDebts settles the active and extended debts matched by a passing
// grade for (student, subject, semester). cleared_at records the grade
// date, not the processing time.
func clearDebts(ctx context.Context, st Stores, studentID, subjectID, semesterID string, gradeDate time.Time) error {
	debts, err := st.Standings.ClearableDebts(ctx, studentID, subjectID, semesterID)
	if err != nil {
		return err
	}
	for _, debt := range debts {
		clearedAt := gradeDate
		if err := st.Standings.SetDebtStatus(ctx, debt.ID, models.DebtStatusCleared, &clearedAt); err != nil {
			return err
		}
	}
	return nil
}

// reviseStanding derives the standing from the outstanding debt count and
// opens a new interval when it changed. Manually assigned statuses are left
// untouched.
func reviseStanding(ctx context.Context, st Stores, studentID string, semesterID *string, actorID *string) error {
	count, err := st.Standings.CountOutstandingDebts(ctx, studentID)
	if err != nil {
		return err
	}
	want := models.StandingForDebtCount(count)
	open, err := st.Standings.OpenStanding(ctx, studentID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if open != nil {
		if manualStandingStatuses[open.Status] || open.Status == want {
			return nil
		}
		if err := st.Standings.CloseStanding(ctx, open.ID, now); err != nil {
			return err
		}
	}
	return st.Standings.CreateStanding(ctx, &models.AcademicStanding{
		StudentID:  studentID,
		Status:     want,
		StartDate:  now,
		SemesterID: semesterID,
		ChangedBy:  actorID,
	})
}
