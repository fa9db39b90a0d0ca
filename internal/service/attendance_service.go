package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/uniplex/academic-api/internal/models"
	"github.com/uniplex/academic-api/internal/repository"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
)

// MarkAttendanceItem is one student's mark within a bulk payload.
type MarkAttendanceItem struct {
	StudentID   string                  `json:"student_id" validate:"required"`
	Status      models.AttendanceStatus `json:"status" validate:"required"`
	LateMinutes *int                    `json:"late_minutes"`
	Reason      *string                 `json:"reason"`
}

// MarkAttendanceRequest records marks for a whole class at once.
type MarkAttendanceRequest struct {
	ClassID  string               `json:"class_id" validate:"required"`
	MarkedBy string               `json:"marked_by" validate:"required"`
	Items    []MarkAttendanceItem `json:"items" validate:"required,min=1,dive"`
}

// StudentAttendanceStats summarises a student's presence in a semester.
type StudentAttendanceStats struct {
	StudentID            string              `json:"student_id"`
	SemesterID           string              `json:"semester_id"`
	TotalClasses         int                 `json:"total_classes"`
	AttendedClasses      int                 `json:"attended_classes"`
	AttendancePercentage float64             `json:"attendance_percentage"`
	Marks                []models.Attendance `json:"marks"`
}

// AttendanceService records class attendance and keeps the per-class
// journal status current.
type AttendanceService struct {
	db        *sqlx.DB
	stores    storesFactory
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs AttendanceService.
func NewAttendanceService(db *sqlx.DB, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{db: db, stores: NewStores, validator: validate, logger: logger}
}

// Mark records marks for a class in one transaction and updates the class
// journal. Classes that are not linked to a semester cannot be marked.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	for _, item := range req.Items {
		if !item.Status.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
		}
	}
	err := repository.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		st := s.stores(tx)
		class, err := st.Structure.GetClass(ctx, req.ClassID)
		if err != nil {
			return err
		}
		if class == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		if class.SemesterID == nil {
			return appErrors.ErrSemesterMissing
		}
		markedBy := req.MarkedBy
		for _, item := range req.Items {
			mark := &models.Attendance{
				StudentID:   item.StudentID,
				ClassID:     req.ClassID,
				Status:      item.Status,
				LateMinutes: item.LateMinutes,
				Reason:      item.Reason,
				MarkedBy:    &markedBy,
			}
			if err := st.Attendance.Upsert(ctx, mark); err != nil {
				return err
			}
		}
		roster, err := st.Students.ListByGroup(ctx, class.GroupID)
		if err != nil {
			return err
		}
		marks, err := st.Attendance.ListForClass(ctx, req.ClassID)
		if err != nil {
			return err
		}
		status := models.AttendanceSheetPartiallyFilled
		if len(marks) >= len(roster) {
			status = models.AttendanceSheetFilled
		}
		if err := st.Attendance.UpsertSheet(ctx, &models.AttendanceSheet{
			ClassID:  req.ClassID,
			FilledBy: &markedBy,
			Status:   status,
		}); err != nil {
			return err
		}
		// Attendance feeds the performance summary, so every marked
		// student gets a fresh fold before commit.
		for _, item := range req.Items {
			if err := recomputeSummary(ctx, st, item.StudentID, *class.SemesterID); err != nil {
				return err
			}
		}
		return nil
	})
	return appErrors.FromError(err)
}

// ClassJournal returns the marks and journal status of a class.
func (s *AttendanceService) ClassJournal(ctx context.Context, classID string) (*models.AttendanceSheet, []models.Attendance, error) {
	base := s.stores(s.db)
	sheet, err := base.Attendance.GetSheet(ctx, classID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load journal")
	}
	if sheet == nil {
		sheet = &models.AttendanceSheet{ClassID: classID, Status: models.AttendanceSheetNotFilled}
	}
	marks, err := base.Attendance.ListForClass(ctx, classID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load marks")
	}
	return sheet, marks, nil
}

// StudentStats returns a student's semester attendance.
func (s *AttendanceService) StudentStats(ctx context.Context, studentID, semesterID string) (*StudentAttendanceStats, error) {
	base := s.stores(s.db)
	totals, err := base.Attendance.Totals(ctx, studentID, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance totals")
	}
	marks, err := base.Attendance.ListForStudent(ctx, studentID, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance marks")
	}
	stats := &StudentAttendanceStats{
		StudentID:       studentID,
		SemesterID:      semesterID,
		TotalClasses:    totals.TotalClasses,
		AttendedClasses: totals.AttendedClasses,
		Marks:           marks,
	}
	if totals.TotalClasses > 0 {
		stats.AttendancePercentage = round2(float64(totals.AttendedClasses) / float64(totals.TotalClasses) * 100)
	}
	return stats, nil
}

// VerifyJournal marks a class journal as checked by a methodist.
func (s *AttendanceService) VerifyJournal(ctx context.Context, classID string, verifiedBy string) error {
	base := s.stores(s.db)
	sheet, err := base.Attendance.GetSheet(ctx, classID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load journal")
	}
	if sheet == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "journal not found")
	}
	if sheet.Status != models.AttendanceSheetFilled {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "journal is not fully filled")
	}
	sheet.Status = models.AttendanceSheetVerified
	sheet.FilledBy = &verifiedBy
	if err := base.Attendance.UpsertSheet(ctx, sheet); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update journal")
	}
	return nil
}
