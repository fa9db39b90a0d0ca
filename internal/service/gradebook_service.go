package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/uniplex/academic-api/internal/models"
	"github.com/uniplex/academic-api/internal/repository"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
)

// CreateSheetRequest opens a new grade sheet for a group, subject and
// semester. The roster is pinned at creation time.
type CreateSheetRequest struct {
	Number         string           `json:"number"`
	SubjectID      string           `json:"subject_id" validate:"required"`
	GroupID        string           `json:"group_id" validate:"required"`
	SemesterID     string           `json:"semester_id" validate:"required"`
	SheetType      models.SheetType `json:"sheet_type" validate:"required,oneof=exam credit credit_grade course_work practice final"`
	TeacherID      string           `json:"teacher_id" validate:"required"`
	GradeSystemID  string           `json:"grade_system_id" validate:"required"`
	IssueDate      time.Time        `json:"issue_date"`
	ExpirationDate *time.Time       `json:"expiration_date"`
	Comments       *string          `json:"comments"`
	IssuedBy       *string          `json:"issued_by"`
}

// SaveItemRequest grades one student row of a sheet. Either GradeValueID or
// Percentage must identify the value.
type SaveItemRequest struct {
	ItemID       string   `json:"item_id" validate:"required"`
	GradeValueID string   `json:"grade_value_id"`
	Points       *float64 `json:"points"`
	MaxPoints    *float64 `json:"max_points"`
	Percentage   *float64 `json:"percentage"`
	Comments     *string  `json:"comments"`
	GradedBy     string   `json:"graded_by" validate:"required"`
}

// MarkItemRequest records a non-graded item outcome (absent, not allowed).
type MarkItemRequest struct {
	ItemID   string            `json:"item_id" validate:"required"`
	Status   models.ItemStatus `json:"status" validate:"required,oneof=absent not_allowed not_graded"`
	Comments *string           `json:"comments"`
	MarkedBy string            `json:"marked_by" validate:"required"`
}

// UpsertGradeRequest records a grade directly, outside any sheet.
type UpsertGradeRequest struct {
	StudentID     string   `json:"student_id" validate:"required"`
	SubjectID     string   `json:"subject_id" validate:"required"`
	SemesterID    string   `json:"semester_id" validate:"required"`
	GradeTypeCode string   `json:"grade_type_code" validate:"required"`
	GradeSystemID string   `json:"grade_system_id" validate:"required"`
	GradeValueID  string   `json:"grade_value_id"`
	Points        *float64 `json:"points"`
	MaxPoints     *float64 `json:"max_points"`
	Percentage    *float64 `json:"percentage"`
	Comments      *string  `json:"comments"`
	GradedBy      string   `json:"graded_by" validate:"required"`
}

// SheetWithItems pairs a sheet with its roster rows.
type SheetWithItems struct {
	Sheet models.GradeSheet       `json:"sheet"`
	Items []models.GradeSheetItem `json:"items"`
}

// sheetTransitions lists the forward edges of the sheet lifecycle.
var sheetTransitions = map[models.SheetStatus][]models.SheetStatus{
	models.SheetStatusDraft:      {models.SheetStatusIssued},
	models.SheetStatusIssued:     {models.SheetStatusInProgress, models.SheetStatusArchived},
	models.SheetStatusInProgress: {models.SheetStatusCompleted},
	models.SheetStatusCompleted:  {models.SheetStatusVerified, models.SheetStatusInProgress},
	models.SheetStatusVerified:   {models.SheetStatusApproved, models.SheetStatusInProgress},
	models.SheetStatusApproved:   {models.SheetStatusArchived},
}

// GradebookService orchestrates grade sheets and the grade propagation
// chain. Every write that touches more than one table runs in a single
// transaction.
type GradebookService struct {
	db        *sqlx.DB
	stores    storesFactory
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradebookService constructs GradebookService.
func NewGradebookService(db *sqlx.DB, validate *validator.Validate, logger *zap.Logger) *GradebookService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradebookService{db: db, stores: NewStores, validator: validate, logger: logger}
}

// CreateSheet opens a sheet and pins the group roster as not-graded items.
// Students joining the group later do not appear on the sheet.
func (s *GradebookService) CreateSheet(ctx context.Context, req CreateSheetRequest) (*SheetWithItems, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sheet payload")
	}
	base := s.stores(s.db)
	group, err := base.Structure.GetGroup(ctx, req.GroupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	if group == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
	}
	if subject, err := base.Structure.GetSubject(ctx, req.SubjectID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	} else if subject == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}
	if semester, err := base.Structure.GetSemester(ctx, req.SemesterID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	} else if semester == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
	}
	if system, err := base.Vocabulary.GetSystem(ctx, req.GradeSystemID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade system")
	} else if system == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "grade system not found")
	}
	roster, err := base.Students.ListByGroup(ctx, req.GroupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group roster")
	}

	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now().UTC()
	}
	number := req.Number
	if number == "" {
		number = fmt.Sprintf("GS-%s-%d", issueDate.Format("20060102"), time.Now().UnixNano()%100000)
	}
	sheet := &models.GradeSheet{
		Number:         number,
		SubjectID:      req.SubjectID,
		GroupID:        req.GroupID,
		SemesterID:     req.SemesterID,
		SheetType:      req.SheetType,
		TeacherID:      req.TeacherID,
		GradeSystemID:  req.GradeSystemID,
		Status:         models.SheetStatusDraft,
		IssueDate:      issueDate,
		ExpirationDate: req.ExpirationDate,
		Comments:       req.Comments,
		IssuedBy:       req.IssuedBy,
	}
	items := make([]models.GradeSheetItem, 0, len(roster))
	err = repository.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		st := s.stores(tx)
		if err := st.Sheets.Create(ctx, sheet); err != nil {
			return err
		}
		for _, student := range roster {
			items = append(items, models.GradeSheetItem{
				GradeSheetID: sheet.ID,
				StudentID:    student.ID,
				Status:       models.ItemStatusNotGraded,
			})
		}
		return st.Sheets.InsertItems(ctx, items)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade sheet")
	}
	s.logger.Info("grade sheet created",
		zap.String("sheet_id", sheet.ID),
		zap.String("group_id", sheet.GroupID),
		zap.Int("roster_size", len(items)))
	return &SheetWithItems{Sheet: *sheet, Items: items}, nil
}

// GetSheet returns a sheet with its items.
func (s *GradebookService) GetSheet(ctx context.Context, sheetID string) (*SheetWithItems, error) {
	base := s.stores(s.db)
	sheet, err := base.Sheets.GetByID(ctx, sheetID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sheet")
	}
	if sheet == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "grade sheet not found")
	}
	items, err := base.Sheets.ListItems(ctx, sheetID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sheet items")
	}
	return &SheetWithItems{Sheet: *sheet, Items: items}, nil
}

// ListSheets returns sheets matching the filter.
func (s *GradebookService) ListSheets(ctx context.Context, filter models.SheetFilter) ([]models.GradeSheet, int, error) {
	sheets, total, err := s.stores(s.db).Sheets.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sheets")
	}
	return sheets, total, nil
}

// SaveItem grades one sheet item and propagates the result: the canonical
// grade is upserted, the history ledger appended, the performance summary
// recomputed, matching debts cleared and the standing re-derived. All of it
// commits or rolls back together.
func (s *GradebookService) SaveItem(ctx context.Context, req SaveItemRequest) (*models.GradeSheetItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid item payload")
	}
	if req.GradeValueID == "" && req.Percentage == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade value or percentage required")
	}
	var saved *models.GradeSheetItem
	err := repository.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		st := s.stores(tx)
		item, err := st.Sheets.GetItem(ctx, req.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "sheet item not found")
		}
		sheet, err := st.Sheets.GetByID(ctx, item.GradeSheetID)
		if err != nil {
			return err
		}
		if sheet == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "grade sheet not found")
		}
		if sheet.Status == models.SheetStatusArchived || sheet.Status == models.SheetStatusApproved {
			return appErrors.ErrSheetArchived
		}

		value, err := s.resolveValue(ctx, st, sheet.GradeSystemID, req.GradeValueID, req.Percentage)
		if err != nil {
			return err
		}

		gradeType, err := st.Vocabulary.TypeByCode(ctx, models.GradeTypeCodeForSheet(sheet.SheetType))
		if err != nil {
			return err
		}
		if gradeType == nil {
			return appErrors.ErrGradeTypeUnknown
		}

		now := time.Now().UTC()
		gradedBy := req.GradedBy
		item.GradeValueID = &value.ID
		item.Points = req.Points
		item.Percentage = req.Percentage
		item.Status = models.ItemStatusGraded
		item.GradedAt = &now
		item.GradedBy = &gradedBy
		item.Comments = req.Comments
		if err := st.Sheets.UpdateItem(ctx, item); err != nil {
			return err
		}

		if _, err := s.propagate(ctx, st, gradeMutation{
			studentID:     item.StudentID,
			subjectID:     sheet.SubjectID,
			semesterID:    sheet.SemesterID,
			gradeTypeID:   gradeType.ID,
			gradeSystemID: sheet.GradeSystemID,
			value:         value,
			points:        req.Points,
			maxPoints:     req.MaxPoints,
			percentage:    req.Percentage,
			source:        models.SourceManual,
			status:        models.GradeStatusFinal,
			comments:      req.Comments,
			actorID:       &gradedBy,
			sheetItemID:   &item.ID,
			date:          now,
		}); err != nil {
			return err
		}
		saved = item
		return nil
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	s.logger.Info("sheet item graded",
		zap.String("item_id", saved.ID),
		zap.String("student_id", saved.StudentID))
	return saved, nil
}

// MarkItem records a non-graded outcome for an item without touching the
// canonical grade tables.
func (s *GradebookService) MarkItem(ctx context.Context, req MarkItemRequest) (*models.GradeSheetItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid item payload")
	}
	base := s.stores(s.db)
	item, err := base.Sheets.GetItem(ctx, req.ItemID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load item")
	}
	if item == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "sheet item not found")
	}
	sheet, err := base.Sheets.GetByID(ctx, item.GradeSheetID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sheet")
	}
	if sheet == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "grade sheet not found")
	}
	if sheet.Status == models.SheetStatusArchived || sheet.Status == models.SheetStatusApproved {
		return nil, appErrors.ErrSheetArchived
	}
	now := time.Now().UTC()
	markedBy := req.MarkedBy
	item.Status = req.Status
	item.GradeValueID = nil
	item.Points = nil
	item.Percentage = nil
	item.GradedAt = &now
	item.GradedBy = &markedBy
	item.Comments = req.Comments
	if err := base.Sheets.UpdateItem(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update item")
	}
	return item, nil
}

// Transition moves a sheet along its lifecycle. Approval additionally
// materialises record book entries for passing items, inside the same
// transaction as the status change.
func (s *GradebookService) Transition(ctx context.Context, sheetID string, target models.SheetStatus, actorID *string) (*models.GradeSheet, error) {
	base := s.stores(s.db)
	sheet, err := base.Sheets.GetByID(ctx, sheetID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sheet")
	}
	if sheet == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "grade sheet not found")
	}
	if !transitionAllowed(sheet.Status, target) {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot move sheet from %s to %s", sheet.Status, target))
	}
	if target == models.SheetStatusCompleted {
		ungraded, err := base.Sheets.CountUngraded(ctx, sheetID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count ungraded items")
		}
		if ungraded > 0 {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("%d items are still ungraded", ungraded))
		}
	}
	err = repository.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		st := s.stores(tx)
		if err := st.Sheets.SetStatus(ctx, sheetID, target, actorID); err != nil {
			return err
		}
		if target == models.SheetStatusApproved {
			return s.materialiseRecordEntries(ctx, st, sheet, actorID)
		}
		return nil
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	sheet.Status = target
	s.logger.Info("sheet transitioned",
		zap.String("sheet_id", sheetID),
		zap.String("status", string(target)))
	return sheet, nil
}

// UpsertGrade records a grade directly and runs the same propagation chain
// as sheet grading.
func (s *GradebookService) UpsertGrade(ctx context.Context, req UpsertGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if req.GradeValueID == "" && req.Percentage == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade value or percentage required")
	}
	var grade *models.Grade
	err := repository.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		st := s.stores(tx)
		gradeType, err := st.Vocabulary.TypeByCode(ctx, req.GradeTypeCode)
		if err != nil {
			return err
		}
		if gradeType == nil {
			return appErrors.ErrGradeTypeUnknown
		}
		value, err := s.resolveValue(ctx, st, req.GradeSystemID, req.GradeValueID, req.Percentage)
		if err != nil {
			return err
		}
		gradedBy := req.GradedBy
		g, err := s.propagate(ctx, st, gradeMutation{
			studentID:     req.StudentID,
			subjectID:     req.SubjectID,
			semesterID:    req.SemesterID,
			gradeTypeID:   gradeType.ID,
			gradeSystemID: req.GradeSystemID,
			value:         value,
			points:        req.Points,
			maxPoints:     req.MaxPoints,
			percentage:    req.Percentage,
			source:        models.SourceManual,
			status:        models.GradeStatusFinal,
			comments:      req.Comments,
			actorID:       &gradedBy,
			date:          time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		grade = g
		return nil
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return grade, nil
}

// AnnulGrade voids a grade: the status flips to annulled, the ledger gets a
// delete entry and the summary and standing are re-derived.
func (s *GradebookService) AnnulGrade(ctx context.Context, gradeID string, actorID *string, reason *string) error {
	err := repository.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		st := s.stores(tx)
		grade, err := st.Grades.GetByID(ctx, gradeID)
		if err != nil {
			return err
		}
		if grade == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		if grade.Status == models.GradeStatusAnnulled {
			return appErrors.ErrGradeAnnulled
		}
		if err := st.Grades.SetStatus(ctx, gradeID, models.GradeStatusAnnulled); err != nil {
			return err
		}
		previous := grade.GradeValueID
		if err := st.History.Append(ctx, &models.GradeHistory{
			StudentID:       grade.StudentID,
			SubjectID:       grade.SubjectID,
			SemesterID:      grade.SemesterID,
			PreviousValueID: &previous,
			ChangedBy:       actorID,
			ChangeType:      models.ChangeTypeDelete,
			Comments:        reason,
		}); err != nil {
			return err
		}
		if err := recomputeSummary(ctx, st, grade.StudentID, grade.SemesterID); err != nil {
			return err
		}
		return reviseStanding(ctx, st, grade.StudentID, &grade.SemesterID, actorID)
	})
	return appErrors.FromError(err)
}

// ListGrades returns canonical grades with pagination.
func (s *GradebookService) ListGrades(ctx context.Context, filter models.GradeFilter) ([]models.Grade, int, error) {
	grades, total, err := s.stores(s.db).Grades.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, total, nil
}

// GradeHistory returns ledger rows for a scope.
func (s *GradebookService) GradeHistory(ctx context.Context, filter models.HistoryFilter) ([]models.GradeHistory, int, error) {
	entries, total, err := s.stores(s.db).History.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grade history")
	}
	return entries, total, nil
}

// gradeMutation carries one resolved grade change through the propagation
// chain.
type gradeMutation struct {
	studentID     string
	subjectID     string
	semesterID    string
	gradeTypeID   string
	gradeSystemID string
	value         *models.GradeValue
	points        *float64
	maxPoints     *float64
	percentage    *float64
	source        models.GradeSource
	status        models.GradeStatus
	comments      *string
	actorID       *string
	sheetItemID   *string
	date          time.Time
}

func (s *GradebookService) propagate(ctx context.Context, st Stores, m gradeMutation) (*models.Grade, error) {
	grade := &models.Grade{
		StudentID:     m.studentID,
		SubjectID:     m.subjectID,
		SemesterID:    m.semesterID,
		GradeTypeID:   m.gradeTypeID,
		GradeSystemID: m.gradeSystemID,
		GradeValueID:  m.value.ID,
		Points:        m.points,
		MaxPoints:     m.maxPoints,
		Percentage:    m.percentage,
		Source:        m.source,
		Status:        m.status,
		Comments:      m.comments,
		Date:          m.date,
		GradedBy:      m.actorID,
	}
	previous, err := st.Grades.Upsert(ctx, grade)
	if err != nil {
		return nil, err
	}
	grade.ValueLabel = m.value.Value
	grade.NumericValue = m.value.NumericValue
	grade.IsPassing = m.value.IsPassing

	// Resaving the same value is a plain save: no ledger entry and the
	// derived rows already reflect it.
	if previous != nil && previous.GradeValueID == m.value.ID {
		return grade, nil
	}

	entry := &models.GradeHistory{
		StudentID:        m.studentID,
		SubjectID:        m.subjectID,
		SemesterID:       m.semesterID,
		GradeSheetItemID: m.sheetItemID,
		NewValueID:       &m.value.ID,
		ChangedBy:        m.actorID,
		ChangeType:       models.ChangeTypeCreate,
		Comments:         m.comments,
	}
	if previous != nil {
		entry.ChangeType = models.ChangeTypeUpdate
		prev := previous.GradeValueID
		entry.PreviousValueID = &prev
	}
	if err := st.History.Append(ctx, entry); err != nil {
		return nil, err
	}

	if err := recomputeSummary(ctx, st, m.studentID, m.semesterID); err != nil {
		return nil, err
	}
	if m.value.IsPassing {
		if err := clearDebts(ctx, st, m.studentID, m.subjectID, m.semesterID, m.date); err != nil {
			return nil, err
		}
	}
	if err := reviseStanding(ctx, st, m.studentID, &m.semesterID, m.actorID); err != nil {
		return nil, err
	}
	return grade, nil
}

// resolveValue picks the grade value by explicit ID or by percentage band.
func (s *GradebookService) resolveValue(ctx context.Context, st Stores, systemID, valueID string, percentage *float64) (*models.GradeValue, error) {
	if valueID != "" {
		value, err := st.Vocabulary.GetValue(ctx, valueID)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade value not found")
		}
		if value.GradeSystemID != systemID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "grade value belongs to a different system")
		}
		return value, nil
	}
	value, err := st.Vocabulary.ValueForPercent(ctx, systemID, *percentage)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no grade value matches the percentage")
	}
	return value, nil
}

func (s *GradebookService) materialiseRecordEntries(ctx context.Context, st Stores, sheet *models.GradeSheet, actorID *string) error {
	items, err := st.Sheets.ListItems(ctx, sheet.ID)
	if err != nil {
		return err
	}
	entryType := models.EntryTypeForSheet(sheet.SheetType)
	subject, err := st.Structure.GetSubject(ctx, sheet.SubjectID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for i := range items {
		item := &items[i]
		if item.Status != models.ItemStatusGraded || item.GradeValueID == nil {
			continue
		}
		value, err := st.Vocabulary.GetValue(ctx, *item.GradeValueID)
		if err != nil {
			return err
		}
		if value == nil || !value.IsPassing {
			continue
		}
		record, err := ensureRecord(ctx, st, item.StudentID)
		if err != nil {
			return err
		}
		entry := &models.RecordEntry{
			RecordID:         record.ID,
			SubjectID:        sheet.SubjectID,
			SemesterID:       sheet.SemesterID,
			EntryType:        entryType,
			GradeSystemID:    sheet.GradeSystemID,
			GradeValueID:     value.ID,
			GradeSheetItemID: &item.ID,
			Date:             now,
			RecordedBy:       actorID,
		}
		if subject != nil {
			entry.Credits = subject.Credits
		}
		if err := st.Records.UpsertEntry(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func transitionAllowed(from, to models.SheetStatus) bool {
	for _, next := range sheetTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
