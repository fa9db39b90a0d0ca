package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/uniplex/academic-api/internal/models"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
)

// RecordBook pairs a record book with its entries.
type RecordBook struct {
	Record  models.StudentRecord `json:"record"`
	Entries []models.RecordEntry `json:"entries"`
}

// RecordService manages student record books.
type RecordService struct {
	db     *sqlx.DB
	stores storesFactory
	logger *zap.Logger
}

// NewRecordService constructs RecordService.
func NewRecordService(db *sqlx.DB, logger *zap.Logger) *RecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordService{db: db, stores: NewStores, logger: logger}
}

// Get returns a student's record book with entries, creating the book on
// first access.
func (s *RecordService) Get(ctx context.Context, studentID string) (*RecordBook, error) {
	base := s.stores(s.db)
	student, err := base.Students.GetByID(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	record, err := ensureRecord(ctx, base, studentID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	entries, err := base.Records.ListEntries(ctx, record.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list record entries")
	}
	return &RecordBook{Record: *record, Entries: entries}, nil
}

// Close terminates a record book with the given terminal status.
func (s *RecordService) Close(ctx context.Context, studentID string, status models.RecordStatus) error {
	if status != models.RecordArchived && status != models.RecordLost && status != models.RecordClosed {
		return appErrors.Clone(appErrors.ErrValidation, "status is not terminal")
	}
	base := s.stores(s.db)
	record, err := base.Records.GetByStudent(ctx, studentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record")
	}
	if record == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "record not found")
	}
	now := time.Now().UTC()
	if err := base.Records.SetStatus(ctx, record.ID, status, &now); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close record")
	}
	return nil
}

// ensureRecord returns the student's record book, creating an active one
// with a generated number when missing.
func ensureRecord(ctx context.Context, st Stores, studentID string) (*models.StudentRecord, error) {
	record, err := st.Records.GetByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}
	student, err := st.Students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	number := ""
	if student != nil {
		number = fmt.Sprintf("RB-%s", student.StudentCode)
	} else {
		number = fmt.Sprintf("RB-%d", time.Now().UnixNano()%1000000)
	}
	record = &models.StudentRecord{
		StudentID:    studentID,
		RecordNumber: number,
		IssueDate:    time.Now().UTC(),
		Status:       models.RecordActive,
	}
	if err := st.Records.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}
