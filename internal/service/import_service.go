package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/uniplex/academic-api/internal/models"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
	"github.com/uniplex/academic-api/pkg/jobs"
)

type importRepo interface {
	Create(ctx context.Context, imp *models.GradeImport) error
	GetByID(ctx context.Context, id string) (*models.GradeImport, error)
	SetProcessing(ctx context.Context, id string) error
	Finish(ctx context.Context, imp *models.GradeImport) error
	List(ctx context.Context, page, pageSize int) ([]models.GradeImport, int, error)
}

type itemSaver interface {
	SaveItem(ctx context.Context, req SaveItemRequest) (*models.GradeSheetItem, error)
}

// importPayload travels through the job queue with the parsed rows.
type importPayload struct {
	ImportID   string
	SheetID    string
	Rows       []models.GradeImportRow
	UploadedBy string
}

// ImportService ingests grade files and replays them through the grading
// pipeline row by row on a background worker.
type ImportService struct {
	db        *sqlx.DB
	stores    storesFactory
	imports   importRepo
	gradebook itemSaver
	queue     *jobs.Queue
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewImportService constructs an ImportService. Start must be called
// before uploads are accepted.
func NewImportService(db *sqlx.DB, imports importRepo, gradebook itemSaver, metrics *MetricsService, logger *zap.Logger, queueCfg jobs.QueueConfig) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ImportService{
		db:        db,
		stores:    NewStores,
		imports:   imports,
		gradebook: gradebook,
		metrics:   metrics,
		logger:    logger,
	}
	if queueCfg.Logger == nil {
		queueCfg.Logger = logger
	}
	s.queue = jobs.NewQueue("grade-imports", s.process, queueCfg)
	return s
}

// Start launches the background workers.
func (s *ImportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *ImportService) Stop() {
	s.queue.Stop()
}

// Upload parses an uploaded grade file, records the import and queues it
// for processing against the target sheet.
func (s *ImportService) Upload(ctx context.Context, fileName, sheetID string, uploadedBy string, reader io.Reader) (*models.GradeImport, error) {
	sheet, err := s.stores(s.db).Sheets.GetByID(ctx, sheetID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sheet")
	}
	if sheet == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "grade sheet not found")
	}
	if sheet.Status == models.SheetStatusArchived || sheet.Status == models.SheetStatusApproved {
		return nil, appErrors.ErrSheetArchived
	}

	rows, err := parseImportRows(reader)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to parse import file")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "import file contains no rows")
	}

	imp := &models.GradeImport{
		FileName:     fileName,
		GradeSheetID: &sheetID,
		Status:       models.ImportPending,
		TotalRows:    len(rows),
		UploadedBy:   &uploadedBy,
	}
	if err := s.imports.Create(ctx, imp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record import")
	}

	err = s.queue.Enqueue(jobs.Job{
		ID:   uuid.NewString(),
		Type: "grade-import",
		Payload: importPayload{
			ImportID:   imp.ID,
			SheetID:    sheetID,
			Rows:       rows,
			UploadedBy: uploadedBy,
		},
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue import")
	}

	s.logger.Info("grade import queued",
		zap.String("import_id", imp.ID),
		zap.String("sheet_id", sheetID),
		zap.Int("rows", len(rows)))
	return imp, nil
}

// Get returns one import with its outcome.
func (s *ImportService) Get(ctx context.Context, id string) (*models.GradeImport, error) {
	imp, err := s.imports.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load import")
	}
	if imp == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "import not found")
	}
	return imp, nil
}

// List returns imports, newest first.
func (s *ImportService) List(ctx context.Context, page, pageSize int) ([]models.GradeImport, int, error) {
	imports, total, err := s.imports.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list imports")
	}
	return imports, total, nil
}

// process is the queue handler: each row resolves to a sheet item save,
// which runs the full propagation chain.
func (s *ImportService) process(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(importPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	if err := s.imports.SetProcessing(ctx, payload.ImportID); err != nil {
		return err
	}

	base := s.stores(s.db)
	sheet, err := base.Sheets.GetByID(ctx, payload.SheetID)
	if err != nil {
		return err
	}
	if sheet == nil {
		return s.finish(ctx, payload, 0, len(payload.Rows), "grade sheet no longer exists")
	}

	items, err := base.Sheets.ListItems(ctx, payload.SheetID)
	if err != nil {
		return err
	}
	itemByStudent := make(map[string]*models.GradeSheetItem, len(items))
	for i := range items {
		itemByStudent[items[i].StudentID] = &items[i]
	}

	var imported, failed int
	var errLines []string
	for _, row := range payload.Rows {
		if err := s.importRow(ctx, base, sheet, itemByStudent, row, payload.UploadedBy); err != nil {
			failed++
			s.metrics.RecordImportRow(false)
			errLines = append(errLines, fmt.Sprintf("row %d: %v", row.RowNumber, err))
			continue
		}
		imported++
		s.metrics.RecordImportRow(true)
	}

	return s.finish(ctx, payload, imported, failed, strings.Join(errLines, "\n"))
}

func (s *ImportService) importRow(ctx context.Context, base Stores, sheet *models.GradeSheet, itemByStudent map[string]*models.GradeSheetItem, row models.GradeImportRow, uploadedBy string) error {
	student, err := base.Students.GetByCode(ctx, row.StudentCode)
	if err != nil {
		return err
	}
	if student == nil {
		return fmt.Errorf("unknown student code %q", row.StudentCode)
	}
	item, ok := itemByStudent[student.ID]
	if !ok {
		return fmt.Errorf("student %q is not on the sheet", row.StudentCode)
	}
	value, err := base.Vocabulary.ValueByLabel(ctx, sheet.GradeSystemID, row.ValueLabel)
	if err != nil {
		return err
	}
	if value == nil {
		return fmt.Errorf("unknown grade value %q", row.ValueLabel)
	}
	_, err = s.gradebook.SaveItem(ctx, SaveItemRequest{
		ItemID:       item.ID,
		GradeValueID: value.ID,
		Points:       row.Points,
		Comments:     row.Comments,
		GradedBy:     uploadedBy,
	})
	return err
}

func (s *ImportService) finish(ctx context.Context, payload importPayload, imported, failed int, errorLog string) error {
	imp, err := s.imports.GetByID(ctx, payload.ImportID)
	if err != nil {
		return err
	}
	if imp == nil {
		return fmt.Errorf("import %s disappeared", payload.ImportID)
	}
	imp.Status = models.ImportCompleted
	if imported == 0 && failed > 0 {
		imp.Status = models.ImportFailed
	}
	imp.TotalRows = len(payload.Rows)
	imp.ImportedRows = imported
	imp.FailedRows = failed
	if errorLog != "" {
		imp.ErrorLog = &errorLog
	}
	if err := s.imports.Finish(ctx, imp); err != nil {
		return err
	}
	s.logger.Info("grade import finished",
		zap.String("import_id", imp.ID),
		zap.Int("imported", imported),
		zap.Int("failed", failed))
	return nil
}

// parseImportRows reads a CSV file with a header of
// student_code,grade,points,comments. Points and comments are optional.
func parseImportRows(reader io.Reader) ([]models.GradeImportRow, error) {
	cr := csv.NewReader(reader)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	codeIdx, ok := col["student_code"]
	if !ok {
		return nil, fmt.Errorf("missing student_code column")
	}
	gradeIdx, ok := col["grade"]
	if !ok {
		return nil, fmt.Errorf("missing grade column")
	}

	var rows []models.GradeImportRow
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		row := models.GradeImportRow{
			RowNumber:   line,
			StudentCode: strings.TrimSpace(record[codeIdx]),
			ValueLabel:  strings.TrimSpace(record[gradeIdx]),
		}
		if row.StudentCode == "" || row.ValueLabel == "" {
			return nil, fmt.Errorf("line %d: student_code and grade are required", line)
		}
		if idx, ok := col["points"]; ok && idx < len(record) && strings.TrimSpace(record[idx]) != "" {
			points, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid points: %w", line, err)
			}
			row.Points = &points
		}
		if idx, ok := col["comments"]; ok && idx < len(record) && strings.TrimSpace(record[idx]) != "" {
			comments := strings.TrimSpace(record[idx])
			row.Comments = &comments
		}
		rows = append(rows, row)
	}
	return rows, nil
}
