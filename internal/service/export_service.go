package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/uniplex/academic-api/internal/models"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
	"github.com/uniplex/academic-api/pkg/export"
	"github.com/uniplex/academic-api/pkg/storage"
)

// ExportService renders grade sheets and performance summaries into CSV
// or PDF documents stored on disk.
type ExportService struct {
	db      *sqlx.DB
	stores  storesFactory
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	storage *storage.LocalStorage
	signer  *storage.DownloadSigner
	metrics *MetricsService
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(db *sqlx.DB, store *storage.LocalStorage, signer *storage.DownloadSigner, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		db:      db,
		stores:  NewStores,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		storage: store,
		signer:  signer,
		metrics: metrics,
		logger:  logger,
	}
}

// ExportSheet renders a sheet roster with its grades.
func (s *ExportService) ExportSheet(ctx context.Context, sheetID string, format models.ExportFormat) (*models.GradeExportResult, error) {
	started := time.Now()
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

	headers := []string{"Student", "Code", "Grade", "Points", "Status"}
	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		student, err := base.Students.GetByID(ctx, item.StudentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		row := map[string]string{"Status": string(item.Status)}
		if student != nil {
			row["Student"] = student.FullName
			row["Code"] = student.StudentCode
		}
		if item.GradeValueID != nil {
			value, err := base.Vocabulary.GetValue(ctx, *item.GradeValueID)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade value")
			}
			if value != nil {
				row["Grade"] = value.Value
			}
		}
		if item.Points != nil {
			row["Points"] = fmt.Sprintf("%.1f", *item.Points)
		}
		rows = append(rows, row)
	}

	title := fmt.Sprintf("Grade sheet %s", sheet.Number)
	fileName := fmt.Sprintf("sheets/%s-%s.%s", sheet.Number, time.Now().UTC().Format("20060102150405"), format)
	result, err := s.render(export.Dataset{Headers: headers, Rows: rows}, title, fileName, format)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveExport(time.Since(started))
	s.logger.Info("sheet exported",
		zap.String("sheet_id", sheetID),
		zap.String("file", result.FileName))
	return result, nil
}

// ExportStudentSummary renders a student's performance summaries across
// periods.
func (s *ExportService) ExportStudentSummary(ctx context.Context, studentID string, format models.ExportFormat) (*models.GradeExportResult, error) {
	started := time.Now()
	base := s.stores(s.db)
	student, err := base.Students.GetByID(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	summaries, err := base.Summaries.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load summaries")
	}

	headers := []string{"Period", "Subjects", "GPA", "Excellent", "Good", "Satisfactory", "Failed", "Credits", "Attendance"}
	rows := make([]map[string]string, 0, len(summaries))
	for _, summary := range summaries {
		period := string(summary.PeriodType)
		if summary.SemesterID != nil {
			semester, err := base.Structure.GetSemester(ctx, *summary.SemesterID)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
			}
			if semester != nil {
				period = semester.Name
			}
		}
		rows = append(rows, map[string]string{
			"Period":       period,
			"Subjects":     fmt.Sprintf("%d", summary.TotalSubjects),
			"GPA":          fmt.Sprintf("%.2f", summary.GPA),
			"Excellent":    fmt.Sprintf("%d", summary.ExcellentCount),
			"Good":         fmt.Sprintf("%d", summary.GoodCount),
			"Satisfactory": fmt.Sprintf("%d", summary.SatisfactoryCount),
			"Failed":       fmt.Sprintf("%d", summary.FailedCount),
			"Credits":      fmt.Sprintf("%d/%d", summary.EarnedCredits, summary.TotalCredits),
			"Attendance":   fmt.Sprintf("%.1f%%", summary.AttendancePercentage),
		})
	}

	title := fmt.Sprintf("Academic performance - %s", student.FullName)
	fileName := fmt.Sprintf("summaries/%s-%s.%s", student.StudentCode, time.Now().UTC().Format("20060102150405"), format)
	result, err := s.render(export.Dataset{Headers: headers, Rows: rows}, title, fileName, format)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveExport(time.Since(started))
	s.logger.Info("student summary exported",
		zap.String("student_id", studentID),
		zap.String("file", result.FileName))
	return result, nil
}

// Open validates a download token and returns the export file it
// references.
func (s *ExportService) Open(token string) (*models.GradeExportResult, []byte, error) {
	fileName, err := s.signer.Verify(token)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	file, err := s.storage.Open(fileName)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "export file not found")
	}
	defer file.Close() //nolint:errcheck
	info, err := file.Stat()
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file")
	}
	data := make([]byte, info.Size())
	if _, err := file.Read(data); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export file")
	}
	return &models.GradeExportResult{
		FileName:    fileName,
		ContentType: contentTypeForName(fileName),
		Size:        info.Size(),
		Path:        s.storage.Path(fileName),
	}, data, nil
}

// Cleanup removes export files older than the TTL.
func (s *ExportService) Cleanup(ttl time.Duration) (int, error) {
	deleted, err := s.storage.CleanupOlderThan(ttl)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clean up exports")
	}
	if len(deleted) > 0 {
		s.logger.Info("stale exports removed", zap.Int("count", len(deleted)))
	}
	return len(deleted), nil
}

func (s *ExportService) render(data export.Dataset, title, fileName string, format models.ExportFormat) (*models.GradeExportResult, error) {
	var payload []byte
	var contentType string
	var err error
	switch format {
	case models.ExportCSV:
		payload, err = s.csv.Render(data)
		contentType = "text/csv"
	case models.ExportPDF:
		payload, err = s.pdf.Render(data, title)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	saved, err := s.storage.Save(fileName, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Sign(saved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}
	return &models.GradeExportResult{
		FileName:      saved,
		ContentType:   contentType,
		Size:          int64(len(payload)),
		Path:          s.storage.Path(saved),
		DownloadToken: token,
		ExpiresAt:     &expiresAt,
	}, nil
}

func contentTypeForName(fileName string) string {
	if len(fileName) > 4 && fileName[len(fileName)-4:] == ".pdf" {
		return "application/pdf"
	}
	return "text/csv"
}
