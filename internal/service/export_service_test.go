package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniplex/academic-api/internal/models"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
	"github.com/uniplex/academic-api/pkg/storage"
)

func newExportFixture(t *testing.T) (*ExportService, *memStores) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewDownloadSigner("export-secret", time.Hour)
	ms := newMemStores()
	seedGradebook(ms)
	svc := NewExportService(nil, store, signer, nil, zap.NewNop())
	svc.stores = ms.factory()
	return svc, ms
}

func TestExportSheetCSVRoundTrip(t *testing.T) {
	svc, ms := newExportFixture(t)
	item := ms.sheets.items["item-1"]
	item.GradeValueID = strPtr("val-5")
	item.Points = f64Ptr(95)
	item.Status = models.ItemStatusGraded

	result, err := svc.ExportSheet(context.Background(), "sheet-1", models.ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.NotEmpty(t, result.DownloadToken)
	require.NotNil(t, result.ExpiresAt)
	assert.True(t, result.ExpiresAt.After(time.Now()))

	opened, data, err := svc.Open(result.DownloadToken)
	require.NoError(t, err)
	assert.Equal(t, result.FileName, opened.FileName)
	assert.Equal(t, result.Size, opened.Size)

	content := string(data)
	assert.Contains(t, content, "Alice Example")
	assert.Contains(t, content, "S001")
	assert.Contains(t, content, "95.0")
}

func TestExportSheetPDF(t *testing.T) {
	svc, _ := newExportFixture(t)

	result, err := svc.ExportSheet(context.Background(), "sheet-1", models.ExportPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Greater(t, result.Size, int64(0))

	_, data, err := svc.Open(result.DownloadToken)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestExportSheetUnknownSheet(t *testing.T) {
	svc, _ := newExportFixture(t)

	_, err := svc.ExportSheet(context.Background(), "sheet-missing", models.ExportCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportSheetUnsupportedFormat(t *testing.T) {
	svc, _ := newExportFixture(t)

	_, err := svc.ExportSheet(context.Background(), "sheet-1", models.ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportStudentSummary(t *testing.T) {
	svc, ms := newExportFixture(t)
	ms.summaries.rows["stu-1|semester|sem-1"] = &models.AcademicPerformanceSummary{
		StudentID:  "stu-1",
		PeriodType: models.PeriodSemester,
		SemesterID: strPtr("sem-1"),
		GPA:        4.5, TotalSubjects: 2, ExcellentCount: 1, GoodCount: 1,
		EarnedCredits: 7, TotalCredits: 7, AttendancePercentage: 92.5,
	}

	result, err := svc.ExportStudentSummary(context.Background(), "stu-1", models.ExportCSV)
	require.NoError(t, err)

	_, data, err := svc.Open(result.DownloadToken)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Fall 2026")
	assert.Contains(t, content, "4.50")
	assert.Contains(t, content, "7/7")
	assert.Contains(t, content, "92.5%")
}

func TestOpenRejectsTamperedToken(t *testing.T) {
	svc, _ := newExportFixture(t)

	result, err := svc.ExportSheet(context.Background(), "sheet-1", models.ExportCSV)
	require.NoError(t, err)

	_, _, err = svc.Open(result.DownloadToken + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
