package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniplex/academic-api/internal/models"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
	"github.com/uniplex/academic-api/pkg/jobs"
)

type memImportRepo struct {
	imports map[string]*models.GradeImport
	seq     int
}

func (m *memImportRepo) Create(ctx context.Context, imp *models.GradeImport) error {
	m.seq++
	imp.ID = fmt.Sprintf("imp-%d", m.seq)
	clone := *imp
	m.imports[imp.ID] = &clone
	return nil
}

func (m *memImportRepo) GetByID(ctx context.Context, id string) (*models.GradeImport, error) {
	if imp, ok := m.imports[id]; ok {
		clone := *imp
		return &clone, nil
	}
	return nil, nil
}

func (m *memImportRepo) SetProcessing(ctx context.Context, id string) error {
	imp, ok := m.imports[id]
	if !ok {
		return fmt.Errorf("import %s not found", id)
	}
	imp.Status = models.ImportProcessing
	return nil
}

func (m *memImportRepo) Finish(ctx context.Context, imp *models.GradeImport) error {
	clone := *imp
	m.imports[imp.ID] = &clone
	return nil
}

func (m *memImportRepo) List(ctx context.Context, page, pageSize int) ([]models.GradeImport, int, error) {
	var out []models.GradeImport
	for _, imp := range m.imports {
		out = append(out, *imp)
	}
	return out, len(out), nil
}

type recordingSaver struct {
	saved []SaveItemRequest
}

func (r *recordingSaver) SaveItem(ctx context.Context, req SaveItemRequest) (*models.GradeSheetItem, error) {
	r.saved = append(r.saved, req)
	return &models.GradeSheetItem{ID: req.ItemID}, nil
}

func newImportFixture(t *testing.T) (*ImportService, *memImportRepo, *recordingSaver, *memStores) {
	t.Helper()
	ms := newMemStores()
	seedGradebook(ms)
	repo := &memImportRepo{imports: map[string]*models.GradeImport{}}
	saver := &recordingSaver{}
	svc := NewImportService(nil, repo, saver, nil, zap.NewNop(), jobs.QueueConfig{})
	svc.stores = ms.factory()
	return svc, repo, saver, ms
}

func TestParseImportRows(t *testing.T) {
	input := strings.NewReader("student_code,grade,points,comments\nS001,5,95,great work\nS002,3,,\n")
	rows, err := parseImportRows(input)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].RowNumber)
	assert.Equal(t, "S001", rows[0].StudentCode)
	assert.Equal(t, "5", rows[0].ValueLabel)
	require.NotNil(t, rows[0].Points)
	assert.Equal(t, 95.0, *rows[0].Points)
	require.NotNil(t, rows[0].Comments)
	assert.Equal(t, "great work", *rows[0].Comments)

	assert.Equal(t, "S002", rows[1].StudentCode)
	assert.Nil(t, rows[1].Points)
	assert.Nil(t, rows[1].Comments)
}

func TestParseImportRowsHeaderOnly(t *testing.T) {
	rows, err := parseImportRows(strings.NewReader("student_code,grade\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseImportRowsEmptyFile(t *testing.T) {
	rows, err := parseImportRows(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestParseImportRowsMissingColumns(t *testing.T) {
	_, err := parseImportRows(strings.NewReader("student_code,points\nS001,95\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grade")
}

func TestParseImportRowsInvalidPoints(t *testing.T) {
	_, err := parseImportRows(strings.NewReader("student_code,grade,points\nS001,5,ninety\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid points")
}

func TestParseImportRowsRequiresCodeAndGrade(t *testing.T) {
	_, err := parseImportRows(strings.NewReader("student_code,grade\n,5\n"))
	require.Error(t, err)
}

func TestUploadRejectsArchivedSheet(t *testing.T) {
	svc, _, _, ms := newImportFixture(t)
	ms.sheets.sheets["sheet-1"].Status = models.SheetStatusArchived

	_, err := svc.Upload(context.Background(), "grades.csv", "sheet-1", "u-1",
		strings.NewReader("student_code,grade\nS001,5\n"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSheetArchived.Code, appErrors.FromError(err).Code)
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	svc, _, _, _ := newImportFixture(t)

	_, err := svc.Upload(context.Background(), "grades.csv", "sheet-1", "u-1",
		strings.NewReader("student_code,grade\n"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUploadUnknownSheet(t *testing.T) {
	svc, _, _, _ := newImportFixture(t)

	_, err := svc.Upload(context.Background(), "grades.csv", "sheet-missing", "u-1",
		strings.NewReader("student_code,grade\nS001,5\n"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProcessReplaysRowsThroughSaver(t *testing.T) {
	svc, repo, saver, _ := newImportFixture(t)
	imp := &models.GradeImport{FileName: "grades.csv", Status: models.ImportPending, TotalRows: 1}
	require.NoError(t, repo.Create(context.Background(), imp))

	err := svc.process(context.Background(), jobs.Job{
		ID:   "job-1",
		Type: "grade-import",
		Payload: importPayload{
			ImportID:   imp.ID,
			SheetID:    "sheet-1",
			Rows:       []models.GradeImportRow{{RowNumber: 2, StudentCode: "S001", ValueLabel: "5", Points: f64Ptr(95)}},
			UploadedBy: "u-1",
		},
	})
	require.NoError(t, err)

	require.Len(t, saver.saved, 1)
	assert.Equal(t, "item-1", saver.saved[0].ItemID)
	assert.Equal(t, "val-5", saver.saved[0].GradeValueID)
	assert.Equal(t, "u-1", saver.saved[0].GradedBy)

	done, err := repo.GetByID(context.Background(), imp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ImportCompleted, done.Status)
	assert.Equal(t, 1, done.ImportedRows)
	assert.Zero(t, done.FailedRows)
	assert.Nil(t, done.ErrorLog)
}

func TestProcessRecordsRowFailures(t *testing.T) {
	svc, repo, saver, _ := newImportFixture(t)
	imp := &models.GradeImport{FileName: "grades.csv", Status: models.ImportPending, TotalRows: 2}
	require.NoError(t, repo.Create(context.Background(), imp))

	err := svc.process(context.Background(), jobs.Job{
		ID:   "job-1",
		Type: "grade-import",
		Payload: importPayload{
			ImportID:   imp.ID,
			SheetID:    "sheet-1",
			Rows: []models.GradeImportRow{
				{RowNumber: 2, StudentCode: "S001", ValueLabel: "5"},
				{RowNumber: 3, StudentCode: "S999", ValueLabel: "5"},
			},
			UploadedBy: "u-1",
		},
	})
	require.NoError(t, err)
	assert.Len(t, saver.saved, 1)

	done, err := repo.GetByID(context.Background(), imp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ImportCompleted, done.Status)
	assert.Equal(t, 1, done.ImportedRows)
	assert.Equal(t, 1, done.FailedRows)
	require.NotNil(t, done.ErrorLog)
	assert.Contains(t, *done.ErrorLog, "S999")
}

func TestProcessAllRowsFailedMarksImportFailed(t *testing.T) {
	svc, repo, _, _ := newImportFixture(t)
	imp := &models.GradeImport{FileName: "grades.csv", Status: models.ImportPending, TotalRows: 1}
	require.NoError(t, repo.Create(context.Background(), imp))

	err := svc.process(context.Background(), jobs.Job{
		ID:   "job-1",
		Type: "grade-import",
		Payload: importPayload{
			ImportID:   imp.ID,
			SheetID:    "sheet-1",
			Rows:       []models.GradeImportRow{{RowNumber: 2, StudentCode: "S001", ValueLabel: "A+"}},
			UploadedBy: "u-1",
		},
	})
	require.NoError(t, err)

	done, err := repo.GetByID(context.Background(), imp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ImportFailed, done.Status)
	assert.Equal(t, 1, done.FailedRows)
}
