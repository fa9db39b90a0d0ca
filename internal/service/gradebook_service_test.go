package service

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniplex/academic-api/internal/models"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
)

func intPtr(v int) *int         { return &v }
func strPtr(v string) *string   { return &v }
func f64Ptr(v float64) *float64 { return &v }

// seedGradebook loads a five-point system, an exam grade type, one group
// with one student and an in-progress exam sheet with one ungraded item.
func seedGradebook(ms *memStores) {
	ms.vocabulary.systems["sys-5"] = &models.GradeSystem{ID: "sys-5", Name: "Five point", SystemType: models.SystemTypeNumeric}
	ms.vocabulary.addValue(models.GradeValue{ID: "val-5", GradeSystemID: "sys-5", Value: "5", NumericValue: 5, MinPercent: 90, MaxPercent: 101, IsPassing: true})
	ms.vocabulary.addValue(models.GradeValue{ID: "val-4", GradeSystemID: "sys-5", Value: "4", NumericValue: 4, MinPercent: 75, MaxPercent: 90, IsPassing: true})
	ms.vocabulary.addValue(models.GradeValue{ID: "val-3", GradeSystemID: "sys-5", Value: "3", NumericValue: 3, MinPercent: 60, MaxPercent: 75, IsPassing: true})
	ms.vocabulary.addValue(models.GradeValue{ID: "val-2", GradeSystemID: "sys-5", Value: "2", NumericValue: 2, MinPercent: 0, MaxPercent: 60, IsPassing: false})
	ms.vocabulary.types["exam"] = &models.GradeType{ID: "gt-exam", Name: "Exam", Code: "exam"}

	ms.structure.groups["g-1"] = &models.Group{ID: "g-1", Name: "CS-101", Year: 1}
	ms.structure.subjects["subj-1"] = &models.Subject{ID: "subj-1", Code: "MATH", Name: "Mathematics", Credits: intPtr(4)}
	ms.structure.semesters["sem-1"] = &models.Semester{ID: "sem-1", AcademicYearID: "year-1", Name: "Fall 2026", Number: 1}
	ms.students.add(models.StudentProfile{ID: "stu-1", UserID: "u-1", GroupID: "g-1", StudentCode: "S001", FullName: "Alice Example"})

	ms.sheets.sheets["sheet-1"] = &models.GradeSheet{
		ID:            "sheet-1",
		Number:        "EX-001",
		SubjectID:     "subj-1",
		GroupID:       "g-1",
		SemesterID:    "sem-1",
		SheetType:     models.SheetTypeExam,
		TeacherID:     "t-1",
		GradeSystemID: "sys-5",
		Status:        models.SheetStatusInProgress,
	}
	ms.sheets.items["item-1"] = &models.GradeSheetItem{
		ID:           "item-1",
		GradeSheetID: "sheet-1",
		StudentID:    "stu-1",
		Status:       models.ItemStatusNotGraded,
	}
}

func newGradebookFixture(t *testing.T) (*GradebookService, sqlmock.Sqlmock, *memStores) {
	t.Helper()
	db, mock := newServiceDB(t)
	ms := newMemStores()
	seedGradebook(ms)
	svc := NewGradebookService(db, nil, zap.NewNop())
	svc.stores = ms.factory()
	return svc, mock, ms
}

func TestSaveItemPropagatesThroughChain(t *testing.T) {
	svc, mock, ms := newGradebookFixture(t)
	ms.standings.debts["debt-1"] = &models.AcademicDebt{
		ID: "debt-1", StudentID: "stu-1", SubjectID: "subj-1", SemesterID: "sem-1",
		DebtType: models.DebtTypeExam, Status: models.DebtStatusActive,
	}
	mock.ExpectBegin()
	mock.ExpectCommit()

	saved, err := svc.SaveItem(context.Background(), SaveItemRequest{
		ItemID:       "item-1",
		GradeValueID: "val-5",
		GradedBy:     "teacher-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusGraded, saved.Status)
	require.NotNil(t, saved.GradeValueID)
	assert.Equal(t, "val-5", *saved.GradeValueID)

	grade, err := ms.grades.GetByKey(context.Background(), "stu-1", "subj-1", "sem-1", "gt-exam")
	require.NoError(t, err)
	require.NotNil(t, grade)
	assert.Equal(t, models.GradeStatusFinal, grade.Status)
	assert.Equal(t, models.SourceManual, grade.Source)

	require.Len(t, ms.history.entries, 1)
	assert.Equal(t, models.ChangeTypeCreate, ms.history.entries[0].ChangeType)
	assert.Equal(t, "val-5", *ms.history.entries[0].NewValueID)
	assert.Nil(t, ms.history.entries[0].PreviousValueID)

	summary, err := ms.summaries.Get(context.Background(), "stu-1", models.PeriodSemester, "sem-1")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.ExcellentCount)
	assert.Equal(t, 4, summary.EarnedCredits)

	debt, err := ms.standings.GetDebt(context.Background(), "debt-1")
	require.NoError(t, err)
	assert.Equal(t, models.DebtStatusCleared, debt.Status)
	require.NotNil(t, debt.ClearedAt)

	standing, err := ms.standings.OpenStanding(context.Background(), "stu-1")
	require.NoError(t, err)
	require.NotNil(t, standing)
	assert.Equal(t, models.StandingGood, standing.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveItemFailingGradeKeepsDebt(t *testing.T) {
	svc, mock, ms := newGradebookFixture(t)
	ms.standings.debts["debt-1"] = &models.AcademicDebt{
		ID: "debt-1", StudentID: "stu-1", SubjectID: "subj-1", SemesterID: "sem-1",
		DebtType: models.DebtTypeExam, Status: models.DebtStatusActive,
	}
	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.SaveItem(context.Background(), SaveItemRequest{
		ItemID:       "item-1",
		GradeValueID: "val-2",
		GradedBy:     "teacher-1",
	})
	require.NoError(t, err)

	debt, err := ms.standings.GetDebt(context.Background(), "debt-1")
	require.NoError(t, err)
	assert.Equal(t, models.DebtStatusActive, debt.Status)

	summary, err := ms.summaries.Get(context.Background(), "stu-1", models.PeriodSemester, "sem-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.FailedCount)
	assert.Equal(t, 0, summary.EarnedCredits)
	assert.Equal(t, 4, summary.TotalCredits)

	standing, err := ms.standings.OpenStanding(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, models.StandingWarning, standing.Status)
}

func TestSaveItemRegradeAppendsUpdateEntry(t *testing.T) {
	svc, mock, ms := newGradebookFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.SaveItem(context.Background(), SaveItemRequest{ItemID: "item-1", GradeValueID: "val-3", GradedBy: "teacher-1"})
	require.NoError(t, err)
	_, err = svc.SaveItem(context.Background(), SaveItemRequest{ItemID: "item-1", GradeValueID: "val-5", GradedBy: "teacher-1"})
	require.NoError(t, err)

	require.Len(t, ms.history.entries, 2)
	assert.Equal(t, models.ChangeTypeUpdate, ms.history.entries[1].ChangeType)
	require.NotNil(t, ms.history.entries[1].PreviousValueID)
	assert.Equal(t, "val-3", *ms.history.entries[1].PreviousValueID)
	assert.Equal(t, "val-5", *ms.history.entries[1].NewValueID)

	// replaying the chain must not drift the counters
	summary, err := ms.summaries.Get(context.Background(), "stu-1", models.PeriodSemester, "sem-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ExcellentCount+summary.GoodCount+summary.SatisfactoryCount+summary.FailedCount)
}

func TestSaveItemUnchangedValueAppendsNoHistory(t *testing.T) {
	svc, mock, ms := newGradebookFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.SaveItem(context.Background(), SaveItemRequest{ItemID: "item-1", GradeValueID: "val-5", GradedBy: "teacher-1"})
	require.NoError(t, err)
	upserts := ms.summaries.upserts

	// resaving the same value is a plain item save
	_, err = svc.SaveItem(context.Background(), SaveItemRequest{ItemID: "item-1", GradeValueID: "val-5", GradedBy: "teacher-1"})
	require.NoError(t, err)

	require.Len(t, ms.history.entries, 1)
	assert.Equal(t, models.ChangeTypeCreate, ms.history.entries[0].ChangeType)
	assert.Equal(t, upserts, ms.summaries.upserts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveItemRejectsArchivedSheet(t *testing.T) {
	svc, mock, ms := newGradebookFixture(t)
	ms.sheets.sheets["sheet-1"].Status = models.SheetStatusArchived
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.SaveItem(context.Background(), SaveItemRequest{ItemID: "item-1", GradeValueID: "val-5", GradedBy: "teacher-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSheetArchived.Code, appErrors.FromError(err).Code)
	assert.Empty(t, ms.history.entries)
}

func TestSaveItemUnknownGradeType(t *testing.T) {
	svc, mock, ms := newGradebookFixture(t)
	delete(ms.vocabulary.types, "exam")
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.SaveItem(context.Background(), SaveItemRequest{ItemID: "item-1", GradeValueID: "val-5", GradedBy: "teacher-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrGradeTypeUnknown.Code, appErrors.FromError(err).Code)
}

func TestSaveItemResolvesValueByPercentage(t *testing.T) {
	svc, mock, ms := newGradebookFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	saved, err := svc.SaveItem(context.Background(), SaveItemRequest{
		ItemID:     "item-1",
		Percentage: f64Ptr(82),
		GradedBy:   "teacher-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "val-4", *saved.GradeValueID)

	summary, err := ms.summaries.Get(context.Background(), "stu-1", models.PeriodSemester, "sem-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.GoodCount)
}

func TestCreateSheetPinsRoster(t *testing.T) {
	svc, mock, ms := newGradebookFixture(t)
	ms.students.add(models.StudentProfile{ID: "stu-2", UserID: "u-2", GroupID: "g-1", StudentCode: "S002", FullName: "Bob Example"})
	mock.ExpectBegin()
	mock.ExpectCommit()

	created, err := svc.CreateSheet(context.Background(), CreateSheetRequest{
		SubjectID:     "subj-1",
		GroupID:       "g-1",
		SemesterID:    "sem-1",
		SheetType:     models.SheetTypeExam,
		TeacherID:     "t-1",
		GradeSystemID: "sys-5",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SheetStatusDraft, created.Sheet.Status)
	assert.Len(t, created.Items, 2)
	for _, item := range created.Items {
		assert.Equal(t, models.ItemStatusNotGraded, item.Status)
	}

	// a student joining the group afterwards is not on the sheet
	ms.students.add(models.StudentProfile{ID: "stu-3", UserID: "u-3", GroupID: "g-1", StudentCode: "S003", FullName: "Carol Example"})
	items, err := ms.sheets.ListItems(context.Background(), created.Sheet.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestTransitionRejectsIllegalEdge(t *testing.T) {
	svc, _, ms := newGradebookFixture(t)
	ms.sheets.sheets["sheet-1"].Status = models.SheetStatusDraft

	_, err := svc.Transition(context.Background(), "sheet-1", models.SheetStatusCompleted, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestTransitionToCompletedRequiresAllGraded(t *testing.T) {
	svc, _, _ := newGradebookFixture(t)

	_, err := svc.Transition(context.Background(), "sheet-1", models.SheetStatusCompleted, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestTransitionApprovalWritesRecordEntries(t *testing.T) {
	svc, mock, ms := newGradebookFixture(t)
	ms.sheets.sheets["sheet-1"].Status = models.SheetStatusVerified
	item := ms.sheets.items["item-1"]
	item.Status = models.ItemStatusGraded
	item.GradeValueID = strPtr("val-5")
	mock.ExpectBegin()
	mock.ExpectCommit()

	sheet, err := svc.Transition(context.Background(), "sheet-1", models.SheetStatusApproved, strPtr("dean-1"))
	require.NoError(t, err)
	assert.Equal(t, models.SheetStatusApproved, sheet.Status)

	record, err := ms.records.GetByStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Len(t, ms.records.entries, 1)
	entry := ms.records.entries[0]
	assert.Equal(t, models.EntryExam, entry.EntryType)
	assert.Equal(t, "val-5", entry.GradeValueID)
	require.NotNil(t, entry.Credits)
	assert.Equal(t, 4, *entry.Credits)
}

func TestTransitionApprovalSkipsFailingItems(t *testing.T) {
	svc, mock, ms := newGradebookFixture(t)
	ms.sheets.sheets["sheet-1"].Status = models.SheetStatusVerified
	item := ms.sheets.items["item-1"]
	item.Status = models.ItemStatusGraded
	item.GradeValueID = strPtr("val-2")
	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.Transition(context.Background(), "sheet-1", models.SheetStatusApproved, nil)
	require.NoError(t, err)
	assert.Empty(t, ms.records.entries)
}

func TestAnnulGrade(t *testing.T) {
	svc, mock, ms := newGradebookFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err := svc.SaveItem(context.Background(), SaveItemRequest{ItemID: "item-1", GradeValueID: "val-5", GradedBy: "teacher-1"})
	require.NoError(t, err)
	grade, err := ms.grades.GetByKey(context.Background(), "stu-1", "subj-1", "sem-1", "gt-exam")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, svc.AnnulGrade(context.Background(), grade.ID, strPtr("dean-1"), strPtr("clerical error")))

	annulled, err := ms.grades.GetByID(context.Background(), grade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GradeStatusAnnulled, annulled.Status)

	last := ms.history.entries[len(ms.history.entries)-1]
	assert.Equal(t, models.ChangeTypeDelete, last.ChangeType)
	require.NotNil(t, last.PreviousValueID)
	assert.Equal(t, "val-5", *last.PreviousValueID)

	// annulled grades drop out of the recomputed summary
	summary, err := ms.summaries.Get(context.Background(), "stu-1", models.PeriodSemester, "sem-1")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.ExcellentCount)
	assert.Equal(t, 0, summary.TotalSubjects)

	mock.ExpectBegin()
	mock.ExpectRollback()
	err = svc.AnnulGrade(context.Background(), grade.ID, nil, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrGradeAnnulled.Code, appErrors.FromError(err).Code)
}

func TestMarkItemClearsGradeFields(t *testing.T) {
	svc, _, ms := newGradebookFixture(t)
	item := ms.sheets.items["item-1"]
	item.GradeValueID = strPtr("val-3")
	item.Points = f64Ptr(12)

	marked, err := svc.MarkItem(context.Background(), MarkItemRequest{
		ItemID:   "item-1",
		Status:   models.ItemStatusAbsent,
		MarkedBy: "teacher-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusAbsent, marked.Status)
	assert.Nil(t, marked.GradeValueID)
	assert.Nil(t, marked.Points)
	require.NotNil(t, marked.GradedAt)
}

func TestSaveItemRequiresValueOrPercentage(t *testing.T) {
	svc, _, _ := newGradebookFixture(t)
	_, err := svc.SaveItem(context.Background(), SaveItemRequest{ItemID: "item-1", GradedBy: "teacher-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUpsertGradeManualSource(t *testing.T) {
	svc, mock, ms := newGradebookFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	grade, err := svc.UpsertGrade(context.Background(), UpsertGradeRequest{
		StudentID:     "stu-1",
		SubjectID:     "subj-1",
		SemesterID:    "sem-1",
		GradeTypeCode: "exam",
		GradeSystemID: "sys-5",
		GradeValueID:  "val-4",
		GradedBy:      "dean-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SourceManual, grade.Source)
	assert.Equal(t, "4", grade.ValueLabel)
	assert.True(t, grade.IsPassing)

	require.Len(t, ms.history.entries, 1)
	assert.Equal(t, models.ChangeTypeCreate, ms.history.entries[0].ChangeType)

	// same key again updates in place, no second canonical row
	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err = svc.UpsertGrade(context.Background(), UpsertGradeRequest{
		StudentID:     "stu-1",
		SubjectID:     "subj-1",
		SemesterID:    "sem-1",
		GradeTypeCode: "exam",
		GradeSystemID: "sys-5",
		GradeValueID:  "val-5",
		GradedBy:      "dean-1",
	})
	require.NoError(t, err)
	assert.Len(t, ms.grades.grades, 1)
}
