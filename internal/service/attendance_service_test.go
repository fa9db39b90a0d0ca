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

func newAttendanceFixture(t *testing.T) (*AttendanceService, sqlmock.Sqlmock, *memStores) {
	t.Helper()
	db, mock := newServiceDB(t)
	ms := newMemStores()
	seedGradebook(ms)
	ms.structure.classes["class-1"] = &models.Class{
		ID:         "class-1",
		SubjectID:  "subj-1",
		GroupID:    "g-1",
		TeacherID:  "t-1",
		SemesterID: strPtr("sem-1"),
	}
	svc := NewAttendanceService(db, nil, zap.NewNop())
	svc.stores = ms.factory()
	return svc, mock, ms
}

func TestMarkRecomputesSummary(t *testing.T) {
	svc, mock, ms := newAttendanceFixture(t)
	ms.attendance.totals = models.AttendanceTotals{TotalClasses: 10, AttendedClasses: 9}
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := svc.Mark(context.Background(), MarkAttendanceRequest{
		ClassID:  "class-1",
		MarkedBy: "t-1",
		Items:    []MarkAttendanceItem{{StudentID: "stu-1", Status: models.AttendancePresent}},
	})
	require.NoError(t, err)

	summary, err := ms.summaries.Get(context.Background(), "stu-1", models.PeriodSemester, "sem-1")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 10, summary.TotalClasses)
	assert.Equal(t, 9, summary.AttendedClasses)
	assert.Equal(t, 90.0, summary.AttendancePercentage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkFillsJournalWhenRosterCovered(t *testing.T) {
	svc, mock, ms := newAttendanceFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := svc.Mark(context.Background(), MarkAttendanceRequest{
		ClassID:  "class-1",
		MarkedBy: "t-1",
		Items: []MarkAttendanceItem{
			{StudentID: "stu-1", Status: models.AttendanceLate, LateMinutes: intPtr(10)},
		},
	})
	require.NoError(t, err)

	sheet, err := ms.attendance.GetSheet(context.Background(), "class-1")
	require.NoError(t, err)
	require.NotNil(t, sheet)
	assert.Equal(t, models.AttendanceSheetFilled, sheet.Status)
}

func TestMarkRejectsClassWithoutSemester(t *testing.T) {
	svc, mock, ms := newAttendanceFixture(t)
	ms.structure.classes["class-1"].SemesterID = nil
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := svc.Mark(context.Background(), MarkAttendanceRequest{
		ClassID:  "class-1",
		MarkedBy: "t-1",
		Items:    []MarkAttendanceItem{{StudentID: "stu-1", Status: models.AttendancePresent}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSemesterMissing.Code, appErrors.FromError(err).Code)
	_, ok := ms.summaries.rows[summaryKey("stu-1", models.PeriodSemester, "sem-1")]
	assert.False(t, ok)
}
