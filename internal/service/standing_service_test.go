package service

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniplex/academic-api/internal/models"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
)

func newStandingFixture(t *testing.T) (*StandingService, sqlmock.Sqlmock, *memStores) {
	t.Helper()
	db, mock := newServiceDB(t)
	ms := newMemStores()
	svc := NewStandingService(db, nil, zap.NewNop())
	svc.stores = ms.factory()
	return svc, mock, ms
}

func TestStandingForDebtCount(t *testing.T) {
	assert.Equal(t, models.StandingGood, models.StandingForDebtCount(0))
	assert.Equal(t, models.StandingWarning, models.StandingForDebtCount(1))
	assert.Equal(t, models.StandingWarning, models.StandingForDebtCount(2))
	assert.Equal(t, models.StandingProbation, models.StandingForDebtCount(3))
	assert.Equal(t, models.StandingProbation, models.StandingForDebtCount(4))
	assert.Equal(t, models.StandingRiskExpulsion, models.StandingForDebtCount(5))
}

func TestCreateDebtDerivesStanding(t *testing.T) {
	svc, mock, ms := newStandingFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	debt, err := svc.CreateDebt(context.Background(), CreateDebtRequest{
		StudentID:  "stu-1",
		SubjectID:  "subj-1",
		SemesterID: "sem-1",
		DebtType:   models.DebtTypeExam,
		Deadline:   time.Now().Add(30 * 24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DebtStatusActive, debt.Status)

	standing, err := ms.standings.OpenStanding(context.Background(), "stu-1")
	require.NoError(t, err)
	require.NotNil(t, standing)
	assert.Equal(t, models.StandingWarning, standing.Status)
}

func TestReviseStandingSkipsManualStatuses(t *testing.T) {
	ms := newMemStores()
	ms.standings.open = map[string]*models.AcademicStanding{
		"stu-1": {ID: "standing-1", StudentID: "stu-1", Status: models.StandingAcademicLeave},
	}
	ms.standings.debts["debt-1"] = &models.AcademicDebt{
		ID: "debt-1", StudentID: "stu-1", SubjectID: "subj-1", SemesterID: "sem-1",
		Status: models.DebtStatusActive,
	}

	err := reviseStanding(context.Background(), ms.factory()(nil), "stu-1", nil, nil)
	require.NoError(t, err)

	standing, err := ms.standings.OpenStanding(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, models.StandingAcademicLeave, standing.Status)
	assert.Empty(t, ms.standings.history)
}

func TestReviseStandingNoChangeKeepsInterval(t *testing.T) {
	ms := newMemStores()
	ms.standings.open = map[string]*models.AcademicStanding{
		"stu-1": {ID: "standing-1", StudentID: "stu-1", Status: models.StandingGood},
	}

	err := reviseStanding(context.Background(), ms.factory()(nil), "stu-1", nil, nil)
	require.NoError(t, err)

	standing, err := ms.standings.OpenStanding(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "standing-1", standing.ID)
}

func TestExpiredDebtsStillCountTowardStanding(t *testing.T) {
	ms := newMemStores()
	for i, status := range []models.DebtStatus{models.DebtStatusActive, models.DebtStatusExtended, models.DebtStatusExpired} {
		id := string(rune('a' + i))
		ms.standings.debts[id] = &models.AcademicDebt{ID: id, StudentID: "stu-1", Status: status}
	}
	ms.standings.debts["z"] = &models.AcademicDebt{ID: "z", StudentID: "stu-1", Status: models.DebtStatusCleared}

	err := reviseStanding(context.Background(), ms.factory()(nil), "stu-1", nil, nil)
	require.NoError(t, err)

	standing, err := ms.standings.OpenStanding(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, models.StandingProbation, standing.Status)
}

func TestClearDebtsStampsGradeDate(t *testing.T) {
	ms := newMemStores()
	ms.standings.debts["debt-1"] = &models.AcademicDebt{
		ID: "debt-1", StudentID: "stu-1", SubjectID: "subj-1", SemesterID: "sem-1",
		Status: models.DebtStatusExtended,
	}
	gradeDate := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	err := clearDebts(context.Background(), ms.factory()(nil), "stu-1", "subj-1", "sem-1", gradeDate)
	require.NoError(t, err)

	debt, err := ms.standings.GetDebt(context.Background(), "debt-1")
	require.NoError(t, err)
	assert.Equal(t, models.DebtStatusCleared, debt.Status)
	require.NotNil(t, debt.ClearedAt)
	assert.Equal(t, gradeDate, *debt.ClearedAt)
}

func TestWaiveDebtRejectsSettled(t *testing.T) {
	svc, mock, ms := newStandingFixture(t)
	ms.standings.debts["debt-1"] = &models.AcademicDebt{
		ID: "debt-1", StudentID: "stu-1", SubjectID: "subj-1", SemesterID: "sem-1",
		Status: models.DebtStatusCleared,
	}
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := svc.WaiveDebt(context.Background(), "debt-1", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestExpireDebtOnlyFromOpenStates(t *testing.T) {
	svc, mock, ms := newStandingFixture(t)
	ms.standings.debts["debt-1"] = &models.AcademicDebt{
		ID: "debt-1", StudentID: "stu-1", SubjectID: "subj-1", SemesterID: "sem-1",
		Status: models.DebtStatusWaived,
	}
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := svc.ExpireDebt(context.Background(), "debt-1", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestExtendDebtReDerivesStanding(t *testing.T) {
	svc, mock, ms := newStandingFixture(t)
	ms.standings.debts["debt-1"] = &models.AcademicDebt{
		ID: "debt-1", StudentID: "stu-1", SubjectID: "subj-1", SemesterID: "sem-1",
		Status: models.DebtStatusActive,
	}
	mock.ExpectBegin()
	mock.ExpectCommit()

	deadline := time.Now().Add(14 * 24 * time.Hour)
	require.NoError(t, svc.ExtendDebt(context.Background(), "debt-1", deadline, nil))

	debt, err := ms.standings.GetDebt(context.Background(), "debt-1")
	require.NoError(t, err)
	assert.Equal(t, models.DebtStatusExtended, debt.Status)
	assert.Equal(t, deadline, debt.Deadline)

	// extended still counts as outstanding
	standing, err := ms.standings.OpenStanding(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, models.StandingWarning, standing.Status)
}

func TestIssueRetakeNumbersAttempts(t *testing.T) {
	svc, mock, ms := newStandingFixture(t)
	ms.standings.retakes = []models.RetakePermission{
		{ID: "retake-0", StudentID: "stu-1", SubjectID: "subj-1", SemesterID: "sem-1", AttemptNumber: 1},
	}
	mock.ExpectBegin()
	mock.ExpectCommit()

	retake, err := svc.IssueRetake(context.Background(), IssueRetakeRequest{
		StudentID:      "stu-1",
		SubjectID:      "subj-1",
		SemesterID:     "sem-1",
		ExpirationDate: time.Now().Add(7 * 24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, retake.AttemptNumber)
	assert.Equal(t, models.RetakeIssued, retake.Status)
}

func TestSetStandingSameStatusShortCircuits(t *testing.T) {
	svc, mock, ms := newStandingFixture(t)
	ms.standings.open = map[string]*models.AcademicStanding{
		"stu-1": {ID: "standing-1", StudentID: "stu-1", Status: models.StandingExpulsion},
	}
	mock.ExpectBegin()
	mock.ExpectCommit()

	standing, err := svc.SetStanding(context.Background(), SetStandingRequest{
		StudentID: "stu-1",
		Status:    models.StandingExpulsion,
	})
	require.NoError(t, err)
	assert.Equal(t, "standing-1", standing.ID)
	assert.Empty(t, ms.standings.history)
}

func TestSetStandingClosesPreviousInterval(t *testing.T) {
	svc, mock, ms := newStandingFixture(t)
	ms.standings.open = map[string]*models.AcademicStanding{
		"stu-1": {ID: "standing-1", StudentID: "stu-1", Status: models.StandingGood},
	}
	mock.ExpectBegin()
	mock.ExpectCommit()

	standing, err := svc.SetStanding(context.Background(), SetStandingRequest{
		StudentID: "stu-1",
		Status:    models.StandingAcademicLeave,
		Reason:    strPtr("medical leave"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StandingAcademicLeave, standing.Status)

	require.Len(t, ms.standings.history, 1)
	closed := ms.standings.history[0]
	assert.Equal(t, "standing-1", closed.ID)
	require.NotNil(t, closed.EndDate)
}

func TestCurrentDefaultsToGood(t *testing.T) {
	svc, _, _ := newStandingFixture(t)
	standing, err := svc.Current(context.Background(), "stu-unknown")
	require.NoError(t, err)
	assert.Equal(t, models.StandingGood, standing.Status)
}
