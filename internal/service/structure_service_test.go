package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/uniplex/academic-api/pkg/errors"
)

func newStructureFixture(t *testing.T) (*StructureService, *memStores) {
	t.Helper()
	ms := newMemStores()
	svc := NewStructureService(nil, nil, zap.NewNop())
	svc.stores = ms.factory()
	return svc, ms
}

func TestCreateAcademicYear(t *testing.T) {
	svc, _ := newStructureFixture(t)

	year, err := svc.CreateAcademicYear(context.Background(), CreateAcademicYearRequest{
		Name:      "2026/2027",
		StartDate: "2026-09-01",
		EndDate:   "2027-06-30",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, year.ID)
	assert.True(t, year.EndDate.After(year.StartDate))
}

func TestCreateAcademicYearEndBeforeStart(t *testing.T) {
	svc, _ := newStructureFixture(t)

	_, err := svc.CreateAcademicYear(context.Background(), CreateAcademicYearRequest{
		Name:      "2026/2027",
		StartDate: "2027-06-30",
		EndDate:   "2026-09-01",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateAcademicYearBadDateFormat(t *testing.T) {
	svc, _ := newStructureFixture(t)

	_, err := svc.CreateAcademicYear(context.Background(), CreateAcademicYearRequest{
		Name:      "2026/2027",
		StartDate: "01.09.2026",
		EndDate:   "2027-06-30",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateSemesterRequiresKnownYear(t *testing.T) {
	svc, _ := newStructureFixture(t)

	_, err := svc.CreateSemester(context.Background(), CreateSemesterRequest{
		AcademicYearID: "year-missing",
		Name:           "Fall 2026",
		Number:         1,
		StartDate:      "2026-09-01",
		EndDate:        "2026-12-31",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCreateSemesterUnderYear(t *testing.T) {
	svc, ms := newStructureFixture(t)

	year, err := svc.CreateAcademicYear(context.Background(), CreateAcademicYearRequest{
		Name:      "2026/2027",
		StartDate: "2026-09-01",
		EndDate:   "2027-06-30",
	})
	require.NoError(t, err)

	semester, err := svc.CreateSemester(context.Background(), CreateSemesterRequest{
		AcademicYearID: year.ID,
		Name:           "Fall 2026",
		Number:         1,
		StartDate:      "2026-09-01",
		EndDate:        "2026-12-31",
	})
	require.NoError(t, err)
	assert.Equal(t, year.ID, semester.AcademicYearID)

	listed, err := svc.ListSemesters(context.Background(), year.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, semester.ID, listed[0].ID)
	assert.Len(t, ms.structure.semesters, 1)
}

func TestCreateSubjectAndGroup(t *testing.T) {
	svc, _ := newStructureFixture(t)

	subject, err := svc.CreateSubject(context.Background(), CreateSubjectRequest{
		Code:    "MATH-201",
		Name:    "Linear Algebra",
		Credits: intPtr(5),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, subject.ID)

	group, err := svc.CreateGroup(context.Background(), CreateGroupRequest{Name: "CS-201", Year: 2})
	require.NoError(t, err)
	assert.NotEmpty(t, group.ID)

	subjects, err := svc.ListSubjects(context.Background())
	require.NoError(t, err)
	assert.Len(t, subjects, 1)
	groups, err := svc.ListGroups(context.Background())
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}
