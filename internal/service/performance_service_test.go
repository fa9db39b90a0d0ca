package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniplex/academic-api/internal/models"
)

func TestFoldSummaryBucketsAndGPA(t *testing.T) {
	grades := []models.Grade{
		{SubjectID: "s1", IsPassing: true, NumericValue: 5, Percentage: f64Ptr(95)},
		{SubjectID: "s2", IsPassing: true, NumericValue: 4, Percentage: f64Ptr(80)},
		{SubjectID: "s3", IsPassing: true, NumericValue: 3, Percentage: f64Ptr(62)},
		{SubjectID: "s4", IsPassing: false, NumericValue: 2, Percentage: f64Ptr(40)},
	}
	credits := map[string]int{"s1": 4, "s2": 3, "s3": 2, "s4": 5}
	totals := models.AttendanceTotals{TotalClasses: 40, AttendedClasses: 30}

	summary := foldSummary(grades, credits, totals)

	assert.Equal(t, 1, summary.ExcellentCount)
	assert.Equal(t, 1, summary.GoodCount)
	assert.Equal(t, 1, summary.SatisfactoryCount)
	assert.Equal(t, 1, summary.FailedCount)
	assert.Equal(t, 4, summary.TotalSubjects)
	assert.Equal(t, 3.5, summary.GPA)
	assert.Equal(t, 14, summary.TotalCredits)
	assert.Equal(t, 9, summary.EarnedCredits)
	assert.Equal(t, 75.0, summary.AttendancePercentage)
}

func TestFoldSummaryUsesBandFloorWithoutPercentage(t *testing.T) {
	// a 90 boundary grade without an explicit percentage falls back to
	// the value's band floor and still counts as excellent
	grades := []models.Grade{
		{SubjectID: "s1", IsPassing: true, NumericValue: 5, ValueMinPercent: 90},
		{SubjectID: "s1", IsPassing: true, NumericValue: 4, ValueMinPercent: 75},
	}
	summary := foldSummary(grades, nil, models.AttendanceTotals{})

	assert.Equal(t, 1, summary.ExcellentCount)
	assert.Equal(t, 1, summary.GoodCount)
	assert.Equal(t, 1, summary.TotalSubjects)
	assert.Equal(t, 4.5, summary.GPA)
}

func TestFoldSummarySubjectEarnsCreditsOnlyWhenAllPass(t *testing.T) {
	grades := []models.Grade{
		{SubjectID: "s1", IsPassing: true, NumericValue: 4, Percentage: f64Ptr(80)},
		{SubjectID: "s1", IsPassing: false, NumericValue: 2, Percentage: f64Ptr(40)},
	}
	summary := foldSummary(grades, map[string]int{"s1": 6}, models.AttendanceTotals{})

	assert.Equal(t, 6, summary.TotalCredits)
	assert.Equal(t, 0, summary.EarnedCredits)
}

func TestFoldSummaryEmpty(t *testing.T) {
	summary := foldSummary(nil, nil, models.AttendanceTotals{})
	assert.Zero(t, summary.GPA)
	assert.Zero(t, summary.TotalSubjects)
	assert.Zero(t, summary.AttendancePercentage)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	ms := newMemStores()
	seedGradebook(ms)
	ms.grades.grades[gradeKey("stu-1", "subj-1", "sem-1", "gt-exam")] = &models.Grade{
		ID: "grade-1", StudentID: "stu-1", SubjectID: "subj-1", SemesterID: "sem-1",
		GradeTypeID: "gt-exam", Status: models.GradeStatusFinal,
		IsPassing: true, NumericValue: 5, Percentage: f64Ptr(95),
	}
	ms.attendance.totals = models.AttendanceTotals{TotalClasses: 10, AttendedClasses: 10}

	svc := NewPerformanceService(nil, zap.NewNop())
	svc.stores = ms.factory()

	first, err := svc.Recompute(context.Background(), "stu-1", "sem-1")
	require.NoError(t, err)
	second, err := svc.Recompute(context.Background(), "stu-1", "sem-1")
	require.NoError(t, err)

	assert.Equal(t, first.ExcellentCount, second.ExcellentCount)
	assert.Equal(t, first.GPA, second.GPA)
	assert.Equal(t, 1, second.ExcellentCount)
	assert.Equal(t, 100.0, second.AttendancePercentage)
	require.NotNil(t, second.AcademicYearID)
	assert.Equal(t, "year-1", *second.AcademicYearID)
	assert.Equal(t, 2, ms.summaries.upserts)
}

func TestSummaryReturnsZeroRowWhenAbsent(t *testing.T) {
	ms := newMemStores()
	svc := NewPerformanceService(nil, zap.NewNop())
	svc.stores = ms.factory()

	summary, err := svc.Summary(context.Background(), "stu-9", "sem-9")
	require.NoError(t, err)
	assert.Equal(t, "stu-9", summary.StudentID)
	assert.Zero(t, summary.TotalSubjects)
	require.NotNil(t, summary.SemesterID)
	assert.Equal(t, "sem-9", *summary.SemesterID)
}
