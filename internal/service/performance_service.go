package service

import (
	"context"
	"math"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/uniplex/academic-api/internal/models"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
)

// PerformanceService exposes performance summaries and on-demand
// recomputation.
type PerformanceService struct {
	db     *sqlx.DB
	stores storesFactory
	logger *zap.Logger
}

// NewPerformanceService constructs PerformanceService.
func NewPerformanceService(db *sqlx.DB, logger *zap.Logger) *PerformanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PerformanceService{db: db, stores: NewStores, logger: logger}
}

// Summary returns the stored semester summary for a student, or a zero
// summary when nothing was recorded yet.
func (s *PerformanceService) Summary(ctx context.Context, studentID, semesterID string) (*models.AcademicPerformanceSummary, error) {
	summary, err := s.stores(s.db).Summaries.Get(ctx, studentID, models.PeriodSemester, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load summary")
	}
	if summary == nil {
		semID := semesterID
		return &models.AcademicPerformanceSummary{
			StudentID:  studentID,
			PeriodType: models.PeriodSemester,
			SemesterID: &semID,
		}, nil
	}
	return summary, nil
}

// ListForStudent returns all stored summaries of a student.
func (s *PerformanceService) ListForStudent(ctx context.Context, studentID string) ([]models.AcademicPerformanceSummary, error) {
	summaries, err := s.stores(s.db).Summaries.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list summaries")
	}
	return summaries, nil
}

// Recompute rebuilds the semester summary for a student from the canonical
// grades. Running it any number of times yields the same row.
func (s *PerformanceService) Recompute(ctx context.Context, studentID, semesterID string) (*models.AcademicPerformanceSummary, error) {
	st := s.stores(s.db)
	if err := recomputeSummary(ctx, st, studentID, semesterID); err != nil {
		return nil, appErrors.FromError(err)
	}
	summary, err := st.Summaries.Get(ctx, studentID, models.PeriodSemester, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load summary")
	}
	return summary, nil
}

// recomputeSummary folds the student's non-annulled grades for the semester
// into a fresh summary row and overwrites the stored one. The counters are
// never incremented in place, so replaying the same grade change cannot
// drift them.
func recomputeSummary(ctx context.Context, st Stores, studentID, semesterID string) error {
	grades, err := st.Grades.ListForPeriod(ctx, studentID, semesterID)
	if err != nil {
		return err
	}
	subjectIDs := make([]string, 0, len(grades))
	seen := make(map[string]bool, len(grades))
	for _, g := range grades {
		if !seen[g.SubjectID] {
			seen[g.SubjectID] = true
			subjectIDs = append(subjectIDs, g.SubjectID)
		}
	}
	credits, err := st.Structure.SubjectCredits(ctx, subjectIDs)
	if err != nil {
		return err
	}
	totals, err := st.Attendance.Totals(ctx, studentID, semesterID)
	if err != nil {
		return err
	}
	summary := foldSummary(grades, credits, totals)
	summary.StudentID = studentID
	summary.PeriodType = models.PeriodSemester
	semID := semesterID
	summary.SemesterID = &semID
	if semester, err := st.Structure.GetSemester(ctx, semesterID); err != nil {
		return err
	} else if semester != nil {
		summary.AcademicYearID = &semester.AcademicYearID
	}
	return st.Summaries.Upsert(ctx, &summary)
}

// foldSummary computes the aggregate counters from scratch. Grades are
// bucketed by percentage band: the explicit percentage when recorded,
// otherwise the floor of the value's band. A subject earns its credits when
// none of its grades fail.
func foldSummary(grades []models.Grade, credits map[string]int, totals models.AttendanceTotals) models.AcademicPerformanceSummary {
	var summary models.AcademicPerformanceSummary
	subjectPassing := make(map[string]bool)
	var gpaSum float64
	for _, g := range grades {
		pct := g.ValueMinPercent
		if g.Percentage != nil {
			pct = *g.Percentage
		}
		switch {
		case !g.IsPassing:
			summary.FailedCount++
		case pct >= models.ExcellentThreshold:
			summary.ExcellentCount++
		case pct >= models.GoodThreshold:
			summary.GoodCount++
		default:
			summary.SatisfactoryCount++
		}
		gpaSum += g.NumericValue
		if passing, ok := subjectPassing[g.SubjectID]; !ok {
			subjectPassing[g.SubjectID] = g.IsPassing
		} else {
			subjectPassing[g.SubjectID] = passing && g.IsPassing
		}
	}
	summary.TotalSubjects = len(subjectPassing)
	if len(grades) > 0 {
		summary.GPA = round2(gpaSum / float64(len(grades)))
	}
	for subjectID, passing := range subjectPassing {
		c := credits[subjectID]
		summary.TotalCredits += c
		if passing {
			summary.EarnedCredits += c
		}
	}
	summary.TotalClasses = totals.TotalClasses
	summary.AttendedClasses = totals.AttendedClasses
	if totals.TotalClasses > 0 {
		summary.AttendancePercentage = round2(float64(totals.AttendedClasses) / float64(totals.TotalClasses) * 100)
	}
	return summary
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
