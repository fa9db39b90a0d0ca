package models

import "time"

// PeriodType scopes a performance summary row.
type PeriodType string

const (
	PeriodSemester     PeriodType = "semester"
	PeriodAcademicYear PeriodType = "academic_year"
	PeriodAllTime      PeriodType = "all_time"
)

// Numeric thresholds bucketing a grade into the summary counters.
const (
	ExcellentThreshold    = 90.0
	GoodThreshold         = 75.0
	SatisfactoryThreshold = 60.0
)

// AcademicPerformanceSummary is the derived per-student aggregate for one
// period. One row per (student, period_type, semester); always recomputed
// from scratch so replays are idempotent.
type AcademicPerformanceSummary struct {
	ID                   string     `db:"id" json:"id"`
	StudentID            string     `db:"student_id" json:"student_id"`
	PeriodType           PeriodType `db:"period_type" json:"period_type"`
	SemesterID           *string    `db:"semester_id" json:"semester_id,omitempty"`
	AcademicYearID       *string    `db:"academic_year_id" json:"academic_year_id,omitempty"`
	TotalSubjects        int        `db:"total_subjects" json:"total_subjects"`
	ExcellentCount       int        `db:"excellent_count" json:"excellent_count"`
	GoodCount            int        `db:"good_count" json:"good_count"`
	SatisfactoryCount    int        `db:"satisfactory_count" json:"satisfactory_count"`
	FailedCount          int        `db:"failed_count" json:"failed_count"`
	GPA                  float64    `db:"gpa" json:"gpa"`
	TotalCredits         int        `db:"total_credits" json:"total_credits"`
	EarnedCredits        int        `db:"earned_credits" json:"earned_credits"`
	TotalClasses         int        `db:"total_classes" json:"total_classes"`
	AttendedClasses      int        `db:"attended_classes" json:"attended_classes"`
	AttendancePercentage float64    `db:"attendance_percentage" json:"attendance_percentage"`
	CalculatedAt         time.Time  `db:"calculated_at" json:"calculated_at"`
}
