package models

import "time"

// SiteSettings is the single pointer row naming the current academic
// period and the default grade system. Exactly one row exists.
type SiteSettings struct {
	ID                    string    `db:"id" json:"id"`
	CurrentAcademicYearID *string   `db:"current_academic_year_id" json:"current_academic_year_id,omitempty"`
	CurrentSemesterID     *string   `db:"current_semester_id" json:"current_semester_id,omitempty"`
	DefaultGradeSystemID  *string   `db:"default_grade_system_id" json:"default_grade_system_id,omitempty"`
	UpdatedBy             *string   `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}
