package models

import "time"

// GradeSource indicates where a grade originated.
type GradeSource string

const (
	SourceManual     GradeSource = "manual"
	SourceAuto       GradeSource = "auto"
	SourceImported   GradeSource = "imported"
	SourceCalculated GradeSource = "calculated"
)

// GradeStatus is the lifecycle status of a grade record.
type GradeStatus string

const (
	GradeStatusDraft     GradeStatus = "draft"
	GradeStatusFinal     GradeStatus = "final"
	GradeStatusCorrected GradeStatus = "corrected"
	GradeStatusAnnulled  GradeStatus = "annulled"
)

// Grade is the canonical fact that a student received a grade in a subject
// for a semester under a grade type. Conceptually unique per
// (student, subject, semester, grade_type) and maintained by upsert.
type Grade struct {
	ID            string      `db:"id" json:"id"`
	StudentID     string      `db:"student_id" json:"student_id"`
	SubjectID     string      `db:"subject_id" json:"subject_id"`
	SemesterID    string      `db:"semester_id" json:"semester_id"`
	GradeTypeID   string      `db:"grade_type_id" json:"grade_type_id"`
	GradeSystemID string      `db:"grade_system_id" json:"grade_system_id"`
	GradeValueID  string      `db:"grade_value_id" json:"grade_value_id"`
	Points        *float64    `db:"points" json:"points,omitempty"`
	MaxPoints     *float64    `db:"max_points" json:"max_points,omitempty"`
	Percentage    *float64    `db:"percentage" json:"percentage,omitempty"`
	Source        GradeSource `db:"source" json:"source"`
	Status        GradeStatus `db:"status" json:"status"`
	Comments      *string     `db:"comments" json:"comments,omitempty"`
	Date          time.Time   `db:"date" json:"date"`
	GradedBy      *string     `db:"graded_by" json:"graded_by,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`

	// Denormalised value fields populated by list queries.
	ValueLabel      string  `db:"value_label" json:"value_label,omitempty"`
	NumericValue    float64 `db:"numeric_value" json:"numeric_value,omitempty"`
	IsPassing       bool    `db:"is_passing" json:"is_passing,omitempty"`
	ValueMinPercent float64 `db:"value_min_percent" json:"-"`
}

// GradeFilter narrows grade listings.
type GradeFilter struct {
	StudentID   string
	SubjectID   string
	SemesterID  string
	GradeTypeID string
	Status      *GradeStatus
	Page        int
	PageSize    int
}
