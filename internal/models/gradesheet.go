package models

import "time"

// SheetType identifies the kind of assessment a grade sheet records.
type SheetType string

const (
	SheetTypeExam        SheetType = "exam"
	SheetTypeCredit      SheetType = "credit"
	SheetTypeCreditGrade SheetType = "credit_grade"
	SheetTypeCourseWork  SheetType = "course_work"
	SheetTypePractice    SheetType = "practice"
	SheetTypeFinal       SheetType = "final"
)

// SheetStatus is the grade sheet lifecycle.
type SheetStatus string

const (
	SheetStatusDraft      SheetStatus = "draft"
	SheetStatusIssued     SheetStatus = "issued"
	SheetStatusInProgress SheetStatus = "in_progress"
	SheetStatusCompleted  SheetStatus = "completed"
	SheetStatusVerified   SheetStatus = "verified"
	SheetStatusApproved   SheetStatus = "approved"
	SheetStatusArchived   SheetStatus = "archived"
)

// ItemStatus is the per-student state within a sheet.
type ItemStatus string

const (
	ItemStatusNotGraded  ItemStatus = "not_graded"
	ItemStatusGraded     ItemStatus = "graded"
	ItemStatusAbsent     ItemStatus = "absent"
	ItemStatusNotAllowed ItemStatus = "not_allowed"
)

// GradeSheet is a batch assessment document for one group+subject+semester.
// Items are owned by the sheet and cannot outlive it.
type GradeSheet struct {
	ID             string      `db:"id" json:"id"`
	Number         string      `db:"number" json:"number"`
	SubjectID      string      `db:"subject_id" json:"subject_id"`
	GroupID        string      `db:"group_id" json:"group_id"`
	SemesterID     string      `db:"semester_id" json:"semester_id"`
	SheetType      SheetType   `db:"sheet_type" json:"sheet_type"`
	TeacherID      string      `db:"teacher_id" json:"teacher_id"`
	GradeSystemID  string      `db:"grade_system_id" json:"grade_system_id"`
	Status         SheetStatus `db:"status" json:"status"`
	IssueDate      time.Time   `db:"issue_date" json:"issue_date"`
	ExpirationDate *time.Time  `db:"expiration_date" json:"expiration_date,omitempty"`
	Comments       *string     `db:"comments" json:"comments,omitempty"`
	IssuedBy       *string     `db:"issued_by" json:"issued_by,omitempty"`
	VerifiedBy     *string     `db:"verified_by" json:"verified_by,omitempty"`
	ApprovedBy     *string     `db:"approved_by" json:"approved_by,omitempty"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}

// GradeSheetItem is one student's row in a sheet; unique per (sheet, student).
type GradeSheetItem struct {
	ID           string     `db:"id" json:"id"`
	GradeSheetID string     `db:"grade_sheet_id" json:"grade_sheet_id"`
	StudentID    string     `db:"student_id" json:"student_id"`
	GradeValueID *string    `db:"grade_value_id" json:"grade_value_id,omitempty"`
	Points       *float64   `db:"points" json:"points,omitempty"`
	Percentage   *float64   `db:"percentage" json:"percentage,omitempty"`
	Status       ItemStatus `db:"status" json:"status"`
	GradedAt     *time.Time `db:"graded_at" json:"graded_at,omitempty"`
	GradedBy     *string    `db:"graded_by" json:"graded_by,omitempty"`
	Comments     *string    `db:"comments" json:"comments,omitempty"`
}

// SheetFilter narrows grade sheet listings.
type SheetFilter struct {
	SubjectID  string
	GroupID    string
	SemesterID string
	SheetType  *SheetType
	Status     *SheetStatus
	Page       int
	PageSize   int
}

// GradeTypeCodeForSheet maps a sheet type onto the grade type code used for
// propagation into the canonical grade table.
func GradeTypeCodeForSheet(sheetType SheetType) string {
	switch sheetType {
	case SheetTypeExam:
		return "exam"
	case SheetTypeCredit, SheetTypeCreditGrade:
		return "credit"
	case SheetTypeCourseWork:
		return "course_work"
	case SheetTypePractice:
		return "practice"
	case SheetTypeFinal:
		return "final"
	default:
		return "current"
	}
}
