package models

import "time"

// RecordStatus is the record book lifecycle.
type RecordStatus string

const (
	RecordActive   RecordStatus = "active"
	RecordArchived RecordStatus = "archived"
	RecordLost     RecordStatus = "lost"
	RecordClosed   RecordStatus = "closed"
)

// StudentRecord is a student's record book; one per student.
type StudentRecord struct {
	ID           string       `db:"id" json:"id"`
	StudentID    string       `db:"student_id" json:"student_id"`
	RecordNumber string       `db:"record_number" json:"record_number"`
	IssueDate    time.Time    `db:"issue_date" json:"issue_date"`
	ClosingDate  *time.Time   `db:"closing_date" json:"closing_date,omitempty"`
	Status       RecordStatus `db:"status" json:"status"`
	Comments     *string      `db:"comments" json:"comments,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// RecordEntryType classifies a record book entry.
type RecordEntryType string

const (
	EntryExam        RecordEntryType = "exam"
	EntryCredit      RecordEntryType = "credit"
	EntryCreditGrade RecordEntryType = "credit_grade"
	EntryCourseWork  RecordEntryType = "course_work"
	EntryPractice    RecordEntryType = "practice"
	EntryStateExam   RecordEntryType = "state_exam"
	EntryThesis      RecordEntryType = "thesis"
	EntryOther       RecordEntryType = "other"
)

// EntryTypeForSheet maps a sheet type to the record entry type written on
// sheet approval.
func EntryTypeForSheet(sheetType SheetType) RecordEntryType {
	switch sheetType {
	case SheetTypeExam:
		return EntryExam
	case SheetTypeCredit:
		return EntryCredit
	case SheetTypeCreditGrade:
		return EntryCreditGrade
	case SheetTypeCourseWork:
		return EntryCourseWork
	case SheetTypePractice:
		return EntryPractice
	default:
		return EntryOther
	}
}

// RecordEntry is one line in a record book; unique per
// (record, subject, semester, entry_type).
type RecordEntry struct {
	ID               string          `db:"id" json:"id"`
	RecordID         string          `db:"record_id" json:"record_id"`
	SubjectID        string          `db:"subject_id" json:"subject_id"`
	SemesterID       string          `db:"semester_id" json:"semester_id"`
	EntryType        RecordEntryType `db:"entry_type" json:"entry_type"`
	Hours            *int            `db:"hours" json:"hours,omitempty"`
	Credits          *int            `db:"credits" json:"credits,omitempty"`
	GradeSystemID    string          `db:"grade_system_id" json:"grade_system_id"`
	GradeValueID     string          `db:"grade_value_id" json:"grade_value_id"`
	GradeSheetItemID *string         `db:"grade_sheet_item_id" json:"grade_sheet_item_id,omitempty"`
	Date             time.Time       `db:"date" json:"date"`
	RecordedBy       *string         `db:"recorded_by" json:"recorded_by,omitempty"`
	Comments         *string         `db:"comments" json:"comments,omitempty"`
}
