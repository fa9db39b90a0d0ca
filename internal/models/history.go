package models

import "time"

// ChangeType classifies a grade history transition.
type ChangeType string

const (
	ChangeTypeCreate ChangeType = "create"
	ChangeTypeUpdate ChangeType = "update"
	ChangeTypeDelete ChangeType = "delete"
)

// GradeHistory is an append-only ledger row recording one grade value
// transition. Rows are never mutated after insertion.
type GradeHistory struct {
	ID               string     `db:"id" json:"id"`
	StudentID        string     `db:"student_id" json:"student_id"`
	SubjectID        string     `db:"subject_id" json:"subject_id"`
	SemesterID       string     `db:"semester_id" json:"semester_id"`
	GradeSheetItemID *string    `db:"grade_sheet_item_id" json:"grade_sheet_item_id,omitempty"`
	PreviousValueID  *string    `db:"previous_value_id" json:"previous_value_id,omitempty"`
	NewValueID       *string    `db:"new_value_id" json:"new_value_id,omitempty"`
	ChangedBy        *string    `db:"changed_by" json:"changed_by,omitempty"`
	ChangedAt        time.Time  `db:"changed_at" json:"changed_at"`
	ChangeType       ChangeType `db:"change_type" json:"change_type"`
	Comments         *string    `db:"comments" json:"comments,omitempty"`
}

// HistoryFilter narrows history listings.
type HistoryFilter struct {
	StudentID  string
	SubjectID  string
	SemesterID string
	Page       int
	PageSize   int
}
