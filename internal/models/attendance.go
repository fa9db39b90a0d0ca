package models

import "time"

// AttendanceStatus marks presence at a single class.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceSick    AttendanceStatus = "sick"
	AttendanceExcused AttendanceStatus = "excused"
)

// Valid reports whether the status is a known attendance state.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceSick, AttendanceExcused:
		return true
	}
	return false
}

// Attendance is one student's presence record for one class; unique per
// (student, class).
type Attendance struct {
	ID          string           `db:"id" json:"id"`
	StudentID   string           `db:"student_id" json:"student_id"`
	ClassID     string           `db:"class_id" json:"class_id"`
	Status      AttendanceStatus `db:"status" json:"status"`
	LateMinutes *int             `db:"late_minutes" json:"late_minutes,omitempty"`
	Reason      *string          `db:"reason" json:"reason,omitempty"`
	MarkedBy    *string          `db:"marked_by" json:"marked_by,omitempty"`
	MarkedAt    time.Time        `db:"marked_at" json:"marked_at"`
}

// AttendanceSheetStatus tracks how complete a class journal is.
type AttendanceSheetStatus string

const (
	AttendanceSheetNotFilled       AttendanceSheetStatus = "not_filled"
	AttendanceSheetPartiallyFilled AttendanceSheetStatus = "partially_filled"
	AttendanceSheetFilled          AttendanceSheetStatus = "filled"
	AttendanceSheetVerified        AttendanceSheetStatus = "verified"
)

// AttendanceSheet is the journal for a single class; one per class.
type AttendanceSheet struct {
	ID        string                `db:"id" json:"id"`
	ClassID   string                `db:"class_id" json:"class_id"`
	FilledBy  *string               `db:"filled_by" json:"filled_by,omitempty"`
	Status    AttendanceSheetStatus `db:"status" json:"status"`
	Comments  *string               `db:"comments" json:"comments,omitempty"`
	CreatedAt time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt time.Time             `db:"updated_at" json:"updated_at"`
}

// AttendanceTotals aggregates presence counts for a student+semester.
type AttendanceTotals struct {
	TotalClasses    int `db:"total_classes"`
	AttendedClasses int `db:"attended_classes"`
}
