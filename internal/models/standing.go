package models

import "time"

// StandingStatus enumerates academic standing states. Only good, warning,
// probation and risk_expulsion are reachable by automatic derivation; the
// rest are set manually by deanery staff.
type StandingStatus string

const (
	StandingGood          StandingStatus = "good"
	StandingWarning       StandingStatus = "warning"
	StandingProbation     StandingStatus = "probation"
	StandingAcademicLeave StandingStatus = "academic_leave"
	StandingRiskExpulsion StandingStatus = "risk_expulsion"
	StandingExpulsion     StandingStatus = "expulsion"
	StandingReinstated    StandingStatus = "reinstated"
	StandingGraduated     StandingStatus = "graduated"
	StandingTransferred   StandingStatus = "transferred"
)

// StandingForDebtCount maps an outstanding debt count onto the derived
// standing status.
func StandingForDebtCount(count int) StandingStatus {
	switch {
	case count == 0:
		return StandingGood
	case count <= 2:
		return StandingWarning
	case count <= 4:
		return StandingProbation
	default:
		return StandingRiskExpulsion
	}
}

// AcademicStanding is one interval of a student's standing history. At most
// one row per student has a null end date (the open standing).
type AcademicStanding struct {
	ID         string         `db:"id" json:"id"`
	StudentID  string         `db:"student_id" json:"student_id"`
	Status     StandingStatus `db:"status" json:"status"`
	StartDate  time.Time      `db:"start_date" json:"start_date"`
	EndDate    *time.Time     `db:"end_date" json:"end_date,omitempty"`
	Reason     *string        `db:"reason" json:"reason,omitempty"`
	SemesterID *string        `db:"semester_id" json:"semester_id,omitempty"`
	ChangedBy  *string        `db:"changed_by" json:"changed_by,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// DebtType classifies an academic debt.
type DebtType string

const (
	DebtTypeExam       DebtType = "exam"
	DebtTypeCredit     DebtType = "credit"
	DebtTypeCourseWork DebtType = "course_work"
	DebtTypePractice   DebtType = "practice"
	DebtTypeAttendance DebtType = "attendance"
	DebtTypeOther      DebtType = "other"
)

// DebtStatus is the academic debt state machine.
type DebtStatus string

const (
	DebtStatusActive   DebtStatus = "active"
	DebtStatusExtended DebtStatus = "extended"
	DebtStatusCleared  DebtStatus = "cleared"
	DebtStatusExpired  DebtStatus = "expired"
	DebtStatusWaived   DebtStatus = "waived"
)

// OutstandingDebtStatuses are the states counted toward standing derivation.
var OutstandingDebtStatuses = []DebtStatus{DebtStatusActive, DebtStatusExtended, DebtStatusExpired}

// ClearableDebtStatuses are the states a passing grade clears.
var ClearableDebtStatuses = []DebtStatus{DebtStatusActive, DebtStatusExtended}

// AcademicDebt is an outstanding unmet requirement blocking progression.
type AcademicDebt struct {
	ID               string     `db:"id" json:"id"`
	StudentID        string     `db:"student_id" json:"student_id"`
	SubjectID        string     `db:"subject_id" json:"subject_id"`
	SemesterID       string     `db:"semester_id" json:"semester_id"`
	DebtType         DebtType   `db:"debt_type" json:"debt_type"`
	Description      *string    `db:"description" json:"description,omitempty"`
	Deadline         time.Time  `db:"deadline" json:"deadline"`
	Status           DebtStatus `db:"status" json:"status"`
	ClearedAt        *time.Time `db:"cleared_at" json:"cleared_at,omitempty"`
	GradeSheetItemID *string    `db:"grade_sheet_item_id" json:"grade_sheet_item_id,omitempty"`
	CreatedBy        *string    `db:"created_by" json:"created_by,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// RetakeStatus tracks a retake permission lifecycle.
type RetakeStatus string

const (
	RetakeIssued   RetakeStatus = "issued"
	RetakeUsed     RetakeStatus = "used"
	RetakeExpired  RetakeStatus = "expired"
	RetakeCanceled RetakeStatus = "canceled"
)

// RetakePermission authorises a re-examination attempt for a debt.
type RetakePermission struct {
	ID             string       `db:"id" json:"id"`
	StudentID      string       `db:"student_id" json:"student_id"`
	AcademicDebtID *string      `db:"academic_debt_id" json:"academic_debt_id,omitempty"`
	SubjectID      string       `db:"subject_id" json:"subject_id"`
	SemesterID     string       `db:"semester_id" json:"semester_id"`
	AttemptNumber  int          `db:"attempt_number" json:"attempt_number"`
	IssueDate      time.Time    `db:"issue_date" json:"issue_date"`
	ExpirationDate time.Time    `db:"expiration_date" json:"expiration_date"`
	Status         RetakeStatus `db:"status" json:"status"`
	GradeSheetID   *string      `db:"grade_sheet_id" json:"grade_sheet_id,omitempty"`
	CreatedBy      *string      `db:"created_by" json:"created_by,omitempty"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}
