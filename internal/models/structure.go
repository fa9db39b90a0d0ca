package models

import "time"

// AcademicYear represents one academic year (e.g. 2025/2026).
type AcademicYear struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
}

// Semester is one half of an academic year.
type Semester struct {
	ID             string    `db:"id" json:"id"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	Name           string    `db:"name" json:"name"`
	Number         int       `db:"number" json:"number"`
	StartDate      time.Time `db:"start_date" json:"start_date"`
	EndDate        time.Time `db:"end_date" json:"end_date"`
}

// Subject is a taught discipline.
type Subject struct {
	ID      string  `db:"id" json:"id"`
	Code    string  `db:"code" json:"code"`
	Name    string  `db:"name" json:"name"`
	Credits *int    `db:"credits" json:"credits,omitempty"`
	Notes   *string `db:"notes" json:"notes,omitempty"`
}

// Group is a student study group.
type Group struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Year      int       `db:"year" json:"year"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StudentProfile links a user account to a study group.
type StudentProfile struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	GroupID     string    `db:"group_id" json:"group_id"`
	StudentCode string    `db:"student_code" json:"student_code"`
	EnrolledAt  time.Time `db:"enrolled_at" json:"enrolled_at"`
	FullName    string    `db:"full_name" json:"full_name"`
	Email       string    `db:"email" json:"email"`
}

// TeacherProfile links a user account to teaching metadata.
type TeacherProfile struct {
	ID         string  `db:"id" json:"id"`
	UserID     string  `db:"user_id" json:"user_id"`
	Department *string `db:"department" json:"department,omitempty"`
	Position   *string `db:"position" json:"position,omitempty"`
	FullName   string  `db:"full_name" json:"full_name"`
}

// Class is a single scheduled teaching session. The semester reference is
// resolved through the schedule chain, so it can be absent for orphaned
// classes; callers must treat a nil semester as an error.
type Class struct {
	ID         string    `db:"id" json:"id"`
	SubjectID  string    `db:"subject_id" json:"subject_id"`
	GroupID    string    `db:"group_id" json:"group_id"`
	TeacherID  string    `db:"teacher_id" json:"teacher_id"`
	SemesterID *string   `db:"semester_id" json:"semester_id,omitempty"`
	Date       time.Time `db:"date" json:"date"`
	Topic      *string   `db:"topic" json:"topic,omitempty"`
}
