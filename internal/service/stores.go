package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/uniplex/academic-api/internal/models"
	"github.com/uniplex/academic-api/internal/repository"
)

type gradeStore interface {
	Upsert(ctx context.Context, grade *models.Grade) (*models.Grade, error)
	GetByKey(ctx context.Context, studentID, subjectID, semesterID, gradeTypeID string) (*models.Grade, error)
	GetByID(ctx context.Context, id string) (*models.Grade, error)
	List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, int, error)
	ListForPeriod(ctx context.Context, studentID, semesterID string) ([]models.Grade, error)
	SetStatus(ctx context.Context, id string, status models.GradeStatus) error
}

type vocabularyStore interface {
	ListSystems(ctx context.Context) ([]models.GradeSystem, error)
	GetSystem(ctx context.Context, id string) (*models.GradeSystem, error)
	CreateSystem(ctx context.Context, system *models.GradeSystem) error
	ListValues(ctx context.Context, systemID string) ([]models.GradeValue, error)
	GetValue(ctx context.Context, id string) (*models.GradeValue, error)
	ValueForPercent(ctx context.Context, systemID string, percent float64) (*models.GradeValue, error)
	ValueByLabel(ctx context.Context, systemID, label string) (*models.GradeValue, error)
	CreateValue(ctx context.Context, value *models.GradeValue) error
	ListTypes(ctx context.Context) ([]models.GradeType, error)
	TypeByCode(ctx context.Context, code string) (*models.GradeType, error)
	CreateType(ctx context.Context, gt *models.GradeType) error
	Conversion(ctx context.Context, sourceValueID, targetSystemID string) (*models.GradeValue, error)
	CreateScale(ctx context.Context, scale *models.GradingScale) error
	CreateConversion(ctx context.Context, conv *models.GradeConversion) error
}

type sheetStore interface {
	Create(ctx context.Context, sheet *models.GradeSheet) error
	GetByID(ctx context.Context, id string) (*models.GradeSheet, error)
	List(ctx context.Context, filter models.SheetFilter) ([]models.GradeSheet, int, error)
	SetStatus(ctx context.Context, id string, status models.SheetStatus, actorID *string) error
	InsertItems(ctx context.Context, items []models.GradeSheetItem) error
	GetItem(ctx context.Context, itemID string) (*models.GradeSheetItem, error)
	ListItems(ctx context.Context, sheetID string) ([]models.GradeSheetItem, error)
	UpdateItem(ctx context.Context, item *models.GradeSheetItem) error
	CountUngraded(ctx context.Context, sheetID string) (int, error)
}

type historyStore interface {
	Append(ctx context.Context, entry *models.GradeHistory) error
	List(ctx context.Context, filter models.HistoryFilter) ([]models.GradeHistory, int, error)
}

type summaryStore interface {
	Upsert(ctx context.Context, summary *models.AcademicPerformanceSummary) error
	Get(ctx context.Context, studentID string, periodType models.PeriodType, semesterID string) (*models.AcademicPerformanceSummary, error)
	ListForStudent(ctx context.Context, studentID string) ([]models.AcademicPerformanceSummary, error)
}

type standingStore interface {
	OpenStanding(ctx context.Context, studentID string) (*models.AcademicStanding, error)
	CloseStanding(ctx context.Context, id string, endDate time.Time) error
	CreateStanding(ctx context.Context, standing *models.AcademicStanding) error
	StandingHistory(ctx context.Context, studentID string) ([]models.AcademicStanding, error)
	CountOutstandingDebts(ctx context.Context, studentID string) (int, error)
	ClearableDebts(ctx context.Context, studentID, subjectID, semesterID string) ([]models.AcademicDebt, error)
	CreateDebt(ctx context.Context, debt *models.AcademicDebt) error
	GetDebt(ctx context.Context, id string) (*models.AcademicDebt, error)
	ListDebts(ctx context.Context, studentID string, status *models.DebtStatus) ([]models.AcademicDebt, error)
	SetDebtStatus(ctx context.Context, id string, status models.DebtStatus, clearedAt *time.Time) error
	ExtendDebt(ctx context.Context, id string, deadline time.Time) error
	CreateRetake(ctx context.Context, retake *models.RetakePermission) error
	MaxRetakeAttempt(ctx context.Context, studentID, subjectID, semesterID string) (int, error)
	SetRetakeStatus(ctx context.Context, id string, status models.RetakeStatus) error
	ListRetakes(ctx context.Context, studentID string) ([]models.RetakePermission, error)
}

type attendanceStore interface {
	Upsert(ctx context.Context, att *models.Attendance) error
	ListForClass(ctx context.Context, classID string) ([]models.Attendance, error)
	ListForStudent(ctx context.Context, studentID, semesterID string) ([]models.Attendance, error)
	Totals(ctx context.Context, studentID, semesterID string) (models.AttendanceTotals, error)
	GetSheet(ctx context.Context, classID string) (*models.AttendanceSheet, error)
	UpsertSheet(ctx context.Context, sheet *models.AttendanceSheet) error
}

type recordStore interface {
	Create(ctx context.Context, record *models.StudentRecord) error
	GetByStudent(ctx context.Context, studentID string) (*models.StudentRecord, error)
	SetStatus(ctx context.Context, id string, status models.RecordStatus, closingDate *time.Time) error
	UpsertEntry(ctx context.Context, entry *models.RecordEntry) error
	ListEntries(ctx context.Context, recordID string) ([]models.RecordEntry, error)
}

type studentStore interface {
	GetByID(ctx context.Context, id string) (*models.StudentProfile, error)
	GetByUserID(ctx context.Context, userID string) (*models.StudentProfile, error)
	GetByCode(ctx context.Context, code string) (*models.StudentProfile, error)
	ListByGroup(ctx context.Context, groupID string) ([]models.StudentProfile, error)
	GetTeacherByUserID(ctx context.Context, userID string) (*models.TeacherProfile, error)
}

type structureStore interface {
	ListAcademicYears(ctx context.Context) ([]models.AcademicYear, error)
	CreateAcademicYear(ctx context.Context, year *models.AcademicYear) error
	GetSemester(ctx context.Context, id string) (*models.Semester, error)
	ListSemesters(ctx context.Context, academicYearID string) ([]models.Semester, error)
	CreateSemester(ctx context.Context, semester *models.Semester) error
	GetSubject(ctx context.Context, id string) (*models.Subject, error)
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	CreateSubject(ctx context.Context, subject *models.Subject) error
	SubjectCredits(ctx context.Context, subjectIDs []string) (map[string]int, error)
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	CreateGroup(ctx context.Context, group *models.Group) error
	GetClass(ctx context.Context, id string) (*models.Class, error)
}

// Stores bundles the repositories the grading pipeline touches, all bound
// to the same executor so a chain of writes shares one transaction.
type Stores struct {
	Grades     gradeStore
	Vocabulary vocabularyStore
	Sheets     sheetStore
	History    historyStore
	Summaries  summaryStore
	Standings  standingStore
	Attendance attendanceStore
	Records    recordStore
	Students   studentStore
	Structure  structureStore
}

// NewStores binds real repositories to the given executor, which may be the
// pool or an open transaction.
func NewStores(ext sqlx.ExtContext) Stores {
	return Stores{
		Grades:     repository.NewGradeRepository(ext),
		Vocabulary: repository.NewGradeSystemRepository(ext),
		Sheets:     repository.NewGradeSheetRepository(ext),
		History:    repository.NewGradeHistoryRepository(ext),
		Summaries:  repository.NewPerformanceRepository(ext),
		Standings:  repository.NewStandingRepository(ext),
		Attendance: repository.NewAttendanceRepository(ext),
		Records:    repository.NewRecordRepository(ext),
		Students:   repository.NewStudentRepository(ext),
		Structure:  repository.NewStructureRepository(ext),
	}
}

// storesFactory lets tests swap the repository set handed to a transaction.
type storesFactory func(ext sqlx.ExtContext) Stores
