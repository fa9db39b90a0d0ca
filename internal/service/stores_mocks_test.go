package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/uniplex/academic-api/internal/models"
)

// newServiceDB returns a sqlmock-backed pool for services that open
// transactions. Callers set Begin/Commit expectations per transactional
// operation.
func newServiceDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

// memStores is an in-memory repository set shared across a test. The
// factory hands the same instances to both pool-scoped and tx-scoped
// lookups, so assertions can inspect state after the call.
type memStores struct {
	grades     *memGradeStore
	vocabulary *memVocabularyStore
	sheets     *memSheetStore
	history    *memHistoryStore
	summaries  *memSummaryStore
	standings  *memStandingStore
	attendance *memAttendanceStore
	records    *memRecordStore
	students   *memStudentStore
	structure  *memStructureStore
}

func newMemStores() *memStores {
	return &memStores{
		grades:     &memGradeStore{grades: map[string]*models.Grade{}},
		vocabulary: &memVocabularyStore{values: map[string]*models.GradeValue{}, systems: map[string]*models.GradeSystem{}, types: map[string]*models.GradeType{}, conversions: map[string]*models.GradeValue{}},
		sheets:     &memSheetStore{sheets: map[string]*models.GradeSheet{}, items: map[string]*models.GradeSheetItem{}},
		history:    &memHistoryStore{},
		summaries:  &memSummaryStore{rows: map[string]*models.AcademicPerformanceSummary{}},
		standings:  &memStandingStore{debts: map[string]*models.AcademicDebt{}},
		attendance: &memAttendanceStore{},
		records:    &memRecordStore{records: map[string]*models.StudentRecord{}},
		students:   &memStudentStore{byID: map[string]*models.StudentProfile{}},
		structure:  &memStructureStore{groups: map[string]*models.Group{}, subjects: map[string]*models.Subject{}, semesters: map[string]*models.Semester{}, classes: map[string]*models.Class{}},
	}
}

func (m *memStores) factory() storesFactory {
	return func(ext sqlx.ExtContext) Stores {
		return Stores{
			Grades:     m.grades,
			Vocabulary: m.vocabulary,
			Sheets:     m.sheets,
			History:    m.history,
			Summaries:  m.summaries,
			Standings:  m.standings,
			Attendance: m.attendance,
			Records:    m.records,
			Students:   m.students,
			Structure:  m.structure,
		}
	}
}

type memGradeStore struct {
	grades map[string]*models.Grade
	seq    int
}

func gradeKey(studentID, subjectID, semesterID, gradeTypeID string) string {
	return studentID + "|" + subjectID + "|" + semesterID + "|" + gradeTypeID
}

func (m *memGradeStore) Upsert(ctx context.Context, grade *models.Grade) (*models.Grade, error) {
	key := gradeKey(grade.StudentID, grade.SubjectID, grade.SemesterID, grade.GradeTypeID)
	previous := m.grades[key]
	if previous != nil {
		grade.ID = previous.ID
	} else {
		m.seq++
		grade.ID = fmt.Sprintf("grade-%d", m.seq)
	}
	clone := *grade
	m.grades[key] = &clone
	if previous == nil {
		return nil, nil
	}
	prev := *previous
	return &prev, nil
}

func (m *memGradeStore) GetByKey(ctx context.Context, studentID, subjectID, semesterID, gradeTypeID string) (*models.Grade, error) {
	if g, ok := m.grades[gradeKey(studentID, subjectID, semesterID, gradeTypeID)]; ok {
		clone := *g
		return &clone, nil
	}
	return nil, nil
}

func (m *memGradeStore) GetByID(ctx context.Context, id string) (*models.Grade, error) {
	for _, g := range m.grades {
		if g.ID == id {
			clone := *g
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memGradeStore) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, int, error) {
	var out []models.Grade
	for _, g := range m.grades {
		if filter.StudentID != "" && g.StudentID != filter.StudentID {
			continue
		}
		out = append(out, *g)
	}
	return out, len(out), nil
}

func (m *memGradeStore) ListForPeriod(ctx context.Context, studentID, semesterID string) ([]models.Grade, error) {
	var out []models.Grade
	for _, g := range m.grades {
		if g.StudentID != studentID || g.SemesterID != semesterID || g.Status == models.GradeStatusAnnulled {
			continue
		}
		out = append(out, *g)
	}
	return out, nil
}

func (m *memGradeStore) SetStatus(ctx context.Context, id string, status models.GradeStatus) error {
	for _, g := range m.grades {
		if g.ID == id {
			g.Status = status
			return nil
		}
	}
	return fmt.Errorf("grade %s not found", id)
}

type memVocabularyStore struct {
	values      map[string]*models.GradeValue
	systems     map[string]*models.GradeSystem
	types       map[string]*models.GradeType
	conversions map[string]*models.GradeValue // sourceValueID|targetSystemID
}

func (m *memVocabularyStore) addValue(v models.GradeValue) *models.GradeValue {
	clone := v
	m.values[v.ID] = &clone
	return &clone
}

func (m *memVocabularyStore) ListSystems(ctx context.Context) ([]models.GradeSystem, error) {
	var out []models.GradeSystem
	for _, s := range m.systems {
		out = append(out, *s)
	}
	return out, nil
}

func (m *memVocabularyStore) GetSystem(ctx context.Context, id string) (*models.GradeSystem, error) {
	if s, ok := m.systems[id]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, nil
}

func (m *memVocabularyStore) CreateSystem(ctx context.Context, system *models.GradeSystem) error {
	if system.ID == "" {
		system.ID = fmt.Sprintf("system-%d", len(m.systems)+1)
	}
	clone := *system
	m.systems[system.ID] = &clone
	return nil
}

func (m *memVocabularyStore) ListValues(ctx context.Context, systemID string) ([]models.GradeValue, error) {
	var out []models.GradeValue
	for _, v := range m.values {
		if v.GradeSystemID == systemID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (m *memVocabularyStore) GetValue(ctx context.Context, id string) (*models.GradeValue, error) {
	if v, ok := m.values[id]; ok {
		clone := *v
		return &clone, nil
	}
	return nil, nil
}

func (m *memVocabularyStore) ValueForPercent(ctx context.Context, systemID string, percent float64) (*models.GradeValue, error) {
	var best *models.GradeValue
	for _, v := range m.values {
		if v.GradeSystemID != systemID {
			continue
		}
		if percent < v.MinPercent || percent >= v.MaxPercent {
			continue
		}
		if best == nil || v.MaxPercent-v.MinPercent < best.MaxPercent-best.MinPercent {
			best = v
		}
	}
	if best == nil {
		return nil, nil
	}
	clone := *best
	return &clone, nil
}

func (m *memVocabularyStore) ValueByLabel(ctx context.Context, systemID, label string) (*models.GradeValue, error) {
	for _, v := range m.values {
		if v.GradeSystemID == systemID && v.Value == label {
			clone := *v
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memVocabularyStore) CreateValue(ctx context.Context, value *models.GradeValue) error {
	if value.ID == "" {
		value.ID = fmt.Sprintf("value-%d", len(m.values)+1)
	}
	clone := *value
	m.values[value.ID] = &clone
	return nil
}

func (m *memVocabularyStore) ListTypes(ctx context.Context) ([]models.GradeType, error) {
	var out []models.GradeType
	for _, t := range m.types {
		out = append(out, *t)
	}
	return out, nil
}

func (m *memVocabularyStore) TypeByCode(ctx context.Context, code string) (*models.GradeType, error) {
	if t, ok := m.types[code]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, nil
}

func (m *memVocabularyStore) CreateType(ctx context.Context, gt *models.GradeType) error {
	if gt.ID == "" {
		gt.ID = fmt.Sprintf("type-%d", len(m.types)+1)
	}
	clone := *gt
	m.types[gt.Code] = &clone
	return nil
}

func (m *memVocabularyStore) Conversion(ctx context.Context, sourceValueID, targetSystemID string) (*models.GradeValue, error) {
	if v, ok := m.conversions[sourceValueID+"|"+targetSystemID]; ok {
		clone := *v
		return &clone, nil
	}
	return nil, nil
}

func (m *memVocabularyStore) CreateScale(ctx context.Context, scale *models.GradingScale) error {
	return nil
}

func (m *memVocabularyStore) CreateConversion(ctx context.Context, conv *models.GradeConversion) error {
	target, ok := m.values[conv.TargetValueID]
	if !ok {
		return fmt.Errorf("target value %s not found", conv.TargetValueID)
	}
	m.conversions[conv.SourceValueID+"|"+target.GradeSystemID] = target
	return nil
}

type memSheetStore struct {
	sheets map[string]*models.GradeSheet
	items  map[string]*models.GradeSheetItem
	seq    int
}

func (m *memSheetStore) Create(ctx context.Context, sheet *models.GradeSheet) error {
	m.seq++
	if sheet.ID == "" {
		sheet.ID = fmt.Sprintf("sheet-%d", m.seq)
	}
	clone := *sheet
	m.sheets[sheet.ID] = &clone
	return nil
}

func (m *memSheetStore) GetByID(ctx context.Context, id string) (*models.GradeSheet, error) {
	if s, ok := m.sheets[id]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, nil
}

func (m *memSheetStore) List(ctx context.Context, filter models.SheetFilter) ([]models.GradeSheet, int, error) {
	var out []models.GradeSheet
	for _, s := range m.sheets {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *memSheetStore) SetStatus(ctx context.Context, id string, status models.SheetStatus, actorID *string) error {
	s, ok := m.sheets[id]
	if !ok {
		return fmt.Errorf("sheet %s not found", id)
	}
	s.Status = status
	return nil
}

func (m *memSheetStore) InsertItems(ctx context.Context, items []models.GradeSheetItem) error {
	for i := range items {
		m.seq++
		if items[i].ID == "" {
			items[i].ID = fmt.Sprintf("item-%d", m.seq)
		}
		clone := items[i]
		m.items[items[i].ID] = &clone
	}
	return nil
}

func (m *memSheetStore) GetItem(ctx context.Context, itemID string) (*models.GradeSheetItem, error) {
	if item, ok := m.items[itemID]; ok {
		clone := *item
		return &clone, nil
	}
	return nil, nil
}

func (m *memSheetStore) ListItems(ctx context.Context, sheetID string) ([]models.GradeSheetItem, error) {
	var out []models.GradeSheetItem
	for _, item := range m.items {
		if item.GradeSheetID == sheetID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *memSheetStore) UpdateItem(ctx context.Context, item *models.GradeSheetItem) error {
	if _, ok := m.items[item.ID]; !ok {
		return fmt.Errorf("item %s not found", item.ID)
	}
	clone := *item
	m.items[item.ID] = &clone
	return nil
}

func (m *memSheetStore) CountUngraded(ctx context.Context, sheetID string) (int, error) {
	count := 0
	for _, item := range m.items {
		if item.GradeSheetID == sheetID && item.Status == models.ItemStatusNotGraded {
			count++
		}
	}
	return count, nil
}

type memHistoryStore struct {
	entries []models.GradeHistory
}

func (m *memHistoryStore) Append(ctx context.Context, entry *models.GradeHistory) error {
	entry.ID = fmt.Sprintf("hist-%d", len(m.entries)+1)
	entry.ChangedAt = time.Now().UTC()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memHistoryStore) List(ctx context.Context, filter models.HistoryFilter) ([]models.GradeHistory, int, error) {
	var out []models.GradeHistory
	for _, e := range m.entries {
		if filter.StudentID != "" && e.StudentID != filter.StudentID {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

type memSummaryStore struct {
	rows    map[string]*models.AcademicPerformanceSummary
	upserts int
}

func summaryKey(studentID string, periodType models.PeriodType, semesterID string) string {
	return studentID + "|" + string(periodType) + "|" + semesterID
}

func (m *memSummaryStore) Upsert(ctx context.Context, summary *models.AcademicPerformanceSummary) error {
	m.upserts++
	sem := ""
	if summary.SemesterID != nil {
		sem = *summary.SemesterID
	}
	clone := *summary
	m.rows[summaryKey(summary.StudentID, summary.PeriodType, sem)] = &clone
	return nil
}

func (m *memSummaryStore) Get(ctx context.Context, studentID string, periodType models.PeriodType, semesterID string) (*models.AcademicPerformanceSummary, error) {
	if row, ok := m.rows[summaryKey(studentID, periodType, semesterID)]; ok {
		clone := *row
		return &clone, nil
	}
	return nil, nil
}

func (m *memSummaryStore) ListForStudent(ctx context.Context, studentID string) ([]models.AcademicPerformanceSummary, error) {
	var out []models.AcademicPerformanceSummary
	for _, row := range m.rows {
		if row.StudentID == studentID {
			out = append(out, *row)
		}
	}
	return out, nil
}

type memStandingStore struct {
	open    map[string]*models.AcademicStanding
	history []models.AcademicStanding
	debts   map[string]*models.AcademicDebt
	retakes []models.RetakePermission
	seq     int
}

func (m *memStandingStore) OpenStanding(ctx context.Context, studentID string) (*models.AcademicStanding, error) {
	if m.open == nil {
		return nil, nil
	}
	if s, ok := m.open[studentID]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, nil
}

func (m *memStandingStore) CloseStanding(ctx context.Context, id string, endDate time.Time) error {
	for studentID, s := range m.open {
		if s.ID == id {
			s.EndDate = &endDate
			m.history = append(m.history, *s)
			delete(m.open, studentID)
			return nil
		}
	}
	return fmt.Errorf("standing %s not open", id)
}

func (m *memStandingStore) CreateStanding(ctx context.Context, standing *models.AcademicStanding) error {
	if m.open == nil {
		m.open = map[string]*models.AcademicStanding{}
	}
	m.seq++
	standing.ID = fmt.Sprintf("standing-%d", m.seq)
	clone := *standing
	m.open[standing.StudentID] = &clone
	return nil
}

func (m *memStandingStore) StandingHistory(ctx context.Context, studentID string) ([]models.AcademicStanding, error) {
	var out []models.AcademicStanding
	for _, s := range m.history {
		if s.StudentID == studentID {
			out = append(out, s)
		}
	}
	if open, ok := m.open[studentID]; ok {
		out = append(out, *open)
	}
	return out, nil
}

func (m *memStandingStore) CountOutstandingDebts(ctx context.Context, studentID string) (int, error) {
	count := 0
	for _, d := range m.debts {
		if d.StudentID != studentID {
			continue
		}
		switch d.Status {
		case models.DebtStatusActive, models.DebtStatusExtended, models.DebtStatusExpired:
			count++
		}
	}
	return count, nil
}

func (m *memStandingStore) ClearableDebts(ctx context.Context, studentID, subjectID, semesterID string) ([]models.AcademicDebt, error) {
	var out []models.AcademicDebt
	for _, d := range m.debts {
		if d.StudentID != studentID || d.SubjectID != subjectID || d.SemesterID != semesterID {
			continue
		}
		if d.Status == models.DebtStatusActive || d.Status == models.DebtStatusExtended {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memStandingStore) CreateDebt(ctx context.Context, debt *models.AcademicDebt) error {
	m.seq++
	debt.ID = fmt.Sprintf("debt-%d", m.seq)
	clone := *debt
	m.debts[debt.ID] = &clone
	return nil
}

func (m *memStandingStore) GetDebt(ctx context.Context, id string) (*models.AcademicDebt, error) {
	if d, ok := m.debts[id]; ok {
		clone := *d
		return &clone, nil
	}
	return nil, nil
}

func (m *memStandingStore) ListDebts(ctx context.Context, studentID string, status *models.DebtStatus) ([]models.AcademicDebt, error) {
	var out []models.AcademicDebt
	for _, d := range m.debts {
		if d.StudentID != studentID {
			continue
		}
		if status != nil && d.Status != *status {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (m *memStandingStore) SetDebtStatus(ctx context.Context, id string, status models.DebtStatus, clearedAt *time.Time) error {
	d, ok := m.debts[id]
	if !ok {
		return fmt.Errorf("debt %s not found", id)
	}
	d.Status = status
	d.ClearedAt = clearedAt
	return nil
}

func (m *memStandingStore) ExtendDebt(ctx context.Context, id string, deadline time.Time) error {
	d, ok := m.debts[id]
	if !ok {
		return fmt.Errorf("debt %s not found", id)
	}
	d.Deadline = deadline
	d.Status = models.DebtStatusExtended
	return nil
}

func (m *memStandingStore) CreateRetake(ctx context.Context, retake *models.RetakePermission) error {
	m.seq++
	retake.ID = fmt.Sprintf("retake-%d", m.seq)
	m.retakes = append(m.retakes, *retake)
	return nil
}

func (m *memStandingStore) MaxRetakeAttempt(ctx context.Context, studentID, subjectID, semesterID string) (int, error) {
	max := 0
	for _, r := range m.retakes {
		if r.StudentID == studentID && r.SubjectID == subjectID && r.SemesterID == semesterID && r.AttemptNumber > max {
			max = r.AttemptNumber
		}
	}
	return max, nil
}

func (m *memStandingStore) SetRetakeStatus(ctx context.Context, id string, status models.RetakeStatus) error {
	for i := range m.retakes {
		if m.retakes[i].ID == id {
			m.retakes[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("retake %s not found", id)
}

func (m *memStandingStore) ListRetakes(ctx context.Context, studentID string) ([]models.RetakePermission, error) {
	var out []models.RetakePermission
	for _, r := range m.retakes {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memAttendanceStore struct {
	totals models.AttendanceTotals
	marks  []models.Attendance
	sheets map[string]*models.AttendanceSheet
}

func (m *memAttendanceStore) Upsert(ctx context.Context, att *models.Attendance) error {
	m.marks = append(m.marks, *att)
	return nil
}

func (m *memAttendanceStore) ListForClass(ctx context.Context, classID string) ([]models.Attendance, error) {
	var out []models.Attendance
	for _, a := range m.marks {
		if a.ClassID == classID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAttendanceStore) ListForStudent(ctx context.Context, studentID, semesterID string) ([]models.Attendance, error) {
	return nil, nil
}

func (m *memAttendanceStore) Totals(ctx context.Context, studentID, semesterID string) (models.AttendanceTotals, error) {
	return m.totals, nil
}

func (m *memAttendanceStore) GetSheet(ctx context.Context, classID string) (*models.AttendanceSheet, error) {
	if s, ok := m.sheets[classID]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, nil
}

func (m *memAttendanceStore) UpsertSheet(ctx context.Context, sheet *models.AttendanceSheet) error {
	if m.sheets == nil {
		m.sheets = map[string]*models.AttendanceSheet{}
	}
	clone := *sheet
	m.sheets[sheet.ClassID] = &clone
	return nil
}

type memRecordStore struct {
	records map[string]*models.StudentRecord
	entries []models.RecordEntry
	seq     int
}

func (m *memRecordStore) Create(ctx context.Context, record *models.StudentRecord) error {
	m.seq++
	record.ID = fmt.Sprintf("record-%d", m.seq)
	clone := *record
	m.records[record.StudentID] = &clone
	return nil
}

func (m *memRecordStore) GetByStudent(ctx context.Context, studentID string) (*models.StudentRecord, error) {
	if r, ok := m.records[studentID]; ok {
		clone := *r
		return &clone, nil
	}
	return nil, nil
}

func (m *memRecordStore) SetStatus(ctx context.Context, id string, status models.RecordStatus, closingDate *time.Time) error {
	for _, r := range m.records {
		if r.ID == id {
			r.Status = status
			r.ClosingDate = closingDate
			return nil
		}
	}
	return fmt.Errorf("record %s not found", id)
}

func (m *memRecordStore) UpsertEntry(ctx context.Context, entry *models.RecordEntry) error {
	m.seq++
	entry.ID = fmt.Sprintf("entry-%d", m.seq)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memRecordStore) ListEntries(ctx context.Context, recordID string) ([]models.RecordEntry, error) {
	var out []models.RecordEntry
	for _, e := range m.entries {
		if e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memStudentStore struct {
	byID     map[string]*models.StudentProfile
	teachers map[string]*models.TeacherProfile
}

func (m *memStudentStore) add(p models.StudentProfile) {
	clone := p
	m.byID[p.ID] = &clone
}

func (m *memStudentStore) GetByID(ctx context.Context, id string) (*models.StudentProfile, error) {
	if p, ok := m.byID[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, nil
}

func (m *memStudentStore) GetByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	for _, p := range m.byID {
		if p.UserID == userID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memStudentStore) GetByCode(ctx context.Context, code string) (*models.StudentProfile, error) {
	for _, p := range m.byID {
		if p.StudentCode == code {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memStudentStore) ListByGroup(ctx context.Context, groupID string) ([]models.StudentProfile, error) {
	var out []models.StudentProfile
	for _, p := range m.byID {
		if p.GroupID == groupID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStudentStore) GetTeacherByUserID(ctx context.Context, userID string) (*models.TeacherProfile, error) {
	if t, ok := m.teachers[userID]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, nil
}

type memStructureStore struct {
	years     []models.AcademicYear
	groups    map[string]*models.Group
	subjects  map[string]*models.Subject
	semesters map[string]*models.Semester
	classes   map[string]*models.Class
}

func (m *memStructureStore) ListAcademicYears(ctx context.Context) ([]models.AcademicYear, error) {
	return m.years, nil
}

func (m *memStructureStore) CreateAcademicYear(ctx context.Context, year *models.AcademicYear) error {
	year.ID = fmt.Sprintf("year-%d", len(m.years)+1)
	m.years = append(m.years, *year)
	return nil
}

func (m *memStructureStore) GetSemester(ctx context.Context, id string) (*models.Semester, error) {
	if s, ok := m.semesters[id]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, nil
}

func (m *memStructureStore) ListSemesters(ctx context.Context, academicYearID string) ([]models.Semester, error) {
	var out []models.Semester
	for _, s := range m.semesters {
		if s.AcademicYearID == academicYearID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memStructureStore) CreateSemester(ctx context.Context, semester *models.Semester) error {
	semester.ID = fmt.Sprintf("sem-%d", len(m.semesters)+1)
	clone := *semester
	m.semesters[semester.ID] = &clone
	return nil
}

func (m *memStructureStore) GetSubject(ctx context.Context, id string) (*models.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, nil
}

func (m *memStructureStore) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	var out []models.Subject
	for _, s := range m.subjects {
		out = append(out, *s)
	}
	return out, nil
}

func (m *memStructureStore) CreateSubject(ctx context.Context, subject *models.Subject) error {
	subject.ID = fmt.Sprintf("subj-%d", len(m.subjects)+1)
	clone := *subject
	m.subjects[subject.ID] = &clone
	return nil
}

func (m *memStructureStore) SubjectCredits(ctx context.Context, subjectIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(subjectIDs))
	for _, id := range subjectIDs {
		if s, ok := m.subjects[id]; ok && s.Credits != nil {
			out[id] = *s.Credits
		}
	}
	return out, nil
}

func (m *memStructureStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	if g, ok := m.groups[id]; ok {
		clone := *g
		return &clone, nil
	}
	return nil, nil
}

func (m *memStructureStore) ListGroups(ctx context.Context) ([]models.Group, error) {
	var out []models.Group
	for _, g := range m.groups {
		out = append(out, *g)
	}
	return out, nil
}

func (m *memStructureStore) CreateGroup(ctx context.Context, group *models.Group) error {
	group.ID = fmt.Sprintf("group-%d", len(m.groups)+1)
	clone := *group
	m.groups[group.ID] = &clone
	return nil
}

func (m *memStructureStore) GetClass(ctx context.Context, id string) (*models.Class, error) {
	if c, ok := m.classes[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, nil
}
