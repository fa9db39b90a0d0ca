package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniplex/academic-api/internal/models"
)

// StructureRepository reads academic reference data: years, semesters,
// subjects, groups and classes.
type StructureRepository struct {
	db sqlx.ExtContext
}

// NewStructureRepository creates a new structure repository.
func NewStructureRepository(db sqlx.ExtContext) *StructureRepository {
	return &StructureRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *StructureRepository) WithTx(tx *sqlx.Tx) *StructureRepository {
	return &StructureRepository{db: tx}
}

// ListAcademicYears returns all academic years, newest first.
func (r *StructureRepository) ListAcademicYears(ctx context.Context) ([]models.AcademicYear, error) {
	const query = `SELECT id, name, start_date, end_date FROM academic_years ORDER BY start_date DESC`
	var years []models.AcademicYear
	if err := sqlx.SelectContext(ctx, r.db, &years, query); err != nil {
		return nil, fmt.Errorf("list academic years: %w", err)
	}
	return years, nil
}

// CreateAcademicYear inserts an academic year.
func (r *StructureRepository) CreateAcademicYear(ctx context.Context, year *models.AcademicYear) error {
	if year.ID == "" {
		year.ID = uuid.NewString()
	}
	const query = `INSERT INTO academic_years (id, name, start_date, end_date)
        VALUES (:id, :name, :start_date, :end_date)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, year); err != nil {
		return fmt.Errorf("create academic year: %w", err)
	}
	return nil
}

// GetSemester returns one semester, or nil when absent.
func (r *StructureRepository) GetSemester(ctx context.Context, id string) (*models.Semester, error) {
	const query = `SELECT id, academic_year_id, name, number, start_date, end_date
        FROM semesters WHERE id = $1`
	var semester models.Semester
	if err := sqlx.GetContext(ctx, r.db, &semester, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get semester: %w", err)
	}
	return &semester, nil
}

// ListSemesters returns the semesters of an academic year in order.
func (r *StructureRepository) ListSemesters(ctx context.Context, academicYearID string) ([]models.Semester, error) {
	const query = `SELECT id, academic_year_id, name, number, start_date, end_date
        FROM semesters WHERE academic_year_id = $1 ORDER BY number`
	var semesters []models.Semester
	if err := sqlx.SelectContext(ctx, r.db, &semesters, query, academicYearID); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return semesters, nil
}

// CreateSemester inserts a semester under an academic year.
func (r *StructureRepository) CreateSemester(ctx context.Context, semester *models.Semester) error {
	if semester.ID == "" {
		semester.ID = uuid.NewString()
	}
	const query = `INSERT INTO semesters (id, academic_year_id, name, number, start_date, end_date)
        VALUES (:id, :academic_year_id, :name, :number, :start_date, :end_date)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, semester); err != nil {
		return fmt.Errorf("create semester: %w", err)
	}
	return nil
}

// GetSubject returns one subject, or nil when absent.
func (r *StructureRepository) GetSubject(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, code, name, credits, notes FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := sqlx.GetContext(ctx, r.db, &subject, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subject: %w", err)
	}
	return &subject, nil
}

// ListSubjects returns all subjects ordered by code.
func (r *StructureRepository) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	const query = `SELECT id, code, name, credits, notes FROM subjects ORDER BY code`
	var subjects []models.Subject
	if err := sqlx.SelectContext(ctx, r.db, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// CreateSubject inserts a subject.
func (r *StructureRepository) CreateSubject(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	const query = `INSERT INTO subjects (id, code, name, credits, notes)
        VALUES (:id, :code, :name, :credits, :notes)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// SubjectCredits returns subject credits keyed by subject ID for the given
// IDs. Subjects with no credit weight are absent from the map.
func (r *StructureRepository) SubjectCredits(ctx context.Context, subjectIDs []string) (map[string]int, error) {
	if len(subjectIDs) == 0 {
		return map[string]int{}, nil
	}
	query, args, err := sqlx.In(`SELECT id, credits FROM subjects WHERE id IN (?) AND credits IS NOT NULL`, subjectIDs)
	if err != nil {
		return nil, fmt.Errorf("build subject credits query: %w", err)
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("subject credits: %w", err)
	}
	defer rows.Close()
	credits := make(map[string]int, len(subjectIDs))
	for rows.Next() {
		var id string
		var c int
		if err := rows.Scan(&id, &c); err != nil {
			return nil, fmt.Errorf("scan subject credits: %w", err)
		}
		credits[id] = c
	}
	return credits, nil
}

// GetGroup returns one group, or nil when absent.
func (r *StructureRepository) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	const query = `SELECT id, name, year, created_at FROM groups WHERE id = $1`
	var group models.Group
	if err := sqlx.GetContext(ctx, r.db, &group, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	return &group, nil
}

// ListGroups returns all groups ordered by name.
func (r *StructureRepository) ListGroups(ctx context.Context) ([]models.Group, error) {
	const query = `SELECT id, name, year, created_at FROM groups ORDER BY name`
	var groups []models.Group
	if err := sqlx.SelectContext(ctx, r.db, &groups, query); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// CreateGroup inserts a study group.
func (r *StructureRepository) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	const query = `INSERT INTO groups (id, name, year, created_at)
        VALUES (:id, :name, :year, NOW())`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, group); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// GetClass returns one class with its semester resolved through the
// schedule chain, or nil when absent.
func (r *StructureRepository) GetClass(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT id, subject_id, group_id, teacher_id, semester_id, date, topic
        FROM classes WHERE id = $1`
	var class models.Class
	if err := sqlx.GetContext(ctx, r.db, &class, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get class: %w", err)
	}
	return &class, nil
}
