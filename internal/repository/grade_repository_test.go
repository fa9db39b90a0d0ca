package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplex/academic-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var gradeResultColumns = []string{
	"id", "student_id", "subject_id", "semester_id", "grade_type_id",
	"grade_system_id", "grade_value_id", "points", "max_points", "percentage",
	"source", "status", "comments", "date", "graded_by", "created_at", "updated_at",
	"value_label", "numeric_value", "is_passing", "value_min_percent",
}

func gradeRow(id string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(gradeResultColumns).
		AddRow(id, "stu-1", "subj-1", "sem-1", "gt-exam",
			"sys-5", "val-5", 95.0, 100.0, 95.0,
			string(models.SourceAuto), string(models.GradeStatusFinal), nil, now, "t-1", now, now,
			"5", 5.0, true, 90.0)
}

func TestGradeUpsertInsertsWhenAbsent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery("SELECT .+ FROM grades g").
		WithArgs("stu-1", "subj-1", "sem-1", "gt-exam").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO grades").WillReturnResult(sqlmock.NewResult(1, 1))

	grade := &models.Grade{
		StudentID: "stu-1", SubjectID: "subj-1", SemesterID: "sem-1", GradeTypeID: "gt-exam",
		GradeSystemID: "sys-5", GradeValueID: "val-5",
		Source: models.SourceAuto, Status: models.GradeStatusFinal, Date: time.Now(),
	}
	previous, err := repo.Upsert(context.Background(), grade)
	require.NoError(t, err)
	assert.Nil(t, previous)
	assert.NotEmpty(t, grade.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeUpsertReportsPrevious(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery("SELECT .+ FROM grades g").
		WithArgs("stu-1", "subj-1", "sem-1", "gt-exam").
		WillReturnRows(gradeRow("grade-1"))
	mock.ExpectExec("INSERT INTO grades").WillReturnResult(sqlmock.NewResult(1, 1))

	grade := &models.Grade{
		StudentID: "stu-1", SubjectID: "subj-1", SemesterID: "sem-1", GradeTypeID: "gt-exam",
		GradeSystemID: "sys-5", GradeValueID: "val-4",
		Source: models.SourceAuto, Status: models.GradeStatusFinal, Date: time.Now(),
	}
	previous, err := repo.Upsert(context.Background(), grade)
	require.NoError(t, err)
	require.NotNil(t, previous)
	assert.Equal(t, "grade-1", previous.ID)
	// the stored row keeps its identity across regrades
	assert.Equal(t, "grade-1", grade.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeGetByKeyAbsent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery("SELECT .+ FROM grades g").
		WithArgs("stu-1", "subj-1", "sem-1", "gt-exam").
		WillReturnError(sql.ErrNoRows)

	grade, err := repo.GetByKey(context.Background(), "stu-1", "subj-1", "sem-1", "gt-exam")
	require.NoError(t, err)
	assert.Nil(t, grade)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeListForPeriodExcludesAnnulled(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery("SELECT .+ FROM grades g").
		WithArgs("stu-1", string(models.GradeStatusAnnulled), "sem-1").
		WillReturnRows(gradeRow("grade-1"))

	grades, err := repo.ListForPeriod(context.Background(), "stu-1", "sem-1")
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, "5", grades[0].ValueLabel)
	assert.True(t, grades[0].IsPassing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeSetStatusMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec("UPDATE grades SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetStatus(context.Background(), "grade-missing", models.GradeStatusAnnulled)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
