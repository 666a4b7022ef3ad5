package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustack/lms-api/internal/models"
)

func gradeRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "student_id", "course_id", "status", "remarks", "graded_at"})
}

func TestGradeRepositoryExistsByPair(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM grades WHERE student_id = $1 AND course_id = $2 LIMIT 1")).
		WithArgs("u1", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByPair(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM grades WHERE student_id = $1 AND course_id = $2 LIMIT 1")).
		WithArgs("u1", "c2").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err = repo.ExistsByPair(context.Background(), "u1", "c2")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec("INSERT INTO grades").
		WithArgs(sqlmock.AnyArg(), "u1", "c1", "Pending", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	grade := &models.Grade{StudentID: "u1", CourseID: "c1"}
	require.NoError(t, repo.Create(context.Background(), grade))
	assert.NotEmpty(t, grade.ID)
	assert.Equal(t, models.GradePending, grade.Status)
	assert.False(t, grade.GradedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryCreateUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec("INSERT INTO grades").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Grade{StudentID: "u1", CourseID: "c1"})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	rows := gradeRows().
		AddRow("g1", "u1", "c1", "A", nil, time.Now()).
		AddRow("g2", "u1", "c2", "Pending", "catching up", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM grades WHERE student_id = $1 ORDER BY graded_at DESC")).
		WithArgs("u1").
		WillReturnRows(rows)

	grades, err := repo.ListByStudent(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, grades, 2)
	assert.Equal(t, models.GradeA, grades[0].Status)
	require.NotNil(t, grades[1].Remarks)
	assert.Equal(t, "catching up", *grades[1].Remarks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec("UPDATE grades SET status").
		WithArgs("B", nil, "g1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), &models.Grade{ID: "g1", Status: models.GradeB}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
