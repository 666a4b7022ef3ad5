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

func courseRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "description", "lecturer_id", "category", "duration",
		"price", "level", "enrollment_limit", "enrolled_students", "content",
		"created_at", "updated_at",
	})
}

func TestCourseRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := courseRows().AddRow(
		"c1", "Go Fundamentals", "An introduction to Go.", "l1", "Programming", 40,
		nil, nil, nil, []byte(`["u1"]`), []byte(`[{"title":"Intro","url":"https://example.com/intro"}]`),
		time.Now(), time.Now(),
	)
	mock.ExpectQuery(regexp.QuoteMeta("category = $1 AND (LOWER(name) LIKE $2 OR LOWER(description) LIKE $2 OR LOWER(category) LIKE $2)")).
		WithArgs("Programming", "%go%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("Programming", "%go%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	courses, total, err := repo.List(context.Background(), models.CourseFilter{Category: "Programming", Search: "Go"})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.IDList{"u1"}, courses[0].EnrolledStudents)
	require.Len(t, courses[0].Content, 1)
	assert.Equal(t, "Intro", courses[0].Content[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryExistsByName(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM courses WHERE name = $1 LIMIT 1")).
		WithArgs("Go Fundamentals").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByName(context.Background(), "Go Fundamentals", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateSerializesJSONColumns(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("INSERT INTO courses").
		WithArgs(
			sqlmock.AnyArg(), "Go Fundamentals", "An introduction to Go.", "l1", "Programming", 40,
			nil, nil, nil, []byte(`[]`), []byte(`[{"title":"Intro","url":"https://example.com/intro"}]`),
			sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	course := &models.Course{
		Name:             "Go Fundamentals",
		Description:      "An introduction to Go.",
		LecturerID:       "l1",
		Category:         "Programming",
		Duration:         40,
		EnrolledStudents: models.IDList{},
		Content:          models.ContentList{{Title: "Intro", URL: "https://example.com/intro"}},
	}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.NotEmpty(t, course.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("INSERT INTO courses").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Course{Name: "Go Fundamentals"})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListByLecturer(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := courseRows().AddRow(
		"c1", "Go Fundamentals", "An introduction to Go.", "l1", "Programming", 40,
		nil, nil, nil, []byte(`[]`), []byte(`[]`),
		time.Now(), time.Now(),
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE lecturer_id = $1 ORDER BY created_at DESC")).
		WithArgs("l1").
		WillReturnRows(rows)

	courses, err := repo.ListByLecturer(context.Background(), "l1")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "c1", courses[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
