package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edustack/lms-api/internal/models"
	appErrors "github.com/edustack/lms-api/pkg/errors"
)

const (
	studentUUID = "0b5c3d2e-9f8a-4b7c-a6d5-e4f3a2b1c0d9"
	courseUUID  = "1c6d4e3f-0a9b-4c8d-b7e6-f5a4b3c2d1e0"
)

type mockGradeRepo struct {
	items     map[string]*models.Grade
	pairIndex map[string]string
	deleted   []string
	createErr error
}

func pairKey(studentID, courseID string) string {
	return studentID + "|" + courseID
}

func (m *mockGradeRepo) List(ctx context.Context, page, size int) ([]models.Grade, int, error) {
	grades := make([]models.Grade, 0, len(m.items))
	for _, grade := range m.items {
		grades = append(grades, *grade)
	}
	return grades, len(grades), nil
}

func (m *mockGradeRepo) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	if grade, ok := m.items[id]; ok {
		cp := *grade
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeRepo) ExistsByPair(ctx context.Context, studentID, courseID string) (bool, error) {
	_, ok := m.pairIndex[pairKey(studentID, courseID)]
	return ok, nil
}

func (m *mockGradeRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	var grades []models.Grade
	for _, grade := range m.items {
		if grade.StudentID == studentID {
			grades = append(grades, *grade)
		}
	}
	return grades, nil
}

func (m *mockGradeRepo) ListByCourse(ctx context.Context, courseID string) ([]models.Grade, error) {
	var grades []models.Grade
	for _, grade := range m.items {
		if grade.CourseID == courseID {
			grades = append(grades, *grade)
		}
	}
	return grades, nil
}

func (m *mockGradeRepo) Create(ctx context.Context, grade *models.Grade) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.items == nil {
		m.items = make(map[string]*models.Grade)
	}
	if m.pairIndex == nil {
		m.pairIndex = make(map[string]string)
	}
	if grade.ID == "" {
		grade.ID = "generated"
	}
	if grade.Status == "" {
		grade.Status = models.GradePending
	}
	if grade.GradedAt.IsZero() {
		grade.GradedAt = time.Now()
	}
	cp := *grade
	m.items[grade.ID] = &cp
	m.pairIndex[pairKey(grade.StudentID, grade.CourseID)] = grade.ID
	return nil
}

func (m *mockGradeRepo) Update(ctx context.Context, grade *models.Grade) error {
	cp := *grade
	m.items[grade.ID] = &cp
	return nil
}

func (m *mockGradeRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.items, id)
	return nil
}

func newGradeServiceForTest(repo *mockGradeRepo, users *mockUserRepo, courses *mockCourseRepo) *GradeService {
	return NewGradeService(repo, users, courses, nil, zap.NewNop())
}

func gradeTestFixtures() (*mockUserRepo, *mockCourseRepo) {
	users := &mockUserRepo{items: map[string]*models.User{
		studentUUID: {ID: studentUUID, Name: "Ada Lovelace", Email: "ada@example.com"},
	}}
	courses := &mockCourseRepo{items: map[string]*models.Course{
		courseUUID: {ID: courseUUID, Name: "Go Fundamentals", Category: "Programming"},
	}}
	return users, courses
}

func TestGradeServiceAssignDefaultsToPending(t *testing.T) {
	repo := &mockGradeRepo{}
	users, courses := gradeTestFixtures()
	svc := newGradeServiceForTest(repo, users, courses)

	detail, err := svc.Assign(context.Background(), AssignGradeRequest{Student: studentUUID, Course: courseUUID})
	require.NoError(t, err)
	assert.Equal(t, models.GradePending, detail.Status)
	require.NotNil(t, detail.Student)
	assert.Equal(t, "Ada Lovelace", detail.Student.Name)
	require.NotNil(t, detail.Course)
	assert.Equal(t, "Go Fundamentals", detail.Course.Name)
	assert.False(t, detail.GradedAt.IsZero())
}

func TestGradeServiceAssignRejectsDuplicatePair(t *testing.T) {
	repo := &mockGradeRepo{pairIndex: map[string]string{pairKey(studentUUID, courseUUID): "g1"}}
	users, courses := gradeTestFixtures()
	svc := newGradeServiceForTest(repo, users, courses)

	_, err := svc.Assign(context.Background(), AssignGradeRequest{Student: studentUUID, Course: courseUUID})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUniqueness.Code, appErr.Code)
	assert.Equal(t, "grade already exists for this student in this course", appErr.Message)
}

func TestGradeServiceAssignLostUniquenessRace(t *testing.T) {
	repo := &mockGradeRepo{createErr: &pq.Error{Code: "23505"}}
	users, courses := gradeTestFixtures()
	svc := newGradeServiceForTest(repo, users, courses)

	_, err := svc.Assign(context.Background(), AssignGradeRequest{Student: studentUUID, Course: courseUUID})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrStoreConflict.Code, appErr.Code)
	assert.Equal(t, "grade already exists for this student in this course", appErr.Message)
}

func TestGradeServiceAssignUnknownReferences(t *testing.T) {
	users, courses := gradeTestFixtures()
	svc := newGradeServiceForTest(&mockGradeRepo{}, users, courses)

	missingStudent := "9a8b7c6d-5e4f-4a3b-9c2d-1e0f9a8b7c6d"
	_, err := svc.Assign(context.Background(), AssignGradeRequest{Student: missingStudent, Course: courseUUID})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrReferenceNotFound.Code, appErr.Code)
	assert.Contains(t, appErr.Message, missingStudent)

	missingCourse := "8b7c6d5e-4f3a-4b2c-8d1e-0f9a8b7c6d5e"
	_, err = svc.Assign(context.Background(), AssignGradeRequest{Student: studentUUID, Course: missingCourse})
	require.Error(t, err)
	appErr = appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrReferenceNotFound.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "course")
}

func TestGradeServiceAssignValidatesPayload(t *testing.T) {
	users, courses := gradeTestFixtures()
	svc := newGradeServiceForTest(&mockGradeRepo{}, users, courses)

	_, err := svc.Assign(context.Background(), AssignGradeRequest{Student: "not-a-uuid", Course: courseUUID, Status: "Z"})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	fields := make(map[string]string)
	for _, fe := range appErr.Fields {
		fields[fe.Field] = fe.Reason
	}
	assert.Equal(t, "must be a valid id", fields["student"])
	assert.Contains(t, fields["status"], "must be one of")
}

func TestGradeServiceUpdateStatusAndRemarks(t *testing.T) {
	repo := &mockGradeRepo{items: map[string]*models.Grade{
		"g1": {ID: "g1", StudentID: studentUUID, CourseID: courseUUID, Status: models.GradePending},
	}}
	users, courses := gradeTestFixtures()
	svc := newGradeServiceForTest(repo, users, courses)

	status := models.GradeA
	remarks := "  excellent work  "
	detail, err := svc.Update(context.Background(), "g1", UpdateGradeRequest{Status: &status, Remarks: &remarks})
	require.NoError(t, err)
	assert.Equal(t, models.GradeA, detail.Status)
	require.NotNil(t, detail.Remarks)
	assert.Equal(t, "excellent work", *detail.Remarks)
}

func TestGradeServiceListByStudent(t *testing.T) {
	repo := &mockGradeRepo{items: map[string]*models.Grade{
		"g1": {ID: "g1", StudentID: studentUUID, CourseID: courseUUID, Status: models.GradeB},
		"g2": {ID: "g2", StudentID: "someone-else", CourseID: courseUUID, Status: models.GradeC},
	}}
	users, courses := gradeTestFixtures()
	svc := newGradeServiceForTest(repo, users, courses)

	details, err := svc.ListByStudent(context.Background(), studentUUID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, models.GradeB, details[0].Status)
	require.NotNil(t, details[0].Course)
	assert.Equal(t, "Programming", details[0].Course.Category)
}

func TestGradeServiceExportTranscriptCSV(t *testing.T) {
	remarks := "solid"
	repo := &mockGradeRepo{items: map[string]*models.Grade{
		"g1": {ID: "g1", StudentID: studentUUID, CourseID: courseUUID, Status: models.GradeA, Remarks: &remarks, GradedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
	}}
	users, courses := gradeTestFixtures()
	svc := newGradeServiceForTest(repo, users, courses)

	payload, contentType, filename, err := svc.ExportTranscript(context.Background(), studentUUID, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Equal(t, "transcript.csv", filename)

	body := string(payload)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Course,Category,Status,Remarks,Graded At", lines[0])
	assert.Contains(t, lines[1], "Go Fundamentals")
	assert.Contains(t, lines[1], "A")
	assert.Contains(t, lines[1], "2026-05-01")
}

func TestGradeServiceExportTranscriptPDF(t *testing.T) {
	repo := &mockGradeRepo{}
	users, courses := gradeTestFixtures()
	svc := newGradeServiceForTest(repo, users, courses)

	payload, contentType, filename, err := svc.ExportTranscript(context.Background(), studentUUID, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, "transcript.pdf", filename)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestGradeServiceExportTranscriptUnknownFormat(t *testing.T) {
	users, courses := gradeTestFixtures()
	svc := newGradeServiceForTest(&mockGradeRepo{}, users, courses)

	_, _, _, err := svc.ExportTranscript(context.Background(), studentUUID, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGradeServiceDelete(t *testing.T) {
	repo := &mockGradeRepo{items: map[string]*models.Grade{
		"g1": {ID: "g1", StudentID: studentUUID, CourseID: courseUUID},
	}}
	users, courses := gradeTestFixtures()
	svc := newGradeServiceForTest(repo, users, courses)

	require.NoError(t, svc.Delete(context.Background(), "g1"))
	assert.Equal(t, []string{"g1"}, repo.deleted)

	err := svc.Delete(context.Background(), "g1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
