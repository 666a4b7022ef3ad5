package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edustack/lms-api/internal/models"
	"github.com/edustack/lms-api/internal/repository"
	appErrors "github.com/edustack/lms-api/pkg/errors"
	"github.com/edustack/lms-api/pkg/export"
)

type gradeRepository interface {
	List(ctx context.Context, page, size int) ([]models.Grade, int, error)
	FindByID(ctx context.Context, id string) (*models.Grade, error)
	ExistsByPair(ctx context.Context, studentID, courseID string) (bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id string) error
}

type gradeUserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type gradeCourseLookup interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// AssignGradeRequest represents the grade assignment payload. Student
// and course are always opaque ids in this flow.
type AssignGradeRequest struct {
	Student string             `json:"student" validate:"required,uuid"`
	Course  string             `json:"course" validate:"required,uuid"`
	Status  models.GradeStatus `json:"status" validate:"omitempty,oneof=A B C D E F Incomplete Pending"`
	Remarks *string            `json:"remarks"`
}

// UpdateGradeRequest mutates only status and remarks.
type UpdateGradeRequest struct {
	Status  *models.GradeStatus `json:"status" validate:"omitempty,oneof=A B C D E F Incomplete Pending"`
	Remarks *string             `json:"remarks"`
}

// GradeService orchestrates grade assignment and reporting.
type GradeService struct {
	repo      gradeRepository
	users     gradeUserLookup
	courses   gradeCourseLookup
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs a GradeService.
func NewGradeService(repo gradeRepository, users gradeUserLookup, courses gradeCourseLookup, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		repo:      repo,
		users:     users,
		courses:   courses,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
	}
}

// Assign creates a grade after checking both references exist and no
// grade is recorded yet for the (student, course) pair.
func (s *GradeService) Assign(ctx context.Context, req AssignGradeRequest) (*models.GradeDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload("invalid grade payload", err)
	}

	student, err := s.users.FindByID(ctx, req.Student)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrReferenceNotFound, fmt.Sprintf("student %q not found", req.Student))
		}
		return nil, storeFailure(err, "failed to check student")
	}

	course, err := s.courses.FindByID(ctx, req.Course)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrReferenceNotFound, fmt.Sprintf("course %q not found", req.Course))
		}
		return nil, storeFailure(err, "failed to check course")
	}

	exists, err := s.repo.ExistsByPair(ctx, student.ID, course.ID)
	if err != nil {
		return nil, storeFailure(err, "failed to check existing grade")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrUniqueness, "grade already exists for this student in this course")
	}

	grade := &models.Grade{
		StudentID: student.ID,
		CourseID:  course.ID,
		Status:    req.Status,
		Remarks:   normalizeRemarks(req.Remarks),
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrStoreConflict, "grade already exists for this student in this course")
		}
		return nil, storeFailure(err, "failed to create grade")
	}

	return &models.GradeDetail{
		Grade:   *grade,
		Student: student.Summary(),
		Course:  courseSummary(course),
	}, nil
}

// List returns all grades with references expanded.
func (s *GradeService) List(ctx context.Context, page, size int) ([]models.GradeDetail, *models.Pagination, error) {
	grades, total, err := s.repo.List(ctx, page, size)
	if err != nil {
		return nil, nil, storeFailure(err, "failed to list grades")
	}
	return s.expandAll(ctx, grades), paginationFor(page, size, total), nil
}

// Get returns a grade by id with references expanded.
func (s *GradeService) Get(ctx context.Context, id string) (*models.GradeDetail, error) {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, storeFailure(err, "failed to load grade")
	}
	detail := s.expand(ctx, *grade)
	return &detail, nil
}

// ListByStudent returns all grades assigned to a student.
func (s *GradeService) ListByStudent(ctx context.Context, studentID string) ([]models.GradeDetail, error) {
	grades, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeFailure(err, "failed to list student grades")
	}
	return s.expandAll(ctx, grades), nil
}

// ListByCourse returns all grades recorded within a course.
func (s *GradeService) ListByCourse(ctx context.Context, courseID string) ([]models.GradeDetail, error) {
	grades, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, storeFailure(err, "failed to list course grades")
	}
	return s.expandAll(ctx, grades), nil
}

// Update mutates the status and remarks of a grade.
func (s *GradeService) Update(ctx context.Context, id string, req UpdateGradeRequest) (*models.GradeDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload("invalid grade payload", err)
	}

	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, storeFailure(err, "failed to load grade")
	}

	if req.Status != nil {
		grade.Status = *req.Status
	}
	if req.Remarks != nil {
		grade.Remarks = normalizeRemarks(req.Remarks)
	}

	if err := s.repo.Update(ctx, grade); err != nil {
		return nil, storeFailure(err, "failed to update grade")
	}
	detail := s.expand(ctx, *grade)
	return &detail, nil
}

// Delete removes a grade.
func (s *GradeService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return storeFailure(err, "failed to load grade")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeFailure(err, "failed to delete grade")
	}
	return nil
}

// ExportTranscript renders a student's grades as CSV or PDF.
func (s *GradeService) ExportTranscript(ctx context.Context, studentID, format string) ([]byte, string, string, error) {
	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", "", appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, "", "", storeFailure(err, "failed to load student")
	}

	details, err := s.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, "", "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Course", "Category", "Status", "Remarks", "Graded At"},
	}
	for _, d := range details {
		row := map[string]string{
			"Course":    d.CourseID,
			"Category":  "",
			"Status":    string(d.Status),
			"Remarks":   "",
			"Graded At": d.GradedAt.Format("2006-01-02"),
		}
		if d.Course != nil {
			row["Course"] = d.Course.Name
			row["Category"] = d.Course.Category
		}
		if d.Remarks != nil {
			row["Remarks"] = *d.Remarks
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	title := fmt.Sprintf("Transcript - %s", student.Name)
	switch strings.ToLower(format) {
	case "", "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript")
		}
		return payload, "text/csv", "transcript.csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript")
		}
		return payload, "application/pdf", "transcript.pdf", nil
	default:
		return nil, "", "", appErrors.Validation("unsupported export format", []appErrors.FieldError{{Field: "format", Reason: "must be one of csv, pdf"}})
	}
}

// expand attaches public reference summaries; dangling references
// expand to null.
func (s *GradeService) expand(ctx context.Context, grade models.Grade) models.GradeDetail {
	detail := models.GradeDetail{Grade: grade}
	if student, err := s.users.FindByID(ctx, grade.StudentID); err == nil {
		detail.Student = student.Summary()
	}
	if course, err := s.courses.FindByID(ctx, grade.CourseID); err == nil {
		detail.Course = courseSummary(course)
	}
	return detail
}

func (s *GradeService) expandAll(ctx context.Context, grades []models.Grade) []models.GradeDetail {
	details := make([]models.GradeDetail, 0, len(grades))
	for _, grade := range grades {
		details = append(details, s.expand(ctx, grade))
	}
	return details
}

func courseSummary(course *models.Course) *models.CourseSummary {
	if course == nil {
		return nil
	}
	return &models.CourseSummary{ID: course.ID, Name: course.Name, Category: course.Category}
}

func normalizeRemarks(remarks *string) *string {
	if remarks == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*remarks)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
