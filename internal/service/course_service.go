package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edustack/lms-api/internal/models"
	"github.com/edustack/lms-api/internal/repository"
	appErrors "github.com/edustack/lms-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type lecturerLookup interface {
	FindByID(ctx context.Context, id string) (*models.Lecturer, error)
}

type referenceResolver interface {
	ResolveLecturer(ctx context.Context, token string) (*models.Lecturer, error)
	ResolveUser(ctx context.Context, token string) (*models.User, error)
}

type courseCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ContentItemRequest is one entry of the course content payload.
type ContentItemRequest struct {
	Title string `json:"title" validate:"required,notblank"`
	URL   string `json:"url" validate:"required,notblank"`
}

// CreateCourseRequest represents the course creation payload. The
// lecturer field accepts an id, an exact name, or an email.
type CreateCourseRequest struct {
	Name            string               `json:"name" validate:"required,notblank"`
	Description     string               `json:"description" validate:"required,notblank"`
	Lecturer        string               `json:"lecturer" validate:"required,notblank"`
	Category        string               `json:"category" validate:"required,notblank"`
	Duration        FlexNumber           `json:"duration" validate:"required"`
	Price           *FlexNumber          `json:"price"`
	Level           *string              `json:"level"`
	EnrollmentLimit *FlexNumber          `json:"enrollment_limit"`
	Content         []ContentItemRequest `json:"content" validate:"required,min=1,dive"`
}

// UpdateCourseRequest represents the partial course update payload.
// Absent fields keep their stored values.
type UpdateCourseRequest struct {
	Name            *string               `json:"name" validate:"omitempty,notblank"`
	Description     *string               `json:"description" validate:"omitempty,notblank"`
	Lecturer        *string               `json:"lecturer" validate:"omitempty,notblank"`
	Category        *string               `json:"category" validate:"omitempty,notblank"`
	Duration        *FlexNumber           `json:"duration"`
	Price           *FlexNumber           `json:"price"`
	Level           *string               `json:"level"`
	EnrollmentLimit *FlexNumber           `json:"enrollment_limit"`
	Content         *[]ContentItemRequest `json:"content" validate:"omitempty,min=1,dive"`
}

// EnrollRequest enrolls a student into a course. The student field
// accepts an id, an exact name, or an email.
type EnrollRequest struct {
	Student string `json:"student" validate:"required,notblank"`
}

const courseCachePrefix = "courses:"

// CourseService orchestrates the course write pipeline: structural
// validation, lecturer resolution, record assembly, uniqueness checks
// and persistence, plus cached reads.
type CourseService struct {
	repo      courseRepository
	lecturers lecturerLookup
	resolver  referenceResolver
	cache     courseCache
	cacheTTL  time.Duration
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService. cache may be nil.
func NewCourseService(repo courseRepository, lecturers lecturerLookup, resolver referenceResolver, cache courseCache, cacheTTL time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		repo:      repo,
		lecturers: lecturers,
		resolver:  resolver,
		cache:     cache,
		cacheTTL:  cacheTTL,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Create runs the full pipeline for a new course and returns the
// persisted record with the lecturer expanded.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.CourseDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload("invalid course payload", err)
	}

	name := strings.TrimSpace(req.Name)
	exists, err := s.repo.ExistsByName(ctx, name, "")
	if err != nil {
		return nil, storeFailure(err, "failed to check course name uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrUniqueness, "course name must be unique")
	}

	lecturer, err := s.resolver.ResolveLecturer(ctx, req.Lecturer)
	if err != nil {
		return nil, err
	}

	course, err := assembleCourse(req, lecturer.ID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, course); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrStoreConflict, "course name must be unique")
		}
		return nil, storeFailure(err, "failed to create course")
	}

	s.invalidateCache(ctx)
	return &models.CourseDetail{Course: *course, Lecturer: lecturer.Summary()}, nil
}

// Update merges a partial payload over the stored course via the same
// pipeline as Create.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.CourseDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload("invalid course payload", err)
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, storeFailure(err, "failed to load course")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		exists, err := s.repo.ExistsByName(ctx, name, id)
		if err != nil {
			return nil, storeFailure(err, "failed to check course name uniqueness")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrUniqueness, "course name must be unique")
		}
	}

	lecturerID := ""
	if req.Lecturer != nil {
		lecturer, err := s.resolver.ResolveLecturer(ctx, *req.Lecturer)
		if err != nil {
			return nil, err
		}
		lecturerID = lecturer.ID
	}

	course, err := mergeCourse(*existing, req, lecturerID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, course); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrStoreConflict, "course name must be unique")
		}
		return nil, storeFailure(err, "failed to update course")
	}

	s.invalidateCache(ctx)
	return s.expand(ctx, course), nil
}

// Get returns a course by id with its lecturer expanded.
func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseDetail, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, storeFailure(err, "failed to load course")
	}
	return s.expand(ctx, course), nil
}

type courseListPayload struct {
	Items      []models.CourseDetail `json:"items"`
	Pagination *models.Pagination    `json:"pagination"`
}

// List returns courses with lecturers expanded, served from the
// read-through cache when possible. Cache trouble degrades to the
// store and never fails the request.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error) {
	key := courseListKey(filter)
	if s.cache != nil {
		var cached courseListPayload
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.ObserveCacheLookup(true)
			return cached.Items, cached.Pagination, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("course cache read failed", zap.Error(err))
		}
		s.metrics.ObserveCacheLookup(false)
	}

	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storeFailure(err, "failed to list courses")
	}

	details := s.expandAll(ctx, courses)
	pagination := paginationFor(filter.Page, filter.PageSize, total)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, courseListPayload{Items: details, Pagination: pagination}, s.cacheTTL); err != nil {
			s.logger.Warn("course cache write failed", zap.Error(err))
		}
	}
	return details, pagination, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return storeFailure(err, "failed to load course")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeFailure(err, "failed to delete course")
	}
	s.invalidateCache(ctx)
	return nil
}

// Enroll adds a student to the course roster, honoring the enrollment
// limit when one is set. The roster check and append are two separate
// store operations with no conditional write, so concurrent enrollments
// for the same course can exceed the limit or duplicate a student.
func (s *CourseService) Enroll(ctx context.Context, courseID string, req EnrollRequest) (*models.CourseDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload("invalid enrollment payload", err)
	}

	course, err := s.repo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, storeFailure(err, "failed to load course")
	}

	student, err := s.resolver.ResolveUser(ctx, req.Student)
	if err != nil {
		return nil, err
	}

	if course.EnrolledStudents.Contains(student.ID) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student already enrolled")
	}
	if course.EnrollmentLimit != nil && len(course.EnrolledStudents) >= *course.EnrollmentLimit {
		return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment limit reached")
	}

	course.EnrolledStudents = append(course.EnrolledStudents, student.ID)
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, storeFailure(err, "failed to enroll student")
	}

	s.invalidateCache(ctx)
	return s.expand(ctx, course), nil
}

// expand attaches the lecturer summary; a dangling reference expands
// to null rather than failing the read.
func (s *CourseService) expand(ctx context.Context, course *models.Course) *models.CourseDetail {
	detail := &models.CourseDetail{Course: *course}
	lecturer, err := s.lecturers.FindByID(ctx, course.LecturerID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("failed to expand lecturer reference", zap.String("lecturer_id", course.LecturerID), zap.Error(err))
		}
		return detail
	}
	detail.Lecturer = lecturer.Summary()
	return detail
}

func (s *CourseService) expandAll(ctx context.Context, courses []models.Course) []models.CourseDetail {
	summaries := make(map[string]*models.RefSummary)
	details := make([]models.CourseDetail, 0, len(courses))
	for i := range courses {
		course := courses[i]
		summary, seen := summaries[course.LecturerID]
		if !seen {
			if lecturer, err := s.lecturers.FindByID(ctx, course.LecturerID); err == nil {
				summary = lecturer.Summary()
			}
			summaries[course.LecturerID] = summary
		}
		details = append(details, models.CourseDetail{Course: course, Lecturer: summary})
	}
	return details
}

func (s *CourseService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, courseCachePrefix+"*"); err != nil {
		s.logger.Warn("course cache invalidation failed", zap.Error(err))
	}
}

func courseListKey(filter models.CourseFilter) string {
	return fmt.Sprintf("%slist:%s:%s:%d:%d:%s:%s",
		courseCachePrefix, filter.Search, filter.Category, filter.Page, filter.PageSize, filter.SortBy, filter.SortOrder)
}
