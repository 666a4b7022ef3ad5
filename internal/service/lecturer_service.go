package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/edustack/lms-api/internal/models"
	"github.com/edustack/lms-api/internal/repository"
	appErrors "github.com/edustack/lms-api/pkg/errors"
)

type lecturerRepository interface {
	List(ctx context.Context, filter models.LecturerFilter) ([]models.Lecturer, int, error)
	FindByID(ctx context.Context, id string) (*models.Lecturer, error)
	FindByEmail(ctx context.Context, email string) (*models.Lecturer, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, lecturer *models.Lecturer) error
	Update(ctx context.Context, lecturer *models.Lecturer) error
	Delete(ctx context.Context, id string) error
}

type lecturerCourseRepository interface {
	ListByLecturer(ctx context.Context, lecturerID string) ([]models.Course, error)
}

// RegisterLecturerRequest represents the lecturer registration payload.
type RegisterLecturerRequest struct {
	Name       string `json:"name" validate:"required,notblank"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Department string `json:"department" validate:"required,notblank"`
}

// UpdateLecturerRequest represents the partial profile update payload.
type UpdateLecturerRequest struct {
	Name       *string `json:"name" validate:"omitempty,notblank"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Department *string `json:"department" validate:"omitempty,notblank"`
}

// LecturerAuthResponse carries an issued token plus the public identity.
type LecturerAuthResponse struct {
	Token    string             `json:"token"`
	Lecturer *models.RefSummary `json:"lecturer"`
}

// LecturerService handles lecturer account workflows.
type LecturerService struct {
	repo      lecturerRepository
	courses   lecturerCourseRepository
	tokens    *TokenIssuer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLecturerService creates an instance of LecturerService.
func NewLecturerService(repo lecturerRepository, courses lecturerCourseRepository, tokens *TokenIssuer, validate *validator.Validate, logger *zap.Logger) *LecturerService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LecturerService{repo: repo, courses: courses, tokens: tokens, validator: validate, logger: logger}
}

// Register creates a lecturer account and issues a bearer token.
func (s *LecturerService) Register(ctx context.Context, req RegisterLecturerRequest) (*LecturerAuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload("invalid registration payload", err)
	}

	email := strings.TrimSpace(req.Email)
	exists, err := s.repo.ExistsByEmail(ctx, email, "")
	if err != nil {
		return nil, storeFailure(err, "failed to check email uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrUniqueness, "lecturer already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	lecturer := &models.Lecturer{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Department:   strings.TrimSpace(req.Department),
	}
	if err := s.repo.Create(ctx, lecturer); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrStoreConflict, "lecturer already exists")
		}
		return nil, storeFailure(err, "failed to create lecturer")
	}

	token, err := s.tokens.Issue(lecturer.ID, lecturer.Email)
	if err != nil {
		return nil, err
	}
	return &LecturerAuthResponse{Token: token, Lecturer: lecturer.Summary()}, nil
}

// Login authenticates a lecturer and issues a bearer token.
func (s *LecturerService) Login(ctx context.Context, req LoginRequest) (*LecturerAuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload("invalid login payload", err)
	}

	lecturer, err := s.repo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, storeFailure(err, "failed to fetch lecturer")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(lecturer.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	token, err := s.tokens.Issue(lecturer.ID, lecturer.Email)
	if err != nil {
		return nil, err
	}
	return &LecturerAuthResponse{Token: token, Lecturer: lecturer.Summary()}, nil
}

// List returns lecturers plus pagination data.
func (s *LecturerService) List(ctx context.Context, filter models.LecturerFilter) ([]models.Lecturer, *models.Pagination, error) {
	lecturers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storeFailure(err, "failed to list lecturers")
	}
	return lecturers, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a lecturer by id.
func (s *LecturerService) Get(ctx context.Context, id string) (*models.Lecturer, error) {
	lecturer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lecturer not found")
		}
		return nil, storeFailure(err, "failed to load lecturer")
	}
	return lecturer, nil
}

// Courses returns the courses referencing the lecturer.
func (s *LecturerService) Courses(ctx context.Context, id string) ([]models.Course, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	courses, err := s.courses.ListByLecturer(ctx, id)
	if err != nil {
		return nil, storeFailure(err, "failed to list lecturer courses")
	}
	return courses, nil
}

// Update merges the payload over the stored profile.
func (s *LecturerService) Update(ctx context.Context, id string, req UpdateLecturerRequest) (*models.Lecturer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload("invalid lecturer payload", err)
	}

	lecturer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lecturer not found")
		}
		return nil, storeFailure(err, "failed to load lecturer")
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		exists, err := s.repo.ExistsByEmail(ctx, email, id)
		if err != nil {
			return nil, storeFailure(err, "failed to check email uniqueness")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrUniqueness, "email already registered")
		}
		lecturer.Email = email
	}
	if req.Name != nil {
		lecturer.Name = strings.TrimSpace(*req.Name)
	}
	if req.Department != nil {
		lecturer.Department = strings.TrimSpace(*req.Department)
	}

	if err := s.repo.Update(ctx, lecturer); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrStoreConflict, "email already registered")
		}
		return nil, storeFailure(err, "failed to update lecturer")
	}
	return lecturer, nil
}

// Delete removes the account. Courses referencing it keep their
// dangling reference.
func (s *LecturerService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeFailure(err, "failed to delete lecturer")
	}
	return nil
}
