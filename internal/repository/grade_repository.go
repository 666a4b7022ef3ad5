package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edustack/lms-api/internal/models"
)

const gradeColumns = "id, student_id, course_id, status, remarks, graded_at"

// GradeRepository manages persistence for grades.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// List returns all grades with pagination.
func (r *GradeRepository) List(ctx context.Context, page, size int) ([]models.Grade, int, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM grades ORDER BY graded_at DESC LIMIT %d OFFSET %d", gradeColumns, size, offset)
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query); err != nil {
		return nil, 0, fmt.Errorf("list grades: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM grades"); err != nil {
		return nil, 0, fmt.Errorf("count grades: %w", err)
	}

	return grades, total, nil
}

// FindByID fetches a grade by ID.
func (r *GradeRepository) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	query := fmt.Sprintf("SELECT %s FROM grades WHERE id = $1", gradeColumns)
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		return nil, err
	}
	return &grade, nil
}

// ExistsByPair checks whether a grade already exists for the
// (student, course) pair.
func (r *GradeRepository) ExistsByPair(ctx context.Context, studentID, courseID string) (bool, error) {
	const query = `SELECT 1 FROM grades WHERE student_id = $1 AND course_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check grade pair: %w", err)
	}
	return true, nil
}

// ListByStudent returns all grades assigned to a student.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	query := fmt.Sprintf("SELECT %s FROM grades WHERE student_id = $1 ORDER BY graded_at DESC", gradeColumns)
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, studentID); err != nil {
		return nil, fmt.Errorf("list grades by student: %w", err)
	}
	return grades, nil
}

// ListByCourse returns all grades assigned within a course.
func (r *GradeRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Grade, error) {
	query := fmt.Sprintf("SELECT %s FROM grades WHERE course_id = $1 ORDER BY graded_at DESC", gradeColumns)
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, courseID); err != nil {
		return nil, fmt.Errorf("list grades by course: %w", err)
	}
	return grades, nil
}

// Create inserts a new grade. The unique index on (student_id,
// course_id) is the atomic pair-uniqueness guarantee.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	if grade.GradedAt.IsZero() {
		grade.GradedAt = time.Now().UTC()
	}
	if strings.TrimSpace(string(grade.Status)) == "" {
		grade.Status = models.GradePending
	}

	const query = `INSERT INTO grades (id, student_id, course_id, status, remarks, graded_at)
		VALUES (:id, :student_id, :course_id, :status, :remarks, :graded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("create grade: %w", err)
	}
	return nil
}

// Update modifies the mutable fields of a grade.
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	const query = `UPDATE grades SET status = :status, remarks = :remarks WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	return nil
}

// Delete removes a grade.
func (r *GradeRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM grades WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	return nil
}
