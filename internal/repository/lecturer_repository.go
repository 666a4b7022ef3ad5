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

const lecturerColumns = "id, name, email, password_hash, department, created_at, updated_at"

// LecturerRepository manages persistence for lecturers.
type LecturerRepository struct {
	db *sqlx.DB
}

// NewLecturerRepository constructs a LecturerRepository.
func NewLecturerRepository(db *sqlx.DB) *LecturerRepository {
	return &LecturerRepository{db: db}
}

// List returns lecturers matching filters along with total count.
func (r *LecturerRepository) List(ctx context.Context, filter models.LecturerFilter) ([]models.Lecturer, int, error) {
	base := "FROM lecturers WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d OR LOWER(department) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"name":       "name",
		"email":      "email",
		"department": "department",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", lecturerColumns, base, column, order, size, offset)
	var lecturers []models.Lecturer
	if err := r.db.SelectContext(ctx, &lecturers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list lecturers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count lecturers: %w", err)
	}

	return lecturers, total, nil
}

// FindByID fetches a lecturer by ID.
func (r *LecturerRepository) FindByID(ctx context.Context, id string) (*models.Lecturer, error) {
	query := fmt.Sprintf("SELECT %s FROM lecturers WHERE id = $1", lecturerColumns)
	var lecturer models.Lecturer
	if err := r.db.GetContext(ctx, &lecturer, query, id); err != nil {
		return nil, err
	}
	return &lecturer, nil
}

// FindByEmail fetches a lecturer by email.
func (r *LecturerRepository) FindByEmail(ctx context.Context, email string) (*models.Lecturer, error) {
	query := fmt.Sprintf("SELECT %s FROM lecturers WHERE LOWER(email) = LOWER($1)", lecturerColumns)
	var lecturer models.Lecturer
	if err := r.db.GetContext(ctx, &lecturer, query, email); err != nil {
		return nil, err
	}
	return &lecturer, nil
}

// FindByNameOrEmail resolves a human-readable token to a lecturer. The
// lowest id wins when names collide, keeping resolution deterministic.
func (r *LecturerRepository) FindByNameOrEmail(ctx context.Context, token string) (*models.Lecturer, error) {
	query := fmt.Sprintf("SELECT %s FROM lecturers WHERE name = $1 OR LOWER(email) = LOWER($1) ORDER BY id LIMIT 1", lecturerColumns)
	var lecturer models.Lecturer
	if err := r.db.GetContext(ctx, &lecturer, query, token); err != nil {
		return nil, err
	}
	return &lecturer, nil
}

// ExistsByEmail checks if another lecturer already uses the email.
func (r *LecturerRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM lecturers WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check lecturer email: %w", err)
	}
	return true, nil
}

// Create inserts a new lecturer record.
func (r *LecturerRepository) Create(ctx context.Context, lecturer *models.Lecturer) error {
	if lecturer.ID == "" {
		lecturer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lecturer.CreatedAt.IsZero() {
		lecturer.CreatedAt = now
	}
	lecturer.UpdatedAt = now

	const query = `INSERT INTO lecturers (id, name, email, password_hash, department, created_at, updated_at)
		VALUES (:id, :name, :email, :password_hash, :department, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lecturer); err != nil {
		return fmt.Errorf("create lecturer: %w", err)
	}
	return nil
}

// Update modifies an existing lecturer record.
func (r *LecturerRepository) Update(ctx context.Context, lecturer *models.Lecturer) error {
	lecturer.UpdatedAt = time.Now().UTC()
	const query = `UPDATE lecturers SET name = :name, email = :email, password_hash = :password_hash, department = :department, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, lecturer); err != nil {
		return fmt.Errorf("update lecturer: %w", err)
	}
	return nil
}

// Delete removes a lecturer. Courses referencing the lecturer keep
// their dangling reference.
func (r *LecturerRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM lecturers WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete lecturer: %w", err)
	}
	return nil
}
