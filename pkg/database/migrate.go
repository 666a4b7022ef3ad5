package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (LOWER(email))`,
	`CREATE TABLE IF NOT EXISTS lecturers (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    department TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_lecturers_email ON lecturers (LOWER(email))`,
	`CREATE TABLE IF NOT EXISTS courses (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL,
    lecturer_id UUID NOT NULL,
    category TEXT NOT NULL,
    duration INTEGER NOT NULL,
    price NUMERIC,
    level TEXT,
    enrollment_limit INTEGER,
    enrolled_students JSONB NOT NULL DEFAULT '[]',
    content JSONB NOT NULL DEFAULT '[]',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_courses_name ON courses (name)`,
	`CREATE INDEX IF NOT EXISTS idx_courses_lecturer ON courses (lecturer_id)`,
	`CREATE TABLE IF NOT EXISTS grades (
    id UUID PRIMARY KEY,
    student_id UUID NOT NULL,
    course_id UUID NOT NULL,
    status TEXT NOT NULL DEFAULT 'Pending',
    remarks TEXT,
    graded_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_grades_student_course ON grades (student_id, course_id)`,
	`CREATE INDEX IF NOT EXISTS idx_grades_course ON grades (course_id)`,
}

// Migrate applies the schema statements in order. Statements are
// idempotent so repeated startups are safe.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
