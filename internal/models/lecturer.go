package models

import "time"

// Lecturer represents an instructor record.
type Lecturer struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Department   string    `db:"department" json:"department"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Summary returns the public reference shape of the lecturer.
func (l *Lecturer) Summary() *RefSummary {
	if l == nil {
		return nil
	}
	return &RefSummary{ID: l.ID, Name: l.Name, Email: l.Email}
}

// LecturerFilter captures filtering options for listing lecturers.
type LecturerFilter struct {
	Search     string
	Department string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
