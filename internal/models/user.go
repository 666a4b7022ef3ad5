package models

import "time"

// User represents a student account stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Summary returns the public reference shape of the user.
func (u *User) Summary() *RefSummary {
	if u == nil {
		return nil
	}
	return &RefSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
