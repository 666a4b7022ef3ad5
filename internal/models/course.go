package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ContentItem is a single entry in a course's ordered content sequence.
type ContentItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ContentList is the JSONB-backed ordered content sequence.
type ContentList []ContentItem

// Value implements driver.Valuer for JSONB storage.
func (l ContentList) Value() (driver.Value, error) {
	if l == nil {
		l = ContentList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB storage.
func (l *ContentList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported content list source type %T", src)
	}
}

// IDList is a JSONB-backed list of entity id references.
type IDList []string

// Value implements driver.Valuer for JSONB storage.
func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		l = IDList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB storage.
func (l *IDList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported id list source type %T", src)
	}
}

// Contains reports whether the id is present in the list.
func (l IDList) Contains(id string) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Course represents a course offering. LecturerID is a weak reference:
// deleting the lecturer does not cascade here.
type Course struct {
	ID               string      `db:"id" json:"id"`
	Name             string      `db:"name" json:"name"`
	Description      string      `db:"description" json:"description"`
	LecturerID       string      `db:"lecturer_id" json:"lecturer_id"`
	Category         string      `db:"category" json:"category"`
	Duration         int         `db:"duration" json:"duration"`
	Price            *float64    `db:"price" json:"price,omitempty"`
	Level            *string     `db:"level" json:"level,omitempty"`
	EnrollmentLimit  *int        `db:"enrollment_limit" json:"enrollment_limit,omitempty"`
	EnrolledStudents IDList      `db:"enrolled_students" json:"enrolled_students"`
	Content          ContentList `db:"content" json:"content"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at" json:"updated_at"`
}

// CourseDetail is a course with its lecturer reference expanded.
// Lecturer is null when the reference dangles.
type CourseDetail struct {
	Course
	Lecturer *RefSummary `json:"lecturer"`
}

// CourseFilter encapsulates search parameters for listing courses.
type CourseFilter struct {
	Search    string
	Category  string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
