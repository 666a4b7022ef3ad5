package models

import "time"

// GradeStatus enumerates accepted grade statuses.
type GradeStatus string

const (
	GradeA          GradeStatus = "A"
	GradeB          GradeStatus = "B"
	GradeC          GradeStatus = "C"
	GradeD          GradeStatus = "D"
	GradeE          GradeStatus = "E"
	GradeF          GradeStatus = "F"
	GradeIncomplete GradeStatus = "Incomplete"
	GradePending    GradeStatus = "Pending"
)

// ValidGradeStatus reports whether the status belongs to the canonical
// set. Legacy Pass/Fail rows are readable but not writable.
func ValidGradeStatus(s GradeStatus) bool {
	switch s {
	case GradeA, GradeB, GradeC, GradeD, GradeE, GradeF, GradeIncomplete, GradePending:
		return true
	}
	return false
}

// Grade joins a student to a course with an assessed status.
// At most one grade exists per (student, course) pair.
type Grade struct {
	ID        string      `db:"id" json:"id"`
	StudentID string      `db:"student_id" json:"student_id"`
	CourseID  string      `db:"course_id" json:"course_id"`
	Status    GradeStatus `db:"status" json:"status"`
	Remarks   *string     `db:"remarks" json:"remarks,omitempty"`
	GradedAt  time.Time   `db:"graded_at" json:"graded_at"`
}

// CourseSummary is the public shape of an expanded course reference.
type CourseSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// GradeDetail is a grade with its references expanded to public
// summaries. A dangling reference expands to null.
type GradeDetail struct {
	Grade
	Student *RefSummary    `json:"student"`
	Course  *CourseSummary `json:"course"`
}
