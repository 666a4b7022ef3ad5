package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/edustack/lms-api/internal/models"
	appErrors "github.com/edustack/lms-api/pkg/errors"
)

// FlexNumber accepts a JSON number or a numeric string, preserving the
// raw token until assembly converts it.
type FlexNumber string

// UnmarshalJSON implements json.Unmarshaler.
func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*n = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = FlexNumber(strings.TrimSpace(s))
		return nil
	}
	*n = FlexNumber(raw)
	return nil
}

// Int converts the raw token to an integer.
func (n FlexNumber) Int() (int, error) {
	return strconv.Atoi(string(n))
}

// Float converts the raw token to a float.
func (n FlexNumber) Float() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// assembleCourse builds the course record to persist from an already
// structurally valid payload and a resolved lecturer id. Pure: no I/O,
// deterministic for identical inputs.
func assembleCourse(req CreateCourseRequest, lecturerID string) (*models.Course, error) {
	duration, err := req.Duration.Int()
	if err != nil {
		return nil, typeMismatch("duration")
	}

	course := &models.Course{
		Name:             strings.TrimSpace(req.Name),
		Description:      strings.TrimSpace(req.Description),
		LecturerID:       lecturerID,
		Category:         strings.TrimSpace(req.Category),
		Duration:         duration,
		EnrolledStudents: models.IDList{},
		Content:          assembleContent(req.Content),
	}

	if req.Price != nil {
		price, err := req.Price.Float()
		if err != nil {
			return nil, typeMismatch("price")
		}
		course.Price = &price
	}
	if req.Level != nil {
		if level := strings.TrimSpace(*req.Level); level != "" {
			course.Level = &level
		}
	}
	if req.EnrollmentLimit != nil {
		limit, err := req.EnrollmentLimit.Int()
		if err != nil {
			return nil, typeMismatch("enrollment_limit")
		}
		course.EnrollmentLimit = &limit
	}

	return course, nil
}

// mergeCourse applies a partial update payload over the stored record.
// Absent fields keep their stored values; lecturerID is empty when the
// payload carried no lecturer reference.
func mergeCourse(existing models.Course, req UpdateCourseRequest, lecturerID string) (*models.Course, error) {
	course := existing

	if req.Name != nil {
		course.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		course.Description = strings.TrimSpace(*req.Description)
	}
	if lecturerID != "" {
		course.LecturerID = lecturerID
	}
	if req.Category != nil {
		course.Category = strings.TrimSpace(*req.Category)
	}
	if req.Duration != nil {
		duration, err := req.Duration.Int()
		if err != nil {
			return nil, typeMismatch("duration")
		}
		course.Duration = duration
	}
	if req.Price != nil {
		price, err := req.Price.Float()
		if err != nil {
			return nil, typeMismatch("price")
		}
		course.Price = &price
	}
	if req.Level != nil {
		level := strings.TrimSpace(*req.Level)
		course.Level = &level
	}
	if req.EnrollmentLimit != nil {
		limit, err := req.EnrollmentLimit.Int()
		if err != nil {
			return nil, typeMismatch("enrollment_limit")
		}
		course.EnrollmentLimit = &limit
	}
	if req.Content != nil {
		course.Content = assembleContent(*req.Content)
	}

	return &course, nil
}

func assembleContent(items []ContentItemRequest) models.ContentList {
	content := make(models.ContentList, 0, len(items))
	for _, item := range items {
		content = append(content, models.ContentItem{
			Title: strings.TrimSpace(item.Title),
			URL:   strings.TrimSpace(item.URL),
		})
	}
	return content
}

func typeMismatch(field string) error {
	return appErrors.Clone(appErrors.ErrTypeMismatch, fmt.Sprintf("%s must be numeric", field))
}
