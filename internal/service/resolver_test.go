package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustack/lms-api/internal/models"
	appErrors "github.com/edustack/lms-api/pkg/errors"
)

const lecturerUUID = "7f8d9c4e-1a2b-4c3d-8e9f-0a1b2c3d4e5f"

func TestResolverLecturerByID(t *testing.T) {
	lecturers := &mockLecturerRepo{items: map[string]*models.Lecturer{
		lecturerUUID: {ID: lecturerUUID, Name: "Grace Hopper", Email: "grace@example.com"},
	}}
	resolver := NewResolver(lecturers, &mockUserRepo{})

	lecturer, err := resolver.ResolveLecturer(context.Background(), lecturerUUID)
	require.NoError(t, err)
	assert.Equal(t, lecturerUUID, lecturer.ID)
}

func TestResolverLecturerByNameAndEmail(t *testing.T) {
	lecturers := &mockLecturerRepo{items: map[string]*models.Lecturer{
		"l1": {ID: "l1", Name: "Grace Hopper", Email: "grace@example.com"},
	}}
	resolver := NewResolver(lecturers, &mockUserRepo{})

	byName, err := resolver.ResolveLecturer(context.Background(), "Grace Hopper")
	require.NoError(t, err)
	assert.Equal(t, "l1", byName.ID)

	byEmail, err := resolver.ResolveLecturer(context.Background(), "grace@example.com")
	require.NoError(t, err)
	assert.Equal(t, "l1", byEmail.ID)

	// Surrounding whitespace in the token is ignored.
	trimmed, err := resolver.ResolveLecturer(context.Background(), "  grace@example.com  ")
	require.NoError(t, err)
	assert.Equal(t, "l1", trimmed.ID)
}

func TestResolverLecturerAmbiguousNamePicksLowestID(t *testing.T) {
	lecturers := &mockLecturerRepo{items: map[string]*models.Lecturer{
		"l1": {ID: "l1", Name: "Grace Hopper", Email: "grace1@example.com"},
		"l2": {ID: "l2", Name: "Grace Hopper", Email: "grace2@example.com"},
	}}
	resolver := NewResolver(lecturers, &mockUserRepo{})

	lecturer, err := resolver.ResolveLecturer(context.Background(), "Grace Hopper")
	require.NoError(t, err)
	assert.Equal(t, "l1", lecturer.ID)
}

func TestResolverLecturerMissKeepsToken(t *testing.T) {
	resolver := NewResolver(&mockLecturerRepo{}, &mockUserRepo{})

	_, err := resolver.ResolveLecturer(context.Background(), "Nobody Known")
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrReferenceNotFound.Code, appErr.Code)
	assert.Contains(t, appErr.Message, `"Nobody Known"`)
}

func TestResolverUUIDTokenSkipsNameLookup(t *testing.T) {
	// A parseable uuid that matches no id must not fall back to a
	// name match, even when a lecturer is named after that uuid.
	lecturers := &mockLecturerRepo{items: map[string]*models.Lecturer{
		"l1": {ID: "l1", Name: lecturerUUID, Email: "weird@example.com"},
	}}
	resolver := NewResolver(lecturers, &mockUserRepo{})

	_, err := resolver.ResolveLecturer(context.Background(), lecturerUUID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrReferenceNotFound.Code, appErrors.FromError(err).Code)
}

func TestResolverUser(t *testing.T) {
	users := &mockUserRepo{items: map[string]*models.User{
		"u1": {ID: "u1", Name: "Ada Lovelace", Email: "ada@example.com"},
	}}
	resolver := NewResolver(&mockLecturerRepo{}, users)

	user, err := resolver.ResolveUser(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = resolver.ResolveUser(context.Background(), "ghost@example.com")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrReferenceNotFound.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "student")
}
