package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/edustack/lms-api/internal/models"
	appErrors "github.com/edustack/lms-api/pkg/errors"
)

type lecturerResolverRepo interface {
	FindByID(ctx context.Context, id string) (*models.Lecturer, error)
	FindByNameOrEmail(ctx context.Context, token string) (*models.Lecturer, error)
}

type userResolverRepo interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByNameOrEmail(ctx context.Context, token string) (*models.User, error)
}

// Resolver turns caller-supplied reference tokens into stored entities.
// A token that parses as a uuid is looked up by id; anything else is
// matched exactly against name or email in a single lookup. When two
// entities share a name, the lowest id wins; resolution is read-only.
type Resolver struct {
	lecturers lecturerResolverRepo
	users     userResolverRepo
}

// NewResolver constructs a Resolver over the entity repositories.
func NewResolver(lecturers lecturerResolverRepo, users userResolverRepo) *Resolver {
	return &Resolver{lecturers: lecturers, users: users}
}

// ResolveLecturer resolves a lecturer reference token.
func (r *Resolver) ResolveLecturer(ctx context.Context, token string) (*models.Lecturer, error) {
	token = strings.TrimSpace(token)

	if _, err := uuid.Parse(token); err == nil {
		lecturer, err := r.lecturers.FindByID(ctx, token)
		if err != nil {
			return nil, resolveFailure("lecturer", token, err)
		}
		return lecturer, nil
	}

	lecturer, err := r.lecturers.FindByNameOrEmail(ctx, token)
	if err != nil {
		return nil, resolveFailure("lecturer", token, err)
	}
	return lecturer, nil
}

// ResolveUser resolves a student reference token.
func (r *Resolver) ResolveUser(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(token)

	if _, err := uuid.Parse(token); err == nil {
		user, err := r.users.FindByID(ctx, token)
		if err != nil {
			return nil, resolveFailure("student", token, err)
		}
		return user, nil
	}

	user, err := r.users.FindByNameOrEmail(ctx, token)
	if err != nil {
		return nil, resolveFailure("student", token, err)
	}
	return user, nil
}

// resolveFailure keeps the original token in the message for
// diagnostics.
func resolveFailure(kind, token string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrReferenceNotFound, fmt.Sprintf("%s %q not found", kind, token))
	}
	return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, fmt.Sprintf("failed to resolve %s reference", kind))
}
