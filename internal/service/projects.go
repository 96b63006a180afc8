package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/qtohub/internal/access"
	"github.com/geocoder89/qtohub/internal/apperr"
	"github.com/geocoder89/qtohub/internal/domain/project"
)

// ProjectStore is the persistence contract for projects. Implementations
// return project.ErrNotFound and project.ErrNumberTaken.
type ProjectStore interface {
	Insert(ctx context.Context, p project.Project) error
	// List returns projects newest first; a nil ownerID means all owners.
	List(ctx context.Context, ownerID *string) ([]project.Project, error)
	GetByID(ctx context.Context, id string) (project.Project, error)
	Update(ctx context.Context, p project.Project) (project.Project, error)
	Delete(ctx context.Context, id string) error
}

type Projects struct {
	store  ProjectStore
	policy access.Policy
	log    *slog.Logger
}

func NewProjects(store ProjectStore, log *slog.Logger) *Projects {
	return &Projects{
		store:  store,
		policy: access.Owner,
		log:    loggerOrDefault(log),
	}
}

func (s *Projects) Create(ctx context.Context, req project.Request) (project.Project, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return project.Project{}, err
	}

	if !access.CanCreateProject(actor.Role) {
		return project.Project{}, apperr.Authorization("You do not have permission to create projects.")
	}

	if err := validateProject(req); err != nil {
		return project.Project{}, err
	}

	p := project.NewFromRequest(req, actor.ID)

	err = s.store.Insert(ctx, p)
	if err != nil {
		if errors.Is(err, project.ErrNumberTaken) {
			return project.Project{}, apperr.Conflict("projectNumber", "Project Number must be unique.")
		}
		s.log.ErrorContext(ctx, "create project failed", "user_id", actor.ID, "err", err)
		return project.Project{}, apperr.Storage("Failed to create project due to a server error.", err)
	}

	return p, nil
}

func (s *Projects) List(ctx context.Context) ([]project.Project, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	var owner *string
	if !actor.IsAdmin() {
		owner = &actor.ID
	}

	items, err := s.store.List(ctx, owner)
	if err != nil {
		s.log.ErrorContext(ctx, "list projects failed", "user_id", actor.ID, "err", err)
		return nil, apperr.Storage("Failed to load projects.", err)
	}

	return items, nil
}

// Get fails closed: a project the caller may not read is reported as
// missing.
func (s *Projects) Get(ctx context.Context, id string) (project.Project, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return project.Project{}, err
	}

	p, err := s.load(ctx, id, "Project not found.")
	if err != nil {
		return project.Project{}, err
	}

	if !s.policy.Allow(actor, access.Resource{OwnerID: p.CreatedByID}, access.ActionRead) {
		s.log.WarnContext(ctx, "project access denied", "user_id", actor.ID, "role", actor.Role, "project_id", id)
		return project.Project{}, apperr.NotFound("Project not found.")
	}

	return p, nil
}

func (s *Projects) Update(ctx context.Context, id string, req project.Request) (project.Project, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return project.Project{}, err
	}

	p, err := s.load(ctx, id, "Project not found or you do not have permission to update it.")
	if err != nil {
		return project.Project{}, err
	}

	if !s.policy.Allow(actor, access.Resource{OwnerID: p.CreatedByID}, access.ActionUpdate) {
		return project.Project{}, apperr.Authorization("You do not have permission to update this project.")
	}

	if err := validateProject(req); err != nil {
		return project.Project{}, err
	}

	p.Apply(req)
	p.UpdatedAt = time.Now().UTC()

	updated, err := s.store.Update(ctx, p)
	if err != nil {
		switch {
		case errors.Is(err, project.ErrNumberTaken):
			return project.Project{}, apperr.Conflict("projectNumber", "Project Number must be unique.")
		case errors.Is(err, project.ErrNotFound):
			return project.Project{}, apperr.NotFound("Project not found.")
		}
		s.log.ErrorContext(ctx, "update project failed", "project_id", id, "err", err)
		return project.Project{}, apperr.Storage("Failed to update project due to a server error.", err)
	}

	return updated, nil
}

// Delete is a hard delete; the schema cascades to the project's items.
func (s *Projects) Delete(ctx context.Context, id string) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}

	p, err := s.load(ctx, id, "Project not found or you do not have permission to delete it.")
	if err != nil {
		return err
	}

	if !s.policy.Allow(actor, access.Resource{OwnerID: p.CreatedByID}, access.ActionDelete) {
		return apperr.Authorization("You do not have permission to delete this project.")
	}

	err = s.store.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return apperr.NotFound("Project not found.")
		}
		s.log.ErrorContext(ctx, "delete project failed", "project_id", id, "err", err)
		return apperr.Storage("Failed to delete project.", err)
	}

	return nil
}

func (s *Projects) load(ctx context.Context, id, notFoundMsg string) (project.Project, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return project.Project{}, apperr.NotFound(notFoundMsg)
		}
		s.log.ErrorContext(ctx, "load project failed", "project_id", id, "err", err)
		return project.Project{}, apperr.Storage("Failed to load project.", err)
	}
	return p, nil
}

func validateProject(req project.Request) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperr.Validation("projectName", "Project Name is required.")
	}

	status := project.Status(strings.TrimSpace(req.Status))
	if status != "" && !status.Valid() {
		return apperr.Validation("projectStatus", "Project Status is not recognised.")
	}

	return nil
}
