package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/geocoder89/qtohub/internal/access"
	"github.com/geocoder89/qtohub/internal/apperr"
	"github.com/geocoder89/qtohub/internal/domain/project"
	"github.com/geocoder89/qtohub/internal/domain/qtoitem"
)

type ItemStore interface {
	Insert(ctx context.Context, it qtoitem.Item) error
	// ListByProject returns items newest first.
	ListByProject(ctx context.Context, projectID string) ([]qtoitem.Item, error)
	GetByID(ctx context.Context, id string) (qtoitem.Item, error)
	Update(ctx context.Context, it qtoitem.Item) (qtoitem.Item, error)
	Delete(ctx context.Context, id string) error
}

// ProjectLookup is the slice of ProjectStore the item service needs to
// find a parent's owner.
type ProjectLookup interface {
	GetByID(ctx context.Context, id string) (project.Project, error)
}

type Items struct {
	store    ItemStore
	projects ProjectLookup
	// scoped governs create and list against the parent project owner.
	scoped access.Policy
	// modify governs update and delete; it also admits the item's creator.
	modify access.Policy
	log    *slog.Logger
}

func NewItems(store ItemStore, projects ProjectLookup, log *slog.Logger) *Items {
	return &Items{
		store:    store,
		projects: projects,
		scoped:   access.Owner,
		modify:   access.ItemCollaborator,
		log:      loggerOrDefault(log),
	}
}

func (s *Items) Create(ctx context.Context, projectID string, req qtoitem.Request) (qtoitem.Item, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return qtoitem.Item{}, err
	}

	p, err := s.parent(ctx, projectID, "Project not found.")
	if err != nil {
		return qtoitem.Item{}, err
	}

	if !s.scoped.Allow(actor, access.Resource{OwnerID: p.CreatedByID}, access.ActionCreate) {
		return qtoitem.Item{}, apperr.Authorization("You do not have permission to add items to this project.")
	}

	if err := validateItem(req); err != nil {
		return qtoitem.Item{}, err
	}

	it := qtoitem.NewFromRequest(projectID, req, actor.ID)

	err = s.store.Insert(ctx, it)
	if err != nil {
		s.log.ErrorContext(ctx, "create qto item failed", "project_id", projectID, "err", err)
		return qtoitem.Item{}, apperr.Storage("Failed to add QTO Item due to a server error.", err)
	}

	return it, nil
}

func (s *Items) List(ctx context.Context, projectID string) ([]qtoitem.Item, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.parent(ctx, projectID, "Project not found.")
	if err != nil {
		return nil, err
	}

	if !s.scoped.Allow(actor, access.Resource{OwnerID: p.CreatedByID}, access.ActionRead) {
		s.log.WarnContext(ctx, "qto item list denied", "user_id", actor.ID, "project_id", projectID)
		return nil, apperr.NotFound("Project not found.")
	}

	items, err := s.store.ListByProject(ctx, projectID)
	if err != nil {
		s.log.ErrorContext(ctx, "list qto items failed", "project_id", projectID, "err", err)
		return nil, apperr.Storage("Failed to load QTO items.", err)
	}

	return items, nil
}

// Update replaces the item's editable fields. projectID scopes the lookup;
// an item under a different project is reported as not found.
func (s *Items) Update(ctx context.Context, projectID, itemID string, req qtoitem.Request) (qtoitem.Item, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return qtoitem.Item{}, err
	}

	it, err := s.authorizeModify(ctx, actor, projectID, itemID, access.ActionUpdate, "You do not have permission to update this item.")
	if err != nil {
		return qtoitem.Item{}, err
	}

	if err := validateItem(req); err != nil {
		return qtoitem.Item{}, err
	}

	it.Apply(req)
	it.UpdatedAt = time.Now().UTC()

	updated, err := s.store.Update(ctx, it)
	if err != nil {
		if errors.Is(err, qtoitem.ErrNotFound) {
			return qtoitem.Item{}, apperr.NotFound("QTO Item not found.")
		}
		s.log.ErrorContext(ctx, "update qto item failed", "item_id", itemID, "err", err)
		return qtoitem.Item{}, apperr.Storage("Failed to update QTO Item due to a server error.", err)
	}

	return updated, nil
}

func (s *Items) Delete(ctx context.Context, projectID, itemID string) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}

	if _, err := s.authorizeModify(ctx, actor, projectID, itemID, access.ActionDelete, "You do not have permission to delete this item."); err != nil {
		return err
	}

	err = s.store.Delete(ctx, itemID)
	if err != nil {
		if errors.Is(err, qtoitem.ErrNotFound) {
			return apperr.NotFound("QTO Item not found.")
		}
		s.log.ErrorContext(ctx, "delete qto item failed", "item_id", itemID, "err", err)
		return apperr.Storage("Failed to delete QTO Item.", err)
	}

	return nil
}

func (s *Items) authorizeModify(ctx context.Context, actor access.Actor, projectID, itemID string, action access.Action, deniedMsg string) (qtoitem.Item, error) {
	it, err := s.store.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, qtoitem.ErrNotFound) {
			return qtoitem.Item{}, apperr.NotFound("QTO Item not found.")
		}
		s.log.ErrorContext(ctx, "load qto item failed", "item_id", itemID, "err", err)
		return qtoitem.Item{}, apperr.Storage("Failed to load QTO Item.", err)
	}

	if projectID != "" && it.ProjectID != projectID {
		return qtoitem.Item{}, apperr.NotFound("QTO Item not found.")
	}

	p, err := s.parent(ctx, it.ProjectID, "Associated project not found.")
	if err != nil {
		return qtoitem.Item{}, err
	}

	res := access.Resource{OwnerID: p.CreatedByID, CreatorID: it.CreatedByID}
	if !s.modify.Allow(actor, res, action) {
		return qtoitem.Item{}, apperr.Authorization(deniedMsg)
	}

	return it, nil
}

func (s *Items) parent(ctx context.Context, projectID, notFoundMsg string) (project.Project, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return project.Project{}, apperr.NotFound(notFoundMsg)
		}
		s.log.ErrorContext(ctx, "load parent project failed", "project_id", projectID, "err", err)
		return project.Project{}, apperr.Storage("Failed to load project.", err)
	}
	return p, nil
}

func validateItem(req qtoitem.Request) error {
	if strings.TrimSpace(req.Description) == "" {
		return apperr.Validation("itemDescription", "Item Description is required.")
	}
	if !finite(req.Quantity) {
		return apperr.Validation("quantity", "Quantity must be a finite number.")
	}
	if !finite(req.UnitRate) {
		return apperr.Validation("unitRate", "Unit Rate must be a finite number.")
	}
	if !finite(qtoitem.TotalCost(req.Quantity, req.UnitRate)) {
		return apperr.Validation("unitRate", "Total cost is out of range.")
	}
	return nil
}

func finite(v *float64) bool {
	return v == nil || !(math.IsNaN(*v) || math.IsInf(*v, 0))
}
