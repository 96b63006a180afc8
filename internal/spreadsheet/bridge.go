// Package spreadsheet translates a project's QTO items to and from xlsx
// workbooks.
package spreadsheet

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/qtohub/internal/access"
	"github.com/geocoder89/qtohub/internal/actorctx"
	"github.com/geocoder89/qtohub/internal/apperr"
	"github.com/geocoder89/qtohub/internal/domain/project"
	"github.com/geocoder89/qtohub/internal/domain/qtoitem"
)

const (
	SheetQTO     = "QTO Sheet"
	SheetSummary = "Summary"
	ContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ProjectReader interface {
	Get(ctx context.Context, id string) (project.Project, error)
}

type ItemService interface {
	List(ctx context.Context, projectID string) ([]qtoitem.Item, error)
	Create(ctx context.Context, projectID string, req qtoitem.Request) (qtoitem.Item, error)
}

// RowObserver is told the outcome of every imported data row
// ("added", "failed" or "skipped").
type RowObserver interface {
	ObserveImportRow(result string)
}

type Bridge struct {
	projects ProjectReader
	items    ItemService
	policy   access.Policy
	observer RowObserver
	log      *slog.Logger
	now      func() time.Time
}

func NewBridge(projects ProjectReader, items ItemService, observer RowObserver, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.Default()
	}

	return &Bridge{
		projects: projects,
		items:    items,
		policy:   access.Owner,
		observer: observer,
		log:      log,
		now:      time.Now,
	}
}

// authorize loads the project and re-checks the owner policy for action.
func (b *Bridge) authorize(ctx context.Context, projectID string, action access.Action, deniedMsg string) (project.Project, error) {
	actor, ok := actorctx.From(ctx)
	if !ok {
		return project.Project{}, apperr.Authentication("User not authenticated.")
	}

	p, err := b.projects.Get(ctx, projectID)
	if err != nil {
		return project.Project{}, err
	}

	if !b.policy.Allow(actor, access.Resource{OwnerID: p.CreatedByID}, action) {
		return project.Project{}, apperr.Authorization(deniedMsg)
	}

	return p, nil
}

func (b *Bridge) observe(result string) {
	if b.observer != nil {
		b.observer.ObserveImportRow(result)
	}
}
