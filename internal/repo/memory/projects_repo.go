package memory

import (
	"context"
	"time"

	"github.com/geocoder89/qtohub/internal/domain/project"
)

type ProjectsRepo struct {
	s *state
}

func (r *ProjectsRepo) Insert(_ context.Context, p project.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.numberTaken(p.Number, p.ID) {
		return project.ErrNumberTaken
	}

	r.s.projects[p.ID] = record[project.Project]{seq: r.s.next(), val: p}

	return nil
}

func (r *ProjectsRepo) List(_ context.Context, ownerID *string) ([]project.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := make([]record[project.Project], 0, len(r.s.projects))
	for _, rec := range r.s.projects {
		if ownerID != nil && rec.val.CreatedByID != *ownerID {
			continue
		}
		recs = append(recs, rec)
	}

	return newestFirst(recs, func(p project.Project) time.Time { return p.CreatedAt }), nil
}

func (r *ProjectsRepo) GetByID(_ context.Context, id string) (project.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.projects[id]
	if !ok {
		return project.Project{}, project.ErrNotFound
	}

	return rec.val, nil
}

func (r *ProjectsRepo) Update(_ context.Context, p project.Project) (project.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.projects[p.ID]
	if !ok {
		return project.Project{}, project.ErrNotFound
	}

	if r.numberTaken(p.Number, p.ID) {
		return project.Project{}, project.ErrNumberTaken
	}

	// owner and creation time are immutable
	p.CreatedByID = rec.val.CreatedByID
	p.CreatedAt = rec.val.CreatedAt
	rec.val = p
	r.s.projects[p.ID] = rec

	return p, nil
}

// Delete removes the project and its items, mirroring ON DELETE CASCADE.
func (r *ProjectsRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[id]; !ok {
		return project.ErrNotFound
	}

	delete(r.s.projects, id)

	for itemID, rec := range r.s.items {
		if rec.val.ProjectID == id {
			delete(r.s.items, itemID)
		}
	}

	return nil
}

// caller holds the lock
func (r *ProjectsRepo) numberTaken(number *string, exceptID string) bool {
	if number == nil {
		return false
	}

	for id, rec := range r.s.projects {
		if id != exceptID && rec.val.Number != nil && *rec.val.Number == *number {
			return true
		}
	}

	return false
}
