package memory

import (
	"context"
	"time"

	"github.com/geocoder89/qtohub/internal/domain/qtoitem"
)

type ItemsRepo struct {
	s *state
}

func (r *ItemsRepo) Insert(_ context.Context, it qtoitem.Item) error {
	r.s.mu.Lock()
	r.s.items[it.ID] = record[qtoitem.Item]{seq: r.s.next(), val: it}
	r.s.mu.Unlock()

	return nil
}

func (r *ItemsRepo) ListByProject(_ context.Context, projectID string) ([]qtoitem.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var recs []record[qtoitem.Item]
	for _, rec := range r.s.items {
		if rec.val.ProjectID == projectID {
			recs = append(recs, rec)
		}
	}

	return newestFirst(recs, func(it qtoitem.Item) time.Time { return it.CreatedAt }), nil
}

func (r *ItemsRepo) GetByID(_ context.Context, id string) (qtoitem.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.items[id]
	if !ok {
		return qtoitem.Item{}, qtoitem.ErrNotFound
	}

	return rec.val, nil
}

func (r *ItemsRepo) Update(_ context.Context, it qtoitem.Item) (qtoitem.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.items[it.ID]
	if !ok {
		return qtoitem.Item{}, qtoitem.ErrNotFound
	}

	it.ProjectID = rec.val.ProjectID
	it.CreatedByID = rec.val.CreatedByID
	it.CreatedAt = rec.val.CreatedAt
	rec.val = it
	r.s.items[it.ID] = rec

	return it, nil
}

func (r *ItemsRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.items[id]; !ok {
		return qtoitem.ErrNotFound
	}

	delete(r.s.items, id)

	return nil
}
