// Package memory keeps everything in process maps. It backs STORAGE_DRIVER=memory
// for local runs and the service tests; data is lost on restart.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/qtohub/internal/domain/project"
	"github.com/geocoder89/qtohub/internal/domain/qtoitem"
	"github.com/geocoder89/qtohub/internal/domain/user"
)

type state struct {
	mu       sync.RWMutex
	seq      int64
	users    map[string]user.User
	projects map[string]record[project.Project]
	items    map[string]record[qtoitem.Item]
}

// record remembers insertion order so "newest first" is stable even when
// two rows share a created_at.
type record[T any] struct {
	seq int64
	val T
}

type Store struct {
	Users    *UsersRepo
	Projects *ProjectsRepo
	Items    *ItemsRepo
}

func NewStore() *Store {
	s := &state{
		users:    make(map[string]user.User),
		projects: make(map[string]record[project.Project]),
		items:    make(map[string]record[qtoitem.Item]),
	}

	return &Store{
		Users:    &UsersRepo{s: s},
		Projects: &ProjectsRepo{s: s},
		Items:    &ItemsRepo{s: s},
	}
}

func (s *state) next() int64 {
	s.seq++
	return s.seq
}

func newestFirst[T any](recs []record[T], createdAt func(T) time.Time) []T {
	sort.Slice(recs, func(i, j int) bool {
		ci, cj := createdAt(recs[i].val), createdAt(recs[j].val)
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return recs[i].seq > recs[j].seq
	})

	out := make([]T, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.val)
	}
	return out
}
