package jobs

import (
	"errors"
	"sort"
	"sync"
)

var ErrJobNotFound = errors.New("job not found")

// Store is the process-wide job table keyed by job id.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Record
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]*Record)}
}

func (s *Store) Add(r *Record) {
	s.mu.Lock()
	s.jobs[r.ID()] = r
	s.mu.Unlock()
}

func (s *Store) Get(id string) (*Record, error) {
	s.mu.RLock()
	r, ok := s.jobs[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrJobNotFound
	}
	return r, nil
}

// List returns every job, newest first.
func (s *Store) List() []*Record {
	s.mu.RLock()
	out := make([]*Record, 0, len(s.jobs))
	for _, r := range s.jobs {
		out = append(out, r)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].createdAt.After(out[j].createdAt)
	})
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
