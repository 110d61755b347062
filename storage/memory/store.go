// memory based implementation for testing purposes
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/townbeat/eventseries/series"
	"github.com/townbeat/eventseries/storage"
)

// Store implements storage.Storage using in-memory maps.
type Store struct {
	mu        sync.RWMutex
	series    map[string]*series.Series
	instances map[string]*series.EventInstance // key: instance ID
}

// New creates a new in-memory storage
func New() *Store {
	return &Store{
		series:    make(map[string]*series.Series),
		instances: make(map[string]*series.EventInstance),
	}
}

func (s *Store) GetSeries(_ context.Context, seriesID string) (*series.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sr, ok := s.series[seriesID]
	if !ok {
		return nil, &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "series not found",
		}
	}
	cp := *sr
	return &cp, nil
}

func (s *Store) CreateSeries(_ context.Context, sr *series.Series) error {
	if sr == nil {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "series is nil"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sr.ID == "" {
		sr.ID = uuid.NewString()
	}
	if _, exists := s.series[sr.ID]; exists {
		return &storage.Error{
			Type:    storage.ErrAlreadyExists,
			Message: "series already exists",
		}
	}
	cp := *sr
	s.series[sr.ID] = &cp
	return nil
}

func (s *Store) UpdateSeries(_ context.Context, sr *series.Series) error {
	if sr == nil {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "series is nil"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.series[sr.ID]; !ok {
		return &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "series not found",
		}
	}
	cp := *sr
	s.series[sr.ID] = &cp
	return nil
}

func (s *Store) ListInstances(_ context.Context, seriesID string) ([]series.EventInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []series.EventInstance
	for _, inst := range s.instances {
		if inst.SeriesID == seriesID {
			out = append(out, *inst)
		}
	}
	return out, nil
}

func (s *Store) CreateInstance(_ context.Context, inst *series.EventInstance) error {
	if inst == nil {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "instance is nil"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if inst.ID == "" {
		inst.ID = uuid.NewString()
	}
	if _, exists := s.instances[inst.ID]; exists {
		return &storage.Error{
			Type:    storage.ErrAlreadyExists,
			Message: "instance already exists",
		}
	}
	cp := *inst
	s.instances[inst.ID] = &cp
	return nil
}

func (s *Store) RetireInstance(_ context.Context, instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.instances[instanceID]
	if !ok {
		return &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "instance not found",
		}
	}
	inst.Status = series.StatusCancelled
	inst.SeriesSequence = 0
	return nil
}

func (s *Store) UpdateSequences(_ context.Context, instances []series.EventInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, in := range instances {
		stored, ok := s.instances[in.ID]
		if !ok {
			return &storage.Error{
				Type:    storage.ErrNotFound,
				Message: "instance not found: " + in.ID,
			}
		}
		stored.SeriesSequence = in.SeriesSequence
	}
	return nil
}
