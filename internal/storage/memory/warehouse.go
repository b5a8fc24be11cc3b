package memory

import (
	"context"
	"sort"
	"sync"

	"mql-predict/internal/domain"
	"mql-predict/internal/storage"
)

// Warehouse is an in-memory implementation of storage.Warehouse.
type Warehouse struct {
	mu      sync.RWMutex
	samples map[int64]*domain.UserSample // keyed by user_id
	tags    map[int64]domain.TagCounts
}

// NewWarehouse creates a new in-memory warehouse.
func NewWarehouse() *Warehouse {
	return &Warehouse{
		samples: make(map[int64]*domain.UserSample),
		tags:    make(map[int64]domain.TagCounts),
	}
}

// Compile-time interface check.
var _ storage.Warehouse = (*Warehouse)(nil)

// PutSample stores a profile+trading row.
func (w *Warehouse) PutSample(s *domain.UserSample) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Store a copy to prevent external mutation
	sampleCopy := *s
	w.samples[s.UserID] = &sampleCopy
}

// PutTags stores behavioral event counts for a user.
func (w *Warehouse) PutTags(userID int64, t domain.TagCounts) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tags[userID] = t
}

// FetchUserData returns rows for ids that have a profile; missing ids are
// skipped, like the warehouse extract.
func (w *Warehouse) FetchUserData(_ context.Context, userIDs []int64) ([]*domain.UserSample, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var result []*domain.UserSample
	for _, id := range userIDs {
		s, exists := w.samples[id]
		if !exists {
			continue
		}
		sampleCopy := *s
		result = append(result, &sampleCopy)
	}
	return result, nil
}

// FetchTagCounts returns tag counts for the ids that have any.
func (w *Warehouse) FetchTagCounts(_ context.Context, userIDs []int64) (map[int64]domain.TagCounts, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	result := make(map[int64]domain.TagCounts)
	for _, id := range userIDs {
		if t, exists := w.tags[id]; exists {
			result[id] = t
		}
	}
	return result, nil
}

// FetchTrainingCohort returns samples registered inside (Start, End), sorted
// by user id for determinism.
func (w *Warehouse) FetchTrainingCohort(_ context.Context, win storage.CohortWindow) ([]*domain.UserSample, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var result []*domain.UserSample
	for _, s := range w.samples {
		if s.Created.After(win.Start) && s.Created.Before(win.End) {
			sampleCopy := *s
			result = append(result, &sampleCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UserID < result[j].UserID
	})

	return result, nil
}

// FetchCohortTagCounts returns tag counts for users registered inside the
// window.
func (w *Warehouse) FetchCohortTagCounts(_ context.Context, win storage.CohortWindow) (map[int64]domain.TagCounts, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	result := make(map[int64]domain.TagCounts)
	for id, t := range w.tags {
		s, exists := w.samples[id]
		if !exists {
			continue
		}
		if s.Created.After(win.Start) && s.Created.Before(win.End) {
			result[id] = t
		}
	}
	return result, nil
}
