package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"mql-predict/internal/domain"
	"mql-predict/internal/storage"
)

// QueueStore is an in-memory implementation of storage.QueueStore. It models
// the queue database closely enough for pipeline tests: candidate selection
// anti-joins against queued rows, the lead insert does not (it trusts the
// candidate selection), and the deponator fallback anti-joins again.
type QueueStore struct {
	mu sync.Mutex

	// attributed holds the upstream attribution per audience: ids that have
	// an install / click-history row and pass the source filter.
	attributed map[domain.Audience]map[int64]bool

	// queued holds inserted queue rows per audience, in insertion order.
	queued map[domain.Audience][]int64

	// depositors holds ids that deposited within the fallback window.
	depositors map[domain.Audience]map[int64]bool

	// depositCounts backs FetchDepositCounts for training labels.
	depositCounts map[int64]int64
}

// NewQueueStore creates a new in-memory queue store.
func NewQueueStore() *QueueStore {
	return &QueueStore{
		attributed:    make(map[domain.Audience]map[int64]bool),
		queued:        make(map[domain.Audience][]int64),
		depositors:    make(map[domain.Audience]map[int64]bool),
		depositCounts: make(map[int64]int64),
	}
}

// Compile-time interface check.
var _ storage.QueueStore = (*QueueStore)(nil)

// AddAttributed registers upstream attribution rows for an audience.
func (s *QueueStore) AddAttributed(audience domain.Audience, userIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.attributed[audience]
	if set == nil {
		set = make(map[int64]bool)
		s.attributed[audience] = set
	}
	for _, id := range userIDs {
		set[id] = true
	}
}

// AddDepositor registers a user as having deposited within the fallback
// window.
func (s *QueueStore) AddDepositor(audience domain.Audience, userIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.depositors[audience]
	if set == nil {
		set = make(map[int64]bool)
		s.depositors[audience] = set
	}
	for _, id := range userIDs {
		set[id] = true
	}
}

// SetDepositCount sets the training-label deposit count for a user.
func (s *QueueStore) SetDepositCount(userID, deposits int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.depositCounts[userID] = deposits
}

// Queued returns the inserted queue rows for an audience in insertion order.
func (s *QueueStore) Queued(audience domain.Audience) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]int64(nil), s.queued[audience]...)
}

// UnhandledUsers returns attributed ids with no queue row yet.
func (s *QueueStore) UnhandledUsers(_ context.Context, audience domain.Audience) ([]int64, error) {
	if err := audience.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	queued := make(map[int64]bool, len(s.queued[audience]))
	for _, id := range s.queued[audience] {
		queued[id] = true
	}

	var result []int64
	for id := range s.attributed[audience] {
		if !queued[id] {
			result = append(result, id)
		}
	}
	sortInt64s(result)
	return result, nil
}

// InsertLeads inserts a queue row for every given id that has an attribution
// row. No anti-join here: duplicates are the caller's responsibility, like
// the real insert.
func (s *QueueStore) InsertLeads(_ context.Context, audience domain.Audience, userIDs []int64) (int64, error) {
	if err := audience.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}
	if len(userIDs) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var inserted int64
	for _, id := range userIDs {
		if !s.attributed[audience][id] {
			continue
		}
		s.queued[audience] = append(s.queued[audience], id)
		inserted++
	}
	return inserted, nil
}

// InsertMissedDeponators inserts rows for depositors that are attributed but
// not yet queued.
func (s *QueueStore) InsertMissedDeponators(_ context.Context, audience domain.Audience, _ storage.DepositWindow) (int64, error) {
	if err := audience.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	queued := make(map[int64]bool, len(s.queued[audience]))
	for _, id := range s.queued[audience] {
		queued[id] = true
	}

	var candidates []int64
	for id := range s.depositors[audience] {
		if s.attributed[audience][id] && !queued[id] {
			candidates = append(candidates, id)
		}
	}
	sortInt64s(candidates)

	s.queued[audience] = append(s.queued[audience], candidates...)
	return int64(len(candidates)), nil
}

// FetchDepositCounts returns a copy of the configured deposit counts.
func (s *QueueStore) FetchDepositCounts(_ context.Context, _ storage.CohortWindow) (map[int64]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[int64]int64, len(s.depositCounts))
	for id, n := range s.depositCounts {
		result[id] = n
	}
	return result, nil
}

func sortInt64s(s []int64) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}

