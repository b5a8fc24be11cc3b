package dataset

import (
	"context"
	"fmt"

	"mql-predict/internal/domain"
	"mql-predict/internal/storage"
)

// Assembler joins the warehouse extracts into scoring-ready samples.
type Assembler struct {
	warehouse storage.Warehouse
}

// NewAssembler creates a new Assembler.
func NewAssembler(warehouse storage.Warehouse) *Assembler {
	return &Assembler{warehouse: warehouse}
}

// Assemble fetches profile+trading rows and tag counts for the given ids and
// overlays them into one sample per user. Ids without a profile row are
// dropped; users absent from the tag extract get all-zero counters. The
// result preserves the requested id order.
func (a *Assembler) Assemble(ctx context.Context, userIDs []int64) ([]*domain.UserSample, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	samples, err := a.warehouse.FetchUserData(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch user data: %w", err)
	}
	if len(samples) == 0 {
		return nil, nil
	}

	tags, err := a.warehouse.FetchTagCounts(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch tag counts: %w", err)
	}

	byID := make(map[int64]*domain.UserSample, len(samples))
	for _, s := range samples {
		s.Tags = tags[s.UserID]
		byID[s.UserID] = s
	}

	result := make([]*domain.UserSample, 0, len(samples))
	for _, id := range userIDs {
		if s, exists := byID[id]; exists {
			result = append(result, s)
		}
	}
	return result, nil
}
