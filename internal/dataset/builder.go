package dataset

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mql-predict/internal/domain"
	"mql-predict/internal/storage"
)

// Builder assembles the offline training dataset: a registration cohort from
// the warehouse, tag counts up to each user's cutoff, and real-deposit
// counts from the queue database as conversion labels.
type Builder struct {
	warehouse storage.Warehouse
	queue     storage.QueueStore
	logger    *zap.Logger
}

// NewBuilder creates a new Builder.
func NewBuilder(warehouse storage.Warehouse, queue storage.QueueStore, logger *zap.Logger) *Builder {
	return &Builder{warehouse: warehouse, queue: queue, logger: logger}
}

// Build returns labeled samples for the cohort window. Users missing from
// the tag or deposit extracts get zeros, mirroring the scoring-time
// assembly.
func (b *Builder) Build(ctx context.Context, w storage.CohortWindow) ([]*domain.UserSample, error) {
	b.logger.Info("build training dataset",
		zap.Time("start", w.Start),
		zap.Time("end", w.End),
		zap.Int("tag_cutoff_days", w.TagCutoffDays),
		zap.Int("label_window_days", w.LabelWindowDays))

	samples, err := b.warehouse.FetchTrainingCohort(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("fetch training cohort: %w", err)
	}
	b.logger.Info("cohort fetched", zap.Int("users", len(samples)))

	tags, err := b.warehouse.FetchCohortTagCounts(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("fetch cohort tag counts: %w", err)
	}

	deposits, err := b.queue.FetchDepositCounts(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("fetch deposit counts: %w", err)
	}

	var positives int
	for _, s := range samples {
		s.Tags = tags[s.UserID]
		s.Deposits = deposits[s.UserID]
		if s.Deposits > 0 {
			positives++
		}
	}
	b.logger.Info("dataset labeled",
		zap.Int("users", len(samples)),
		zap.Int("depositors", positives))

	return samples, nil
}

// Labels extracts the binary conversion labels (deposited within the label
// window) from built samples.
func Labels(samples []*domain.UserSample) []bool {
	labels := make([]bool, len(samples))
	for i, s := range samples {
		labels[i] = s.Deposits > 0
	}
	return labels
}
