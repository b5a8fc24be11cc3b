package storage

import (
	"context"
	"time"

	"mql-predict/internal/domain"
)

// CohortWindow bounds a registration cohort for the offline training
// extracts: users created in (Start, End), labels and tag cutoffs relative to
// each user's registration time.
type CohortWindow struct {
	Start time.Time
	End   time.Time

	// TagCutoffDays bounds behavioral events to registration + N days.
	TagCutoffDays int

	// LabelWindowDays bounds deposits counted as conversion labels to
	// registration + N days.
	LabelWindowDays int
}

// DepositWindow configures the deponator fallback pass.
type DepositWindow struct {
	// HoursAfterReg: a deposit counts only within this many hours of
	// registration.
	HoursAfterReg int

	// DaysBeforeNow: only users registered within this many days are
	// considered.
	DaysBeforeNow int
}

// Warehouse provides bulk analytical extracts from the reporting warehouse.
// All reads are snapshots keyed by user id; absence of a user in an
// aggregate extract means zero activity, not missing data.
type Warehouse interface {
	// FetchUserData returns profile rows joined with pre-cutoff trading
	// aggregates for the given ids. Ids without a profile row are simply
	// absent from the result. Must be called with bounded batches.
	FetchUserData(ctx context.Context, userIDs []int64) ([]*domain.UserSample, error)

	// FetchTagCounts returns per-user behavioral event counts observed
	// before each user's tag cutoff, keyed by user id.
	FetchTagCounts(ctx context.Context, userIDs []int64) (map[int64]domain.TagCounts, error)

	// FetchTrainingCohort returns profile+trading rows for every user
	// registered inside the window (offline training extract).
	FetchTrainingCohort(ctx context.Context, w CohortWindow) ([]*domain.UserSample, error)

	// FetchCohortTagCounts returns tag counts for the whole cohort.
	FetchCohortTagCounts(ctx context.Context, w CohortWindow) (map[int64]domain.TagCounts, error)
}

// QueueStore owns the attribution queue database: candidate selection,
// idempotent queue writes, the deponator fallback, and deposit labels for
// training.
type QueueStore interface {
	// UnhandledUsers returns candidate ids for an audience: recently
	// attributed users with no existing queue row for the mql conversion
	// (the anti-join that makes later inserts idempotent).
	UnhandledUsers(ctx context.Context, audience domain.Audience) ([]int64, error)

	// InsertLeads bulk-inserts queue rows for the given lead ids by
	// selecting from the audience's upstream attribution tables in a
	// single statement. Returns the number of rows inserted.
	InsertLeads(ctx context.Context, audience domain.Audience, userIDs []int64) (int64, error)

	// InsertMissedDeponators inserts queue rows for users who deposited
	// within the window but were never queued, anti-joined against
	// existing queue rows. Returns the number of rows inserted.
	InsertMissedDeponators(ctx context.Context, audience domain.Audience, w DepositWindow) (int64, error)

	// FetchDepositCounts returns per-user real-balance deposit counts for
	// the cohort window (training label source).
	FetchDepositCounts(ctx context.Context, w CohortWindow) (map[int64]int64, error)
}
