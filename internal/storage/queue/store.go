package queue

import (
	"mql-predict/internal/storage"
)

// Queue and attribution table names. The queue tables are consumed by the
// downstream conversion uploader; the attribution tables are populated by
// tracking ingestion.
const (
	MobileQueueTable = "google_mobile_adwords_queue"
	WebQueueTable    = "google_adwords_queue"

	appsFlyerTable    = "apps_flyer"
	clickHistoryTable = "user_adwords_click_history"
)

// conversionName marks every row this service writes; candidate selection
// anti-joins on it, so reruns never produce duplicate queue rows.
const conversionName = "mql_backend"

// Attribution source ids per audience.
var (
	mobileAffIDs = []int64{166, 162}
	webAffIDs    = []int64{168, 1}
)

// candidateLookbackDays bounds candidate selection to recent attributions.
const candidateLookbackDays = 10

// Store implements storage.QueueStore using PostgreSQL.
type Store struct {
	pool *Pool
}

// NewStore creates a new queue Store.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

// Compile-time interface check.
var _ storage.QueueStore = (*Store)(nil)
