package queue

import (
	"context"
	"fmt"

	"mql-predict/internal/storage"
)

// depositCountsQuery counts real-balance deposits made within the label
// window after each user's registration. $1/$2 bound the registration
// cohort, $3 is the label window in days.
const depositCountsQuery = `
	SELECT
		user_id,
		count(user_id) AS deposits
	FROM stat_transactions_data
	WHERE registration_date > $1
		AND registration_date < $2
		AND transaction_date < registration_date + ($3 * INTERVAL '1 day')
		AND balance_type = 1
	GROUP BY user_id
`

// FetchDepositCounts returns per-user real-balance deposit counts for the
// cohort window. Users with no deposits are absent from the map.
func (s *Store) FetchDepositCounts(ctx context.Context, w storage.CohortWindow) (map[int64]int64, error) {
	rows, err := s.pool.Query(ctx, depositCountsQuery, w.Start, w.End, w.LabelWindowDays)
	if err != nil {
		return nil, fmt.Errorf("query deposit counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int64)
	for rows.Next() {
		var userID, deposits int64
		if err := rows.Scan(&userID, &deposits); err != nil {
			return nil, fmt.Errorf("scan deposit count row: %w", err)
		}
		counts[userID] = deposits
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deposit count rows: %w", err)
	}

	return counts, nil
}
