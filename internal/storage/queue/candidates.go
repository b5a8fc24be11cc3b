package queue

import (
	"context"
	"fmt"

	"mql-predict/internal/domain"
	"mql-predict/internal/storage"
)

// unhandledMobileQuery selects users attributed to the mobile sources via the
// install tracker that have no queue row for the conversion yet. The left
// join against the existing queue rows makes the whole pass idempotent.
const unhandledMobileQuery = `
	WITH queue_mql_backend AS (
		SELECT user_id
		FROM ` + MobileQueueTable + `
		WHERE conversion_name = $1
	)
	SELECT a.first_connected_user AS user_id
	FROM ` + appsFlyerTable + ` a
		LEFT JOIN queue_mql_backend q ON a.first_connected_user = q.user_id
		INNER JOIN users u ON a.first_connected_user = u.user_id
	WHERE a.install_time >= now() - ($2 * INTERVAL '1 day')
		AND u.created <= now() + INTERVAL '1 day'
		AND a.aff_id = ANY($3)
		AND a.first_connected_user IS NOT NULL
		AND q.user_id IS NULL
`

// unhandledWebQuery is the web counterpart: registration clicks from the
// adwords click history for users attributed to the web sources, anti-joined
// against the web queue.
const unhandledWebQuery = `
	WITH queue_mql_backend AS (
		SELECT user_id
		FROM ` + WebQueueTable + `
		WHERE conversion_name = $1
	),
	google_web_users AS (
		SELECT user_id
		FROM users
		WHERE aff_id = ANY($3)
	),
	last_registrations AS (
		SELECT user_id
		FROM ` + clickHistoryTable + ` h
		WHERE h.operation_type = 'register'
			AND h.created >= now() - ($2 * INTERVAL '1 day')
	)
	SELECT r.user_id
	FROM last_registrations r
		LEFT JOIN queue_mql_backend q ON r.user_id = q.user_id
		INNER JOIN google_web_users u ON r.user_id = u.user_id
	WHERE q.user_id IS NULL
`

// UnhandledUsers returns candidate ids for an audience: recently attributed
// users with no existing queue row for the conversion.
func (s *Store) UnhandledUsers(ctx context.Context, audience domain.Audience) ([]int64, error) {
	var query string
	var affIDs []int64

	switch audience {
	case domain.AudienceMobile:
		query = unhandledMobileQuery
		affIDs = mobileAffIDs
	case domain.AudienceWeb:
		query = unhandledWebQuery
		affIDs = webAffIDs
	default:
		return nil, fmt.Errorf("audience %q: %w", audience, storage.ErrInvalidInput)
	}

	rows, err := s.pool.Query(ctx, query, conversionName, candidateLookbackDays, affIDs)
	if err != nil {
		return nil, fmt.Errorf("query unhandled %s users: %w", audience, err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan unhandled user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unhandled user ids: %w", err)
	}

	return userIDs, nil
}
