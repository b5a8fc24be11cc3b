package queue

import (
	"context"
	"fmt"

	"mql-predict/internal/domain"
	"mql-predict/internal/storage"
)

// The deponator fallback queues users that made a real deposit shortly after
// registration but were missed by prediction. Both statements carry the same
// anti-join as the lead insert, so a user already queued by prediction (or a
// previous fallback run) is never inserted twice.

// insertWebDeponatorsQuery: $1 hours after registration, $2 days back from
// now, $3 web source ids.
const insertWebDeponatorsQuery = `
	WITH last_deponators AS (
		SELECT
			user_id,
			registration_date,
			sum(transaction_sum)  AS transaction_sum,
			min(transaction_date) AS transaction_date
		FROM stat_transactions_data
		WHERE transaction_type = 'deposit'
			AND (balance_type = 1 OR balance_type IS NULL)
			AND registration_date > now() - ($2 * INTERVAL '1 day')
			AND transaction_date < registration_date + ($1 * INTERVAL '1 hour')
		GROUP BY user_id, registration_date
	),
	queue_mql_backend AS (
		SELECT user_id
		FROM ` + WebQueueTable + `
		WHERE conversion_name = '` + conversionName + `'
	)
	INSERT INTO ` + WebQueueTable + `
	SELECT
		h.user_id                        AS user_id,
		h.gclid                          AS gclid,
		d.transaction_date               AS conversion_time,
		'` + conversionName + `' :: TEXT AS conversion_name,
		d.transaction_sum :: INTEGER     AS transaction_sum,
		u.aff_id                         AS aff_id,
		u.aff_track                      AS aff_track,
		c.name                           AS country,
		NULL :: TIMESTAMP                AS send_date,
		NULL :: TEXT                     AS error,
		8                                AS reg_platform
	FROM last_deponators d
		LEFT JOIN queue_mql_backend q ON d.user_id = q.user_id
		INNER JOIN ` + clickHistoryTable + ` h ON d.user_id = h.user_id
		INNER JOIN users u ON d.user_id = u.user_id
		LEFT JOIN country c ON u.country_id = c.id
	WHERE q.user_id IS NULL
		AND h.operation_type = 'register'
		AND u.aff_id = ANY($3)
`

// insertMobileDeponatorsQuery: same parameters, mobile source ids. The
// deposit sum and time ride along into the conversion value fields; device
// info comes from the latest install, as in the lead insert.
const insertMobileDeponatorsQuery = `
	WITH last_deponators AS (
		SELECT
			user_id,
			registration_date,
			sum(transaction_sum)  AS transaction_sum,
			min(transaction_date) AS transaction_date
		FROM stat_transactions_data
		WHERE transaction_type = 'deposit'
			AND (balance_type = 1 OR balance_type IS NULL)
			AND registration_date > now() - ($2 * INTERVAL '1 day')
			AND transaction_date < registration_date + ($1 * INTERVAL '1 hour')
		GROUP BY user_id, registration_date
	),
	mobile_queue_mql_backend AS (
		SELECT user_id
		FROM ` + MobileQueueTable + `
		WHERE conversion_name = '` + conversionName + `'
	),
	latest_installs AS (
		SELECT
			first_connected_user AS user_id,
			android_advertising_id,
			ios_idfa,
			os_version,
			client_platform_id,
			aff_id,
			aff_track,
			transaction_sum,
			transaction_date,
			(regexp_matches(extra :: TEXT, '"app_version":"(.*?)"' :: TEXT, 'g'))[1] AS app_version,
			(regexp_matches(extra :: TEXT, '"sdk_version":"(.*?)"' :: TEXT, 'g'))[1] AS sdk_version,
			ip_adress,
			device
		FROM (
			SELECT
				a.*,
				d.transaction_sum  AS transaction_sum,
				d.transaction_date AS transaction_date,
				(CASE WHEN (android_advertising_id IS NOT NULL OR ios_idfa IS NOT NULL) AND aff_id = ANY($3)
					THEN max(install_time) OVER (PARTITION BY first_connected_user) END) AS last_install
			FROM ` + appsFlyerTable + ` a
				INNER JOIN last_deponators d ON a.first_connected_user = d.user_id
		) t
		WHERE install_time = last_install
	)
	INSERT INTO ` + MobileQueueTable + `
	SELECT
		a.user_id,
		a.client_platform_id,
		a.aff_id,
		a.aff_track,
		a.transaction_date                       AS conversion_time,
		'custom' :: TEXT                         AS conversion_type,
		'` + conversionName + `' :: TEXT         AS conversion_name,
		(CASE WHEN a.client_platform_id = 2
			THEN android_advertising_id
		WHEN a.client_platform_id IN (3, 12)
			THEN ios_idfa END)                   AS uid,
		(CASE WHEN a.client_platform_id = 2
			THEN 'advertisingid'
		WHEN a.client_platform_id IN (3, 12)
			THEN 'idfa' END)                     AS uid_type,
		0                                        AS lat,
		a.app_version                            AS app_version,
		a.os_version,
		a.sdk_version                            AS sdk_version,
		extract('epoch' FROM a.transaction_date) AS timestamp,
		transaction_sum                          AS value,
		a.ip_adress,
		a.device,
		(CASE WHEN a.client_platform_id = 2
			THEN 'Android ' || a.os_version
		WHEN a.client_platform_id IN (3, 12)
			THEN 'iOS ' || a.os_version END)     AS platform_version,
		u.locale,
		NULL :: TIMESTAMP                        AS send_date,
		NULL :: TEXT                             AS error,
		now()                                    AS insertion_time,
		0                                        AS send_counter
	FROM latest_installs a
		LEFT JOIN mobile_queue_mql_backend q ON a.user_id = q.user_id
		INNER JOIN users u ON a.user_id = u.user_id
	WHERE q.user_id IS NULL
		AND u.aff_id = ANY($3)
`

// InsertMissedDeponators inserts queue rows for users who deposited within
// the window but were never queued. Returns the number of rows inserted.
func (s *Store) InsertMissedDeponators(ctx context.Context, audience domain.Audience, w storage.DepositWindow) (int64, error) {
	var query string
	var affIDs []int64

	switch audience {
	case domain.AudienceMobile:
		query = insertMobileDeponatorsQuery
		affIDs = mobileAffIDs
	case domain.AudienceWeb:
		query = insertWebDeponatorsQuery
		affIDs = webAffIDs
	default:
		return 0, fmt.Errorf("audience %q: %w", audience, storage.ErrInvalidInput)
	}

	res, err := s.pool.Exec(ctx, query, w.HoursAfterReg, w.DaysBeforeNow, affIDs)
	if err != nil {
		return 0, fmt.Errorf("insert %s deponators: %w", audience, err)
	}
	return res.RowsAffected(), nil
}
