package queue

import (
	"context"
	"fmt"

	"mql-predict/internal/domain"
	"mql-predict/internal/storage"
)

// insertMobileLeadsQuery builds conversion rows from each lead's latest
// install. Device identifiers and version fields come from the tracker row:
// reinstalls may carry different device info, so only the newest install per
// user from the mobile sources is used. The uid/uid_type pair depends on the
// platform (android advertising id vs ios idfa). Column spellings such as
// ip_adress are the historical queue schema.
const insertMobileLeadsQuery = `
	WITH latest_installs AS (
		SELECT
			first_connected_user AS user_id,
			android_advertising_id,
			ios_idfa,
			os_version,
			client_platform_id,
			aff_id,
			aff_track,
			now() AS transaction_date,
			(regexp_matches(extra :: TEXT, '"app_version":"(.*?)"' :: TEXT, 'g'))[1] AS app_version,
			(regexp_matches(extra :: TEXT, '"sdk_version":"(.*?)"' :: TEXT, 'g'))[1] AS sdk_version,
			ip_adress,
			device
		FROM (
			SELECT
				*,
				(CASE WHEN (android_advertising_id IS NOT NULL OR ios_idfa IS NOT NULL) AND aff_id = ANY($2)
					THEN max(install_time) OVER (PARTITION BY first_connected_user) END) AS last_install
			FROM ` + appsFlyerTable + `
			WHERE first_connected_user = ANY($1)
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
		1                                        AS value,
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
		INNER JOIN users u ON u.user_id = a.user_id
`

// insertWebLeadsQuery builds conversion rows from the adwords click history;
// the gclid links the conversion back to the originating ad click.
const insertWebLeadsQuery = `
	INSERT INTO ` + WebQueueTable + `
	WITH mql_users AS (
		SELECT *
		FROM users
		WHERE user_id = ANY($1)
	)
	SELECT
		h.user_id                        AS user_id,
		h.gclid                          AS gclid,
		u.created                        AS conversion_time,
		'` + conversionName + `' :: TEXT AS conversion_name,
		0 :: INTEGER                     AS transaction_sum,
		u.aff_id                         AS aff_id,
		u.aff_track                      AS aff_track,
		c.name                           AS country,
		NULL :: TIMESTAMP                AS send_date,
		NULL :: TEXT                     AS error,
		8                                AS reg_platform
	FROM ` + clickHistoryTable + ` h
		INNER JOIN mql_users u ON h.user_id = u.user_id
		LEFT JOIN country c ON u.country_id = c.id
`

// InsertLeads bulk-inserts queue rows for the given lead ids by selecting
// from the audience's attribution tables in a single statement. Returns the
// number of rows inserted. An empty id list is a no-op.
func (s *Store) InsertLeads(ctx context.Context, audience domain.Audience, userIDs []int64) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	switch audience {
	case domain.AudienceMobile:
		res, err := s.pool.Exec(ctx, insertMobileLeadsQuery, userIDs, mobileAffIDs)
		if err != nil {
			return 0, fmt.Errorf("insert mobile leads: %w", err)
		}
		return res.RowsAffected(), nil
	case domain.AudienceWeb:
		res, err := s.pool.Exec(ctx, insertWebLeadsQuery, userIDs)
		if err != nil {
			return 0, fmt.Errorf("insert web leads: %w", err)
		}
		return res.RowsAffected(), nil
	default:
		return 0, fmt.Errorf("audience %q: %w", audience, storage.ErrInvalidInput)
	}
}
