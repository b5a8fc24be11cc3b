package warehouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"mql-predict/internal/domain"
	"mql-predict/internal/storage"
)

// ExtractStore implements storage.Warehouse using ClickHouse.
type ExtractStore struct {
	conn *Conn

	// tradingCutoffDays bounds trading activity to registration + N days.
	tradingCutoffDays int
}

// NewExtractStore creates a new ExtractStore.
func NewExtractStore(conn *Conn) *ExtractStore {
	return &ExtractStore{conn: conn, tradingCutoffDays: 1}
}

// Compile-time interface check.
var _ storage.Warehouse = (*ExtractStore)(nil)

// userDataQuery joins the profile snapshot with pre-cutoff practice-account
// trading aggregates. The %s placeholder selects the user filter: an id list
// for scoring, a registration window for the training cohort. All casts are
// explicit because the warehouse schema is owned externally.
const userDataQuery = `
	WITH required_users AS (
		SELECT
			toInt64(u.user_id)                              AS user_id,
			u.locale                                        AS locale,
			toInt64(dateDiff('year', u.birthdate, today())) AS age,
			toInt64(u.country_id)                           AS country_id,
			toInt64(u.gender)                               AS gender,
			toInt64(u.currency_id)                          AS currency_id,
			toInt64(u.client_platform_id)                   AS client_platform_id,
			toBool(u.is_trial)                              AS is_trial,
			toBool(u.is_regulated)                          AS is_regulated,
			toBool(u.is_public)                             AS is_public,
			toBool(isNotNull(u.nickname))                   AS has_nick,
			u.created                                       AS created
		FROM users u
		WHERE %s
	),
	position_data AS (
		SELECT
			toInt64(ap.user_id) AS user_id,
			sumIf(if(ap.position_type = 'short', ap.sell_amount_enrolled, ap.buy_amount_enrolled) / 1e6, ap.instrument_type = 'digital-option') AS volume_train_digital,
			sumIf(ap.pnl_total_enrolled / 1e6, ap.instrument_type = 'digital-option')                                                           AS pnl_train_digital,
			sumIf(if(ap.position_type = 'short', ap.sell_amount_enrolled, ap.buy_amount_enrolled) / 1e6, ap.instrument_type = 'cfd')            AS volume_train_cfd,
			sumIf(ap.pnl_total_enrolled / 1e6, ap.instrument_type = 'cfd')                                                                      AS pnl_train_cfd,
			sumIf(if(ap.position_type = 'short', ap.sell_amount_enrolled, ap.buy_amount_enrolled) / 1e6, ap.instrument_type = 'forex')          AS volume_train_forex,
			sumIf(ap.pnl_total_enrolled / 1e6, ap.instrument_type = 'forex')                                                                    AS pnl_train_forex,
			sumIf(if(ap.position_type = 'short', ap.sell_amount_enrolled, ap.buy_amount_enrolled) / 1e6, ap.instrument_type = 'crypto')         AS volume_train_crypto,
			sumIf(ap.pnl_total_enrolled / 1e6, ap.instrument_type = 'crypto')                                                                   AS pnl_train_crypto,
			toInt64(countIf(ap.status = 'closed'))                                                 AS closed_count,
			toInt64(uniqExact(ap.instrument_active_id))                                            AS instrument_actives_count,
			toInt64(uniqExactIf(ap.instrument_active_id, ap.instrument_type = 'digital-option'))   AS instrument_actives_digital_count,
			toInt64(uniqExactIf(ap.instrument_active_id, ap.instrument_type = 'cfd'))              AS instrument_actives_cfd_count,
			toInt64(uniqExactIf(ap.instrument_active_id, ap.instrument_type = 'forex'))            AS instrument_actives_forex_count,
			toInt64(uniqExactIf(ap.instrument_active_id, ap.instrument_type = 'crypto'))           AS instrument_actives_crypto_count,
			toInt64(countIf(ap.instrument_type = 'digital-option'))                                AS digital_count,
			toInt64(countIf(ap.instrument_type = 'cfd'))                                           AS cfd_count,
			toInt64(countIf(ap.instrument_type = 'forex'))                                         AS forex_count,
			toInt64(countIf(ap.instrument_type = 'crypto'))                                        AS crypto_count
		FROM archive_position ap
			INNER JOIN required_users u ON toInt64(ap.user_id) = u.user_id
			INNER JOIN user_balance ub ON ap.user_balance_id = ub.id
		WHERE ub.type = 4
			AND ap.create_at < toDate(u.created) + toIntervalDay(?)
		GROUP BY ap.user_id
	),
	option_data AS (
		SELECT
			toInt64(ao.user_id)                           AS user_id,
			toInt64(uniqExact(ao.active_id))              AS bin_count,
			sum(ao.enrolled_amount / 1e6)                 AS volume_train_bin,
			sum((ao.enrolled_amount - ao.win_enrolled) / 1e6) AS pnl_train_bin,
			toInt64(uniqExact(ao.active_id))              AS instrument_actives_bin_count
		FROM archive_option ao
			INNER JOIN required_users u ON toInt64(ao.user_id) = u.user_id
			INNER JOIN user_balance ub ON ao.user_balance_id = ub.id
		WHERE ub.type = 4
			AND ao.created < toDate(u.created) + toIntervalDay(?)
		GROUP BY ao.user_id
	)
	SELECT
		u.user_id, u.locale, u.age, u.country_id, u.gender, u.currency_id,
		u.client_platform_id, u.is_trial, u.is_regulated, u.is_public, u.has_nick, u.created,
		coalesce(n.volume_train_digital, 0), coalesce(n.pnl_train_digital, 0),
		coalesce(n.volume_train_cfd, 0), coalesce(n.pnl_train_cfd, 0),
		coalesce(n.volume_train_forex, 0), coalesce(n.pnl_train_forex, 0),
		coalesce(n.volume_train_crypto, 0), coalesce(n.pnl_train_crypto, 0),
		coalesce(n.closed_count, 0), coalesce(n.instrument_actives_count, 0),
		coalesce(n.instrument_actives_digital_count, 0), coalesce(n.instrument_actives_cfd_count, 0),
		coalesce(n.instrument_actives_forex_count, 0), coalesce(n.instrument_actives_crypto_count, 0),
		coalesce(n.digital_count, 0), coalesce(n.cfd_count, 0),
		coalesce(n.forex_count, 0), coalesce(n.crypto_count, 0),
		coalesce(b.bin_count, 0), coalesce(b.volume_train_bin, 0),
		coalesce(b.pnl_train_bin, 0), coalesce(b.instrument_actives_bin_count, 0)
	FROM required_users u
		LEFT JOIN position_data n ON u.user_id = n.user_id
		LEFT JOIN option_data b ON u.user_id = b.user_id
`

// tagCountsQuery counts named behavioral events before each user's tag
// cutoff. Event names are the historical warehouse literals.
const tagCountsQuery = `
	SELECT
		toInt64(ut.user_id) AS user_id,
		toInt64(countIf(t.name = 'used historical prices'))       AS used_historical_prices,
		toInt64(countIf(t.name = 'tried to change asset'))        AS tried_to_change_asset,
		toInt64(countIf(t.name = 'changed deal amount manualy'))  AS changed_deal_amount_manualy,
		toInt64(countIf(t.name = 'visit_traderoom'))              AS visit_traderoom,
		toInt64(countIf(t.name = 'button deposit page'))          AS button_deposit_pag,
		toInt64(countIf(t.name = 'visited withdrawal page'))      AS visited_withdrawal_page,
		toInt64(countIf(t.name = 'added technical analysis'))     AS added_technical_analysis,
		toInt64(countIf(t.name = 'changed chart type'))           AS changed_chart_type,
		toInt64(countIf(t.name = 'open video tutorial'))          AS open_video_tutorial,
		toInt64(countIf(t.name = 'sell option used'))             AS sell_option_used,
		toInt64(countIf(t.name = 'refreshed demo'))               AS refreshed_demo,
		toInt64(countIf(t.name = 'phone confirmed'))              AS phone_confirmed,
		toInt64(countIf(t.name = 'user use buyback'))             AS user_use_buyback,
		toInt64(countIf(t.name LIKE 'trading indicator added%%')) AS trading_indicator_added
	FROM user_tags ut
		INNER JOIN tags t ON ut.tag_id = t.id
		INNER JOIN users u ON ut.user_id = u.user_id
	WHERE %s
		AND ut.created < u.created + toIntervalDay(?)
	GROUP BY ut.user_id
`

// Per-variant user filters substituted into the query templates.
const (
	filterUserIDs      = `u.user_id IN (?)`
	filterTagUserIDs   = `ut.user_id IN (?)`
	filterCohortWindow = `u.created > ? AND u.created < ? AND u.client_platform_id IN (1, 2, 3, 4, 5, 6, 7, 8, 9, 11, 12)`
	filterTagCohort    = `u.created > ? AND u.created < ?`
)

// FetchUserData returns profile+trading rows for the given ids. Ids with no
// profile row are absent from the result; result order is the warehouse scan
// order (callers re-order as needed).
func (s *ExtractStore) FetchUserData(ctx context.Context, userIDs []int64) ([]*domain.UserSample, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(userDataQuery, filterUserIDs)
	rows, err := s.conn.Query(ctx, query, userIDs, s.tradingCutoffDays, s.tradingCutoffDays)
	if err != nil {
		return nil, fmt.Errorf("query user data: %w", err)
	}
	defer rows.Close()

	return scanSamples(rows)
}

// FetchTagCounts returns behavioral event counts keyed by user id. Users
// with no events before the cutoff are simply absent.
func (s *ExtractStore) FetchTagCounts(ctx context.Context, userIDs []int64) (map[int64]domain.TagCounts, error) {
	if len(userIDs) == 0 {
		return map[int64]domain.TagCounts{}, nil
	}

	query := fmt.Sprintf(tagCountsQuery, filterTagUserIDs)
	rows, err := s.conn.Query(ctx, query, userIDs, 1)
	if err != nil {
		return nil, fmt.Errorf("query tag counts: %w", err)
	}
	defer rows.Close()

	return scanTagCounts(rows)
}

// FetchTrainingCohort returns profile+trading rows for every user registered
// inside the window.
func (s *ExtractStore) FetchTrainingCohort(ctx context.Context, w storage.CohortWindow) ([]*domain.UserSample, error) {
	query := fmt.Sprintf(userDataQuery, filterCohortWindow)
	rows, err := s.conn.Query(ctx, query, w.Start, w.End, s.tradingCutoffDays, s.tradingCutoffDays)
	if err != nil {
		return nil, fmt.Errorf("query training cohort: %w", err)
	}
	defer rows.Close()

	return scanSamples(rows)
}

// FetchCohortTagCounts returns tag counts for the whole cohort window.
func (s *ExtractStore) FetchCohortTagCounts(ctx context.Context, w storage.CohortWindow) (map[int64]domain.TagCounts, error) {
	days := w.TagCutoffDays
	if days <= 0 {
		days = 1
	}

	query := fmt.Sprintf(tagCountsQuery, filterTagCohort)
	rows, err := s.conn.Query(ctx, query, w.Start, w.End, days)
	if err != nil {
		return nil, fmt.Errorf("query cohort tag counts: %w", err)
	}
	defer rows.Close()

	return scanTagCounts(rows)
}

func scanSamples(rows driver.Rows) ([]*domain.UserSample, error) {
	var samples []*domain.UserSample

	for rows.Next() {
		var s domain.UserSample

		err := rows.Scan(
			&s.UserID, &s.Locale, &s.Age, &s.CountryID, &s.Gender, &s.CurrencyID,
			&s.ClientPlatformID, &s.IsTrial, &s.IsRegulated, &s.IsPublic, &s.HasNick, &s.Created,
			&s.Trading.VolumeTrainDigital, &s.Trading.PnlTrainDigital,
			&s.Trading.VolumeTrainCfd, &s.Trading.PnlTrainCfd,
			&s.Trading.VolumeTrainForex, &s.Trading.PnlTrainForex,
			&s.Trading.VolumeTrainCrypto, &s.Trading.PnlTrainCrypto,
			&s.Trading.ClosedCount, &s.Trading.InstrumentActivesCount,
			&s.Trading.InstrumentActivesDigitalCount, &s.Trading.InstrumentActivesCfdCount,
			&s.Trading.InstrumentActivesForexCount, &s.Trading.InstrumentActivesCryptoCount,
			&s.Trading.DigitalCount, &s.Trading.CfdCount,
			&s.Trading.ForexCount, &s.Trading.CryptoCount,
			&s.Trading.BinCount, &s.Trading.VolumeTrainBin,
			&s.Trading.PnlTrainBin, &s.Trading.InstrumentActivesBinCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan user data row: %w", err)
		}

		samples = append(samples, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user data rows: %w", err)
	}

	return samples, nil
}

func scanTagCounts(rows driver.Rows) (map[int64]domain.TagCounts, error) {
	counts := make(map[int64]domain.TagCounts)

	for rows.Next() {
		var userID int64
		var t domain.TagCounts

		err := rows.Scan(
			&userID,
			&t.UsedHistoricalPrices, &t.TriedToChangeAsset, &t.ChangedDealAmountManualy,
			&t.VisitTraderoom, &t.ButtonDepositPage, &t.VisitedWithdrawalPage,
			&t.AddedTechnicalAnalysis, &t.ChangedChartType, &t.OpenVideoTutorial,
			&t.SellOptionUsed, &t.RefreshedDemo, &t.PhoneConfirmed,
			&t.UserUseBuyback, &t.TradingIndicatorAdded,
		)
		if err != nil {
			return nil, fmt.Errorf("scan tag count row: %w", err)
		}

		counts[userID] = t
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tag count rows: %w", err)
	}

	return counts, nil
}
