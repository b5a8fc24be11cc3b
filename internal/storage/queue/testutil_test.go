package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"mql-predict/internal/storage/migrations"
	"mql-predict/internal/storage/queue"
)

// setupTestDB creates a PostgreSQL container for testing and applies the
// embedded migrations. Returns a cleanup function that must be called after
// tests complete.
func setupTestDB(t *testing.T) (*queue.Pool, func()) {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := queue.NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	err = migrations.RunPostgresMigrations(ctx, pool)
	require.NoError(t, err, "failed to apply migrations")

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// seedUser inserts a registration row created hoursAgo in the past, so the
// candidate lookback window sees it.
func seedUser(t *testing.T, pool *queue.Pool, userID, affID, countryID, hoursAgo int64) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (user_id, locale, created, country_id, aff_id, aff_track)
		VALUES ($1, 'en_US', now() - ($2 * INTERVAL '1 hour'), $3, $4, 'track')
	`, userID, hoursAgo, countryID, affID)
	require.NoError(t, err, "failed to seed user %d", userID)
}

// seedInstall inserts an install tracker row for the mobile attribution path.
func seedInstall(t *testing.T, pool *queue.Pool, userID, affID, platformID int64, adID string, hoursAgo int64) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		INSERT INTO apps_flyer (
			first_connected_user, install_time, aff_id, aff_track,
			android_advertising_id, ios_idfa, os_version, client_platform_id,
			extra, ip_adress, device
		)
		VALUES ($1, now() - ($2 * INTERVAL '1 hour'), $3, 'track',
			$4, NULL, '12', $5,
			'{"app_version":"1.2.3","sdk_version":"4.5"}', '10.0.0.1', 'Pixel 6')
	`, userID, hoursAgo, affID, adID, platformID)
	require.NoError(t, err, "failed to seed install for user %d", userID)
}

// seedRegisterClick inserts an adwords registration click for the web
// attribution path.
func seedRegisterClick(t *testing.T, pool *queue.Pool, userID int64, gclid string, hoursAgo int64) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		INSERT INTO user_adwords_click_history (user_id, gclid, operation_type, created)
		VALUES ($1, $2, 'register', now() - ($3 * INTERVAL '1 hour'))
	`, userID, gclid, hoursAgo)
	require.NoError(t, err, "failed to seed click for user %d", userID)
}

// seedDeposit inserts a real-balance deposit made txHoursAfterReg after a
// registration regHoursAgo in the past.
func seedDeposit(t *testing.T, pool *queue.Pool, userID, regHoursAgo, txHoursAfterReg int64, sum float64) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		INSERT INTO stat_transactions_data (
			user_id, registration_date, transaction_date,
			transaction_sum, transaction_type, balance_type
		)
		VALUES ($1,
			now() - ($2 * INTERVAL '1 hour'),
			now() - ($2 * INTERVAL '1 hour') + ($3 * INTERVAL '1 hour'),
			$4, 'deposit', 1)
	`, userID, regHoursAgo, txHoursAfterReg, sum)
	require.NoError(t, err, "failed to seed deposit for user %d", userID)
}

func queueRowCount(t *testing.T, pool *queue.Pool, table string, userID int64) int64 {
	t.Helper()

	var n int64
	err := pool.QueryRow(context.Background(),
		`SELECT count(*) FROM `+table+` WHERE user_id = $1`, userID).Scan(&n)
	require.NoError(t, err, "failed to count queue rows for user %d", userID)
	return n
}
