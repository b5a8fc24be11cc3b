package warehouse

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a ClickHouse container and returns a connection.
// Returns a cleanup function that must be called when done.
func setupTestDB(t *testing.T) (*Conn, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "clickhouse/clickhouse-server:24.1-alpine",
		ExposedPorts: []string{"9000/tcp", "8123/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Application: Ready for connections").
				WithStartupTimeout(60 * time.Second),
			wait.ForListeningPort("9000/tcp"),
		),
		Env: map[string]string{
			"CLICKHOUSE_DB":       "test",
			"CLICKHOUSE_USER":     "default",
			"CLICKHOUSE_PASSWORD": "",
		},
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	dsn := fmt.Sprintf("clickhouse://%s:%s/test", host, port.Port())

	conn, err := NewConn(ctx, dsn)
	require.NoError(t, err)

	createTables(t, conn)

	cleanup := func() {
		conn.Close()
		_ = container.Terminate(ctx)
	}

	return conn, cleanup
}

// createTables builds a minimal copy of the warehouse schema the extract
// queries read from.
func createTables(t *testing.T, conn *Conn) {
	t.Helper()
	ctx := context.Background()

	err := conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			user_id            UInt64,
			locale             String,
			birthdate          Date,
			country_id         UInt32,
			gender             UInt8,
			currency_id        UInt32,
			client_platform_id UInt32,
			is_trial           UInt8,
			is_regulated       UInt8,
			is_public          UInt8,
			nickname           Nullable(String),
			created            DateTime
		) ENGINE = MergeTree()
		ORDER BY user_id
	`)
	require.NoError(t, err)

	err = conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS archive_position (
			user_id              UInt64,
			user_balance_id      UInt64,
			instrument_type      String,
			instrument_active_id UInt32,
			position_type        String,
			status               String,
			buy_amount_enrolled  Float64,
			sell_amount_enrolled Float64,
			pnl_total_enrolled   Float64,
			create_at            DateTime
		) ENGINE = MergeTree()
		ORDER BY (user_id, create_at)
	`)
	require.NoError(t, err)

	err = conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS archive_option (
			user_id         UInt64,
			user_balance_id UInt64,
			active_id       UInt32,
			enrolled_amount Float64,
			win_enrolled    Float64,
			created         DateTime
		) ENGINE = MergeTree()
		ORDER BY (user_id, created)
	`)
	require.NoError(t, err)

	err = conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_balance (
			id   UInt64,
			type UInt8
		) ENGINE = MergeTree()
		ORDER BY id
	`)
	require.NoError(t, err)

	err = conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_tags (
			user_id UInt64,
			tag_id  UInt32,
			created DateTime
		) ENGINE = MergeTree()
		ORDER BY (user_id, created)
	`)
	require.NoError(t, err)

	err = conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tags (
			id   UInt32,
			name String
		) ENGINE = MergeTree()
		ORDER BY id
	`)
	require.NoError(t, err)
}
