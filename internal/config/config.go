package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Default DSN templates; user and password from the config file are spliced
// in unless an explicit DSN override is present.
const (
	defaultWarehouseDSN = "clickhouse://%s:%s@localhost:9000/reporting"
	defaultQueueDSN     = "postgres://%s:%s@localhost:5432/options_analytics"
)

// Config holds the application configuration read from the INI file.
type Config struct {
	// WarehouseDSN is the analytics warehouse (ClickHouse) connection string.
	WarehouseDSN string

	// QueueDSN is the queue database (Postgres) connection string.
	QueueDSN string

	// IgnoreModelVersion downgrades the feature-catalog version check from
	// a fatal error to a warning.
	IgnoreModelVersion bool
}

// Load reads the INI config file. Section [main] must carry gp_user/gp_pass
// and wp_user/wp_pass; gp_dsn and wp_dsn override the default connection
// strings entirely.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}

	warehouseDSN := v.GetString("main.gp_dsn")
	if warehouseDSN == "" {
		user, pass, err := credentials(v, "gp_user", "gp_pass")
		if err != nil {
			return nil, err
		}
		warehouseDSN = fmt.Sprintf(defaultWarehouseDSN, user, pass)
	}
	cfg.WarehouseDSN = warehouseDSN

	queueDSN := v.GetString("main.wp_dsn")
	if queueDSN == "" {
		user, pass, err := credentials(v, "wp_user", "wp_pass")
		if err != nil {
			return nil, err
		}
		queueDSN = fmt.Sprintf(defaultQueueDSN, user, pass)
	}
	cfg.QueueDSN = queueDSN

	cfg.IgnoreModelVersion = strings.EqualFold(strings.TrimSpace(v.GetString("main.ver_ignore")), "true")

	return cfg, nil
}

func credentials(v *viper.Viper, userKey, passKey string) (string, string, error) {
	user := v.GetString("main." + userKey)
	if user == "" {
		return "", "", fmt.Errorf("config: missing main.%s", userKey)
	}
	pass := v.GetString("main." + passKey)
	if pass == "" {
		return "", "", fmt.Errorf("config: missing main.%s", passKey)
	}
	return user, pass, nil
}
