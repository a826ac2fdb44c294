package config

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type LedgerConfig struct {
	DepositCapRatio     decimal.Decimal
	DefaultClientsLimit int
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Ledger      LedgerConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	capRatio, err := parseRatio(v.GetString("LEDGER_DEPOSIT_CAP_RATIO"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Ledger: LedgerConfig{
			DepositCapRatio:     capRatio,
			DefaultClientsLimit: v.GetInt("LEDGER_DEFAULT_CLIENTS_LIMIT"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7092
	}
	if cfg.Ledger.DefaultClientsLimit == 0 {
		cfg.Ledger.DefaultClientsLimit = 2
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if !cfg.Ledger.DepositCapRatio.IsPositive() {
		return fmt.Errorf("LEDGER_DEPOSIT_CAP_RATIO must be greater than 0")
	}
	if cfg.Ledger.DefaultClientsLimit < 1 {
		return fmt.Errorf("LEDGER_DEFAULT_CLIENTS_LIMIT must be at least 1")
	}
	return nil
}

func parseRatio(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.NewFromFloat(0.25), nil
	}
	ratio, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("LEDGER_DEPOSIT_CAP_RATIO is not a valid decimal: %w", err)
	}
	return ratio, nil
}
