// Package config defines the top-level configuration for the seer scanner
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by SEER_* environment variables.
type Config struct {
	Kalshi     KalshiConfig     `toml:"kalshi"`
	Polymarket PolymarketConfig `toml:"polymarket"`
	PredictIt  PredictItConfig  `toml:"predictit"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Scanner    ScannerConfig    `toml:"scanner"`
	Risk       RiskConfig       `toml:"risk"`
	Archive    ArchiveConfig    `toml:"archive"`
	Server     ServerConfig     `toml:"server"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// KalshiConfig holds Kalshi exchange API credentials.
type KalshiConfig struct {
	Enabled           bool   `toml:"enabled"`
	ApiKey            string `toml:"api_key"`
	RsaPrivateKeyPath string `toml:"rsa_private_key_path"`
	BaseURL           string `toml:"base_url"`
}

// PolymarketConfig holds Polymarket API endpoints.
type PolymarketConfig struct {
	Enabled   bool   `toml:"enabled"`
	GammaHost string `toml:"gamma_host"`
	WsHost    string `toml:"ws_host"`
}

// PredictItConfig holds the PredictIt public API endpoint.
type PredictItConfig struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
}

// PostgresConfig holds PostgreSQL connection parameters. When DSN is set it
// takes precedence over the individual host/port/database fields.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for archival.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ScannerConfig holds scan cadence and opportunity thresholds.
type ScannerConfig struct {
	ScanInterval    duration `toml:"scan_interval"`
	CryptoInterval  duration `toml:"crypto_interval"`
	MetricsInterval duration `toml:"metrics_interval"`

	InitialBankroll float64 `toml:"initial_bankroll"`

	MinQualityScore float64 `toml:"min_quality_score"`
	MinEV           float64 `toml:"min_ev"`
	MaxCorrelation  float64 `toml:"max_correlation"`

	ArbMinProfit    float64 `toml:"arb_min_profit"`
	CryptoMinProfit float64 `toml:"crypto_min_profit"`
	ArbIgnoreBelow  float64 `toml:"arb_ignore_below"`

	AlertMinPer100       float64  `toml:"alert_min_per_100"`
	CryptoAlertMinPer100 float64  `toml:"crypto_alert_min_per_100"`
	AlertCooldown        duration `toml:"alert_cooldown"`
	ArbCooldown          duration `toml:"arb_cooldown"`

	MaxDaysToResolution int     `toml:"max_days_to_resolution"`
	MaxTradeUSD         float64 `toml:"max_trade_usd"`
	MaxConsecutiveErrs  int     `toml:"max_consecutive_errors"`

	PriceBandLow  float64 `toml:"price_band_low"`
	PriceBandHigh float64 `toml:"price_band_high"`
}

// RiskConfig holds bankroll protection limits. All sizes are fractions of the
// bankroll except MaxOpenPositions.
type RiskConfig struct {
	DailyLossLimit   float64 `toml:"daily_loss_limit"`
	MinPositionSize  float64 `toml:"min_position_size"`
	MaxPositionSize  float64 `toml:"max_position_size"`
	MaxPositionValue float64 `toml:"max_position_value"`
	MaxOpenPositions int     `toml:"max_open_positions"`
}

// ArchiveConfig holds settled-data archival parameters.
type ArchiveConfig struct {
	Enabled       bool     `toml:"enabled"`
	Interval      duration `toml:"interval"`
	RetentionDays int      `toml:"retention_days"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	ApiKey      string   `toml:"api_key"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Kalshi: KalshiConfig{
			Enabled: true,
			BaseURL: "https://api.elections.kalshi.com/trade-api/v2",
		},
		Polymarket: PolymarketConfig{
			Enabled:   true,
			GammaHost: "https://gamma-api.polymarket.com",
			WsHost:    "wss://ws-subscriptions-clob.polymarket.com",
		},
		PredictIt: PredictItConfig{
			Enabled: true,
			BaseURL: "https://www.predictit.org/api/marketdata",
		},
		Postgres: PostgresConfig{
			DSN:           "",
			Host:          "localhost",
			Port:          5432,
			Database:      "seer",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "seer-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Scanner: ScannerConfig{
			ScanInterval:         duration{60 * time.Second},
			CryptoInterval:       duration{5 * time.Minute},
			MetricsInterval:      duration{time.Hour},
			InitialBankroll:      5000,
			MinQualityScore:      6.0,
			MinEV:                0.008,
			MaxCorrelation:       0.4,
			ArbMinProfit:         0.02,
			CryptoMinProfit:      0.015,
			ArbIgnoreBelow:       0.02,
			AlertMinPer100:       3.0,
			CryptoAlertMinPer100: 2.0,
			AlertCooldown:        duration{15 * time.Minute},
			ArbCooldown:          duration{time.Hour},
			MaxDaysToResolution:  30,
			MaxTradeUSD:          500,
			MaxConsecutiveErrs:   5,
			PriceBandLow:         0.15,
			PriceBandHigh:        0.85,
		},
		Risk: RiskConfig{
			DailyLossLimit:   0.05,
			MinPositionSize:  0.005,
			MaxPositionSize:  0.05,
			MaxPositionValue: 0.20,
			MaxOpenPositions: 50,
		},
		Archive: ArchiveConfig{
			Enabled:       false,
			Interval:      duration{24 * time.Hour},
			RetentionDays: 90,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Notify: NotifyConfig{
			Events: []string{"arbitrage", "ev_signal", "trade", "resolution", "kill_switch", "heartbeat"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":   true,
	"paper":  true,
	"server": true,
	"full":   true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, paper, server, full)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Platforms — at least one must be enabled for any mode that scans.
	scans := strings.ToLower(c.Mode) != "server"
	if scans && !c.Kalshi.Enabled && !c.Polymarket.Enabled && !c.PredictIt.Enabled {
		errs = append(errs, "at least one platform must be enabled for mode "+c.Mode)
	}
	if c.Kalshi.Enabled && c.Kalshi.BaseURL == "" {
		errs = append(errs, "kalshi: base_url must not be empty")
	}
	if c.Polymarket.Enabled && c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.PredictIt.Enabled && c.PredictIt.BaseURL == "" {
		errs = append(errs, "predictit: base_url must not be empty")
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3 and archive — only checked when archival is on.
	if c.Archive.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when archive is enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when archive is enabled")
		}
		if c.Archive.RetentionDays < 1 {
			errs = append(errs, "archive: retention_days must be >= 1")
		}
		if c.Archive.Interval.Duration <= 0 {
			errs = append(errs, "archive: interval must be > 0")
		}
	}

	// Scanner
	if c.Scanner.ScanInterval.Duration <= 0 {
		errs = append(errs, "scanner: scan_interval must be > 0")
	}
	if c.Scanner.InitialBankroll <= 0 {
		errs = append(errs, "scanner: initial_bankroll must be > 0")
	}
	if c.Scanner.MinEV <= 0 {
		errs = append(errs, "scanner: min_ev must be > 0")
	}
	if c.Scanner.ArbMinProfit <= 0 {
		errs = append(errs, "scanner: arb_min_profit must be > 0")
	}
	if c.Scanner.MaxDaysToResolution < 1 {
		errs = append(errs, "scanner: max_days_to_resolution must be >= 1")
	}
	if c.Scanner.PriceBandLow <= 0 || c.Scanner.PriceBandHigh >= 1 || c.Scanner.PriceBandLow >= c.Scanner.PriceBandHigh {
		errs = append(errs, fmt.Sprintf("scanner: price band must satisfy 0 < low < high < 1, got %.2f and %.2f",
			c.Scanner.PriceBandLow, c.Scanner.PriceBandHigh))
	}

	// Risk
	if c.Risk.DailyLossLimit <= 0 || c.Risk.DailyLossLimit >= 1 {
		errs = append(errs, "risk: daily_loss_limit must be between 0 and 1 exclusive")
	}
	if c.Risk.MinPositionSize <= 0 {
		errs = append(errs, "risk: min_position_size must be > 0")
	}
	if c.Risk.MaxPositionSize < c.Risk.MinPositionSize {
		errs = append(errs, "risk: max_position_size must be >= min_position_size")
	}
	if c.Risk.MaxOpenPositions < 1 {
		errs = append(errs, "risk: max_open_positions must be >= 1")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
