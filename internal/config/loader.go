package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SEER_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SEER_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Kalshi ──
	setBool(&cfg.Kalshi.Enabled, "SEER_KALSHI_ENABLED")
	setStr(&cfg.Kalshi.ApiKey, "SEER_KALSHI_API_KEY")
	setStr(&cfg.Kalshi.RsaPrivateKeyPath, "SEER_KALSHI_RSA_PRIVATE_KEY_PATH")
	setStr(&cfg.Kalshi.BaseURL, "SEER_KALSHI_BASE_URL")

	// ── Polymarket ──
	setBool(&cfg.Polymarket.Enabled, "SEER_POLYMARKET_ENABLED")
	setStr(&cfg.Polymarket.GammaHost, "SEER_POLYMARKET_GAMMA_HOST")
	setStr(&cfg.Polymarket.WsHost, "SEER_POLYMARKET_WS_HOST")

	// ── PredictIt ──
	setBool(&cfg.PredictIt.Enabled, "SEER_PREDICTIT_ENABLED")
	setStr(&cfg.PredictIt.BaseURL, "SEER_PREDICTIT_BASE_URL")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "SEER_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "DATABASE_URL") // compatibility alias
	setStr(&cfg.Postgres.Host, "SEER_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SEER_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SEER_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SEER_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SEER_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SEER_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SEER_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SEER_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "SEER_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "SEER_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SEER_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SEER_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SEER_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SEER_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SEER_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "SEER_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SEER_S3_REGION")
	setStr(&cfg.S3.Bucket, "SEER_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SEER_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SEER_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SEER_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SEER_S3_FORCE_PATH_STYLE")

	// ── Scanner ──
	setDuration(&cfg.Scanner.ScanInterval, "SEER_SCANNER_SCAN_INTERVAL")
	setDuration(&cfg.Scanner.CryptoInterval, "SEER_SCANNER_CRYPTO_INTERVAL")
	setDuration(&cfg.Scanner.MetricsInterval, "SEER_SCANNER_METRICS_INTERVAL")
	setFloat64(&cfg.Scanner.InitialBankroll, "SEER_SCANNER_INITIAL_BANKROLL")
	setFloat64(&cfg.Scanner.MinQualityScore, "SEER_SCANNER_MIN_QUALITY_SCORE")
	setFloat64(&cfg.Scanner.MinEV, "SEER_SCANNER_MIN_EV")
	setFloat64(&cfg.Scanner.MaxCorrelation, "SEER_SCANNER_MAX_CORRELATION")
	setFloat64(&cfg.Scanner.ArbMinProfit, "SEER_SCANNER_ARB_MIN_PROFIT")
	setFloat64(&cfg.Scanner.CryptoMinProfit, "SEER_SCANNER_CRYPTO_MIN_PROFIT")
	setFloat64(&cfg.Scanner.ArbIgnoreBelow, "SEER_SCANNER_ARB_IGNORE_BELOW")
	setFloat64(&cfg.Scanner.AlertMinPer100, "SEER_SCANNER_ALERT_MIN_PER_100")
	setFloat64(&cfg.Scanner.CryptoAlertMinPer100, "SEER_SCANNER_CRYPTO_ALERT_MIN_PER_100")
	setDuration(&cfg.Scanner.AlertCooldown, "SEER_SCANNER_ALERT_COOLDOWN")
	setDuration(&cfg.Scanner.ArbCooldown, "SEER_SCANNER_ARB_COOLDOWN")
	setInt(&cfg.Scanner.MaxDaysToResolution, "SEER_SCANNER_MAX_DAYS_TO_RESOLUTION")
	setFloat64(&cfg.Scanner.MaxTradeUSD, "SEER_SCANNER_MAX_TRADE_USD")
	setInt(&cfg.Scanner.MaxConsecutiveErrs, "SEER_SCANNER_MAX_CONSECUTIVE_ERRORS")
	setFloat64(&cfg.Scanner.PriceBandLow, "SEER_SCANNER_PRICE_BAND_LOW")
	setFloat64(&cfg.Scanner.PriceBandHigh, "SEER_SCANNER_PRICE_BAND_HIGH")

	// ── Risk ──
	setFloat64(&cfg.Risk.DailyLossLimit, "SEER_RISK_DAILY_LOSS_LIMIT")
	setFloat64(&cfg.Risk.MinPositionSize, "SEER_RISK_MIN_POSITION_SIZE")
	setFloat64(&cfg.Risk.MaxPositionSize, "SEER_RISK_MAX_POSITION_SIZE")
	setFloat64(&cfg.Risk.MaxPositionValue, "SEER_RISK_MAX_POSITION_VALUE")
	setInt(&cfg.Risk.MaxOpenPositions, "SEER_RISK_MAX_OPEN_POSITIONS")

	// ── Archive ──
	setBool(&cfg.Archive.Enabled, "SEER_ARCHIVE_ENABLED")
	setDuration(&cfg.Archive.Interval, "SEER_ARCHIVE_INTERVAL")
	setInt(&cfg.Archive.RetentionDays, "SEER_ARCHIVE_RETENTION_DAYS")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "SEER_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "SEER_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "SEER_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.ApiKey, "SEER_SERVER_API_KEY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SEER_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SEER_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SEER_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "SEER_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "SEER_MODE")
	setStr(&cfg.LogLevel, "SEER_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
