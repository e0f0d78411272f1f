package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	s3blob "github.com/seerscan/seer/internal/blob/s3"
	"github.com/seerscan/seer/internal/cache/redis"
	"github.com/seerscan/seer/internal/config"
	"github.com/seerscan/seer/internal/domain"
	"github.com/seerscan/seer/internal/notify"
	"github.com/seerscan/seer/internal/platform/kalshi"
	"github.com/seerscan/seer/internal/platform/polymarket"
	"github.com/seerscan/seer/internal/platform/predictit"
	"github.com/seerscan/seer/internal/risk"
	"github.com/seerscan/seer/internal/scanner"
	"github.com/seerscan/seer/internal/server/ws"
	"github.com/seerscan/seer/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	// Stores
	Opportunities domain.OpportunityStore
	Trades        domain.PaperTradeStore
	Metrics       domain.MetricsStore
	KillEvents    domain.KillSwitchStore

	// Caches
	Cooldowns domain.CooldownStore
	Quotes    domain.QuoteCache

	// Blob storage
	BlobWriter domain.BlobWriter
	Archiver   domain.Archiver

	// Platform clients (nil when the platform is disabled or the mode does
	// not scan).
	Kalshi     *kalshi.Client
	Polymarket *polymarket.GammaClient
	PredictIt  *predictit.Client

	// Risk and notifications
	Risk     *risk.Manager
	Notifier *notify.Notifier

	// WebSocket hub, nil when the HTTP server is disabled.
	Hub *ws.Hub
}

// scansMarkets returns true for modes that poll the platforms.
func scansMarkets(mode string) bool {
	return strings.ToLower(mode) != "server"
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.Opportunities = postgres.NewOpportunityStore(pool)
	deps.Trades = postgres.NewPaperTradeStore(pool)
	deps.Metrics = postgres.NewMetricsStore(pool)
	deps.KillEvents = postgres.NewKillSwitchStore(pool)

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.Cooldowns = redis.NewCooldownStore(redisClient)
	deps.Quotes = redis.NewQuoteCache(redisClient, 2*cfg.Scanner.ScanInterval.Duration)

	// --- S3 blob storage (only when archival is on) ---
	if cfg.Archive.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.BlobWriter = s3blob.NewWriter(s3Client)
		deps.Archiver = s3blob.NewArchiver(
			deps.BlobWriter,
			postgres.NewPaperTradeStore(pool),
			postgres.NewOpportunityStore(pool),
			logger,
		)
	}

	// --- Platform clients ---
	if scansMarkets(cfg.Mode) {
		if cfg.Kalshi.Enabled {
			kc := kalshi.NewClient(cfg.Kalshi.BaseURL, cfg.Kalshi.ApiKey)
			if cfg.Kalshi.RsaPrivateKeyPath != "" {
				keyBytes, err := os.ReadFile(cfg.Kalshi.RsaPrivateKeyPath)
				if err != nil {
					cleanup()
					return nil, nil, fmt.Errorf("wire: kalshi rsa key: %w", err)
				}
				if err := kc.SetRSAPrivateKey(keyBytes); err != nil {
					cleanup()
					return nil, nil, fmt.Errorf("wire: kalshi rsa key: %w", err)
				}
			}
			deps.Kalshi = kc
		}
		if cfg.Polymarket.Enabled {
			deps.Polymarket = polymarket.NewGammaClient(cfg.Polymarket.GammaHost)
		}
		if cfg.PredictIt.Enabled {
			deps.PredictIt = predictit.NewClient(cfg.PredictIt.BaseURL)
		}
	}

	// --- Risk manager ---
	deps.Risk = risk.NewManager(cfg.Scanner.InitialBankroll, risk.Limits{
		DailyLossLimit:   cfg.Risk.DailyLossLimit,
		MinPositionSize:  cfg.Risk.MinPositionSize,
		MaxPositionSize:  cfg.Risk.MaxPositionSize,
		MaxPositionValue: cfg.Risk.MaxPositionValue,
		MaxOpenPositions: cfg.Risk.MaxOpenPositions,
	}, logger)

	// --- WebSocket hub (only when the HTTP server runs) ---
	if cfg.Server.Enabled {
		deps.Hub = ws.NewHub(cfg.Mode, logger)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if deps.Hub != nil {
		senders = append(senders, ws.NewSender(deps.Hub))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}

// scannerConfig converts the TOML scanner section into the scanner's runtime
// configuration.
func scannerConfig(cfg *config.Config) scanner.Config {
	return scanner.Config{
		ScanInterval:         cfg.Scanner.ScanInterval.Duration,
		CryptoInterval:       cfg.Scanner.CryptoInterval.Duration,
		MetricsInterval:      cfg.Scanner.MetricsInterval.Duration,
		InitialBankroll:      cfg.Scanner.InitialBankroll,
		MinQualityScore:      cfg.Scanner.MinQualityScore,
		MinEV:                cfg.Scanner.MinEV,
		MaxCorrelation:       cfg.Scanner.MaxCorrelation,
		ArbMinProfit:         cfg.Scanner.ArbMinProfit,
		CryptoMinProfit:      cfg.Scanner.CryptoMinProfit,
		ArbIgnoreBelow:       cfg.Scanner.ArbIgnoreBelow,
		AlertMinPer100:       cfg.Scanner.AlertMinPer100,
		CryptoAlertMinPer100: cfg.Scanner.CryptoAlertMinPer100,
		AlertCooldown:        cfg.Scanner.AlertCooldown.Duration,
		ArbCooldown:          cfg.Scanner.ArbCooldown.Duration,
		MaxDaysToResolution:  cfg.Scanner.MaxDaysToResolution,
		MaxTradeUSD:          cfg.Scanner.MaxTradeUSD,
		MaxConsecutiveErrs:   cfg.Scanner.MaxConsecutiveErrs,
		PriceBandLow:         cfg.Scanner.PriceBandLow,
		PriceBandHigh:        cfg.Scanner.PriceBandHigh,
	}
}
