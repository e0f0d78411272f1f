package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seerscan/seer/internal/domain"
	"github.com/seerscan/seer/internal/platform/polymarket"
	"github.com/seerscan/seer/internal/scanner"
	"github.com/seerscan/seer/internal/server"
	"github.com/seerscan/seer/internal/server/handler"
)

// ScanMode runs the scanner in alert-only mode: opportunities are detected,
// stored, and alerted, but no paper trades are opened.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode (alert only)")

	g, ctx := errgroup.WithContext(ctx)

	sc := a.newScanner(deps, false)
	g.Go(func() error {
		return sc.Run(ctx)
	})

	a.startBackgroundLoops(ctx, g, deps)
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, sc)
	}

	return g.Wait()
}

// PaperMode runs the scanner with paper trading: detected edges open
// simulated positions that are resolved against platform results.
func (a *App) PaperMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting paper mode")

	g, ctx := errgroup.WithContext(ctx)

	sc := a.newScanner(deps, true)
	g.Go(func() error {
		return sc.Run(ctx)
	})

	a.startBackgroundLoops(ctx, g, deps)
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, sc)
	}

	return g.Wait()
}

// ServerMode serves the dashboard API over existing data without scanning.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)

	// The scanner is constructed for its status and bankroll snapshots but
	// never run; the API stays read-only over stored data.
	sc := a.newScanner(deps, false)
	a.startHTTPServer(ctx, g, deps, sc)

	return g.Wait()
}

// FullMode runs everything: paper trading, the live crypto quote feed, the
// archive loop, and the HTTP server.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	sc := a.newScanner(deps, true)
	g.Go(func() error {
		return sc.Run(ctx)
	})

	a.startBackgroundLoops(ctx, g, deps)
	if deps.Polymarket != nil && a.cfg.Polymarket.WsHost != "" {
		a.startQuoteFeed(ctx, g, deps)
	}
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, sc)
	}

	return g.Wait()
}

// newScanner assembles the scanner from the wired dependencies. When paper is
// false the trade store is withheld so the scanner only alerts.
func (a *App) newScanner(deps *Dependencies, paper bool) *scanner.Scanner {
	sd := scanner.Deps{
		Opportunities: deps.Opportunities,
		Metrics:       deps.Metrics,
		KillEvents:    deps.KillEvents,
		Cooldowns:     deps.Cooldowns,
		Quotes:        deps.Quotes,
		Risk:          deps.Risk,
		Notifier:      deps.Notifier,
		Logger:        slog.Default(),
	}
	if paper {
		sd.Trades = deps.Trades
	}
	// Interface fields must stay nil when the concrete client is absent.
	if deps.Kalshi != nil {
		sd.Kalshi = deps.Kalshi
	}
	if deps.Polymarket != nil {
		sd.Polymarket = deps.Polymarket
	}
	if deps.PredictIt != nil {
		sd.PredictIt = deps.PredictIt
	}
	return scanner.New(scannerConfig(a.cfg), sd)
}

// startBackgroundLoops starts the archive loop when archival is wired.
func (a *App) startBackgroundLoops(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	if deps.Archiver == nil {
		return
	}
	g.Go(func() error {
		return a.runArchiveLoop(ctx, deps.Archiver)
	})
}

// runArchiveLoop periodically rolls closed paper trades and stale
// opportunities older than the retention window out to S3.
func (a *App) runArchiveLoop(ctx context.Context, archiver domain.Archiver) error {
	interval := a.cfg.Archive.Interval.Duration
	retention := time.Duration(a.cfg.Archive.RetentionDays) * 24 * time.Hour

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		cutoff := time.Now().UTC().Add(-retention)
		trades, err := archiver.ArchiveTrades(ctx, cutoff)
		if err != nil {
			a.logger.ErrorContext(ctx, "archive: trades failed", slog.String("error", err.Error()))
		}
		opps, err := archiver.ArchiveOpportunities(ctx, cutoff)
		if err != nil {
			a.logger.ErrorContext(ctx, "archive: opportunities failed", slog.String("error", err.Error()))
		}
		if trades > 0 || opps > 0 {
			a.logger.InfoContext(ctx, "archive: cycle complete",
				slog.Int64("trades", trades),
				slog.Int64("opportunities", opps),
				slog.Time("cutoff", cutoff),
			)
		}
	}
}

// startQuoteFeed subscribes to the Polymarket CLOB WebSocket for the active
// crypto markets and folds live best bid/ask into the quote cache, keeping
// the five-minute crypto quotes fresh between REST scans.
func (a *App) startQuoteFeed(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	g.Go(func() error {
		markets, err := deps.Polymarket.GetCryptoMarkets(ctx, 200)
		if err != nil {
			a.logger.WarnContext(ctx, "quote feed: listing crypto markets failed, feed disabled",
				slog.String("error", err.Error()),
			)
			return nil
		}

		assetByMarket := make(map[string]string)
		var assetIDs []string
		for i := range markets {
			tokens := markets[i].TokenIDs()
			if len(tokens) == 0 {
				continue
			}
			// First token is the YES side.
			assetIDs = append(assetIDs, tokens[0])
			assetByMarket[tokens[0]] = markets[i].ID
		}
		if len(assetIDs) == 0 {
			a.logger.InfoContext(ctx, "quote feed: no subscribable crypto markets")
			return nil
		}

		wsURL := strings.TrimRight(a.cfg.Polymarket.WsHost, "/") + "/ws/market"
		client := polymarket.NewWSClient(wsURL)
		defer client.Close()

		client.OnPriceUpdate(func(u polymarket.PriceUpdate) {
			marketID := u.MarketID
			if marketID == "" {
				marketID = assetByMarket[u.AssetID]
			}
			if marketID == "" {
				return
			}
			a.mergeQuoteUpdate(deps.Quotes, marketID, u)
		})

		if err := client.Connect(ctx); err != nil {
			a.logger.WarnContext(ctx, "quote feed: connect failed, feed disabled",
				slog.String("error", err.Error()),
			)
			return nil
		}
		if err := client.Subscribe(ctx, assetIDs); err != nil {
			a.logger.WarnContext(ctx, "quote feed: subscribe failed, feed disabled",
				slog.String("error", err.Error()),
			)
			return nil
		}

		a.logger.InfoContext(ctx, "quote feed: subscribed",
			slog.Int("assets", len(assetIDs)),
		)

		<-ctx.Done()
		return nil
	})
}

// mergeQuoteUpdate folds a live price update into the cached quote. Updates
// for markets the REST scan has not seeded yet are dropped.
func (a *App) mergeQuoteUpdate(quotes domain.QuoteCache, marketID string, u polymarket.PriceUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	q, err := quotes.GetQuote(ctx, marketID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			a.logger.Debug("quote feed: cache read failed",
				slog.String("market_id", marketID),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	if u.YesBid > 0 {
		q.YesBid = u.YesBid
		q.NoAsk = 1 - u.YesBid
	}
	if u.YesAsk > 0 {
		q.YesAsk = u.YesAsk
		q.NoBid = 1 - u.YesAsk
	}
	if err := quotes.SetQuote(ctx, q); err != nil {
		a.logger.Debug("quote feed: cache write failed",
			slog.String("market_id", marketID),
			slog.String("error", err.Error()),
		)
	}
}

// startHTTPServer builds the handler set and runs the dashboard API server
// until the context is cancelled.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, sc *scanner.Scanner) {
	logger := slog.Default()

	handlers := server.Handlers{
		Health:        handler.NewHealthHandler(logger),
		Opportunities: handler.NewOpportunityHandler(deps.Opportunities, logger),
		Trades:        handler.NewTradeHandler(deps.Trades, logger),
		Risk:          handler.NewRiskHandler(deps.Risk, sc, deps.Trades, deps.KillEvents, logger),
		Metrics:       handler.NewMetricsHandler(deps.Metrics, logger),
		Quotes:        handler.NewQuoteHandler(deps.Quotes, logger),
		Status:        handler.NewStatusHandler(sc, a.cfg.Mode),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.ApiKey,
	}, handlers, deps.Hub, logger)

	if deps.Hub != nil {
		g.Go(func() error {
			return deps.Hub.Run(ctx)
		})
	}

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}
