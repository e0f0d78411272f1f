package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seerscan/seer/internal/domain"
)

// PaperTradeStore implements domain.PaperTradeStore using PostgreSQL.
type PaperTradeStore struct {
	pool *pgxpool.Pool
}

// NewPaperTradeStore creates a new PaperTradeStore backed by the given pool.
func NewPaperTradeStore(pool *pgxpool.Pool) *PaperTradeStore {
	return &PaperTradeStore{pool: pool}
}

var _ domain.PaperTradeStore = (*PaperTradeStore)(nil)

const tradeSelectCols = `id, market_id, title, platform, category, side,
	size, entry_price, entry_time, close_time, status,
	exit_price, pnl, win, resolved_at`

// Insert stores a new paper trade.
func (s *PaperTradeStore) Insert(ctx context.Context, pos domain.Position) error {
	const query = `
		INSERT INTO paper_trades (
			id, market_id, title, platform, category, side,
			size, entry_price, entry_time, close_time, status,
			exit_price, pnl, win, resolved_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15
		)`

	var closeTime *time.Time
	if !pos.CloseTime.IsZero() {
		closeTime = &pos.CloseTime
	}

	_, err := s.pool.Exec(ctx, query,
		pos.ID, pos.MarketID, pos.Title, pos.Platform, pos.Category, pos.Side,
		pos.Size, pos.EntryPrice, pos.EntryTime, closeTime, pos.Status,
		pos.ExitPrice, pos.PnL, pos.Win, pos.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert paper trade %s: %w", pos.ID, err)
	}
	return nil
}

// ListOpen returns all open paper trades ordered by entry time.
func (s *PaperTradeStore) ListOpen(ctx context.Context) ([]domain.Position, error) {
	query := `SELECT ` + tradeSelectCols + ` FROM paper_trades
		WHERE status = 'open' ORDER BY entry_time`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list open trades: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// ListClosed returns closed paper trades, most recently resolved first.
func (s *PaperTradeStore) ListClosed(ctx context.Context, opts domain.ListOpts) ([]domain.Position, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + tradeSelectCols + ` FROM paper_trades
		WHERE status = 'closed' ORDER BY resolved_at DESC LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list closed trades: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// UpdateResult closes the most recently opened open trade for the market,
// recording exit price, P&L, and the win flag. Returns domain.ErrNotFound
// when no open trade exists for the market.
func (s *PaperTradeStore) UpdateResult(ctx context.Context, marketID string, pos domain.Position) error {
	const query = `
		UPDATE paper_trades SET
			status      = 'closed',
			exit_price  = $2,
			pnl         = $3,
			win         = $4,
			resolved_at = $5
		WHERE id = (
			SELECT id FROM paper_trades
			WHERE market_id = $1 AND status = 'open'
			ORDER BY entry_time DESC
			LIMIT 1
		)`

	resolvedAt := pos.ResolvedAt
	if resolvedAt == nil {
		now := time.Now().UTC()
		resolvedAt = &now
	}

	tag, err := s.pool.Exec(ctx, query, marketID, pos.ExitPrice, pos.PnL, pos.Win, resolvedAt)
	if err != nil {
		return fmt.Errorf("postgres: update trade result for %s: %w", marketID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// PerformanceStats aggregates closed paper trades.
func (s *PaperTradeStore) PerformanceStats(ctx context.Context) (domain.PerformanceStats, error) {
	const query = `
		SELECT
			COUNT(*) FILTER (WHERE status = 'closed'),
			COUNT(*) FILTER (WHERE status = 'closed' AND win),
			COUNT(*) FILTER (WHERE status = 'closed' AND NOT win),
			COALESCE(SUM(pnl) FILTER (WHERE status = 'closed'), 0),
			COUNT(*) FILTER (WHERE status = 'open')
		FROM paper_trades`

	var stats domain.PerformanceStats
	err := s.pool.QueryRow(ctx, query).Scan(
		&stats.TotalTrades, &stats.Wins, &stats.Losses, &stats.TotalPnL, &stats.OpenTrades,
	)
	if err != nil {
		return domain.PerformanceStats{}, fmt.Errorf("postgres: performance stats: %w", err)
	}

	if stats.TotalTrades > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.TotalTrades)
		stats.AvgPnL = stats.TotalPnL / float64(stats.TotalTrades)
	}
	return stats, nil
}

// ListClosedBefore returns closed trades resolved strictly before the cutoff.
func (s *PaperTradeStore) ListClosedBefore(ctx context.Context, before time.Time) ([]domain.Position, error) {
	query := `SELECT ` + tradeSelectCols + ` FROM paper_trades
		WHERE status = 'closed' AND resolved_at < $1 ORDER BY resolved_at`

	rows, err := s.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list closed trades before %s: %w", before, err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// DeleteClosedBefore removes closed trades resolved strictly before the
// cutoff and returns the number removed.
func (s *PaperTradeStore) DeleteClosedBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM paper_trades WHERE status = 'closed' AND resolved_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete closed trades before %s: %w", before, err)
	}
	return tag.RowsAffected(), nil
}

func scanPositions(rows pgxRows) ([]domain.Position, error) {
	var positions []domain.Position
	for rows.Next() {
		var pos domain.Position
		var closeTime *time.Time

		if err := rows.Scan(
			&pos.ID, &pos.MarketID, &pos.Title, &pos.Platform, &pos.Category, &pos.Side,
			&pos.Size, &pos.EntryPrice, &pos.EntryTime, &closeTime, &pos.Status,
			&pos.ExitPrice, &pos.PnL, &pos.Win, &pos.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan paper trade: %w", err)
		}
		if closeTime != nil {
			pos.CloseTime = *closeTime
		}
		positions = append(positions, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: paper trade rows: %w", err)
	}
	return positions, nil
}
