package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seerscan/seer/internal/domain"
)

// MetricsStore implements domain.MetricsStore using PostgreSQL.
type MetricsStore struct {
	pool *pgxpool.Pool
}

// NewMetricsStore creates a new MetricsStore backed by the given pool.
func NewMetricsStore(pool *pgxpool.Pool) *MetricsStore {
	return &MetricsStore{pool: pool}
}

var _ domain.MetricsStore = (*MetricsStore)(nil)

// Insert stores a scanner metrics snapshot.
func (s *MetricsStore) Insert(ctx context.Context, snap domain.MetricsSnapshot) error {
	const query = `
		INSERT INTO metrics (ts, bankroll, daily_pnl, total_pnl, open_positions, win_rate, total_trades)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		snap.Timestamp, snap.Bankroll, snap.DailyPnL, snap.TotalPnL,
		snap.OpenPositions, snap.WinRate, snap.TotalTrades,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert metrics: %w", err)
	}
	return nil
}

// ListRecent returns the most recent snapshots, newest first.
func (s *MetricsStore) ListRecent(ctx context.Context, limit int) ([]domain.MetricsSnapshot, error) {
	if limit <= 0 {
		limit = 24
	}

	const query = `
		SELECT ts, bankroll, daily_pnl, total_pnl, open_positions, win_rate, total_trades
		FROM metrics ORDER BY ts DESC LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list metrics: %w", err)
	}
	defer rows.Close()

	var snaps []domain.MetricsSnapshot
	for rows.Next() {
		var snap domain.MetricsSnapshot
		if err := rows.Scan(
			&snap.Timestamp, &snap.Bankroll, &snap.DailyPnL, &snap.TotalPnL,
			&snap.OpenPositions, &snap.WinRate, &snap.TotalTrades,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan metrics: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: metrics rows: %w", err)
	}
	return snaps, nil
}
