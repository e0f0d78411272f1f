package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seerscan/seer/internal/domain"
)

// KillSwitchStore implements domain.KillSwitchStore using PostgreSQL.
type KillSwitchStore struct {
	pool *pgxpool.Pool
}

// NewKillSwitchStore creates a new KillSwitchStore backed by the given pool.
func NewKillSwitchStore(pool *pgxpool.Pool) *KillSwitchStore {
	return &KillSwitchStore{pool: pool}
}

var _ domain.KillSwitchStore = (*KillSwitchStore)(nil)

// Insert records a kill-switch activation.
func (s *KillSwitchStore) Insert(ctx context.Context, ev domain.KillSwitchEvent) error {
	const query = `
		INSERT INTO kill_switch_events (ts, reason, bankroll, daily_loss_pct)
		VALUES ($1, $2, $3, $4)`

	_, err := s.pool.Exec(ctx, query, ev.Timestamp, ev.Reason, ev.Bankroll, ev.DailyLossPct)
	if err != nil {
		return fmt.Errorf("postgres: insert kill switch event: %w", err)
	}
	return nil
}

// ListRecent returns the most recent activations, newest first.
func (s *KillSwitchStore) ListRecent(ctx context.Context, limit int) ([]domain.KillSwitchEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	const query = `
		SELECT ts, reason, bankroll, daily_loss_pct
		FROM kill_switch_events ORDER BY ts DESC LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list kill switch events: %w", err)
	}
	defer rows.Close()

	var events []domain.KillSwitchEvent
	for rows.Next() {
		var ev domain.KillSwitchEvent
		if err := rows.Scan(&ev.Timestamp, &ev.Reason, &ev.Bankroll, &ev.DailyLossPct); err != nil {
			return nil, fmt.Errorf("postgres: scan kill switch event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: kill switch rows: %w", err)
	}
	return events, nil
}
