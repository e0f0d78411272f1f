package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seerscan/seer/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates a new OpportunityStore backed by the given pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

var _ domain.OpportunityStore = (*OpportunityStore)(nil)

// oppDetails is the JSONB payload carrying the type-specific detail variant.
type oppDetails struct {
	Single *domain.SingleDetails `json:"single,omitempty"`
	Multi  *domain.MultiDetails  `json:"multi,omitempty"`
	EV     *domain.EVDetails     `json:"ev,omitempty"`
}

const oppSelectCols = `id, type, market_id, title, platform,
	profit_per_dollar, spread_cost, net_profit, max_profit, confidence,
	risk_level, details, detected_at`

// Insert stores a detected opportunity.
func (s *OpportunityStore) Insert(ctx context.Context, opp domain.Opportunity) error {
	const query = `
		INSERT INTO opportunities (
			id, type, market_id, title, platform,
			profit_per_dollar, spread_cost, net_profit, max_profit, confidence,
			risk_level, details, detected_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13
		)`

	details, err := json.Marshal(oppDetails{Single: opp.Single, Multi: opp.Multi, EV: opp.EV})
	if err != nil {
		return fmt.Errorf("postgres: marshal opportunity details: %w", err)
	}

	_, err = s.pool.Exec(ctx, query,
		opp.ID, opp.Type, opp.MarketID, opp.Title, opp.Platform,
		opp.ProfitPerDollar, opp.SpreadCost, opp.NetProfit, opp.MaxProfit, opp.Confidence,
		opp.RiskLevel, details, opp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert opportunity %s: %w", opp.ID, err)
	}
	return nil
}

// ListRecent returns the most recent opportunities ordered by detection time.
func (s *OpportunityStore) ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.Opportunity, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + oppSelectCols + ` FROM opportunities
		ORDER BY detected_at DESC LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	defer rows.Close()

	return scanOpportunities(rows)
}

// ListBefore returns opportunities detected strictly before the cutoff.
func (s *OpportunityStore) ListBefore(ctx context.Context, before time.Time) ([]domain.Opportunity, error) {
	query := `SELECT ` + oppSelectCols + ` FROM opportunities
		WHERE detected_at < $1 ORDER BY detected_at`

	rows, err := s.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities before %s: %w", before, err)
	}
	defer rows.Close()

	return scanOpportunities(rows)
}

// DeleteBefore removes opportunities detected strictly before the cutoff and
// returns the number removed.
func (s *OpportunityStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM opportunities WHERE detected_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete opportunities before %s: %w", before, err)
	}
	return tag.RowsAffected(), nil
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanOpportunities(rows pgxRows) ([]domain.Opportunity, error) {
	var opps []domain.Opportunity
	for rows.Next() {
		var opp domain.Opportunity
		var details []byte

		if err := rows.Scan(
			&opp.ID, &opp.Type, &opp.MarketID, &opp.Title, &opp.Platform,
			&opp.ProfitPerDollar, &opp.SpreadCost, &opp.NetProfit, &opp.MaxProfit, &opp.Confidence,
			&opp.RiskLevel, &details, &opp.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}

		var d oppDetails
		if err := json.Unmarshal(details, &d); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal opportunity details: %w", err)
		}
		opp.Single, opp.Multi, opp.EV = d.Single, d.Multi, d.EV

		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: opportunity rows: %w", err)
	}
	return opps, nil
}
