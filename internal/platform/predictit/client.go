// Package predictit is the read-only client for the public PredictIt market
// data API. No authentication; the whole exchange fits in one /all response,
// which is cached briefly to stay well under their rate limits.
package predictit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/seerscan/seer/internal/domain"
)

const cacheTTL = 60 * time.Second

// Client is the REST client for the PredictIt market data API.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.Mutex
	cached    *AllMarketsResponse
	cacheTime time.Time
}

// NewClient creates a new PredictIt client.
//
// baseURL is the API root, e.g. "https://www.predictit.org/api/marketdata".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetAllMarkets returns every PredictIt market with its contracts, cached
// for 60 seconds.
func (c *Client) GetAllMarkets(ctx context.Context) ([]Market, error) {
	c.mu.Lock()
	if c.cached != nil && time.Since(c.cacheTime) < cacheTTL {
		markets := c.cached.Markets
		c.mu.Unlock()
		return markets, nil
	}
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/all/", nil)
	if err != nil {
		return nil, fmt.Errorf("predictit: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predictit: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("predictit: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("predictit: %w", domain.ErrRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("predictit: HTTP %d", resp.StatusCode)
	}

	var all AllMarketsResponse
	if err := json.Unmarshal(body, &all); err != nil {
		return nil, fmt.Errorf("predictit: decode markets: %w", err)
	}

	c.mu.Lock()
	c.cached = &all
	c.cacheTime = time.Now()
	c.mu.Unlock()

	return all.Markets, nil
}

// GetMultiOutcomeMarkets returns markets with at least two open contracts,
// the ones the bracket-arbitrage scan can run over.
func (c *Client) GetMultiOutcomeMarkets(ctx context.Context) ([]Market, error) {
	markets, err := c.GetAllMarkets(ctx)
	if err != nil {
		return nil, err
	}

	var multi []Market
	for _, m := range markets {
		open := m.OpenContracts()
		if len(open) < 2 {
			continue
		}
		m.Contracts = open
		multi = append(multi, m)
	}
	return multi, nil
}
