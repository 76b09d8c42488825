// Package dexscreener fetches market data for deployed tokens from the
// public DexScreener aggregator.
package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.dexscreener.com"

// fetchTimeout keeps the indexer loop from hanging on a slow aggregator.
const fetchTimeout = 5 * time.Second

// TokenStats is the market snapshot for one token, taken from its most
// liquid pair.
type TokenStats struct {
	PriceUSD       float64
	Volume24h      float64
	MarketCap      float64
	LiquidityUSD   float64
	PriceChange24h float64
}

type pairsResponse struct {
	Pairs []pair `json:"pairs"`
}

type pair struct {
	PriceUSD  string  `json:"priceUsd"`
	MarketCap float64 `json:"marketCap"`
	Volume    struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	PriceChange struct {
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
}

// Client calls the DexScreener REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client against the public DexScreener endpoint.
func NewClient() *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: fetchTimeout},
	}
}

// TokenStats fetches the latest market data for a contract address. Returns
// an error when the aggregator knows no pair for the token yet.
func (c *Client) TokenStats(ctx context.Context, contractAddress string) (*TokenStats, error) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, contractAddress)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dexscreener fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dexscreener returned status %d", resp.StatusCode)
	}

	var out pairsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode dexscreener response: %w", err)
	}
	if len(out.Pairs) == 0 {
		return nil, fmt.Errorf("no pairs found for %s", contractAddress)
	}

	p := out.Pairs[0]
	var price float64
	fmt.Sscanf(p.PriceUSD, "%f", &price)

	return &TokenStats{
		PriceUSD:       price,
		Volume24h:      p.Volume.H24,
		MarketCap:      p.MarketCap,
		LiquidityUSD:   p.Liquidity.USD,
		PriceChange24h: p.PriceChange.H24,
	}, nil
}
