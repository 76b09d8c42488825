package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const coingeckoURL = "https://api.coingecko.com/api/v3/simple/price?ids=ethereum&vs_currencies=usd"

// priceCacheTTL bounds how stale the cached ETH price may be before a
// refresh is attempted.
const priceCacheTTL = 60 * time.Second

// BalanceReader reads on-chain balances. Satisfied by ethclient.Client;
// tests substitute a stub.
type BalanceReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// PriceService owns the ETH/USD price cache and wallet balance reads. The
// cache is an explicit {value, fetchedAt} pair with a TTL check; a failed
// refresh falls back to the last known value, then to the configured
// fallback price.
type PriceService struct {
	mu        sync.Mutex
	cached    float64
	fetchedAt time.Time

	fallback   float64
	httpClient *http.Client
	priceURL   string
	chain      BalanceReader // may be nil when no RPC endpoint is configured
}

// NewPriceService creates a PriceService. chain may be nil; balance reads
// then report an error instead of a value.
func NewPriceService(chain BalanceReader, fallbackPrice float64) *PriceService {
	return &PriceService{
		fallback:   fallbackPrice,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		priceURL:   coingeckoURL,
		chain:      chain,
	}
}

// EthPriceUSD returns the current ETH price in USD. Never fails: on fetch
// errors it degrades to the cached value, then the fallback.
func (s *PriceService) EthPriceUSD(ctx context.Context) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached > 0 && time.Since(s.fetchedAt) < priceCacheTTL {
		return s.cached
	}

	price, err := s.fetchPrice(ctx)
	if err != nil || price <= 0 {
		if err != nil {
			log.Printf("[DaiLaunch] CoinGecko fetch failed: %v", err)
		}
		if s.cached > 0 {
			return s.cached
		}
		return s.fallback
	}

	s.cached = price
	s.fetchedAt = time.Now()
	log.Printf("[DaiLaunch] ETH price updated: $%.2f", price)
	return price
}

func (s *PriceService) fetchPrice(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.priceURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	var out struct {
		Ethereum struct {
			USD float64 `json:"usd"`
		} `json:"ethereum"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.Ethereum.USD, nil
}

// WalletBalanceETH reads the current balance of an address in whole ETH.
func (s *PriceService) WalletBalanceETH(ctx context.Context, address string) (float64, error) {
	if s.chain == nil {
		return 0, fmt.Errorf("no RPC endpoint configured")
	}

	wei, err := s.chain.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch balance for %s: %w", address, err)
	}

	eth := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18))
	out, _ := eth.Float64()
	return out, nil
}
