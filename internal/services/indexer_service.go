package services

import (
	"context"
	"log"
	"time"

	"dailaunch/internal/models"
	"dailaunch/internal/repositories"
	"dailaunch/pkg/dexscreener"
)

// indexerInterval is how often market stats are refreshed.
const indexerInterval = 5 * time.Minute

// MarketDataSource supplies market stats per contract address. The real
// implementation is pkg/dexscreener.
type MarketDataSource interface {
	TokenStats(ctx context.Context, contractAddress string) (*dexscreener.TokenStats, error)
}

// IndexerService periodically refreshes the market fields on every known
// token. Per-token failures are logged and skipped, so no single token can
// abort a sweep. Each row update is an independent best-effort write with no
// cross-token ordering guarantee.
type IndexerService struct {
	tokens   repositories.TokenRepository
	market   MarketDataSource
	interval time.Duration
}

// NewIndexerService creates an IndexerService with the 5-minute interval.
func NewIndexerService(tokens repositories.TokenRepository, market MarketDataSource) *IndexerService {
	return &IndexerService{
		tokens:   tokens,
		market:   market,
		interval: indexerInterval,
	}
}

// Run sweeps immediately, then on every tick until the context is
// cancelled. Sweeps run inline in this goroutine, so iterations never
// overlap even when one takes longer than the interval.
func (s *IndexerService) Run(ctx context.Context) {
	log.Println("DexScreener indexer started")
	s.UpdateAll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("DexScreener indexer stopped")
			return
		case <-ticker.C:
			s.UpdateAll(ctx)
		}
	}
}

// UpdateAll performs one sweep over all known tokens and returns how many
// rows were updated.
func (s *IndexerService) UpdateAll(ctx context.Context) int {
	addresses, err := s.tokens.ListAddresses()
	if err != nil {
		log.Printf("Indexer error: %v", err)
		return 0
	}
	if len(addresses) == 0 {
		return 0
	}

	log.Printf("Updating %d tokens from DexScreener...", len(addresses))

	updated := 0
	for _, address := range addresses {
		stats, err := s.market.TokenStats(ctx, address)
		if err != nil {
			log.Printf("Failed to update %s: %v", address, err)
			continue
		}

		err = s.tokens.UpdateMarketStats(address, models.MarketStats{
			Price:          stats.PriceUSD,
			TradeVolume:    stats.Volume24h,
			MarketCap:      stats.MarketCap,
			Liquidity:      stats.LiquidityUSD,
			PriceChange24h: stats.PriceChange24h,
		})
		if err != nil {
			log.Printf("Failed to update %s: %v", address, err)
			continue
		}
		updated++
	}

	log.Printf("Token stats updated (%d/%d)", updated, len(addresses))
	return updated
}
