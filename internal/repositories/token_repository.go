package repositories

import (
	"time"

	"dailaunch/internal/models"
)

// TokenListQuery captures pagination, ordering and search for token listings.
type TokenListQuery struct {
	Page   int
	Limit  int
	Sort   string // one of: new, mcap, volume, gain, holders
	Search string // matches name or symbol, case-insensitive
}

// PlatformTotals are the aggregate platform counters for /api/stats.
type PlatformTotals struct {
	TotalTokens    int64
	TotalVolume    float64
	TotalMarketCap float64
}

// TokenRepository defines the interface for token data access.
type TokenRepository interface {
	Create(token *models.Token) error
	GetByAddress(contractAddress string) (*models.Token, error)
	List(q TokenListQuery) ([]models.Token, int64, error)
	ListByDeployer(deployer string) ([]models.Token, error)
	ListAddresses() ([]string, error)
	UpdateRepoURL(id string, repoURL string) error
	UpdateMarketStats(contractAddress string, stats models.MarketStats) error
	CountDeployedSince(since time.Time) (int64, error)
	Totals() (*PlatformTotals, error)
}
