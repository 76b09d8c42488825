package repositories

import (
	"errors"
	"fmt"
	"time"

	"dailaunch/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// sortColumns whitelists the exposed sort keys. Anything else falls back to
// newest-first, matching the public API contract.
var sortColumns = map[string]string{
	"new":     "deployed_at DESC",
	"mcap":    "market_cap DESC",
	"volume":  "trade_volume DESC",
	"gain":    "price_change24h DESC",
	"holders": "holders DESC",
}

// GORMTokenRepository is a GORM implementation of TokenRepository.
type GORMTokenRepository struct {
	db *gorm.DB
}

// NewGORMTokenRepository creates a new instance of GORMTokenRepository.
func NewGORMTokenRepository(db *gorm.DB) *GORMTokenRepository {
	return &GORMTokenRepository{
		db: db,
	}
}

// Create creates a new token row.
func (r *GORMTokenRepository) Create(token *models.Token) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if err := r.db.Create(token).Error; err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

// GetByAddress retrieves a single token by its contract address.
func (r *GORMTokenRepository) GetByAddress(contractAddress string) (*models.Token, error) {
	var token models.Token
	if err := r.db.First(&token, "contract_address = ?", contractAddress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("token %s: %w", contractAddress, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get token %s: %w", contractAddress, err)
	}
	return &token, nil
}

// List returns a page of tokens plus the total count for the query.
func (r *GORMTokenRepository) List(q TokenListQuery) ([]models.Token, int64, error) {
	order, ok := sortColumns[q.Sort]
	if !ok {
		order = sortColumns["new"]
	}

	base := r.db.Model(&models.Token{})
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		base = base.Where("LOWER(name) LIKE LOWER(?) OR LOWER(symbol) LIKE LOWER(?)", pattern, pattern)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tokens: %w", err)
	}

	var tokens []models.Token
	err := base.Order(order).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&tokens).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tokens: %w", err)
	}
	return tokens, total, nil
}

// ListByDeployer returns all tokens deployed by a GitHub login, newest first.
func (r *GORMTokenRepository) ListByDeployer(deployer string) ([]models.Token, error) {
	var tokens []models.Token
	err := r.db.Where("deployer = ?", deployer).
		Order("deployed_at DESC").
		Find(&tokens).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens for %s: %w", deployer, err)
	}
	return tokens, nil
}

// ListAddresses returns every known contract address for the indexer sweep.
func (r *GORMTokenRepository) ListAddresses() ([]string, error) {
	var addresses []string
	err := r.db.Model(&models.Token{}).
		Pluck("contract_address", &addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list token addresses: %w", err)
	}
	return addresses, nil
}

// UpdateRepoURL records the metadata repository URL after the publish step.
func (r *GORMTokenRepository) UpdateRepoURL(id string, repoURL string) error {
	res := r.db.Model(&models.Token{}).Where("id = ?", id).Update("github_repo", repoURL)
	if res.Error != nil {
		return fmt.Errorf("failed to update repo URL for token %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("token %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateMarketStats overwrites the market fields for one token.
func (r *GORMTokenRepository) UpdateMarketStats(contractAddress string, stats models.MarketStats) error {
	res := r.db.Model(&models.Token{}).
		Where("contract_address = ?", contractAddress).
		Updates(map[string]interface{}{
			"price":           stats.Price,
			"trade_volume":    stats.TradeVolume,
			"market_cap":      stats.MarketCap,
			"liquidity":       stats.Liquidity,
			"price_change24h": stats.PriceChange24h,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update market stats for %s: %w", contractAddress, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("token %s: %w", contractAddress, ErrNotFound)
	}
	return nil
}

// CountDeployedSince counts tokens deployed at or after the given time.
func (r *GORMTokenRepository) CountDeployedSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Token{}).
		Where("deployed_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count recent tokens: %w", err)
	}
	return count, nil
}

// Totals aggregates the platform-wide counters.
func (r *GORMTokenRepository) Totals() (*PlatformTotals, error) {
	var totals PlatformTotals
	if err := r.db.Model(&models.Token{}).Count(&totals.TotalTokens).Error; err != nil {
		return nil, fmt.Errorf("failed to count tokens: %w", err)
	}
	row := r.db.Model(&models.Token{}).
		Select("COALESCE(SUM(trade_volume), 0), COALESCE(SUM(market_cap), 0)").
		Row()
	if err := row.Scan(&totals.TotalVolume, &totals.TotalMarketCap); err != nil {
		return nil, fmt.Errorf("failed to aggregate token totals: %w", err)
	}
	return &totals, nil
}
