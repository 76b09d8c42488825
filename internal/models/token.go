package models

import "time"

// Token represents a successfully deployed token.
//
// The market fields (Price through Holders) are mutated only by the
// DexScreener indexer; the deploy path zero-initializes them. GithubRepo is
// empty until the metadata repository publish completes; an empty value
// means "not yet published", not an error.
type Token struct {
	ID              string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ContractAddress string  `json:"contractAddress" gorm:"uniqueIndex;type:varchar(42)"`
	Name            string  `json:"name" gorm:"type:varchar(100)" validate:"required"`
	Symbol          string  `json:"symbol" gorm:"type:varchar(10)" validate:"required,max=10"`
	Deployer        string  `json:"deployer" gorm:"index;type:varchar(100)"`
	CreatorWallet   string  `json:"creatorWallet" gorm:"type:varchar(42)"`
	Twitter         string  `json:"twitter,omitempty"`
	Website         string  `json:"website,omitempty"`
	GithubRepo      string  `json:"githubRepo"`
	Price           float64 `json:"price"`
	TradeVolume     float64 `json:"tradeVolume"`
	MarketCap       float64 `json:"marketCap"`
	Liquidity       float64 `json:"liquidity"`
	PriceChange24h  float64 `json:"priceChange24h"`
	Holders         int     `json:"holders"`
	TxHash          string  `json:"txHash" gorm:"type:varchar(66)"`

	DeployedAt time.Time `json:"deployedAt" gorm:"index;autoCreateTime"`
}

// MarketStats is the subset of Token overwritten by the indexer on each poll.
type MarketStats struct {
	Price          float64
	TradeVolume    float64
	MarketCap      float64
	Liquidity      float64
	PriceChange24h float64
}
