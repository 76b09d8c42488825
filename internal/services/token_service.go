package services

import (
	"time"

	"dailaunch/internal/models"
	"dailaunch/internal/repositories"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// TokenPage is one page of a token listing.
type TokenPage struct {
	Tokens []models.Token `json:"tokens"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

// PlatformStats are the aggregate counters shown on the dashboard and CLI.
type PlatformStats struct {
	TotalTokens    int64   `json:"totalTokens"`
	TotalVolume    float64 `json:"totalVolume"`
	TotalMarketCap float64 `json:"totalMarketCap"`
	DeployedToday  int64   `json:"deployedToday"`
}

// TokenService handles read paths over deployed tokens.
type TokenService struct {
	tokens repositories.TokenRepository
}

// NewTokenService creates a new TokenService.
func NewTokenService(tokens repositories.TokenRepository) *TokenService {
	return &TokenService{tokens: tokens}
}

// List returns a page of tokens. Page and limit are clamped to sane bounds;
// unknown sort keys fall back to newest-first.
func (s *TokenService) List(q repositories.TokenListQuery) (*TokenPage, error) {
	if q.Page < 1 {
		q.Page = defaultPage
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.Sort == "" {
		q.Sort = "new"
	}

	tokens, total, err := s.tokens.List(q)
	if err != nil {
		return nil, err
	}
	if tokens == nil {
		tokens = []models.Token{}
	}
	return &TokenPage{Tokens: tokens, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

// GetByAddress returns a single token by contract address.
func (s *TokenService) GetByAddress(contractAddress string) (*models.Token, error) {
	return s.tokens.GetByAddress(contractAddress)
}

// Stats aggregates platform-wide counters, with "today" anchored to local
// midnight.
func (s *TokenService) Stats() (*PlatformStats, error) {
	totals, err := s.tokens.Totals()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	deployedToday, err := s.tokens.CountDeployedSince(todayStart)
	if err != nil {
		return nil, err
	}

	return &PlatformStats{
		TotalTokens:    totals.TotalTokens,
		TotalVolume:    totals.TotalVolume,
		TotalMarketCap: totals.TotalMarketCap,
		DeployedToday:  deployedToday,
	}, nil
}
