package services_test

import (
	"fmt"
	"testing"

	"dailaunch/internal/models"
	"dailaunch/internal/repositories"
	"dailaunch/internal/services"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTokenRepo(t *testing.T) repositories.TokenRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.Token{}))
	return repositories.NewGORMTokenRepository(db)
}

func seedTokens(t *testing.T, repo repositories.TokenRepository, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		err := repo.Create(&models.Token{
			ContractAddress: fmt.Sprintf("0x%040d", i),
			Name:            fmt.Sprintf("Token %d", i),
			Symbol:          fmt.Sprintf("TK%d", i),
			Deployer:        "octocat",
			MarketCap:       float64(i * 1000),
			TradeVolume:     float64(i * 100),
		})
		assert.NoError(t, err)
	}
}

func TestTokenService_ListSortedByMarketCap(t *testing.T) {
	repo := setupTokenRepo(t)
	seedTokens(t, repo, 10)
	svc := services.NewTokenService(repo)

	page, err := svc.List(repositories.TokenListQuery{Sort: "mcap", Limit: 5, Page: 1})
	assert.NoError(t, err)
	assert.Len(t, page.Tokens, 5)
	assert.Equal(t, int64(10), page.Total)

	// Descending market cap: 10000, 9000, 8000, 7000, 6000.
	for i, token := range page.Tokens {
		assert.Equal(t, float64((10-i)*1000), token.MarketCap)
	}
}

func TestTokenService_ListPagination(t *testing.T) {
	repo := setupTokenRepo(t)
	seedTokens(t, repo, 10)
	svc := services.NewTokenService(repo)

	page, err := svc.List(repositories.TokenListQuery{Sort: "mcap", Limit: 4, Page: 3})
	assert.NoError(t, err)
	assert.Len(t, page.Tokens, 2) // 10 rows, pages of 4: 4+4+2
	assert.Equal(t, int64(10), page.Total)
	assert.Equal(t, 3, page.Page)
}

func TestTokenService_ListClampsInputs(t *testing.T) {
	repo := setupTokenRepo(t)
	seedTokens(t, repo, 3)
	svc := services.NewTokenService(repo)

	page, err := svc.List(repositories.TokenListQuery{Page: -5, Limit: 100000, Sort: "bogus"})
	assert.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.Limit)
	assert.Len(t, page.Tokens, 3)
}

func TestTokenService_ListSearchMatchesNameAndSymbol(t *testing.T) {
	repo := setupTokenRepo(t)
	svc := services.NewTokenService(repo)

	assert.NoError(t, repo.Create(&models.Token{
		ContractAddress: "0x" + fmt.Sprintf("%040d", 1),
		Name:            "Doge Classic", Symbol: "DOGC",
	}))
	assert.NoError(t, repo.Create(&models.Token{
		ContractAddress: "0x" + fmt.Sprintf("%040d", 2),
		Name:            "Moon Cat", Symbol: "MCAT",
	}))

	byName, err := svc.List(repositories.TokenListQuery{Search: "doge"})
	assert.NoError(t, err)
	assert.Len(t, byName.Tokens, 1)
	assert.Equal(t, "Doge Classic", byName.Tokens[0].Name)

	bySymbol, err := svc.List(repositories.TokenListQuery{Search: "mcat"})
	assert.NoError(t, err)
	assert.Len(t, bySymbol.Tokens, 1)
	assert.Equal(t, "Moon Cat", bySymbol.Tokens[0].Name)
}

func TestTokenService_ListEmptyStore(t *testing.T) {
	svc := services.NewTokenService(setupTokenRepo(t))

	page, err := svc.List(repositories.TokenListQuery{})
	assert.NoError(t, err)
	assert.NotNil(t, page.Tokens)
	assert.Len(t, page.Tokens, 0)
	assert.Equal(t, int64(0), page.Total)
}

func TestTokenService_GetByAddress(t *testing.T) {
	repo := setupTokenRepo(t)
	seedTokens(t, repo, 1)
	svc := services.NewTokenService(repo)

	token, err := svc.GetByAddress(fmt.Sprintf("0x%040d", 1))
	assert.NoError(t, err)
	assert.Equal(t, "Token 1", token.Name)

	_, err = svc.GetByAddress("0xdoesnotexist")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestTokenService_Stats(t *testing.T) {
	repo := setupTokenRepo(t)
	seedTokens(t, repo, 4)
	svc := services.NewTokenService(repo)

	stats, err := svc.Stats()
	assert.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalTokens)
	assert.Equal(t, float64(1000), stats.TotalVolume)    // 100+200+300+400
	assert.Equal(t, float64(10000), stats.TotalMarketCap) // 1000+...+4000
	// Everything was seeded just now, so it all counts as today.
	assert.Equal(t, int64(4), stats.DeployedToday)
}
