package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"dailaunch/internal/handlers"
	"dailaunch/internal/models"
	"dailaunch/internal/repositories"
	"dailaunch/internal/services"
	"dailaunch/pkg/clanker"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// stubVerifier accepts a fixed set of GitHub tokens without hitting the
// GitHub API.
type stubVerifier struct {
	identities map[string]*services.VerifiedIdentity
}

func (s *stubVerifier) Verify(_ context.Context, githubToken string) (*services.VerifiedIdentity, error) {
	if identity, ok := s.identities[githubToken]; ok {
		return identity, nil
	}
	return nil, fmt.Errorf("invalid GitHub token: %w", services.ErrUnauthenticated)
}

// stubDeployer mints deterministic contract addresses and counts calls.
type stubDeployer struct {
	calls    int
	failWith error
}

func (s *stubDeployer) Deploy(_ context.Context, params clanker.DeployParams) (*clanker.DeployResult, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	s.calls++
	return &clanker.DeployResult{
		ContractAddress: fmt.Sprintf("0x%040d", s.calls),
		TxHash:          fmt.Sprintf("0xtx%d", s.calls),
	}, nil
}

// stubPublisher fakes the GitHub metadata repo publish.
type stubPublisher struct {
	calls int
}

func (s *stubPublisher) PublishTokenRepo(_ context.Context, params services.PublishParams) (string, error) {
	s.calls++
	return fmt.Sprintf("https://github.com/%s/dailaunch-test-%d", params.GithubUser, s.calls), nil
}

type testEnv struct {
	app       *fiber.App
	db        *gorm.DB
	deployer  *stubDeployer
	publisher *stubPublisher
	sessions  *services.SessionService
	tokenRepo repositories.TokenRepository
}

// setupApp wires the full HTTP surface against in-memory SQLite with the
// external boundaries (GitHub, Clanker, chain RPC) stubbed out.
func setupApp(t *testing.T) *testEnv {
	return setupAppWithPlatformToken(t, "gho_platform")
}

func setupAppWithPlatformToken(t *testing.T, platformToken string) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.User{}, &models.Token{}, &models.WebSession{}))

	userRepo := repositories.NewGORMUserRepository(db)
	tokenRepo := repositories.NewGORMTokenRepository(db)
	sessionRepo := repositories.NewGORMSessionRepository(db)

	verifier := &stubVerifier{identities: map[string]*services.VerifiedIdentity{
		"gho_octocat": {Login: "octocat", Name: "The Octocat", Token: "gho_octocat"},
		"gho_platform": {
			Login: "dailaunch-platform",
			Name:  "dailaunch-platform",
			Token: "gho_platform",
		},
	}}
	deployer := &stubDeployer{}
	publisher := &stubPublisher{}

	walletService := services.NewWalletService("test_salt")
	sessionService := services.NewSessionService(sessionRepo, verifier, "test_secret")
	priceService := services.NewPriceService(nil, 3400)
	userService := services.NewUserService(userRepo, tokenRepo, walletService, priceService)
	tokenService := services.NewTokenService(tokenRepo)
	deployService := services.NewDeployService(userRepo, tokenRepo, walletService, deployer, publisher, nil, 80)
	oauthService := services.NewOAuthService("client", "secret", "http://localhost/auth/github/callback")

	app := fiber.New()
	handlers.NewAuthHandler(oauthService, sessionService, verifier, "http://localhost:3000").RegisterRoutes(app)
	handlers.NewDeployHandler(deployService, verifier, "dailaunch-platform", platformToken).RegisterRoutes(app)
	handlers.NewTokenHandler(tokenService).RegisterRoutes(app)
	handlers.NewUserHandler(userService, verifier).RegisterRoutes(app)

	return &testEnv{
		app:       app,
		db:        db,
		deployer:  deployer,
		publisher: publisher,
		sessions:  sessionService,
		tokenRepo: tokenRepo,
	}
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	var req *http.Request
	if body != nil {
		payload, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	resp.Body.Close()
}

func TestDeployEndToEnd(t *testing.T) {
	env := setupApp(t)

	req := jsonRequest(http.MethodPost, "/api/deploy", map[string]string{
		"name":   "Test Token",
		"symbol": "TT",
	})
	req.Header.Set("x-github-token", "gho_octocat")

	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The success payload is flat: every field sits at the top level.
	var body struct {
		Success         bool   `json:"success"`
		ContractAddress string `json:"contractAddress"`
		TxHash          string `json:"txHash"`
		CreatorWallet   string `json:"creatorWallet"`
		GithubRepo      string `json:"githubRepo"`
		BaseScan        string `json:"baseScan"`
		DexScreener     string `json:"dexScreener"`
		FeeInfo         string `json:"feeInfo"`
	}
	decodeBody(t, resp, &body)
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.ContractAddress)
	assert.NotEmpty(t, body.TxHash)
	assert.Len(t, body.CreatorWallet, 42)
	assert.Contains(t, body.GithubRepo, "github.com/octocat/")
	assert.Contains(t, body.BaseScan, body.ContractAddress)
	assert.Contains(t, body.DexScreener, body.ContractAddress)
	assert.Contains(t, body.FeeInfo, "80%")

	// A brand-new identity gets a User row with a generated wallet.
	var user models.User
	assert.NoError(t, env.db.First(&user, "github_username = ?", "octocat").Error)
	assert.Len(t, user.WalletAddress, 42)
	assert.NotEmpty(t, user.EncryptedKey)

	var token models.Token
	assert.NoError(t, env.db.First(&token, "contract_address = ?", body.ContractAddress).Error)
	assert.Equal(t, "octocat", token.Deployer)
	assert.Equal(t, body.GithubRepo, token.GithubRepo)
}

func TestDeployTwiceMintsTwoTokens(t *testing.T) {
	env := setupApp(t)

	var addresses []string
	for i := 0; i < 2; i++ {
		req := jsonRequest(http.MethodPost, "/api/deploy", map[string]string{
			"name":   "Test Token",
			"symbol": "TT",
		})
		req.Header.Set("x-github-token", "gho_octocat")

		resp, err := env.app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			ContractAddress string `json:"contractAddress"`
		}
		decodeBody(t, resp, &body)
		addresses = append(addresses, body.ContractAddress)
	}

	// No idempotency: the identical request mints a second token.
	assert.NotEqual(t, addresses[0], addresses[1])

	var tokenCount, userCount int64
	env.db.Model(&models.Token{}).Count(&tokenCount)
	env.db.Model(&models.User{}).Count(&userCount)
	assert.Equal(t, int64(2), tokenCount)
	assert.Equal(t, int64(1), userCount)
}

func TestDeployFailureReturnsServerError(t *testing.T) {
	env := setupApp(t)
	env.deployer.failWith = fmt.Errorf("clanker deploy failed: insufficient funds")

	req := jsonRequest(http.MethodPost, "/api/deploy", map[string]string{
		"name": "Test Token", "symbol": "TT",
	})
	req.Header.Set("x-github-token", "gho_octocat")

	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	decodeBody(t, resp, &body)
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "insufficient funds")
}

func TestDeployRejectsLongSymbol(t *testing.T) {
	env := setupApp(t)

	req := jsonRequest(http.MethodPost, "/api/deploy", map[string]string{
		"name":   "Test Token",
		"symbol": "TOOLONGSYMBOL",
	})
	req.Header.Set("x-github-token", "gho_octocat")

	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Rejected before anything was created or called.
	var userCount, tokenCount int64
	env.db.Model(&models.User{}).Count(&userCount)
	env.db.Model(&models.Token{}).Count(&tokenCount)
	assert.Equal(t, int64(0), userCount)
	assert.Equal(t, int64(0), tokenCount)
	assert.Equal(t, 0, env.deployer.calls)
	assert.Equal(t, 0, env.publisher.calls)
}

func TestDeployRequiresGithubToken(t *testing.T) {
	env := setupApp(t)

	req := jsonRequest(http.MethodPost, "/api/deploy", map[string]string{
		"name": "Test Token", "symbol": "TT",
	})
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = jsonRequest(http.MethodPost, "/api/deploy", map[string]string{
		"name": "Test Token", "symbol": "TT",
	})
	req.Header.Set("x-github-token", "gho_revoked")
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebDeployAlwaysUsesPlatformIdentity(t *testing.T) {
	env := setupApp(t)

	req := jsonRequest(http.MethodPost, "/api/deploy/web", map[string]string{
		"name": "Web Token", "symbol": "WEB",
	})
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var token models.Token
	assert.NoError(t, env.db.First(&token, "symbol = ?", "WEB").Error)
	assert.Equal(t, "dailaunch-platform", token.Deployer)

	// The path never reads caller auth: a user token on the request is
	// ignored and the deploy still runs as the platform.
	req = jsonRequest(http.MethodPost, "/api/deploy/web", map[string]string{
		"name": "Web Token 2", "symbol": "WEB2",
	})
	req.Header.Set("x-github-token", "gho_octocat")
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	token = models.Token{}
	assert.NoError(t, env.db.First(&token, "symbol = ?", "WEB2").Error)
	assert.Equal(t, "dailaunch-platform", token.Deployer)

	// Repeated web deploys reuse the one platform user row.
	var userCount int64
	env.db.Model(&models.User{}).Count(&userCount)
	assert.Equal(t, int64(1), userCount)
}

func TestWebDeployWithoutPlatformToken(t *testing.T) {
	env := setupAppWithPlatformToken(t, "")

	req := jsonRequest(http.MethodPost, "/api/deploy/web", map[string]string{
		"name": "Web Token", "symbol": "WEB",
	})
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "Platform GitHub token not configured", body.Error)
	assert.Equal(t, 0, env.deployer.calls)
}

func TestSessionLifecycle(t *testing.T) {
	env := setupApp(t)

	// Unknown session token.
	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/auth/session?token=never-issued", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// CLI login mints a session.
	req := httptest.NewRequest(http.MethodPost, "/auth/cli-login", nil)
	req.Header.Set("x-github-token", "gho_octocat")
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var login struct {
		Success      bool   `json:"success"`
		SessionToken string `json:"sessionToken"`
		LoginURL     string `json:"loginUrl"`
		User         struct {
			Login  string `json:"login"`
			Name   string `json:"name"`
			Avatar string `json:"avatar"`
		} `json:"user"`
	}
	decodeBody(t, resp, &login)
	assert.True(t, login.Success)
	assert.Equal(t, "octocat", login.User.Login)
	assert.Equal(t, "The Octocat", login.User.Name)
	assert.Len(t, login.SessionToken, 64)
	assert.Contains(t, login.LoginURL, "?session="+login.SessionToken)

	// The browser resolves it into the stored GitHub credential.
	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/auth/session?token="+login.SessionToken, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var resolved struct {
		GithubToken string `json:"githubToken"`
		Login       string `json:"login"`
	}
	decodeBody(t, resp, &resolved)
	assert.Equal(t, "gho_octocat", resolved.GithubToken)
	assert.Equal(t, "octocat", resolved.Login)

	// Logout, then the token no longer resolves.
	resp, err = env.app.Test(httptest.NewRequest(http.MethodDelete, "/auth/session?token="+login.SessionToken, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/auth/session?token="+login.SessionToken, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuthMeWithWebToken(t *testing.T) {
	env := setupApp(t)

	signed, err := env.sessions.IssueWebToken(&services.VerifiedIdentity{
		Login: "octocat", Name: "The Octocat", Token: "gho_octocat",
	})
	assert.NoError(t, err)

	// Bearer header.
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var me struct {
		Login       string `json:"login"`
		GithubToken string `json:"githubToken"`
	}
	decodeBody(t, resp, &me)
	assert.Equal(t, "octocat", me.Login)
	// The embedded GitHub credential comes back so the web client can make
	// x-github-token API calls.
	assert.Equal(t, "gho_octocat", me.GithubToken)

	// Query parameter form.
	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/auth/me?token="+signed, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Garbage token.
	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTokenListSortedByMarketCap(t *testing.T) {
	env := setupApp(t)

	for i := 1; i <= 10; i++ {
		assert.NoError(t, env.tokenRepo.Create(&models.Token{
			ContractAddress: fmt.Sprintf("0x%040d", i),
			Name:            fmt.Sprintf("Token %d", i),
			Symbol:          fmt.Sprintf("TK%d", i),
			MarketCap:       float64(i * 1000),
		}))
	}

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/tokens?sort=mcap&limit=5", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		Tokens []models.Token `json:"tokens"`
		Total  int64          `json:"total"`
	}
	decodeBody(t, resp, &page)
	assert.Len(t, page.Tokens, 5)
	assert.Equal(t, int64(10), page.Total)
	for i := 0; i < len(page.Tokens)-1; i++ {
		assert.GreaterOrEqual(t, page.Tokens[i].MarketCap, page.Tokens[i+1].MarketCap)
	}
	assert.Equal(t, float64(10000), page.Tokens[0].MarketCap)
}

func TestTokenGetByAddress(t *testing.T) {
	env := setupApp(t)

	assert.NoError(t, env.tokenRepo.Create(&models.Token{
		ContractAddress: "0xabc", Name: "Known", Symbol: "KNW",
	}))

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/tokens/0xabc", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/api/tokens/0xmissing", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPlatformStats(t *testing.T) {
	env := setupApp(t)

	for i := 1; i <= 3; i++ {
		assert.NoError(t, env.tokenRepo.Create(&models.Token{
			ContractAddress: fmt.Sprintf("0x%040d", i),
			Name:            fmt.Sprintf("Token %d", i),
			Symbol:          fmt.Sprintf("TK%d", i),
			TradeVolume:     100,
			MarketCap:       1000,
		}))
	}

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/stats", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stats struct {
		TotalTokens    int64   `json:"totalTokens"`
		TotalVolume    float64 `json:"totalVolume"`
		TotalMarketCap float64 `json:"totalMarketCap"`
		DeployedToday  int64   `json:"deployedToday"`
	}
	decodeBody(t, resp, &stats)
	assert.Equal(t, int64(3), stats.TotalTokens)
	assert.Equal(t, float64(300), stats.TotalVolume)
	assert.Equal(t, float64(3000), stats.TotalMarketCap)
	assert.Equal(t, int64(3), stats.DeployedToday)
}

func TestUserProfileAndKeyExport(t *testing.T) {
	env := setupApp(t)

	// Profile before any deploy: no wallet yet.
	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("x-github-token", "gho_octocat")
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Deploy once to create the user.
	deployReq := jsonRequest(http.MethodPost, "/api/deploy", map[string]string{
		"name": "Test Token", "symbol": "TT",
	})
	deployReq.Header.Set("x-github-token", "gho_octocat")
	resp, err = env.app.Test(deployReq, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("x-github-token", "gho_octocat")
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var profile struct {
		GithubUsername string         `json:"githubUsername"`
		WalletAddress  string         `json:"walletAddress"`
		Tokens         []models.Token `json:"tokens"`
	}
	decodeBody(t, resp, &profile)
	assert.Equal(t, "octocat", profile.GithubUsername)
	assert.Len(t, profile.WalletAddress, 42)
	assert.Len(t, profile.Tokens, 1)

	req = httptest.NewRequest(http.MethodGet, "/api/user/privatekey", nil)
	req.Header.Set("x-github-token", "gho_octocat")
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var export struct {
		WalletAddress string `json:"walletAddress"`
		PrivateKey    string `json:"privateKey"`
	}
	decodeBody(t, resp, &export)
	assert.Equal(t, profile.WalletAddress, export.WalletAddress)
	assert.Len(t, export.PrivateKey, 66)
}
