package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration. All values are read from the
// environment (or a local .env file) so that no secret is ever hardcoded.
type Config struct {
	AppPort     string // HTTP listen port
	DatabaseURL string // PostgreSQL DSN

	GithubClientID     string // GitHub OAuth app client ID
	GithubClientSecret string // GitHub OAuth app client secret
	GithubCallbackURL  string // OAuth callback, must match the app registration

	JWTSecret   string // HMAC secret for signed web tokens
	EncryptSalt string // secret the private-key encryption key is derived from

	PlatformWalletAddress string // fee recipient for the platform slice
	PlatformGithubToken   string // GitHub credential for unauthenticated web deploys
	PlatformGithubUser    string // pseudo-identity owning platform deploys

	BaseRPCURL   string // Base chain JSON-RPC endpoint
	DashboardURL string // web dashboard origin (CORS + redirects)

	ClankerAPIURL string // deployment service endpoint
	ClankerAPIKey string // deployment service credential

	CreatorRewardPercent int     // fee split: percent of trading fees to the creator
	EthPriceFallback     float64 // last-resort ETH/USD price when CoinGecko is down

	RabbitMQURL string // optional; empty disables event publishing
}

// Load reads configuration from environment variables, with a .env file as a
// convenience for local development.
func Load() *Config {
	_ = godotenv.Load() // Load .env file if present

	viper.SetDefault("PORT", "3001")
	viper.SetDefault("DASHBOARD_URL", "http://localhost:3000")
	viper.SetDefault("BASE_RPC_URL", "https://mainnet.base.org")
	viper.SetDefault("CLANKER_API_URL", "https://www.clanker.world/api")
	viper.SetDefault("PLATFORM_GITHUB_USER", "dailaunch-platform")
	viper.SetDefault("CREATOR_REWARD_PERCENT", 80)
	viper.SetDefault("ETH_PRICE_FALLBACK", 3400)
	viper.AutomaticEnv()

	cfg := &Config{
		AppPort:     viper.GetString("PORT"),
		DatabaseURL: viper.GetString("DATABASE_URL"),

		GithubClientID:     viper.GetString("GITHUB_CLIENT_ID"),
		GithubClientSecret: viper.GetString("GITHUB_CLIENT_SECRET"),
		GithubCallbackURL:  viper.GetString("GITHUB_CALLBACK_URL"),

		JWTSecret:   viper.GetString("JWT_SECRET"),
		EncryptSalt: viper.GetString("ENCRYPT_SALT"),

		PlatformWalletAddress: viper.GetString("PLATFORM_WALLET_ADDRESS"),
		PlatformGithubToken:   viper.GetString("PLATFORM_GITHUB_TOKEN"),
		PlatformGithubUser:    viper.GetString("PLATFORM_GITHUB_USER"),

		BaseRPCURL:   viper.GetString("BASE_RPC_URL"),
		DashboardURL: viper.GetString("DASHBOARD_URL"),

		ClankerAPIURL: viper.GetString("CLANKER_API_URL"),
		ClankerAPIKey: viper.GetString("CLANKER_API_KEY"),

		CreatorRewardPercent: viper.GetInt("CREATOR_REWARD_PERCENT"),
		EthPriceFallback:     viper.GetFloat64("ETH_PRICE_FALLBACK"),

		RabbitMQURL: viper.GetString("RABBITMQ_URL"),
	}

	// Older deployments reused the encryption salt as the JWT secret. A
	// dedicated JWT_SECRET is preferred, but the fallback keeps previously
	// issued tokens verifiable.
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = cfg.EncryptSalt
	}
	if cfg.PlatformGithubToken == "" {
		cfg.PlatformGithubToken = viper.GetString("GITHUB_TOKEN")
	}

	return cfg
}
