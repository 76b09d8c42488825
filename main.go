package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gofiber/fiber/v2"
	amqp "github.com/streadway/amqp"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"dailaunch/internal/config"
	"dailaunch/internal/handlers"
	"dailaunch/internal/models"
	"dailaunch/internal/repositories"
	"dailaunch/internal/services"
	"dailaunch/pkg/clanker"
	"dailaunch/pkg/dexscreener"
	"dailaunch/pkg/rabbitmq"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()

	if cfg.EncryptSalt == "" {
		log.Fatal("ENCRYPT_SALT is required")
	}

	// --- Database ---
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Token{}, &models.WebSession{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Base chain RPC ---
	// A dial failure is non-fatal: balances degrade to zero, deploys still work.
	var chain services.BalanceReader
	if rpc, err := ethclient.Dial(cfg.BaseRPCURL); err != nil {
		log.Printf("Warning: could not connect to Base RPC at %s: %v", cfg.BaseRPCURL, err)
	} else {
		chain = rpc
	}

	// --- RabbitMQ (optional) ---
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, events disabled: %v", err)
		} else {
			defer mqClient.Close()
			events = mqClient

			// Drain the token events queue so deployments show up in the
			// server log even when no external worker is attached.
			go func() {
				err := mqClient.ConsumeTokenEvents(func(msg amqp.Delivery) error {
					log.Printf("Token event (%s): %s", msg.Type, string(msg.Body))
					return nil
				})
				if err != nil {
					log.Printf("Failed to start token event consumer: %v", err)
				}
			}()
		}
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	tokenRepo := repositories.NewGORMTokenRepository(db)
	sessionRepo := repositories.NewGORMSessionRepository(db)

	// --- Services ---
	githubService := services.NewGitHubService()
	walletService := services.NewWalletService(cfg.EncryptSalt)
	oauthService := services.NewOAuthService(cfg.GithubClientID, cfg.GithubClientSecret, cfg.GithubCallbackURL)
	sessionService := services.NewSessionService(sessionRepo, githubService, cfg.JWTSecret)
	priceService := services.NewPriceService(chain, cfg.EthPriceFallback)
	userService := services.NewUserService(userRepo, tokenRepo, walletService, priceService)
	tokenService := services.NewTokenService(tokenRepo)
	clankerClient := clanker.NewClient(clanker.Config{
		APIURL:               cfg.ClankerAPIURL,
		APIKey:               cfg.ClankerAPIKey,
		PlatformWallet:       cfg.PlatformWalletAddress,
		CreatorRewardPercent: cfg.CreatorRewardPercent,
	})
	deployService := services.NewDeployService(
		userRepo, tokenRepo, walletService,
		clankerClient, githubService, events,
		cfg.CreatorRewardPercent,
	)
	indexerService := services.NewIndexerService(tokenRepo, dexscreener.NewClient())

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(oauthService, sessionService, githubService, cfg.DashboardURL)
	deployHandler := handlers.NewDeployHandler(deployService, githubService, cfg.PlatformGithubUser, cfg.PlatformGithubToken)
	tokenHandler := handlers.NewTokenHandler(tokenService)
	userHandler := handlers.NewUserHandler(userService, githubService)

	// --- Fiber app ---
	app := fiber.New(fiber.Config{
		AppName: "DaiLaunch API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.DashboardURL,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, x-github-token",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	authHandler.RegisterRoutes(app)
	deployHandler.RegisterRoutes(app)
	tokenHandler.RegisterRoutes(app)
	userHandler.RegisterRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"version":  version,
			"platform": "DaiLaunch",
			"time":     time.Now().Format(time.RFC3339),
		})
	})

	// --- Stats poller ---
	indexerCtx, stopIndexer := context.WithCancel(context.Background())
	go indexerService.Run(indexerCtx)

	// --- Start HTTP server ---
	log.Printf("Starting DaiLaunch API on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	stopIndexer()
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
