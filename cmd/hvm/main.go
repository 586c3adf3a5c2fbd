package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	"github.com/hyprmtrx/hvm/adapters/events"
	"github.com/hyprmtrx/hvm/adapters/gameapi"
	"github.com/hyprmtrx/hvm/adapters/store"
	"github.com/hyprmtrx/hvm/adapters/tokenizer"
	"github.com/hyprmtrx/hvm/auth"
	"github.com/hyprmtrx/hvm/config"
	"github.com/hyprmtrx/hvm/ports"
	"github.com/hyprmtrx/hvm/service"
	transport "github.com/hyprmtrx/hvm/transport/http"
	"github.com/hyprmtrx/hvm/vault"
	"github.com/hyprmtrx/hvm/wallet"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// configuration and the vault secret are validated before anything
	// else; the process must not accept traffic misconfigured
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	keyVault, err := vault.New(cfg.VaultSecret)
	if err != nil {
		log.Fatalf("Failed to initialize vault: %v", err)
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opts)

	wmLogger := watermill.NewSlogLogger(logger)
	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		wmLogger,
	)
	if err != nil {
		log.Fatalf("Failed to create Redis publisher: %v", err)
	}

	var balances ports.BalanceReporter
	if cfg.GameAPIURL != "" {
		balances = gameapi.NewClient(cfg.GameAPIURL, cfg.Networks, logger)
	}

	authService := service.NewAuthService(
		auth.NewAuthenticator(logger),
		wallet.NewProvisioner(logger),
		keyVault,
		store.NewRedisIdentityStore(redisClient),
		store.NewRedisKeyStore(redisClient),
		store.NewRedisNonceStore(redisClient),
		tokenizer.NewJWTTokenizer(cfg.TokenSecret),
		events.NewWatermillPublisher(publisher),
		balances,
		cfg.DefaultChains,
		logger,
	)

	router := transport.SetupRouter(authService)

	logger.Info("starting wallet identity engine", "addr", cfg.ListenAddr, "chains", cfg.DefaultChains)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
