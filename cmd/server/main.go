package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Joxtacy/joxtabot/internal/bot"
	"github.com/Joxtacy/joxtabot/internal/config"
	"github.com/Joxtacy/joxtabot/internal/crypto"
	"github.com/Joxtacy/joxtabot/internal/database"
	"github.com/Joxtacy/joxtabot/internal/dedup"
	"github.com/Joxtacy/joxtabot/internal/discord"
	"github.com/Joxtacy/joxtabot/internal/irc"
	"github.com/Joxtacy/joxtabot/internal/logging"
	"github.com/Joxtacy/joxtabot/internal/redis"
	"github.com/Joxtacy/joxtabot/internal/relay"
	"github.com/Joxtacy/joxtabot/internal/server"
	"github.com/Joxtacy/joxtabot/internal/shutdown"
	"github.com/Joxtacy/joxtabot/internal/twitch"
	"github.com/Joxtacy/joxtabot/internal/webhook"
)

const (
	maxOverlayClients   = 128
	shutdownTimeout     = 10 * time.Second
	shutdownWaitTimeout = 15 * time.Second

	// botTokenName keys the chat token in the token store.
	botTokenName = "twitch_bot"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupCrypto(cfg *config.Config) crypto.Service {
	if cfg.TokenEncryptionKey == "" {
		slog.Warn("No token encryption key configured, storing tokens in plaintext")
		return crypto.NoopService{}
	}

	svc, err := crypto.NewAESGCMService(cfg.TokenEncryptionKey)
	if err != nil {
		slog.Error("Failed to create crypto service", "error", err)
		os.Exit(1)
	}
	return svc
}

// resolveBotToken prefers the stored token so out-of-band refreshes survive
// restarts; the environment token seeds the store on first boot.
func resolveBotToken(ctx context.Context, tokens *database.TokenRepo, envToken string) string {
	token, err := tokens.Load(ctx, botTokenName)
	if errors.Is(err, database.ErrTokenNotFound) {
		if err := tokens.Save(ctx, botTokenName, envToken); err != nil {
			slog.Warn("Failed to seed bot token store", "error", err)
		}
		return envToken
	}
	if err != nil {
		slog.Warn("Failed to load stored bot token, using environment token", "error", err)
		return envToken
	}
	return token
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	coordinator := shutdown.New()
	ctx := coordinator.Context()

	// Duplicate suppression: Redis when configured so suppression survives
	// restarts, in-memory otherwise.
	var seenStore dedup.SeenStore
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		var err error
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer func() { _ = redisClient.Close() }()
		seenStore = dedup.NewRedisStore(redisClient, dedup.DefaultTTL)
	} else {
		memStore := dedup.NewMemoryStore(dedup.DefaultTTL, clock)
		memStore.StartEviction(ctx, time.Minute)
		seenStore = memStore
	}

	cryptoSvc := setupCrypto(cfg)
	tokenRepo := database.NewTokenRepo(pool, cryptoSvc)
	botToken := resolveBotToken(ctx, tokenRepo, cfg.TwitchBotToken)

	rewardRepo := database.NewRewardRepo(pool, cfg.TwitchChannel)

	var streams bot.StreamInfoProvider = twitch.NoopClient{}
	if cfg.TwitchClientID != "" {
		helixClient, err := twitch.NewHelixClient(cfg.TwitchClientID, cfg.TwitchUserAccessToken, cfg.TwitchBroadcasterID)
		if err != nil {
			slog.Error("Failed to create helix client", "error", err)
			os.Exit(1)
		}
		streams = helixClient
	}

	var notifier bot.Notifier = discord.NoopNotifier{}
	if cfg.DiscordBotToken != "" {
		discordNotifier, err := discord.NewNotifier(cfg.DiscordBotToken, cfg.DiscordChannelID)
		if err != nil {
			slog.Error("Failed to create discord notifier", "error", err)
			os.Exit(1)
		}
		notifier = discordNotifier
	}

	hub := relay.NewHub(clock, maxOverlayClients)

	// The client and router reference each other: inbound lines flow to the
	// router, replies flow back through the client's send queue.
	var router *bot.Router
	chatClient := bot.NewClient(bot.ClientConfig{
		Token:   botToken,
		Nick:    cfg.TwitchNick,
		Channel: cfg.TwitchChannel,
	}, bot.MessageHandlerFunc(func(msg irc.ParsedMessage) {
		router.HandleMessage(msg)
	}), clock)
	router = bot.NewRouter(ctx, chatClient, hub, streams, notifier, rewardRepo, clock, cfg.TwitchChannel)

	webhookHandler := webhook.NewHandler(cfg.WebhookSecret, seenStore, router, clock)

	// Pass nil explicitly to avoid a typed-nil interface
	var srv *server.Server
	if redisClient != nil {
		srv = server.NewServer(cfg, hub, webhookHandler, pool, redisClient)
	} else {
		srv = server.NewServer(cfg, hub, webhookHandler, pool, nil)
	}

	chatDone := coordinator.Register()
	go func() {
		defer chatDone()
		chatClient.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		// Register before Shutdown so Wait covers the hub teardown too:
		// srv.Start returns as soon as srv.Shutdown does, and the chat
		// client may already be done by then.
		hubDone := coordinator.Register()
		coordinator.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		hub.Stop()
		hubDone()
	}()

	logging.WithChannel(cfg.TwitchChannel).Info("Joxtabot running")
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.WithError(err).Error("Server error")
		os.Exit(1)
	}

	coordinator.Wait(shutdownWaitTimeout)
}
