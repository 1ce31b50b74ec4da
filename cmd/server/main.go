package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rabbitmq/amqp091-go"

	"github.com/orderdesk/order-management/internal/api"
	"github.com/orderdesk/order-management/internal/core/feed"
	"github.com/orderdesk/order-management/internal/core/service"
	"github.com/orderdesk/order-management/internal/infrastructure/config"
	mongodb "github.com/orderdesk/order-management/internal/infrastructure/db/mongo"
	redisdb "github.com/orderdesk/order-management/internal/infrastructure/db/redis"
	"github.com/orderdesk/order-management/internal/infrastructure/identity"
	"github.com/orderdesk/order-management/internal/infrastructure/queue"
	"github.com/orderdesk/order-management/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Service: "order-management",
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Backends ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Adapters ---
	sessions := redisdb.NewSessionRegistry(rdb)
	provider := identity.NewProvider(db, sessions, cfg.JWTSecret, cfg.TokenTTL, log)
	userRepo := mongodb.NewUserRepository(db, log)
	orderRepo := mongodb.NewOrderRepository(db, log)
	auditRepo := mongodb.NewAuditRepository(db, log)

	for name, ensure := range map[string]func(context.Context) error{
		"identities": provider.EnsureIndexes,
		"users":      userRepo.EnsureIndexes,
		"orders":     orderRepo.EnsureIndexes,
		"audit_logs": auditRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	// --- Core services ---
	authService := service.NewAuthService(provider, userRepo, log)
	roleResolver := service.NewRoleResolver(userRepo, log)
	commandService := service.NewCommandService(orderRepo, userRepo, auditRepo, log)

	feeds := feed.NewManager(userRepo, orderRepo, auditRepo, log)
	if err := feeds.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("feed manager failed to start")
	}

	dispatcher := queue.NewDispatcher(cfg.CommandWorkers, log)
	dispatcher.Start(ctx)

	// --- Optional AMQP order intake ---
	if cfg.AMQP.URL != "" {
		conn, err := amqp091.Dial(cfg.AMQP.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("amqp connection failed")
		}
		defer func() { _ = conn.Close() }()

		ch, err := conn.Channel()
		if err != nil {
			log.Fatal().Err(err).Msg("amqp channel failed")
		}
		intake := queue.NewOrderIntake(commandService, log)
		if err := intake.Start(ctx, ch); err != nil {
			log.Fatal().Err(err).Msg("order intake failed to start")
		}
	}

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Mongo:      db,
		Redis:      rdb,
		JWTSecret:  cfg.JWTSecret,
		Auth:       authService,
		Roles:      roleResolver,
		Commands:   commandService,
		Users:      userRepo,
		Orders:     orderRepo,
		Audit:      auditRepo,
		Feeds:      feeds,
		Dispatcher: dispatcher,
		Sessions:   sessions,
		Log:        log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("http server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("order management service running")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
