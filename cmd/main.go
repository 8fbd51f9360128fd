package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tanisha-99/internal-transfer-system/internal/command"
	"github.com/Tanisha-99/internal-transfer-system/internal/config"
	"github.com/Tanisha-99/internal-transfer-system/internal/handler"
	"github.com/Tanisha-99/internal-transfer-system/internal/query"
	"github.com/Tanisha-99/internal-transfer-system/internal/repository"
	"github.com/Tanisha-99/internal-transfer-system/shared/events"
	"github.com/Tanisha-99/internal-transfer-system/shared/logger"
	"github.com/Tanisha-99/internal-transfer-system/shared/middleware"
	redisClient "github.com/Tanisha-99/internal-transfer-system/shared/redis"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("service stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Write store
	store, closeStore, err := openStore(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer closeStore()

	// Redis (transfer read model + event streaming), optional
	var rdb *goredis.Client
	var publisher command.EventPublisher = events.NopPublisher{}
	if cfg.RedisAddr != "" {
		client, err := redisClient.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer client.Close()
		rdb = client.Client
		publisher = events.NewPublisher(rdb)
	} else {
		zl.Warn("REDIS_ADDR is empty, running without event streams and transfer view cache")
	}

	// --- CQRS wiring ---
	transferReadRepo := repository.NewTransferReadRepository(store, rdb, zl)

	accountCmds := command.NewAccountCommandService(store, publisher, zl.Named("accounts"))
	transferCmds := command.NewTransferCommandService(store, publisher, zl.Named("transfers"))
	projector := command.NewTransferProjector(transferReadRepo, zl.Named("projector"))

	accountQueries := query.NewAccountQueryService(store)
	transferQueries := query.NewTransferQueryService(transferReadRepo)

	accountHandler := handler.NewAccountHandler(accountCmds, accountQueries)
	transferHandler := handler.NewTransferHandler(transferCmds, transferQueries)

	// run returns only after the projector has stopped, so Redis is never
	// closed under an in-flight ack.
	projectorDone := startProjector(ctx, rdb, projector.HandleTransferEvent, zl)
	defer func() { <-projectorDone }()

	// Setup router
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.LoggingMiddleware(zl))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1", middleware.RequestTimeout(cfg.RequestTimeout))
	if cfg.JWTSecret != "" {
		v1.Use(middleware.AuthMiddleware([]byte(cfg.JWTSecret)))
	} else {
		zl.Warn("JWT_SECRET is empty, /v1 routes are unauthenticated")
	}
	{
		v1.POST("/accounts", accountHandler.CreateAccount)
		v1.GET("/accounts/:accountId", accountHandler.GetAccount)
		v1.POST("/transactions", transferHandler.CreateTransfer)
		v1.GET("/transactions/:transactionId", transferHandler.GetTransfer)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zl.Info("transfer service starting", zap.String("port", cfg.Port), zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	select {
	case err := <-serveErr:
		stop()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	zl.Info("server exited")
	return nil
}

// startProjector consumes transfer events into the view cache until ctx is
// done. The returned channel is closed when the consumer has exited.
func startProjector(ctx context.Context, rdb *goredis.Client, handle events.Handler, zl *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if rdb == nil {
		close(done)
		return done
	}

	hostname, _ := os.Hostname()
	subscriber := events.NewSubscriber(rdb, events.SubscriberConfig{
		Group:    "transfer-projector",
		Consumer: "projector-" + hostname,
		Stream:   events.TransferEventsStream,
		Handler:  handle,
		Logger:   zl,
	})
	go func() {
		defer close(done)
		if err := subscriber.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zl.Error("transfer projector stopped", zap.Error(err))
		}
	}()
	return done
}

func openStore(ctx context.Context, cfg *config.Config, zl *zap.Logger) (repository.AccountStore, func(), error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		zl.Warn("using in-memory storage, balances are lost on restart")
		return repository.NewMemoryAccountRepository(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxOpenConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.RunMigrations {
		if err := repository.RunMigrations(db, zl); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			zl.Warn("failed to close database", zap.Error(err))
		}
	}
	return repository.NewAccountWriteRepository(db, cfg.LockTimeout), closeDB, nil
}
