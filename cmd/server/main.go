package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/devconnect/devconnect/api/handler"
	"github.com/devconnect/devconnect/internal/config"
	"github.com/devconnect/devconnect/internal/infrastructure/buffer"
	"github.com/devconnect/devconnect/internal/infrastructure/monitor"
	pgInfra "github.com/devconnect/devconnect/internal/infrastructure/postgres"
	redisInfra "github.com/devconnect/devconnect/internal/infrastructure/redis"
	"github.com/devconnect/devconnect/internal/router"
	"github.com/devconnect/devconnect/internal/services"
	"github.com/devconnect/devconnect/internal/services/lifecycle"
	"github.com/devconnect/devconnect/pkg/httpcontext"
	"github.com/devconnect/devconnect/pkg/logger"
	pgRepo "github.com/devconnect/devconnect/repository/postgres"
	redisRepo "github.com/devconnect/devconnect/repository/redis"
	registryUC "github.com/devconnect/devconnect/usecase/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	pendingStore, err := buffer.Open(cfg.Pending.Path, "pending")
	if err != nil {
		zapLogger.Fatal("failed to open pending store", zap.Error(err))
	}
	manager.Register("pending_store", func(ctx context.Context) error {
		return pendingStore.Close()
	})

	mon := monitor.New(pool, redisClient, pendingStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	users := redisRepo.NewRosterCache(
		pgRepo.NewUserRepository(pool),
		redisClient,
		cfg.Redis.CacheTTL,
		zapLogger,
	)

	pendingProcessor := services.NewPendingProcessor(
		pendingStore,
		mon,
		users,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Pending.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Pending.MaxRetry,
		},
	)
	pendingProcessor.Start()
	manager.Register("pending_processor", func(ctx context.Context) error {
		pendingProcessor.Stop(ctx)
		return nil
	})

	registryUseCase := registryUC.New(users, services.NewPendingBridge(pendingProcessor), zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	r := router.New(router.Handlers{
		Users:  apiHandler.NewUsersHandler(registryUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	})

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("registry started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
