package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/creatorlink/creatorlink/internal/app"
	"github.com/creatorlink/creatorlink/internal/auth"
	jobmetrics "github.com/creatorlink/creatorlink/internal/jobs"
	"github.com/creatorlink/creatorlink/internal/observability"
	"github.com/creatorlink/creatorlink/internal/platform/cache"
	"github.com/creatorlink/creatorlink/internal/platform/db"
	"github.com/creatorlink/creatorlink/internal/platform/migrate"
	"github.com/creatorlink/creatorlink/internal/shared"
	"github.com/creatorlink/creatorlink/internal/users"
	"github.com/creatorlink/creatorlink/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{})
	if err != nil {
		return err
	}
	defer dbpool.Close()

	if cfg.PGMigrate {
		if err := migrate.Up(ctx, dbpool); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	metrics := observability.NewMetrics()
	jobMetrics := jobmetrics.NewMetrics(metrics.Registerer())

	var (
		store       shared.SessionStore
		memoryStore *shared.MemoryStore
		jobHandler  *jobs.Handler
	)
	switch cfg.SessionStore {
	case app.SessionStoreMemory:
		memoryStore = shared.NewMemoryStore(cfg.SessionPruneInterval)
		memoryStore.OnPrune(func(removed int) {
			jobMetrics.AddPruned("memory", int64(removed))
			logger.Debug("session sweep", slog.Int("removed", removed))
		})
		store = memoryStore
		jobHandler = jobs.NewHandler(nil, logger)
	default:
		redisClient, err := cache.New(ctx, cfg.RedisOptions())
		if err != nil {
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		store = shared.NewRedisStore(redisClient)

		inspector := asynq.NewInspector(cfg.AsynqRedis())
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)
	}

	sessionManager := shared.NewSessionManager(store, cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	accountRepo := users.NewRepository(dbpool)
	accountService := users.NewService(accountRepo)
	authService := auth.NewService(accountRepo, auth.NewRepository(dbpool))
	authHandler := auth.NewHandler(logger, authService, accountService, sessionManager, metrics)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		Identity:       accountService,
		AuthHandler:    authHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("session_store", cfg.SessionStore))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if memoryStore != nil {
		g.Go(func() error {
			return memoryStore.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
