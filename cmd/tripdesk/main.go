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
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/tripdesk/tripdesk/internal/app"
	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/leaders"
	"github.com/tripdesk/tripdesk/internal/observability"
	"github.com/tripdesk/tripdesk/internal/platform/cache"
	"github.com/tripdesk/tripdesk/internal/platform/db"
	"github.com/tripdesk/tripdesk/internal/platform/docstore"
	"github.com/tripdesk/tripdesk/internal/rooms"
	"github.com/tripdesk/tripdesk/internal/transport"
	"github.com/tripdesk/tripdesk/internal/trips"
	"github.com/tripdesk/tripdesk/jobs"
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
		logger.Error("tripdesk exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var redisClient *redis.Client
	if client, err := cache.New(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
	} else {
		redisClient = client
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	notifier := jobs.NewClient(redisOpts)
	defer func() {
		if err := notifier.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	codec, err := auth.NewCodec(cfg.JWTSecret, cfg.JWTTTL, auth.WithIssuer(cfg.JWTIssuer))
	if err != nil {
		return err
	}
	authService := auth.NewService(auth.NewRepository(store), auth.NewHasher(cfg.BcryptCost), codec)
	if cfg.BootstrapAdminEmail != "" {
		created, err := authService.EnsureAdmin(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword)
		if err != nil {
			return err
		}
		if created {
			logger.Info("bootstrap admin created", slog.String("email", auth.NormalizeIdentityKey(cfg.BootstrapAdminEmail)))
		}
	}
	guard := auth.NewGuard(codec, logger, metrics)

	tripCache := cache.NewCache(redisClient, "trips", cfg.CacheTTL)
	tripService := trips.NewService(trips.NewRepository(store), tripCache, notifier, logger)
	roomService := rooms.NewService(store, notifier, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Metrics:          metrics,
		Guard:            guard,
		AuthHandler:      auth.NewHandler(logger, authService, metrics),
		TripsHandler:     trips.NewHandler(logger, tripService, guard),
		TransportHandler: transport.NewHandler(logger, transport.NewService(store), guard),
		RoomsHandler:     rooms.NewHandler(logger, roomService, guard),
		LeadersHandler:   leaders.NewHandler(logger, leaders.NewService(store), guard),
		JobHandler:       jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg *app.Config, logger *slog.Logger) (docstore.Store, func(), error) {
	if cfg.StoreDriver == app.StoreDriverMemory {
		logger.Warn("using in-memory document store, data is lost on restart")
		return docstore.NewMemoryStore(), func() {}, nil
	}
	if cfg.PGMigrate {
		if err := db.Migrate(cfg.PGDSN); err != nil {
			return nil, nil, err
		}
	}
	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
	if err != nil {
		return nil, nil, err
	}
	return docstore.NewPostgresStore(pool), pool.Close, nil
}
