package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/api/http"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/api/http/handlers"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/auth"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/config"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/events"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/observability"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/persistence"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/roster"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/service"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/worker"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/zoom"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var rds *persistence.Redis
	var sharedCache zoom.SharedTokenCache
	if cfg.Redis.Enabled() {
		rds = persistence.NewRedis(cfg.Redis, logger)
		defer rds.Close()
		sharedCache = zoom.NewRedisTokenCache(rds.Client)
	}

	zoomClient := zoom.NewClient(cfg.Zoom, zoom.NewTokenCache(), sharedCache, logger)

	var resolver roster.Resolver
	switch cfg.Roster.Backend {
	case config.IdentityBackendPostgres:
		resolver = roster.NewPostgresResolver(pg.PoolHandle())
	default:
		resolver = roster.NewRecordStoreResolver(cfg.Roster, logger)
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, metrics, logger))

	signer := auth.NewSigner(cfg.Zoom.SDKKey, cfg.Zoom.SDKSecret, cfg.Signature.TTLSeconds)
	signatureService := service.NewSignatureService(*cfg, service.SignatureDependencies{
		Signer:     signer,
		Resolver:   resolver,
		ZAK:        zoomClient,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		BodyLimit:   cfg.HTTP.BodyLimitBytes,
		ReadTimeout: cfg.App.RequestTimeout(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Signature: handlers.NewSignatureHandler(signatureService),
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rds),
		Metrics:   handlers.NewMetricsHandler(metrics),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
