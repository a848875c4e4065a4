package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oggyb/crush-radar/internal/app"
	"github.com/oggyb/crush-radar/internal/blob"
	"github.com/oggyb/crush-radar/internal/cache"
	"github.com/oggyb/crush-radar/internal/config"
	"github.com/oggyb/crush-radar/internal/db"
	"github.com/oggyb/crush-radar/internal/httpapi"
	"github.com/oggyb/crush-radar/internal/logger"
	"github.com/oggyb/crush-radar/internal/profile"
	"github.com/oggyb/crush-radar/internal/server"
	"github.com/oggyb/crush-radar/internal/service/auth"
	"github.com/oggyb/crush-radar/internal/service/crush"
	profilesvc "github.com/oggyb/crush-radar/internal/service/profile"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dev := cfg.App.ENV == "development"
	if !dev && cfg.Auth.JWTSecret == "dev-only-secret" {
		log.Warn("JWT_SECRET is the development default", "env", cfg.App.ENV)
	}

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	defer redisCache.Close()

	// Avatar storage is optional; without it uploads fail and everything else works.
	var blobs profile.Blobs
	if store, err := blob.New(ctx, cfg.Blob); err != nil {
		log.Warn("avatar storage unavailable", "endpoint", cfg.Blob.Endpoint, "err", err)
	} else {
		blobs = store
	}

	// Inject logger into app context
	appCtx := app.New(cfg, database, redisCache, blobs, log)
	defer appCtx.Close()

	if cfg.App.SeedOnStart {
		log.Warn("seeding demo data, existing accounts are wiped")
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	grpcServer := server.NewGRPCServer(appCtx.Auth, log, server.Options{
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Reflection:     dev,
	},
		auth.NewRegistrar(appCtx),
		profilesvc.NewRegistrar(appCtx),
		crush.NewRegistrar(appCtx),
	)

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           httpapi.NewRouter(appCtx, httpapi.Options{Timeout: cfg.HTTP.RequestTimeout}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.StartGRPCServer(gctx, cfg.GRPC.Addr(), grpcServer)
	})
	g.Go(func() error {
		log.Info("starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("service stopped")
}
