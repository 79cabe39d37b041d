package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"coverstudio/internal/adapter/repo"
	"coverstudio/internal/covergen"
	"coverstudio/internal/http/handlers"
	"coverstudio/internal/http/httpapi"
	"coverstudio/internal/infra"
	"coverstudio/internal/infra/geoip"
	"coverstudio/internal/middleware"
	"coverstudio/internal/providers/image"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "coverstudio: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv)
	if !cfg.IsDevelopment() && strings.Contains(cfg.ClientOrigin, "localhost") {
		logger.Warn().Str("origin", cfg.ClientOrigin).Msg("CLIENT_ORIGIN still points at localhost")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	generator, err := image.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure image provider")
	}
	service, err := covergen.NewService(covergen.ServiceOptions{
		Generator: generator,
		Logger:    logger,
		Timeout:   cfg.UpstreamTimeout,
		RequestID: middleware.RequestIDFromContext,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build cover service")
	}

	app := handlers.NewApp(cfg, logger, service)

	// Usage ledger is optional.
	pool, err := infra.NewDBPool(ctx, cfg)
	switch {
	case errors.Is(err, infra.ErrNoDatabase):
		logger.Info().Msg("DATABASE_URL not set, usage ledger disabled")
	case err != nil:
		logger.Fatal().Err(err).Msg("failed to connect database")
	default:
		defer pool.Close()
		usage := repo.NewUsageRepository(infra.NewSQLRunner(pool, logger))
		if err := usage.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare usage ledger")
		}
		app.Usage = usage
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		defer resolver.Close()
		app.Geo = resolver
	}

	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app))

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("provider", service.Provider()).
			Str("origin", cfg.ClientOrigin).
			Msg("cover server listening")
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
		return
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.UpstreamTimeout+5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
