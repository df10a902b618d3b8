package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"go.uber.org/zap"

	"github.com/atlekbai/aggregate_sql/internal/config"
	"github.com/atlekbai/aggregate_sql/internal/db"
	"github.com/atlekbai/aggregate_sql/internal/dialect"
	"github.com/atlekbai/aggregate_sql/internal/middleware"
	"github.com/atlekbai/aggregate_sql/internal/query"
	"github.com/atlekbai/aggregate_sql/internal/schema"
	"github.com/atlekbai/aggregate_sql/internal/server"
	"github.com/atlekbai/aggregate_sql/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := cfg.Logger()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cache, err := loadCache(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to load metadata", zap.Error(err))
	}
	logger.Info("metadata loaded", zap.Int("entities", cache.EntityCount()), zap.Int("roots", len(cache.Roots())))

	dialects, err := dialect.LookupAll(cfg.Dialects)
	if err != nil {
		logger.Fatal("invalid dialects", zap.Error(err))
	}

	catalog, err := query.BuildCatalog(ctx, cache, cfg.Naming(), dialects, logger)
	if err != nil {
		logger.Fatal("failed to build statement catalog", zap.Error(err))
	}

	interceptors := []connect.Interceptor{
		server.LoggingInterceptor(logger),
	}

	services := []server.ConnectService{
		service.NewStatementService(catalog, logger),
		service.NewMetadataService(catalog, logger),
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           middleware.Chain(server.NewMux(services, interceptors...), middleware.Recovery(logger), middleware.Logging(logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", cfg.Addr()))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

// loadCache reads the metadata file when one is configured and the metadata
// tables otherwise.
func loadCache(ctx context.Context, cfg *config.Config) (*schema.Cache, error) {
	cache := schema.NewCache()
	if cfg.MetadataFile != "" {
		return cache, cache.LoadFile(cfg.MetadataFile)
	}

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return cache, cache.Load(ctx, conn)
}
