package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/health"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/observability"
	"github.com/fjod/go_cart/storefront/internal/receipt"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/view"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	shutdownTracing, err := observability.InitTracerProvider(ctx, health.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}

	// Cart persistence
	cartRepo, closeRepo, err := openCartRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open cart repository", zap.String("backend", cfg.CartBackend), zap.Error(err))
	}

	// Receipt ledger
	ledger, err := receipt.NewRepository(cfg.ReceiptsDBPath)
	if err != nil {
		logger.Fatal("failed to open receipts database", zap.Error(err))
	}
	if err := ledger.RunMigrations(cfg.MigrationsPath); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Checkout events
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers,
			observability.NewPrintfAdapter(logger.Named("kafka"), zapcore.ErrorLevel))
		logger.Info("publishing checkout events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	// Catalog
	store := catalog.NewStore()
	catalogBoard := view.NewCatalogBoard()
	fetcher := catalog.NewHTTPFetcher(cfg.CatalogURL, cfg.CatalogTimeout)
	loader := catalog.NewLoader(fetcher, store, catalogBoard, logger)
	if err := loader.Load(ctx); err != nil {
		// not fatal: the page shows the error state and the next visit retries
		logger.Warn("initial catalog load failed", zap.String("url", cfg.CatalogURL), zap.Error(err))
	}

	registry := session.NewRegistry(cartRepo, store, session.Config{
		IdleTTL:        cfg.SessionIdleTTL,
		PersistTimeout: cfg.PersistTimeout,
		FlashTTL:       cfg.FlashTTL,
	}, logger)

	svc := service.NewStorefrontService(store, loader, catalogBoard, registry, ledger, publisher, logger)

	handler, err := h.NewHandler(svc, logger)
	if err != nil {
		logger.Fatal("failed to build handlers", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h.NewRouter(handler, logger, cfg.RequestTimeout),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("storefront listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	// gRPC health
	healthSrv := health.NewServer(logger)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		logger.Fatal("failed to listen", zap.String("port", cfg.GRPCPort), zap.Error(err))
	}
	go func() {
		if err := healthSrv.Serve(lis); err != nil {
			logger.Error("grpc health server stopped", zap.Error(err))
		}
	}()
	healthSrv.SetServing(true)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down storefront...")
	healthSrv.SetServing(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server forced to shutdown", zap.Error(err))
	}
	healthSrv.Stop()

	if err := registry.Close(); err != nil {
		logger.Error("failed to close session registry", zap.Error(err))
	}
	if err := publisher.Close(); err != nil {
		logger.Error("failed to close publisher", zap.Error(err))
	}
	if err := ledger.Close(); err != nil {
		logger.Error("failed to close receipts database", zap.Error(err))
	}
	if err := closeRepo(shutdownCtx); err != nil {
		logger.Error("failed to close cart repository", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("failed to shutdown tracer provider", zap.Error(err))
	}

	logger.Info("storefront stopped")
}

// openCartRepository connects the configured backend and returns its
// closer.
func openCartRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.CartRepository, func(context.Context) error, error) {
	switch cfg.CartBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		repo := repository.NewRedisRepository(client)
		if err := repo.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		return repo, func(context.Context) error { return client.Close() }, nil

	case config.BackendMongo:
		db, err := repository.ConnectMongoDB(ctx, repository.MongoSettings{
			URI:                    cfg.MongoURI,
			Database:               cfg.MongoDBName,
			ConnectTimeout:         cfg.MongoConnectTimeout,
			ServerSelectionTimeout: cfg.MongoServerSelectionTimeout,
			MaxPoolSize:            cfg.MongoMaxPoolSize,
			MinPoolSize:            cfg.MongoMinPoolSize,
		})
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewMongoRepository(db)
		if err := repo.CreateIndexes(ctx); err != nil {
			_ = db.Client().Disconnect(ctx)
			return nil, nil, err
		}
		logger.Info("connected to mongodb",
			zap.String("db", cfg.MongoDBName),
			zap.Uint64("max_pool_size", cfg.MongoMaxPoolSize),
		)
		return repo, func(ctx context.Context) error { return db.Client().Disconnect(ctx) }, nil

	default:
		logger.Info("using in-memory cart repository")
		return repository.NewMemoryRepository(), func(context.Context) error { return nil }, nil
	}
}
