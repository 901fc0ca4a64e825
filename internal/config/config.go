package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	HTTPPort string
	GRPCPort string

	CatalogURL     string
	CatalogTimeout time.Duration

	CartBackend   string
	RedisAddr     string
	RedisPassword string
	MongoURI      string
	MongoDBName   string

	MongoConnectTimeout         time.Duration
	MongoServerSelectionTimeout time.Duration
	MongoMaxPoolSize            uint64
	MongoMinPoolSize            uint64

	ReceiptsDBPath string
	MigrationsPath string

	KafkaBrokers []string
	KafkaTopic   string

	SessionIdleTTL  time.Duration
	PersistTimeout  time.Duration
	FlashTTL        time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	LogLevel     string
	OTLPEndpoint string
}

// Load reads the environment, after applying a .env file when one exists.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var errs []error
	duration := func(key string, def time.Duration) time.Duration {
		d, err := getEnvDuration(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}
	size := func(key string, def uint64) uint64 {
		n, err := getEnvUint(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}

	cfg := &Config{
		HTTPPort:                    getEnv("HTTP_PORT", "8080"),
		GRPCPort:                    getEnv("GRPC_PORT", "50060"),
		CatalogURL:                  getEnv("CATALOG_URL", "https://fakestoreapi.com/products"),
		CatalogTimeout:              duration("CATALOG_TIMEOUT", 10*time.Second),
		CartBackend:                 strings.ToLower(getEnv("CART_BACKEND", BackendMemory)),
		RedisAddr:                   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:               getEnv("REDIS_PASSWORD", ""),
		MongoURI:                    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:                 getEnv("MONGO_DB_NAME", "storefront"),
		MongoConnectTimeout:         duration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		MongoServerSelectionTimeout: duration("MONGO_SERVER_SELECTION_TIMEOUT", 5*time.Second),
		MongoMaxPoolSize:            size("MONGO_MAX_POOL_SIZE", 50),
		MongoMinPoolSize:            size("MONGO_MIN_POOL_SIZE", 5),
		ReceiptsDBPath:              getEnv("RECEIPTS_DB_PATH", "receipts.db"),
		MigrationsPath:              getEnv("MIGRATIONS_PATH", "internal/receipt/migrations"),
		KafkaBrokers:                splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:                  getEnv("KAFKA_TOPIC", "storefront-checkout"),
		SessionIdleTTL:              duration("SESSION_IDLE_TTL", 30*time.Minute),
		PersistTimeout:              duration("PERSIST_TIMEOUT", 2*time.Second),
		FlashTTL:                    duration("FLASH_TTL", 3*time.Second),
		RequestTimeout:              duration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:             duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:                    getEnv("LOG_LEVEL", "info"),
		OTLPEndpoint:                getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	switch cfg.CartBackend {
	case BackendMemory, BackendRedis, BackendMongo:
	default:
		errs = append(errs, fmt.Errorf("CART_BACKEND: unknown backend %q", cfg.CartBackend))
	}

	if cfg.MongoMinPoolSize > cfg.MongoMaxPoolSize {
		errs = append(errs, fmt.Errorf("MONGO_MIN_POOL_SIZE: %d exceeds MONGO_MAX_POOL_SIZE %d", cfg.MongoMinPoolSize, cfg.MongoMaxPoolSize))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return defaultValue, fmt.Errorf("%s: must be positive, got %s", key, value)
	}
	return d, nil
}

func getEnvUint(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", key, err)
	}
	if n == 0 {
		return defaultValue, fmt.Errorf("%s: must be positive, got %s", key, value)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
