package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "https://fakestoreapi.com/products", cfg.CatalogURL)
	assert.Equal(t, BackendMemory, cfg.CartBackend)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	assert.Equal(t, 3*time.Second, cfg.FlashTTL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, uint64(50), cfg.MongoMaxPoolSize)
	assert.Equal(t, uint64(5), cfg.MongoMinPoolSize)
	assert.Equal(t, 10*time.Second, cfg.MongoConnectTimeout)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("CART_BACKEND", "Redis")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("PERSIST_TIMEOUT", "750ms")
	t.Setenv("MONGO_MAX_POOL_SIZE", "12")
	t.Setenv("MONGO_MIN_POOL_SIZE", "3")
	t.Setenv("MONGO_SERVER_SELECTION_TIMEOUT", "2s")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, BackendRedis, cfg.CartBackend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 750*time.Millisecond, cfg.PersistTimeout)
	assert.Equal(t, uint64(12), cfg.MongoMaxPoolSize)
	assert.Equal(t, uint64(3), cfg.MongoMinPoolSize)
	assert.Equal(t, 2*time.Second, cfg.MongoServerSelectionTimeout)
}

func TestLoad_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MONGO_DB_NAME=fromfile\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("LOG_LEVEL", "warn")
	// registers a restore for the variable godotenv is about to set
	t.Setenv("MONGO_DB_NAME", "placeholder")
	require.NoError(t, os.Unsetenv("MONGO_DB_NAME"))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "fromfile", cfg.MongoDBName)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CART_BACKEND", "cassandra")
	t.Setenv("FLASH_TTL", "soon")
	t.Setenv("REQUEST_TIMEOUT", "-1s")

	_, err := Load(missingEnvFile(t))
	require.Error(t, err)
	assert.ErrorContains(t, err, "CART_BACKEND")
	assert.ErrorContains(t, err, "FLASH_TTL")
	assert.ErrorContains(t, err, "REQUEST_TIMEOUT")
}

func TestLoad_InvalidMongoPool(t *testing.T) {
	t.Run("not a number", func(t *testing.T) {
		t.Setenv("MONGO_MAX_POOL_SIZE", "lots")
		_, err := Load(missingEnvFile(t))
		assert.ErrorContains(t, err, "MONGO_MAX_POOL_SIZE")
	})

	t.Run("min above max", func(t *testing.T) {
		t.Setenv("MONGO_MAX_POOL_SIZE", "4")
		t.Setenv("MONGO_MIN_POOL_SIZE", "8")
		_, err := Load(missingEnvFile(t))
		assert.ErrorContains(t, err, "MONGO_MIN_POOL_SIZE: 8 exceeds MONGO_MAX_POOL_SIZE 4")
	})
}
