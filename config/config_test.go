package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnvDefaults(t *testing.T) {
	cfg := LoadEnv()
	assert.Equal(t, ":5001", cfg.Server.HTTPPort)
	assert.Equal(t, 8*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "http://localhost:5001/api", cfg.Client.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Client.Timeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NEXT_PUBLIC_API_URL", "http://legacy:5001/api")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("LOW_STOCK_THRESHOLD", "not-a-number")

	cfg := LoadEnv()
	assert.Equal(t, "http://legacy:5001/api", cfg.Client.BaseURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, 10, cfg.Inventory.DefaultLowStockThreshold)

	t.Setenv("API_URL", "http://api:5001/api")
	assert.Equal(t, "http://api:5001/api", LoadEnv().Client.BaseURL)
}
