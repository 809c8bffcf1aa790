package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Market MarketConfig
	Stream StreamConfig
	App    AppConfig
}

type MarketConfig struct {
	QuoteAsset       string
	PageSize         int
	ExchangeInfoTTL  time.Duration
	SkipExchangeInfo bool
}

type StreamConfig struct {
	URL               string
	ReconnectAttempts int
	ReconnectDelay    time.Duration
}

type AppConfig struct {
	LogLevel        string
	LogFile         string
	RefreshInterval time.Duration // 0 disables periodic snapshot refresh
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Market.QuoteAsset = getEnv("QUOTE_ASSET", "USDT")
	cfg.Market.PageSize = getEnvInt("PAGE_SIZE", 10)
	cfg.Market.ExchangeInfoTTL = time.Duration(getEnvInt("EXCHANGE_INFO_TTL_MIN", 60)) * time.Minute
	cfg.Market.SkipExchangeInfo = getEnvBool("SKIP_EXCHANGE_INFO", false)

	cfg.Stream.URL = getEnv("WS_URL", "")
	cfg.Stream.ReconnectAttempts = getEnvInt("RECONNECT_ATTEMPTS", 5)
	cfg.Stream.ReconnectDelay = time.Duration(getEnvInt("RECONNECT_DELAY_MS", 3000)) * time.Millisecond

	cfg.App.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.App.LogFile = getEnv("LOG_FILE", "")
	cfg.App.RefreshInterval = time.Duration(getEnvInt("REFRESH_INTERVAL_SEC", 0)) * time.Second

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
