package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"stockfolio/internal/service"
)

// Config holds the process settings, read from the environment.
type Config struct {
	TransactionsPath string
	OutputPath       string
	MirrorPath       string

	LogLevel    string
	LogFormat   string
	EngineDebug bool

	PriceBaseURL        string
	PriceSymbolSuffix   string
	PriceTimeout        time.Duration
	PriceCacheTTL       time.Duration
	PriceRatePerSecond  float64
	PriceUpdateInterval time.Duration

	Port string
}

// Load reads a .env file when present, then the environment.
func Load() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	c := &Config{
		TransactionsPath:  getEnv("TRANSACTIONS_CSV", "resources/transaction.csv"),
		OutputPath:        getEnv("OUTPUT_PATH", "public/data.json"),
		MirrorPath:        getEnv("OUTPUT_MIRROR_PATH", "dist/data.json"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		PriceBaseURL:      getEnv("PRICE_BASE_URL", "https://query1.finance.yahoo.com"),
		PriceSymbolSuffix: getEnv("PRICE_SYMBOL_SUFFIX", ".JK"),
		Port:              getEnv("PORT", "8080"),
	}

	var err error
	if c.EngineDebug, err = getBool("ENGINE_DEBUG", false); err != nil {
		return nil, err
	}
	if c.PriceTimeout, err = getSeconds("PRICE_TIMEOUT_SECONDS", 8); err != nil {
		return nil, err
	}
	if c.PriceCacheTTL, err = getSeconds("PRICE_CACHE_TTL_SECONDS", 900); err != nil {
		return nil, err
	}
	if c.PriceUpdateInterval, err = getSeconds("PRICE_UPDATE_INTERVAL", 3600); err != nil {
		return nil, err
	}
	c.PriceRatePerSecond = 5
	if v := os.Getenv("PRICE_RATE_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("PRICE_RATE_PER_SECOND: invalid value %q", v)
		}
		c.PriceRatePerSecond = f
	}
	return c, nil
}

// Yahoo returns the price service settings.
func (c *Config) Yahoo() service.YahooConfig {
	return service.YahooConfig{
		BaseURL:       c.PriceBaseURL,
		SymbolSuffix:  c.PriceSymbolSuffix,
		Timeout:       c.PriceTimeout,
		CacheTTL:      c.PriceCacheTTL,
		RatePerSecond: c.PriceRatePerSecond,
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid value %q", key, v)
	}
	return b, nil
}

func getSeconds(key string, fallback int) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(fallback) * time.Second, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: invalid value %q", key, v)
	}
	return time.Duration(n) * time.Second, nil
}
