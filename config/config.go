package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/qs-lzh/cinema-booking/internal/util"
)

const (
	StoreDriverJSON     = "json"
	StoreDriverPostgres = "postgres"
)

type Config struct {
	Addr        string
	StoreDriver string
	DataFile    string
	DatabaseDSN string
	CacheURL    string
	MQURL       string
	SeedCatalog bool
	LogEnv      string
}

func LoadConfig() (*Config, error) {
	if err := util.LoadEnv(); err != nil {
		return nil, err
	}

	seed, err := getBool("SEED_CATALOG", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Addr:        getString("ADDR", "127.0.0.1:3000"),
		StoreDriver: getString("STORE_DRIVER", StoreDriverJSON),
		DataFile:    getString("DATA_FILE", "db.json"),
		DatabaseDSN: os.Getenv("DATABASE_DSN"),
		CacheURL:    os.Getenv("CACHE_URL"),
		MQURL:       os.Getenv("RABBIT_MQ_URL"),
		SeedCatalog: seed,
		LogEnv:      getString("LOG_ENV", "production"),
	}

	switch cfg.StoreDriver {
	case StoreDriverJSON:
		if cfg.DataFile == "" {
			return nil, fmt.Errorf("DATA_FILE must not be empty")
		}
	case StoreDriverPostgres:
		if cfg.DatabaseDSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required for store driver %q", cfg.StoreDriver)
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
