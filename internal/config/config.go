package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabasePath     string
	RedisURL         string
	TelegramBotToken string
	HTTPPort         int

	// Pipeline knobs (explicit so tests can substitute small fixtures).
	TopCoins        int
	HistoryDays     int
	MarketsPageSize int
	Tickers         []string
	OilStart        string
	OilEnd          string
	StockStart      string
	StockEnd        string

	// Daily snapshot join: primary coin plus two index closes.
	SnapshotCoin   string
	SnapshotIndexA string
	SnapshotIndexB string
}

func Load() *Config {
	cfg := &Config{
		RedisURL:         os.Getenv("REDIS_URL"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	cfg.DatabasePath = strings.TrimSpace(os.Getenv("DB_PATH"))
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "crossmarket.db"
	}

	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, query cache disabled")
	}
	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, bot disabled")
	}

	cfg.HTTPPort = 8080
	if v := strings.TrimSpace(os.Getenv("HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	cfg.TopCoins = 3
	if v := strings.TrimSpace(os.Getenv("TOP_COINS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TopCoins = n
		}
	}

	cfg.HistoryDays = 365
	if v := strings.TrimSpace(os.Getenv("HISTORY_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryDays = n
		}
	}

	cfg.MarketsPageSize = 250
	if v := strings.TrimSpace(os.Getenv("MARKETS_PAGE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 250 {
			cfg.MarketsPageSize = n
		}
	}

	cfg.Tickers = []string{"^GSPC", "^IXIC", "^NSEI"}
	if v := strings.TrimSpace(os.Getenv("STOCK_TICKERS")); v != "" {
		var tickers []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tickers = append(tickers, t)
			}
		}
		if len(tickers) > 0 {
			cfg.Tickers = tickers
		}
	}

	cfg.OilStart = envDate("OIL_START", "2020-01-01")
	cfg.OilEnd = envDate("OIL_END", "2026-01-31")
	cfg.StockStart = envDate("STOCK_START", "2020-01-01")
	cfg.StockEnd = envDate("STOCK_END", "2025-09-30")

	cfg.SnapshotCoin = envOr("SNAPSHOT_COIN", "bitcoin")
	cfg.SnapshotIndexA = envOr("SNAPSHOT_INDEX_A", "^GSPC")
	cfg.SnapshotIndexB = envOr("SNAPSHOT_INDEX_B", "^NSEI")

	return cfg
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envDate(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if len(v) != 10 || v[4] != '-' || v[7] != '-' {
		log.Printf("Warning: %s=%q is not YYYY-MM-DD, using %s", key, v, fallback)
		return fallback
	}
	return v
}
