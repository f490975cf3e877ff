package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"cross-market-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// CoinSource supplies crypto metadata and per-coin daily history.
type CoinSource interface {
	FetchCoinMarkets(ctx context.Context) ([]domain.Coin, error)
	FetchDailyPrices(ctx context.Context, id, symbol, name string, days int) ([]domain.CoinPrice, error)
}

// OilSource supplies the commodity daily series.
type OilSource interface {
	FetchDailyPrices(ctx context.Context, start, end string) ([]domain.OilPrice, error)
}

// StockSource supplies daily index bars.
type StockSource interface {
	FetchDailyBars(ctx context.Context, tickers []string, start, end string) ([]domain.StockBar, error)
}

// MarketStore is the write side of the store: idempotent schema plus
// replace loads.
type MarketStore interface {
	EnsureSchema(ctx context.Context) error
	ReplaceCoins(ctx context.Context, coins []domain.Coin) error
	ReplaceCoinPrices(ctx context.Context, prices []domain.CoinPrice) error
	ReplaceOilPrices(ctx context.Context, prices []domain.OilPrice) error
	ReplaceStockBars(ctx context.Context, bars []domain.StockBar) error
}

// PipelineSettings are the knobs of one refresh run.
type PipelineSettings struct {
	TopCoins    int
	HistoryDays int
	Tickers     []string
	OilStart    string
	OilEnd      string
	StockStart  string
	StockEnd    string
}

// PipelineService runs the full refresh: schema, metadata, top-N coin
// histories, oil, stocks — strictly in that order, each dataset fully
// fetched and replace-loaded before the next begins.
type PipelineService struct {
	tracer   trace.Tracer
	coins    CoinSource
	oil      OilSource
	stocks   StockSource
	store    MarketStore
	settings PipelineSettings
}

func NewPipelineService(
	tracer trace.Tracer,
	coins CoinSource,
	oil OilSource,
	stocks StockSource,
	store MarketStore,
	settings PipelineSettings,
) *PipelineService {
	return &PipelineService{
		tracer:   tracer,
		coins:    coins,
		oil:      oil,
		stocks:   stocks,
		store:    store,
		settings: settings,
	}
}

// Run executes the refresh. The first failing step aborts the run with its
// error; datasets loaded before the failure stay in the store. Re-running is
// safe because every load is an idempotent replace.
func (s *PipelineService) Run(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "pipeline.run")
	defer span.End()

	if err := s.store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	meta, err := s.coins.FetchCoinMarkets(ctx)
	if err != nil {
		return fmt.Errorf("fetch coin metadata: %w", err)
	}
	log.Printf("Fetched metadata for %d coins", len(meta))
	if err := s.store.ReplaceCoins(ctx, meta); err != nil {
		return fmt.Errorf("load coin metadata: %w", err)
	}

	// The price table is replaced as a unit, so histories for all selected
	// coins are gathered first and loaded in one replace.
	top := TopCoinsByRank(meta, s.settings.TopCoins)
	var history []domain.CoinPrice
	for _, c := range top {
		prices, err := s.coins.FetchDailyPrices(ctx, c.ID, c.Symbol, c.Name, s.settings.HistoryDays)
		if err != nil {
			return fmt.Errorf("fetch history for %s: %w", c.ID, err)
		}
		log.Printf("Fetched %d daily prices for %s", len(prices), c.Name)
		history = append(history, prices...)
	}
	if err := s.store.ReplaceCoinPrices(ctx, history); err != nil {
		return fmt.Errorf("load coin prices: %w", err)
	}

	oil, err := s.oil.FetchDailyPrices(ctx, s.settings.OilStart, s.settings.OilEnd)
	if err != nil {
		return fmt.Errorf("fetch oil prices: %w", err)
	}
	log.Printf("Fetched %d daily oil prices", len(oil))
	if err := s.store.ReplaceOilPrices(ctx, oil); err != nil {
		return fmt.Errorf("load oil prices: %w", err)
	}

	bars, err := s.stocks.FetchDailyBars(ctx, s.settings.Tickers, s.settings.StockStart, s.settings.StockEnd)
	if err != nil {
		return fmt.Errorf("fetch stock bars: %w", err)
	}
	log.Printf("Fetched %d daily bars for %d tickers", len(bars), len(s.settings.Tickers))
	if err := s.store.ReplaceStockBars(ctx, bars); err != nil {
		return fmt.Errorf("load stock bars: %w", err)
	}

	log.Println("Pipeline complete")
	return nil
}

// TopCoinsByRank returns the n coins with the smallest market_cap_rank.
// Ties keep source order; fewer than n coins come back unchanged.
func TopCoinsByRank(coins []domain.Coin, n int) []domain.Coin {
	ranked := make([]domain.Coin, len(coins))
	copy(ranked, coins)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MarketCapRank < ranked[j].MarketCapRank
	})
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
