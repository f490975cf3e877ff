package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cross-market-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type mockCoinSource struct {
	markets      []domain.Coin
	marketsErr   error
	history      map[string][]domain.CoinPrice
	historyErr   error
	historyCalls []string
	marketsCalls int
}

func (m *mockCoinSource) FetchCoinMarkets(ctx context.Context) ([]domain.Coin, error) {
	m.marketsCalls++
	return m.markets, m.marketsErr
}

func (m *mockCoinSource) FetchDailyPrices(ctx context.Context, id, symbol, name string, days int) ([]domain.CoinPrice, error) {
	m.historyCalls = append(m.historyCalls, id)
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.history[id], nil
}

type mockOilSource struct {
	prices []domain.OilPrice
	err    error
	calls  int
}

func (m *mockOilSource) FetchDailyPrices(ctx context.Context, start, end string) ([]domain.OilPrice, error) {
	m.calls++
	return m.prices, m.err
}

type mockStockSource struct {
	bars  []domain.StockBar
	err   error
	calls int
}

func (m *mockStockSource) FetchDailyBars(ctx context.Context, tickers []string, start, end string) ([]domain.StockBar, error) {
	m.calls++
	return m.bars, m.err
}

type mockStore struct {
	coins      []domain.Coin
	coinPrices []domain.CoinPrice
	oil        []domain.OilPrice
	bars       []domain.StockBar

	coinPriceLoads int
	oilErr         error
}

func (m *mockStore) EnsureSchema(ctx context.Context) error { return nil }

func (m *mockStore) ReplaceCoins(ctx context.Context, coins []domain.Coin) error {
	m.coins = coins
	return nil
}

func (m *mockStore) ReplaceCoinPrices(ctx context.Context, prices []domain.CoinPrice) error {
	m.coinPriceLoads++
	m.coinPrices = prices
	return nil
}

func (m *mockStore) ReplaceOilPrices(ctx context.Context, prices []domain.OilPrice) error {
	if m.oilErr != nil {
		return m.oilErr
	}
	m.oil = prices
	return nil
}

func (m *mockStore) ReplaceStockBars(ctx context.Context, bars []domain.StockBar) error {
	m.bars = bars
	return nil
}

func fiveCoins() []domain.Coin {
	return []domain.Coin{
		{ID: "solana", Symbol: "sol", Name: "Solana", MarketCapRank: 5},
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", MarketCapRank: 1},
		{ID: "bnb", Symbol: "bnb", Name: "BNB", MarketCapRank: 4},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum", MarketCapRank: 2},
		{ID: "tether", Symbol: "usdt", Name: "Tether", MarketCapRank: 3},
	}
}

func defaultSettings() PipelineSettings {
	return PipelineSettings{
		TopCoins:    3,
		HistoryDays: 365,
		Tickers:     []string{"^GSPC", "^IXIC", "^NSEI"},
		OilStart:    "2020-01-01",
		OilEnd:      "2026-01-31",
		StockStart:  "2020-01-01",
		StockEnd:    "2025-09-30",
	}
}

func TestTopCoinsByRank(t *testing.T) {
	t.Parallel()

	top := TopCoinsByRank(fiveCoins(), 3)
	if len(top) != 3 {
		t.Fatalf("expected 3 coins, got %d", len(top))
	}
	for i, want := range []string{"bitcoin", "ethereum", "tether"} {
		if top[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, top[i].ID)
		}
	}
}

func TestTopCoinsByRankFewerThanN(t *testing.T) {
	t.Parallel()

	coins := fiveCoins()[:2]
	top := TopCoinsByRank(coins, 3)
	if len(top) != 2 {
		t.Fatalf("expected all 2 coins, got %d", len(top))
	}
}

func TestTopCoinsByRankTiesKeepSourceOrder(t *testing.T) {
	t.Parallel()

	coins := []domain.Coin{
		{ID: "a", MarketCapRank: 1},
		{ID: "b", MarketCapRank: 1},
		{ID: "c", MarketCapRank: 2},
	}
	top := TopCoinsByRank(coins, 2)
	if top[0].ID != "a" || top[1].ID != "b" {
		t.Fatalf("expected stable tie order, got %+v", top)
	}
}

func TestPipelineRunLoadsEverything(t *testing.T) {
	t.Parallel()

	coins := &mockCoinSource{
		markets: fiveCoins(),
		history: map[string][]domain.CoinPrice{
			"bitcoin":  makeHistory("bitcoin", 10),
			"ethereum": makeHistory("ethereum", 10),
			"tether":   makeHistory("tether", 10),
		},
	}
	oil := &mockOilSource{prices: []domain.OilPrice{{Date: "2025-06-01", PriceUSD: 70}}}
	stocks := &mockStockSource{bars: []domain.StockBar{{Date: "2025-06-01", Close: 5100, Ticker: "^GSPC"}}}
	store := &mockStore{}

	svc := NewPipelineService(testTracer, coins, oil, stocks, store, defaultSettings())
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.coins) != 5 {
		t.Fatalf("expected all 5 coins in metadata, got %d", len(store.coins))
	}
	if len(coins.historyCalls) != 3 {
		t.Fatalf("expected history fetched for top 3 only, got %v", coins.historyCalls)
	}
	if store.coinPriceLoads != 1 {
		t.Fatalf("expected one combined price load, got %d", store.coinPriceLoads)
	}
	if len(store.coinPrices) != 30 {
		t.Fatalf("expected 30 combined price rows, got %d", len(store.coinPrices))
	}
	if len(store.oil) != 1 || len(store.bars) != 1 {
		t.Fatalf("expected oil and stocks loaded, got %d/%d", len(store.oil), len(store.bars))
	}
}

func TestPipelineAbortsOnSourceFailure(t *testing.T) {
	t.Parallel()

	coins := &mockCoinSource{marketsErr: domain.ErrSourceUnavailable}
	oil := &mockOilSource{}
	stocks := &mockStockSource{}
	store := &mockStore{}

	svc := NewPipelineService(testTracer, coins, oil, stocks, store, defaultSettings())
	err := svc.Run(context.Background())
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if oil.calls != 0 || stocks.calls != 0 {
		t.Fatal("expected later steps skipped after failure")
	}
}

func TestPipelineKeepsEarlierLoadsOnLateFailure(t *testing.T) {
	t.Parallel()

	coins := &mockCoinSource{
		markets: fiveCoins(),
		history: map[string][]domain.CoinPrice{
			"bitcoin":  makeHistory("bitcoin", 2),
			"ethereum": makeHistory("ethereum", 2),
			"tether":   makeHistory("tether", 2),
		},
	}
	oil := &mockOilSource{}
	stocks := &mockStockSource{}
	store := &mockStore{oilErr: domain.ErrStoreWrite}

	svc := NewPipelineService(testTracer, coins, oil, stocks, store, defaultSettings())
	err := svc.Run(context.Background())
	if !errors.Is(err, domain.ErrStoreWrite) {
		t.Fatalf("expected ErrStoreWrite, got %v", err)
	}
	if len(store.coins) == 0 || len(store.coinPrices) == 0 {
		t.Fatal("expected coin datasets to survive the oil failure")
	}
	if stocks.calls != 0 {
		t.Fatal("expected stock step skipped after oil failure")
	}
}

func makeHistory(coinID string, days int) []domain.CoinPrice {
	out := make([]domain.CoinPrice, days)
	for i := range out {
		out[i] = domain.CoinPrice{
			CoinID:   coinID,
			Date:     fmt.Sprintf("2025-06-%02d", i+1),
			PriceUSD: float64(100 + i),
		}
	}
	return out
}
