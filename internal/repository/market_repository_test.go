package repository

import (
	"context"
	"errors"
	"testing"

	"cross-market-pulse/internal/db"
	"cross-market-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

func newTestRepo(t *testing.T) *MarketRepository {
	t.Helper()

	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	repo := NewMarketRepository(database, trace.NewNoopTracerProvider().Tracer("test"))
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return repo
}

func countRows(t *testing.T, repo *MarketRepository, table string) int {
	t.Helper()
	var n int
	if err := repo.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	for i := 0; i < 3; i++ {
		if err := repo.EnsureSchema(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}

func TestReplaceCoinsReplacesNotMerges(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	first := []domain.Coin{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 50000, MarketCapRank: 1},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum", CurrentPrice: 3000, MarketCapRank: 2},
	}
	if err := repo.ReplaceCoins(ctx, first); err != nil {
		t.Fatalf("first load: %v", err)
	}

	second := []domain.Coin{
		{ID: "solana", Symbol: "sol", Name: "Solana", CurrentPrice: 150, MarketCapRank: 5},
	}
	if err := repo.ReplaceCoins(ctx, second); err != nil {
		t.Fatalf("second load: %v", err)
	}

	if n := countRows(t, repo, "cryptocurrencies"); n != 1 {
		t.Fatalf("expected 1 row after replace, got %d", n)
	}

	var id string
	if err := repo.db.QueryRow("SELECT id FROM cryptocurrencies").Scan(&id); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if id != "solana" {
		t.Fatalf("expected only solana to survive, got %s", id)
	}
}

func TestReplaceCoinsIdempotent(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	coins := []domain.Coin{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", MarketCapRank: 1},
	}
	for i := 0; i < 2; i++ {
		if err := repo.ReplaceCoins(ctx, coins); err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
	}
	if n := countRows(t, repo, "cryptocurrencies"); n != 1 {
		t.Fatalf("expected 1 row after repeated replace, got %d", n)
	}
}

func TestReplaceCoinsNullTotalSupply(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	supply := 21000000.0
	coins := []domain.Coin{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", TotalSupply: &supply},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum", TotalSupply: nil},
	}
	if err := repo.ReplaceCoins(ctx, coins); err != nil {
		t.Fatalf("load: %v", err)
	}

	var n int
	err := repo.db.QueryRow("SELECT COUNT(*) FROM cryptocurrencies WHERE total_supply IS NULL").Scan(&n)
	if err != nil {
		t.Fatalf("count nulls: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 NULL total_supply, got %d", n)
	}
}

func TestReplaceCoinPricesEmptySliceClearsTable(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	prices := []domain.CoinPrice{
		{CoinID: "bitcoin", Symbol: "BTC", Name: "Bitcoin", Date: "2025-06-01", PriceUSD: 100},
	}
	if err := repo.ReplaceCoinPrices(ctx, prices); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := repo.ReplaceCoinPrices(ctx, nil); err != nil {
		t.Fatalf("empty load: %v", err)
	}
	if n := countRows(t, repo, "crypto_prices"); n != 0 {
		t.Fatalf("expected empty table after empty replace, got %d rows", n)
	}
}

func TestReplaceOilAndStockPrices(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	oil := []domain.OilPrice{
		{Date: "2025-06-01", PriceUSD: 71.2},
		{Date: "2025-06-02", PriceUSD: 72.5},
	}
	if err := repo.ReplaceOilPrices(ctx, oil); err != nil {
		t.Fatalf("oil load: %v", err)
	}
	if n := countRows(t, repo, "oil_prices"); n != 2 {
		t.Fatalf("expected 2 oil rows, got %d", n)
	}

	bars := []domain.StockBar{
		{Date: "2025-06-01", Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 1000, Ticker: "^GSPC"},
		{Date: "2025-06-01", Open: 1, High: 2, Low: 0.5, Close: 1.7, Volume: 2000, Ticker: "^IXIC"},
	}
	if err := repo.ReplaceStockBars(ctx, bars); err != nil {
		t.Fatalf("stock load: %v", err)
	}
	if n := countRows(t, repo, "stock_prices"); n != 2 {
		t.Fatalf("expected 2 stock rows, got %d", n)
	}
}

func TestReplaceFailureRollsBack(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	good := []domain.OilPrice{{Date: "2025-06-01", PriceUSD: 71.2}}
	if err := repo.ReplaceOilPrices(ctx, good); err != nil {
		t.Fatalf("initial load: %v", err)
	}

	// Duplicate primary key makes the second insert fail mid-transaction.
	bad := []domain.OilPrice{
		{Date: "2025-06-02", PriceUSD: 70.0},
		{Date: "2025-06-02", PriceUSD: 70.1},
	}
	err := repo.ReplaceOilPrices(ctx, bad)
	if !errors.Is(err, domain.ErrStoreWrite) {
		t.Fatalf("expected ErrStoreWrite, got %v", err)
	}

	var date string
	if err := repo.db.QueryRow("SELECT date FROM oil_prices").Scan(&date); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if date != "2025-06-01" {
		t.Fatalf("expected previous contents after rollback, got %s", date)
	}
}
