package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cross-market-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// The foreign key on crypto_prices is declared but not enforced (the store
// handle leaves foreign_keys off): both tables are replace-loaded
// independently and may transiently disagree between pipeline steps.
const createMarketTables = `
CREATE TABLE IF NOT EXISTS cryptocurrencies (
    id                  VARCHAR(50)     PRIMARY KEY,
    symbol              VARCHAR(10),
    name                VARCHAR(100),
    current_price       DECIMAL(18, 6),
    market_cap          BIGINT,
    market_cap_rank     INT,
    total_volume        BIGINT,
    circulating_supply  DECIMAL(20, 6),
    total_supply        DECIMAL(20, 6),
    ath                 DECIMAL(18, 6),
    atl                 DECIMAL(18, 6),
    last_updated        DATE
);

CREATE TABLE IF NOT EXISTS crypto_prices (
    coin_id     VARCHAR(50),
    symbol      VARCHAR(10),
    name        VARCHAR(100),
    date        DATE,
    price_usd   DECIMAL(18, 6),
    PRIMARY KEY (coin_id, date),
    FOREIGN KEY (coin_id) REFERENCES cryptocurrencies(id)
);

CREATE TABLE IF NOT EXISTS oil_prices (
    date        DATE            PRIMARY KEY,
    price_usd   DECIMAL(18, 6)
);

CREATE TABLE IF NOT EXISTS stock_prices (
    date        DATE,
    open        DECIMAL(18, 6),
    high        DECIMAL(18, 6),
    low         DECIMAL(18, 6),
    close       DECIMAL(18, 6),
    volume      BIGINT,
    ticker      VARCHAR(20),
    PRIMARY KEY (date, ticker)
);
`

// MarketRepository owns the four market relations: idempotent schema
// creation and full-table replace loads.
type MarketRepository struct {
	db     *sql.DB
	tracer trace.Tracer
}

func NewMarketRepository(db *sql.DB, tracer trace.Tracer) *MarketRepository {
	return &MarketRepository{db: db, tracer: tracer}
}

// EnsureSchema creates the four relations if absent. Safe to call on every
// pipeline run and every server start.
func (r *MarketRepository) EnsureSchema(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "market-repo.ensure-schema")
	defer span.End()

	if _, err := r.db.ExecContext(ctx, createMarketTables); err != nil {
		return fmt.Errorf("%w: ensure schema: %v", domain.ErrStoreWrite, err)
	}
	return nil
}

// ReplaceCoins replaces the entire cryptocurrencies table with the given rows.
func (r *MarketRepository) ReplaceCoins(ctx context.Context, coins []domain.Coin) error {
	_, span := r.tracer.Start(ctx, "market-repo.replace-coins")
	defer span.End()

	return r.replaceRows(ctx, "cryptocurrencies",
		`INSERT INTO cryptocurrencies
		 (id, symbol, name, current_price, market_cap, market_cap_rank,
		  total_volume, circulating_supply, total_supply, ath, atl, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		len(coins), func(i int) []any {
			c := coins[i]
			var totalSupply any
			if c.TotalSupply != nil {
				totalSupply = *c.TotalSupply
			}
			return []any{c.ID, c.Symbol, c.Name, c.CurrentPrice, c.MarketCap, c.MarketCapRank,
				c.TotalVolume, c.CirculatingSupply, totalSupply, c.ATH, c.ATL, c.LastUpdated}
		})
}

// ReplaceCoinPrices replaces the entire crypto_prices table.
func (r *MarketRepository) ReplaceCoinPrices(ctx context.Context, prices []domain.CoinPrice) error {
	_, span := r.tracer.Start(ctx, "market-repo.replace-coin-prices")
	defer span.End()

	return r.replaceRows(ctx, "crypto_prices",
		`INSERT INTO crypto_prices (coin_id, symbol, name, date, price_usd)
		 VALUES (?, ?, ?, ?, ?)`,
		len(prices), func(i int) []any {
			p := prices[i]
			return []any{p.CoinID, p.Symbol, p.Name, p.Date, p.PriceUSD}
		})
}

// ReplaceOilPrices replaces the entire oil_prices table.
func (r *MarketRepository) ReplaceOilPrices(ctx context.Context, prices []domain.OilPrice) error {
	_, span := r.tracer.Start(ctx, "market-repo.replace-oil-prices")
	defer span.End()

	return r.replaceRows(ctx, "oil_prices",
		`INSERT INTO oil_prices (date, price_usd) VALUES (?, ?)`,
		len(prices), func(i int) []any {
			p := prices[i]
			return []any{p.Date, p.PriceUSD}
		})
}

// ReplaceStockBars replaces the entire stock_prices table.
func (r *MarketRepository) ReplaceStockBars(ctx context.Context, bars []domain.StockBar) error {
	_, span := r.tracer.Start(ctx, "market-repo.replace-stock-bars")
	defer span.End()

	return r.replaceRows(ctx, "stock_prices",
		`INSERT INTO stock_prices (date, open, high, low, close, volume, ticker)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		len(bars), func(i int) []any {
			b := bars[i]
			return []any{b.Date, b.Open, b.High, b.Low, b.Close, b.Volume, b.Ticker}
		})
}

// replaceRows is the bulk replace primitive: one transaction deletes every
// existing row and inserts the new set. After a successful call the table
// holds exactly the given rows; on failure the transaction rolls back and
// the previous contents stay visible.
func (r *MarketRepository) replaceRows(ctx context.Context, table, insertSQL string, n int, bind func(i int) []any) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin replace %s: %v", domain.ErrStoreWrite, table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("%w: clear %s: %v", domain.ErrStoreWrite, table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("%w: prepare insert %s: %v", domain.ErrStoreWrite, table, err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, bind(i)...); err != nil {
			return fmt.Errorf("%w: insert into %s: %v", domain.ErrStoreWrite, table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit replace %s: %v", domain.ErrStoreWrite, table, err)
	}
	return nil
}
