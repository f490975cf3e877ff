package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cross-market-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// SnapshotAssets names the series joined by DailySnapshot: the primary coin
// plus two index closes.
type SnapshotAssets struct {
	CoinID  string
	TickerA string
	TickerB string
}

// DefaultSnapshotAssets matches the original dashboard: Bitcoin, S&P 500,
// NIFTY.
var DefaultSnapshotAssets = SnapshotAssets{
	CoinID:  "bitcoin",
	TickerA: "^GSPC",
	TickerB: "^NSEI",
}

// QueryRepository is the read side of the store: arbitrary query execution
// plus the typed helpers behind the exploration page. Every call is
// stateless.
type QueryRepository struct {
	db       *sql.DB
	tracer   trace.Tracer
	snapshot SnapshotAssets
}

func NewQueryRepository(db *sql.DB, tracer trace.Tracer, snapshot SnapshotAssets) *QueryRepository {
	return &QueryRepository{db: db, tracer: tracer, snapshot: snapshot}
}

// RunQuery executes an arbitrary read-only query and returns the result as a
// table: column names from the result set, rows in result order. Any
// failure comes back wrapped in ErrQuery for the caller to render; the
// process never dies on a bad query.
func (r *QueryRepository) RunQuery(ctx context.Context, query string) (*domain.ResultTable, error) {
	_, span := r.tracer.Start(ctx, "query-repo.run-query")
	defer span.End()

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuery, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuery, err)
	}

	table := &domain.ResultTable{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrQuery, err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuery, err)
	}
	return table, nil
}

// AverageCoinPrice returns the mean daily price of one coin over the
// inclusive date range. A range with no rows yields 0.0, not an error.
func (r *QueryRepository) AverageCoinPrice(ctx context.Context, coinID, start, end string) (float64, error) {
	_, span := r.tracer.Start(ctx, "query-repo.average-coin-price")
	defer span.End()

	return r.scanAverage(ctx,
		`SELECT AVG(price_usd) FROM crypto_prices
		 WHERE coin_id = ? AND date BETWEEN ? AND ?`,
		coinID, start, end)
}

// AverageOilPrice returns the mean WTI price over the range, 0.0 when empty.
func (r *QueryRepository) AverageOilPrice(ctx context.Context, start, end string) (float64, error) {
	_, span := r.tracer.Start(ctx, "query-repo.average-oil-price")
	defer span.End()

	return r.scanAverage(ctx,
		`SELECT AVG(price_usd) FROM oil_prices WHERE date BETWEEN ? AND ?`,
		start, end)
}

// AverageStockClose returns the mean close of one ticker over the range,
// 0.0 when empty.
func (r *QueryRepository) AverageStockClose(ctx context.Context, ticker, start, end string) (float64, error) {
	_, span := r.tracer.Start(ctx, "query-repo.average-stock-close")
	defer span.End()

	return r.scanAverage(ctx,
		`SELECT AVG(close) FROM stock_prices
		 WHERE ticker = ? AND date BETWEEN ? AND ?`,
		ticker, start, end)
}

func (r *QueryRepository) scanAverage(ctx context.Context, query string, args ...any) (float64, error) {
	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&avg); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrQuery, err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

// DailySnapshot inner-joins the primary coin, oil, and both snapshot index
// closes on calendar date. Only dates present in all four series appear,
// ordered by date ascending.
func (r *QueryRepository) DailySnapshot(ctx context.Context, start, end string) ([]domain.SnapshotRow, error) {
	_, span := r.tracer.Start(ctx, "query-repo.daily-snapshot")
	defer span.End()

	rows, err := r.db.QueryContext(ctx, `
		SELECT
		    cp.date       AS date,
		    cp.price_usd  AS coin_price,
		    op.price_usd  AS oil_price,
		    sp.close      AS index_a_close,
		    ni.close      AS index_b_close
		FROM crypto_prices   cp
		JOIN oil_prices      op  ON cp.date = op.date
		JOIN stock_prices    sp  ON cp.date = sp.date  AND sp.ticker = ?
		JOIN stock_prices    ni  ON cp.date = ni.date  AND ni.ticker = ?
		WHERE cp.coin_id = ?
		  AND cp.date BETWEEN ? AND ?
		ORDER BY cp.date`,
		r.snapshot.TickerA, r.snapshot.TickerB, r.snapshot.CoinID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuery, err)
	}
	defer rows.Close()

	var snapshot []domain.SnapshotRow
	for rows.Next() {
		var s domain.SnapshotRow
		if err := rows.Scan(&s.Date, &s.CoinPrice, &s.OilPrice, &s.IndexAClose, &s.IndexBClose); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrQuery, err)
		}
		snapshot = append(snapshot, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuery, err)
	}
	return snapshot, nil
}

// ListTrackedCoins returns the distinct coins present in crypto_prices,
// ordered by id.
func (r *QueryRepository) ListTrackedCoins(ctx context.Context) ([]domain.TrackedCoin, error) {
	_, span := r.tracer.Start(ctx, "query-repo.list-tracked-coins")
	defer span.End()

	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT coin_id, symbol, name FROM crypto_prices ORDER BY coin_id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuery, err)
	}
	defer rows.Close()

	var coins []domain.TrackedCoin
	for rows.Next() {
		var c domain.TrackedCoin
		if err := rows.Scan(&c.ID, &c.Symbol, &c.Name); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrQuery, err)
		}
		coins = append(coins, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuery, err)
	}
	return coins, nil
}

// CoinPriceSeries returns (date, price) rows for one coin in range, ordered
// by date ascending.
func (r *QueryRepository) CoinPriceSeries(ctx context.Context, coinID, start, end string) ([]domain.CoinPrice, error) {
	_, span := r.tracer.Start(ctx, "query-repo.coin-price-series")
	defer span.End()

	rows, err := r.db.QueryContext(ctx,
		`SELECT coin_id, symbol, name, date, price_usd
		 FROM crypto_prices
		 WHERE coin_id = ? AND date BETWEEN ? AND ?
		 ORDER BY date`,
		coinID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuery, err)
	}
	defer rows.Close()

	var series []domain.CoinPrice
	for rows.Next() {
		var p domain.CoinPrice
		if err := rows.Scan(&p.CoinID, &p.Symbol, &p.Name, &p.Date, &p.PriceUSD); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrQuery, err)
		}
		series = append(series, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuery, err)
	}
	return series, nil
}
