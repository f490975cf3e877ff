package domain

// Coin is one row of the cryptocurrencies metadata snapshot, ranked by
// market capitalization. Dates are calendar-day strings (YYYY-MM-DD).
type Coin struct {
	ID                string   `json:"id"`
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	CurrentPrice      float64  `json:"current_price"`
	MarketCap         float64  `json:"market_cap"`
	MarketCapRank     int      `json:"market_cap_rank"`
	TotalVolume       float64  `json:"total_volume"`
	CirculatingSupply float64  `json:"circulating_supply"`
	TotalSupply       *float64 `json:"total_supply"`
	ATH               float64  `json:"ath"`
	ATL               float64  `json:"atl"`
	LastUpdated       string   `json:"last_updated"`
}

// CoinPrice is one daily close for a tracked coin. Symbol and name are
// denormalized for display.
type CoinPrice struct {
	CoinID   string  `json:"coin_id"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Date     string  `json:"date"`
	PriceUSD float64 `json:"price_usd"`
}

// OilPrice is one daily WTI crude price.
type OilPrice struct {
	Date     string  `json:"date"`
	PriceUSD float64 `json:"price_usd"`
}

// StockBar is one daily OHLCV bar for an equity index ticker.
type StockBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
	Ticker string  `json:"ticker"`
}

// TrackedCoin identifies a coin that has rows in crypto_prices.
type TrackedCoin struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// SnapshotRow is one date where the primary coin, oil, and both snapshot
// indices all have a price.
type SnapshotRow struct {
	Date        string  `json:"date"`
	CoinPrice   float64 `json:"coin_price"`
	OilPrice    float64 `json:"oil_price"`
	IndexAClose float64 `json:"index_a_close"`
	IndexBClose float64 `json:"index_b_close"`
}

// ResultTable is the tabular result of an arbitrary read-only query.
// Column names come from the result set; rows are in result order.
type ResultTable struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}
