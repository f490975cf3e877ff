package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cross-market-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

const dateLayout = "2006-01-02"

// CoinGeckoProvider fetches coin metadata and daily price history from the
// CoinGecko free API.
type CoinGeckoProvider struct {
	client   *http.Client
	baseURL  string
	tracer   trace.Tracer
	pace     *pacer
	pageSize int
}

// NewCoinGeckoProvider creates a provider with built-in pacing (one request
// every 7.5s keeps the free tier happy).
func NewCoinGeckoProvider(tracer trace.Tracer, pageSize int) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		client:   &http.Client{Timeout: 30 * time.Second},
		baseURL:  coingeckoBaseURL,
		tracer:   tracer,
		pace:     newPacer(7500 * time.Millisecond),
		pageSize: pageSize,
	}
}

type coinMarket struct {
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

// FetchCoinMarkets fetches the first page of coins ranked by market cap
// descending and normalizes them into metadata rows. Rows without an id are
// dropped; the last_updated timestamp is reduced to a calendar date.
func (p *CoinGeckoProvider) FetchCoinMarkets(ctx context.Context) ([]domain.Coin, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-coin-markets")
	defer span.End()

	url := fmt.Sprintf("%s/coins/markets?vs_currency=usd&per_page=%d&order=market_cap_desc&page=1&sparkline=false",
		p.baseURL, p.pageSize)

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch coin markets: %w", err)
	}

	var raw []coinMarket
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse coin markets: %v", domain.ErrSourceUnavailable, err)
	}

	coins := make([]domain.Coin, 0, len(raw))
	for _, m := range raw {
		if m.ID == "" {
			continue
		}
		coins = append(coins, domain.Coin{
			ID:                m.ID,
			Symbol:            m.Symbol,
			Name:              m.Name,
			CurrentPrice:      m.CurrentPrice,
			MarketCap:         m.MarketCap,
			MarketCapRank:     m.MarketCapRank,
			TotalVolume:       m.TotalVolume,
			CirculatingSupply: m.CirculatingSupply,
			TotalSupply:       m.TotalSupply,
			ATH:               m.ATH,
			ATL:               m.ATL,
			LastUpdated:       toCalendarDate(m.LastUpdated),
		})
	}
	return coins, nil
}

// FetchDailyPrices fetches up to days of daily (timestamp, price) points for
// one coin and normalizes them: millisecond timestamps become calendar
// dates, one row per date (first point wins), symbol uppercased.
func (p *CoinGeckoProvider) FetchDailyPrices(ctx context.Context, id, symbol, name string, days int) ([]domain.CoinPrice, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-daily-prices")
	defer span.End()

	url := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d", p.baseURL, id, days)

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch daily prices for %s: %w", id, err)
	}

	var raw struct {
		Prices [][]float64 `json:"prices"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse daily prices for %s: %v", domain.ErrSourceUnavailable, id, err)
	}

	upper := strings.ToUpper(symbol)
	seen := make(map[string]struct{}, len(raw.Prices))
	prices := make([]domain.CoinPrice, 0, len(raw.Prices))
	for _, pt := range raw.Prices {
		if len(pt) < 2 {
			continue
		}
		date := time.UnixMilli(int64(pt[0])).UTC().Format(dateLayout)
		if _, ok := seen[date]; ok {
			continue
		}
		seen[date] = struct{}{}
		prices = append(prices, domain.CoinPrice{
			CoinID:   id,
			Symbol:   upper,
			Name:     name,
			Date:     date,
			PriceUSD: pt[1],
		})
	}
	return prices, nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.pace.wait(ctx); err != nil {
		return nil, fmt.Errorf("pacer wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: coingecko status %d: %s", domain.ErrSourceUnavailable, resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}

// toCalendarDate reduces an RFC3339 timestamp to YYYY-MM-DD, falling back to
// the raw date prefix when the timestamp does not parse.
func toCalendarDate(ts string) string {
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.UTC().Format(dateLayout)
	}
	if len(ts) >= len(dateLayout) {
		return ts[:len(dateLayout)]
	}
	return ts
}
