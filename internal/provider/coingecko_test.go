package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"cross-market-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(t *testing.T, v any) *http.Response {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(data)),
		Header:     make(http.Header),
	}
}

func newTestCoinGecko(transport roundTripFunc) *CoinGeckoProvider {
	p := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), 250)
	p.baseURL = "http://example"
	p.pace = newPacer(time.Millisecond)
	p.client = &http.Client{Transport: transport}
	return p
}

func TestFetchCoinMarkets(t *testing.T) {
	t.Parallel()

	supply := 21000000.0
	p := newTestCoinGecko(func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.Path, "/coins/markets") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		q := req.URL.Query()
		if q.Get("vs_currency") != "usd" || q.Get("order") != "market_cap_desc" {
			t.Fatalf("unexpected query: %s", req.URL.RawQuery)
		}
		if q.Get("per_page") != "250" || q.Get("page") != "1" {
			t.Fatalf("unexpected paging: %s", req.URL.RawQuery)
		}
		resp := []map[string]any{
			{
				"id": "bitcoin", "symbol": "btc", "name": "Bitcoin",
				"current_price": 50000.0, "market_cap": 1e12, "market_cap_rank": 1,
				"total_volume": 3e10, "circulating_supply": 19700000.0,
				"total_supply": supply, "ath": 69000.0, "atl": 67.81,
				"last_updated": "2025-06-01T12:34:56.789Z",
			},
			{
				"id": "ethereum", "symbol": "eth", "name": "Ethereum",
				"current_price": 3000.0, "market_cap": 4e11, "market_cap_rank": 2,
				"total_supply": nil, "last_updated": "2025-06-01T12:34:56Z",
			},
			{"symbol": "ghost", "name": "No ID"},
		}
		return jsonResponse(t, resp), nil
	})

	coins, err := p.FetchCoinMarkets(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(coins) != 2 {
		t.Fatalf("expected 2 coins (row without id dropped), got %d", len(coins))
	}

	btc := coins[0]
	if btc.ID != "bitcoin" || btc.MarketCapRank != 1 {
		t.Fatalf("unexpected first coin: %+v", btc)
	}
	if btc.LastUpdated != "2025-06-01" {
		t.Fatalf("expected calendar date, got %q", btc.LastUpdated)
	}
	if btc.TotalSupply == nil || *btc.TotalSupply != supply {
		t.Fatalf("unexpected total supply: %v", btc.TotalSupply)
	}
	if coins[1].TotalSupply != nil {
		t.Fatalf("expected nil total supply for ethereum, got %v", *coins[1].TotalSupply)
	}
}

func TestFetchDailyPricesDedupesDates(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	p := newTestCoinGecko(func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.Path, "/coins/bitcoin/market_chart") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		resp := map[string]any{
			"prices": [][]float64{
				{float64(day.UnixMilli()), 100},
				{float64(day.Add(6 * time.Hour).UnixMilli()), 110},
				{float64(day.AddDate(0, 0, 1).UnixMilli()), 120},
			},
		}
		return jsonResponse(t, resp), nil
	})

	prices, err := p.FetchDailyPrices(context.Background(), "bitcoin", "btc", "Bitcoin", 365)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("expected 2 rows after same-day dedupe, got %d", len(prices))
	}
	if prices[0].Date != "2025-06-01" || prices[0].PriceUSD != 100 {
		t.Fatalf("expected first point of the day to win, got %+v", prices[0])
	}
	if prices[0].Symbol != "BTC" {
		t.Fatalf("expected uppercased symbol, got %q", prices[0].Symbol)
	}
	if prices[1].Date != "2025-06-02" || prices[1].PriceUSD != 120 {
		t.Fatalf("unexpected second row: %+v", prices[1])
	}
}

func TestFetchCoinMarketsNon200(t *testing.T) {
	t.Parallel()

	p := newTestCoinGecko(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusTooManyRequests,
			Body:       io.NopCloser(strings.NewReader("rate limited")),
			Header:     make(http.Header),
		}, nil
	})

	_, err := p.FetchCoinMarkets(context.Background())
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestFetchCoinMarketsMalformedBody(t *testing.T) {
	t.Parallel()

	p := newTestCoinGecko(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"not": "an array"}`)),
			Header:     make(http.Header),
		}, nil
	})

	_, err := p.FetchCoinMarkets(context.Background())
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "cannot unmarshal") {
		t.Fatalf("expected the decode cause in the error, got %q", err)
	}
}

func TestToCalendarDate(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"2025-06-01T12:34:56.789Z": "2025-06-01",
		"2025-06-01T00:00:00Z":     "2025-06-01",
		"2025-06-01 something":     "2025-06-01",
		"junk":                     "junk",
	}
	for in, want := range tests {
		if got := toCalendarDate(in); got != want {
			t.Fatalf("toCalendarDate(%q) = %q, want %q", in, got, want)
		}
	}
}
