package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"cross-market-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider fetches daily OHLCV bars from the Yahoo Finance chart API.
type YahooProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewYahooProvider(tracer trace.Tracer) *YahooProvider {
	return &YahooProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: yahooBaseURL,
		tracer:  tracer,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				// Pointer elements: Yahoo emits JSON null for dates with
				// no trade (holidays, halts).
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyBars fetches daily bars for each ticker over [start, end) and
// concatenates them into one long-format slice tagged with the ticker. The
// adjusted close is preferred over the raw close when present.
func (p *YahooProvider) FetchDailyBars(ctx context.Context, tickers []string, start, end string) ([]domain.StockBar, error) {
	_, span := p.tracer.Start(ctx, "yahoo.fetch-daily-bars")
	defer span.End()

	var bars []domain.StockBar
	for _, ticker := range tickers {
		tb, err := p.fetchTicker(ctx, ticker, start, end)
		if err != nil {
			return nil, fmt.Errorf("fetch bars for %s: %w", ticker, err)
		}
		bars = append(bars, tb...)
	}
	return bars, nil
}

func (p *YahooProvider) fetchTicker(ctx context.Context, ticker, start, end string) ([]domain.StockBar, error) {
	from, err := time.Parse(dateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("bad start date %q: %w", start, err)
	}
	to, err := time.Parse(dateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("bad end date %q: %w", end, err)
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		p.baseURL, url.PathEscape(ticker), from.Unix(), to.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "cross-market-pulse/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: yahoo status %d: %s", domain.ErrSourceUnavailable, resp.StatusCode, string(body))
	}

	var raw chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: parse chart: %v", domain.ErrSourceUnavailable, err)
	}
	if raw.Chart.Error != nil {
		return nil, fmt.Errorf("%w: yahoo error %s: %s", domain.ErrSourceUnavailable, raw.Chart.Error.Code, raw.Chart.Error.Description)
	}
	if len(raw.Chart.Result) == 0 || len(raw.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: empty chart result for %s", domain.ErrSourceUnavailable, ticker)
	}

	result := raw.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]domain.StockBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// A null close means no trade that day; the bar is dropped, not
		// stored as zero.
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		date := time.Unix(ts, 0).UTC().Format(dateLayout)
		if date < start || date >= end {
			continue
		}

		bar := domain.StockBar{
			Date:   date,
			Ticker: ticker,
			Close:  *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			bar.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			bar.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			bar.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}
		if i < len(adj) && adj[i] != nil && *adj[i] != 0 {
			bar.Close = *adj[i]
		}
		bars = append(bars, bar)
	}
	return bars, nil
}
