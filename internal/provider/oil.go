package provider

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cross-market-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const oilSourceURL = "https://raw.githubusercontent.com/datasets/oil-prices/main/data/wti-daily.csv"

// OilProvider reads the public WTI daily CSV.
type OilProvider struct {
	client *http.Client
	url    string
	tracer trace.Tracer
}

func NewOilProvider(tracer trace.Tracer) *OilProvider {
	return &OilProvider{
		client: &http.Client{Timeout: 30 * time.Second},
		url:    oilSourceURL,
		tracer: tracer,
	}
}

// FetchDailyPrices reads the CSV and returns (date, price) rows inside the
// inclusive [start, end] window. Header casing is normalized; rows with a
// missing or unparsable price are dropped.
func (p *OilProvider) FetchDailyPrices(ctx context.Context, start, end string) ([]domain.OilPrice, error) {
	_, span := p.tracer.Start(ctx, "oil.fetch-daily-prices")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: oil source status %d", domain.ErrSourceUnavailable, resp.StatusCode)
	}

	r := csv.NewReader(resp.Body)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read oil csv header: %v", domain.ErrSourceUnavailable, err)
	}

	dateCol, priceCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "date":
			dateCol = i
		case "price":
			priceCol = i
		}
	}
	if dateCol < 0 || priceCol < 0 {
		return nil, fmt.Errorf("%w: oil csv missing date/price columns: %v", domain.ErrSourceUnavailable, header)
	}

	var prices []domain.OilPrice
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: read oil csv: %v", domain.ErrSourceUnavailable, err)
		}
		if len(rec) <= dateCol || len(rec) <= priceCol {
			continue
		}

		date := strings.TrimSpace(rec[dateCol])
		if date < start || date > end {
			continue
		}

		raw := strings.TrimSpace(rec[priceCol])
		if raw == "" {
			continue
		}
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}

		prices = append(prices, domain.OilPrice{Date: date, PriceUSD: price})
	}
	return prices, nil
}
