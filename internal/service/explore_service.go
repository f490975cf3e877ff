package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"cross-market-pulse/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const averageCacheTTL = 5 * time.Minute

// QueryExecutor is the read side of the store as the exploration page
// consumes it.
type QueryExecutor interface {
	RunQuery(ctx context.Context, query string) (*domain.ResultTable, error)
	AverageCoinPrice(ctx context.Context, coinID, start, end string) (float64, error)
	AverageOilPrice(ctx context.Context, start, end string) (float64, error)
	AverageStockClose(ctx context.Context, ticker, start, end string) (float64, error)
	DailySnapshot(ctx context.Context, start, end string) ([]domain.SnapshotRow, error)
	ListTrackedCoins(ctx context.Context) ([]domain.TrackedCoin, error)
	CoinPriceSeries(ctx context.Context, coinID, start, end string) ([]domain.CoinPrice, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// ExploreService fronts the query layer for every consumer (HTTP, bot,
// dashboard). The scalar averages get a short-TTL Redis cache; everything
// works unchanged with a nil client.
type ExploreService struct {
	tracer trace.Tracer
	repo   QueryExecutor
	redis  RedisClient
}

func NewExploreService(tracer trace.Tracer, repo QueryExecutor, redisClient RedisClient) *ExploreService {
	return &ExploreService{tracer: tracer, repo: repo, redis: redisClient}
}

// RunQuery executes arbitrary query text. Errors come back wrapped in
// ErrQuery for the caller to display; they never abort the session.
func (s *ExploreService) RunQuery(ctx context.Context, query string) (*domain.ResultTable, error) {
	ctx, span := s.tracer.Start(ctx, "explore.run-query")
	defer span.End()

	return s.repo.RunQuery(ctx, query)
}

func (s *ExploreService) AverageCoinPrice(ctx context.Context, coinID, start, end string) (float64, error) {
	ctx, span := s.tracer.Start(ctx, "explore.average-coin-price")
	defer span.End()

	key := fmt.Sprintf("avg:coin:%s:%s:%s", coinID, start, end)
	return s.cachedAverage(ctx, key, func() (float64, error) {
		return s.repo.AverageCoinPrice(ctx, coinID, start, end)
	})
}

func (s *ExploreService) AverageOilPrice(ctx context.Context, start, end string) (float64, error) {
	ctx, span := s.tracer.Start(ctx, "explore.average-oil-price")
	defer span.End()

	key := fmt.Sprintf("avg:oil:%s:%s", start, end)
	return s.cachedAverage(ctx, key, func() (float64, error) {
		return s.repo.AverageOilPrice(ctx, start, end)
	})
}

func (s *ExploreService) AverageStockClose(ctx context.Context, ticker, start, end string) (float64, error) {
	ctx, span := s.tracer.Start(ctx, "explore.average-stock-close")
	defer span.End()

	key := fmt.Sprintf("avg:stock:%s:%s:%s", ticker, start, end)
	return s.cachedAverage(ctx, key, func() (float64, error) {
		return s.repo.AverageStockClose(ctx, ticker, start, end)
	})
}

func (s *ExploreService) DailySnapshot(ctx context.Context, start, end string) ([]domain.SnapshotRow, error) {
	ctx, span := s.tracer.Start(ctx, "explore.daily-snapshot")
	defer span.End()

	return s.repo.DailySnapshot(ctx, start, end)
}

func (s *ExploreService) ListTrackedCoins(ctx context.Context) ([]domain.TrackedCoin, error) {
	ctx, span := s.tracer.Start(ctx, "explore.list-tracked-coins")
	defer span.End()

	return s.repo.ListTrackedCoins(ctx)
}

func (s *ExploreService) CoinPriceSeries(ctx context.Context, coinID, start, end string) ([]domain.CoinPrice, error) {
	ctx, span := s.tracer.Start(ctx, "explore.coin-price-series")
	defer span.End()

	return s.repo.CoinPriceSeries(ctx, coinID, start, end)
}

// cachedAverage reads through the Redis cache when a client is configured.
// Cache failures only log: the store remains the source of truth.
func (s *ExploreService) cachedAverage(ctx context.Context, key string, fetch func() (float64, error)) (float64, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, key).Result()
		if err == nil {
			if v, perr := strconv.ParseFloat(cached, 64); perr == nil {
				return v, nil
			}
		} else if err != redis.Nil {
			log.Printf("redis cache read error for %s: %v", key, err)
		}
	}

	v, err := fetch()
	if err != nil {
		return 0, err
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, key, strconv.FormatFloat(v, 'f', -1, 64), averageCacheTTL).Err(); err != nil {
			log.Printf("redis cache write error for %s: %v", key, err)
		}
	}
	return v, nil
}
