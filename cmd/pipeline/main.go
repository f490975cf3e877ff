package main

import (
	"context"
	"log"
	"os"

	"cross-market-pulse/internal/config"
	"cross-market-pulse/internal/db"
	"cross-market-pulse/internal/provider"
	"cross-market-pulse/internal/repository"
	"cross-market-pulse/internal/service"
	"cross-market-pulse/pkg/tracing"

	"github.com/joho/godotenv"
)

var (
	loadEnvFunc     = godotenv.Load
	loadConfigFunc  = config.Load
	openDBFunc      = db.Open
	initTracerFunc  = tracing.InitTracer
	runPipelineFunc = func(ctx context.Context, p *service.PipelineService) error { return p.Run(ctx) }
	exitFunc        = os.Exit
)

// One-shot refresh: fetch every dataset from its source and replace-load it.
// Exits non-zero on the first failing step; already-loaded datasets remain.
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	database, err := openDBFunc(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	marketRepo := repository.NewMarketRepository(database, tracer)

	pipeline := service.NewPipelineService(
		tracer,
		provider.NewCoinGeckoProvider(tracer, cfg.MarketsPageSize),
		provider.NewOilProvider(tracer),
		provider.NewYahooProvider(tracer),
		marketRepo,
		service.PipelineSettings{
			TopCoins:    cfg.TopCoins,
			HistoryDays: cfg.HistoryDays,
			Tickers:     cfg.Tickers,
			OilStart:    cfg.OilStart,
			OilEnd:      cfg.OilEnd,
			StockStart:  cfg.StockStart,
			StockEnd:    cfg.StockEnd,
		},
	)

	if err := runPipelineFunc(ctx, pipeline); err != nil {
		log.Printf("pipeline failed: %v", err)
		exitFunc(1)
		return
	}
	log.Println("pipeline complete")
}
