package main

import (
	"context"
	"log"

	"cross-market-pulse/internal/cache"
	"cross-market-pulse/internal/config"
	"cross-market-pulse/internal/db"
	"cross-market-pulse/internal/repository"
	"cross-market-pulse/internal/service"
	"cross-market-pulse/internal/tui"
	"cross-market-pulse/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	openDBFunc     = db.Open
	initRedisFunc  = cache.InitRedis
	initTracerFunc = tracing.InitTracer
	runProgramFunc = func(m tui.Model) error {
		_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	}
)

// Terminal dashboard over the local store. Tracing stays off unless
// explicitly enabled so the exporter never blocks an interactive session.
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx := context.Background()

	if cfg.RedisURL != "" {
		initRedisFunc(ctx)
	}

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
	if err := marketRepo.EnsureSchema(ctx); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	queryRepo := repository.NewQueryRepository(database, tracer, repository.SnapshotAssets{
		CoinID:  cfg.SnapshotCoin,
		TickerA: cfg.SnapshotIndexA,
		TickerB: cfg.SnapshotIndexB,
	})
	exploreService := service.NewExploreService(tracer, queryRepo, cache.Client)

	if err := runProgramFunc(tui.NewModel(exploreService)); err != nil {
		log.Fatalf("dashboard error: %v", err)
	}
}
