package main

import (
	"context"
	"testing"
	"time"

	"cross-market-pulse/internal/config"
	"cross-market-pulse/internal/db"
	"cross-market-pulse/internal/service"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func stubPipelineDeps(runErr error) (*int, func()) {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origOpenDB := openDBFunc
	origInitTracer := initTracerFunc
	origRunPipeline := runPipelineFunc
	origExit := exitFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{DatabasePath: ":memory:", TopCoins: 3, HistoryDays: 365}
	}
	openDBFunc = db.Open
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	runPipelineFunc = func(ctx context.Context, p *service.PipelineService) error { return runErr }

	exitCode := new(int)
	*exitCode = -1
	exitFunc = func(code int) { *exitCode = code }

	return exitCode, func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		openDBFunc = origOpenDB
		initTracerFunc = origInitTracer
		runPipelineFunc = origRunPipeline
		exitFunc = origExit
	}
}

func TestMainSuccess(t *testing.T) {
	exitCode, restore := stubPipelineDeps(nil)
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
	if *exitCode != -1 {
		t.Fatalf("expected no explicit exit on success, got %d", *exitCode)
	}
}

func TestMainFailureExitsNonZero(t *testing.T) {
	exitCode, restore := stubPipelineDeps(context.DeadlineExceeded)
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
	if *exitCode != 1 {
		t.Fatalf("expected exit code 1 on failure, got %d", *exitCode)
	}
}
