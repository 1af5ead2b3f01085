package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/halvard/scout/api"
	"github.com/halvard/scout/internal/agent"
	"github.com/halvard/scout/internal/config"
	"github.com/halvard/scout/internal/knowledge"
	"github.com/halvard/scout/internal/llm"
	"github.com/halvard/scout/internal/observability"
	"github.com/halvard/scout/internal/session"
	"github.com/halvard/scout/internal/tools"
)

// tracerShutdownTimeout bounds the final span flush on exit.
const tracerShutdownTimeout = 5 * time.Second

// runServe wires the full application and starts the HTTP API server.
func runServe() error {
	logger := initLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr, err := parseServeAddr(cfg.Addr)
	if err != nil {
		return fmt.Errorf("parsing address: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		Environment: cfg.Tracing.Environment,
		ServiceName: cfg.Tracing.ServiceName,
	}, logger)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("trace flush failed", "error", err)
		}
	}()

	store := session.Open(ctx, cfg.RedisAddr, cfg.RedisDB, logger)

	generator, err := llm.New(cfg.OllamaHost, cfg.ModelName, logger)
	if err != nil {
		return fmt.Errorf("creating generation client: %w", err)
	}

	fetcher := knowledge.NewFetcher(
		cfg.Fetcher.Parallelism,
		time.Duration(cfg.Fetcher.TimeoutMs)*time.Millisecond,
		logger)

	resolver, err := knowledge.NewResolver(
		knowledge.NewWikipediaClient(logger),
		knowledge.NewWikidataClient(logger),
		knowledge.NewGoogleClient(cfg.Search.APIKey, cfg.Search.EngineID, logger),
		fetcher,
		knowledge.Config{
			SearchPages:   cfg.Search.Pages,
			SearchPerPage: cfg.Search.PerPage,
		},
		logger)
	if err != nil {
		return fmt.Errorf("creating knowledge resolver: %w", err)
	}

	searchTool, err := tools.NewSearchTool(resolver)
	if err != nil {
		return fmt.Errorf("creating search tool: %w", err)
	}
	registry, err := tools.NewRegistry(logger, tools.WeatherTool{}, searchTool)
	if err != nil {
		return fmt.Errorf("creating tool registry: %w", err)
	}

	runner, err := agent.New(generator, registry, store, cfg.MaxToolRounds, logger)
	if err != nil {
		return fmt.Errorf("creating agent: %w", err)
	}

	logger.Info("starting scout",
		"version", AppVersion,
		"model", cfg.ModelName,
		"backend", cfg.OllamaHost,
		"tools", registry.Names())

	server := api.NewServer(runner, store, logger)
	return server.Run(ctx, addr)
}
