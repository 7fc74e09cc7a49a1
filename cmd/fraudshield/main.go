// FraudShield - Deterministic fraud risk scoring for payments.
// Copyright (c) 2026 opensource.finance
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/opensource-finance/fraudshield/internal/api"
	"github.com/opensource-finance/fraudshield/internal/bus"
	"github.com/opensource-finance/fraudshield/internal/cache"
	"github.com/opensource-finance/fraudshield/internal/domain"
	"github.com/opensource-finance/fraudshield/internal/explain"
	"github.com/opensource-finance/fraudshield/internal/patterns"
	"github.com/opensource-finance/fraudshield/internal/repository"
	"github.com/opensource-finance/fraudshield/internal/risk"
	"github.com/opensource-finance/fraudshield/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Optional .env file for local development
	_ = godotenv.Load()

	cfg := loadConfig()
	setupLogger(cfg.Logging)

	slog.Info("starting fraudshield",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	if err := cfg.Risk.Validate(); err != nil {
		slog.Error("invalid risk configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
		"patterns", cfg.Patterns.Provider,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize Repository
	repo, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize the scoring core
	scorer := risk.NewScorer(cfg.Risk)
	generator := explain.NewTemplateGenerator(scorer)
	slog.Info("risk scorer initialized",
		"high_threshold", cfg.Risk.HighThreshold,
		"medium_threshold", cfg.Risk.MediumThreshold,
	)

	// Initialize Pattern Provider
	provider, err := patterns.New(cfg.Patterns)
	if err != nil {
		slog.Error("failed to initialize pattern provider", "error", err)
		os.Exit(1)
	}
	slog.Info("pattern provider initialized", "provider", cfg.Patterns.Provider)

	// Optional demo data
	if seedFile := os.Getenv("FRAUDSHIELD_SEED_FILE"); seedFile != "" {
		if err := seedTransactions(ctx, repo, scorer, seedFile); err != nil {
			slog.Error("failed to seed transactions", "file", seedFile, "error", err)
			os.Exit(1)
		}
	}

	// Async worker warms explanation caches and raises alerts
	asyncWorker := worker.NewWorker(busImpl, repo, cacheImpl, generator)
	tenantIDs := []string{"default"}
	if envTenants := os.Getenv("FRAUDSHIELD_TENANTS"); envTenants != "" {
		tenantIDs = strings.Split(envTenants, ",")
	}
	if err := asyncWorker.Start(worker.Config{TenantIDs: tenantIDs}); err != nil {
		slog.Error("failed to start async worker", "error", err)
	} else {
		slog.Info("async worker started", "tenant_count", len(tenantIDs))
	}

	// Initialize Server
	handler := api.NewHandler(repo, cacheImpl, busImpl, scorer, generator, provider, Version, cfg.Tier)
	srv := api.NewServer(cfg.Server, handler, cacheImpl)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("fraudshield is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	<-ctx.Done()
	slog.Info("shutting down...")

	if err := asyncWorker.Stop(); err != nil {
		slog.Error("failed to stop async worker", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("fraudshield shutdown complete")
}

// loadConfig builds the configuration from the tier defaults plus environment
// overrides.
func loadConfig() *domain.Config {
	cfg := domain.DefaultConfig()
	if os.Getenv("FRAUDSHIELD_TIER") == "pro" {
		cfg = domain.ProConfig()
	}

	if v := os.Getenv("FRAUDSHIELD_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FRAUDSHIELD_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("FRAUDSHIELD_RATE_LIMIT"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimit = limit
		}
	}
	if v := os.Getenv("FRAUDSHIELD_DB_PATH"); v != "" {
		cfg.Repository.SQLitePath = v
	}
	if v := os.Getenv("FRAUDSHIELD_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("FRAUDSHIELD_NATS_URL"); v != "" {
		cfg.EventBus.NATSUrl = v
	}
	if v := os.Getenv("FRAUDSHIELD_PATTERN_FILE"); v != "" {
		cfg.Patterns.Provider = "file"
		cfg.Patterns.CatalogPath = v
	}
	if v := os.Getenv("FRAUDSHIELD_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if os.Getenv("FRAUDSHIELD_DEBUG") == "true" {
		cfg.Logging.Level = "debug"
	}

	return cfg
}

func setupLogger(cfg domain.LoggingConfig) {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// seedEntry is one record in a FRAUDSHIELD_SEED_FILE document.
type seedEntry struct {
	TenantID string `json:"tenantId"`
	domain.TransactionRequest
}

// seedTransactions loads demo transactions from a JSON file, scoring each one
// exactly as the API would.
func seedTransactions(ctx context.Context, repo domain.Repository, scorer *risk.Scorer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var entries []seedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	for i, entry := range entries {
		ts, err := entry.Validate()
		if err != nil {
			return fmt.Errorf("seed entry %d: %w", i, err)
		}

		tenantID := entry.TenantID
		if tenantID == "" {
			tenantID = "default"
		}

		tx := entry.ToTransaction(ts)
		tx.ID = uuid.New().String()
		tx.TenantID = tenantID

		score, factors := scorer.Score(tx)
		tx.RiskScore = score
		tx.RiskLevel = scorer.Classify(score)
		tx.Factors = factors

		if err := repo.SaveTransaction(ctx, tenantID, tx); err != nil {
			return fmt.Errorf("seed entry %d: %w", i, err)
		}
	}

	slog.Info("seeded transactions", "count", len(entries), "file", path)
	return nil
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════╗")
	fmt.Println("  ║             🛡  FRAUDSHIELD                ║")
	fmt.Println("  ║      Fraud Risk Scoring for Payments      ║")
	fmt.Println("  ║    Every transaction, explained.          ║")
	fmt.Println("  ╚═══════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Tier:     %s\n", cfg.Tier)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /transactions               - Submit a transaction for scoring")
	fmt.Println("    GET  /transactions               - List scored transactions")
	fmt.Println("    GET  /transactions/{id}          - Get assessment with explanation")
	fmt.Println("    GET  /transactions/{id}/patterns - Match against fraud patterns")
	fmt.Println("    PUT  /transactions/{id}/status   - Approve or reject")
	fmt.Println("    GET  /transactions/{id}/audit    - Audit trail")
	fmt.Println("    GET  /health                     - Health check")
	fmt.Println("    GET  /metrics                    - Prometheus metrics")
	fmt.Println()
}
