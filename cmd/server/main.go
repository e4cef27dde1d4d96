/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payout operator console server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config (embedded defaults, then optional config file)
  2. Build the structured logger
  3. Initialize SQLite store
  4. Wire the payout and instant-win services
  5. Start server with graceful shutdown

CONFIGURATION:
  All config lives in config/config.go. The --config flag points at a
  YAML file that overrides the embedded defaults; every value has a
  working default so the binary runs with no file at all.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with defaults (payout.db in the working directory)
  ./server

  # Run with a config file
  ./server --config=./deploy/prod.yml

SEE ALSO:
  - config/config.go: Configuration schema and defaults
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	_ "github.com/jsternberg/zap-logfmt"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/payout-engine/api"
	"github.com/warp/payout-engine/config"
	"github.com/warp/payout-engine/engine"
	"github.com/warp/payout-engine/instantwin"
	"github.com/warp/payout-engine/payout"
	"github.com/warp/payout-engine/store/sqlite"
)

// LoadConfig loads the default configuration and overrides it with the
// config file specified by the path defined in the config flag
func LoadConfig() *koanf.Koanf {
	configPathMsg := "Path to the application config file"
	configPath := kingpin.Flag("config", configPathMsg).Short('c').Default("config.yml").String()

	kingpin.Parse()
	k := koanf.New(".")
	_ = k.Load(rawbytes.Provider(config.DefaultConfig), yaml.Parser())
	if *configPath != "" {
		_ = k.Load(file.Provider(*configPath), yaml.Parser())
	}
	return k
}

func main() {
	k := LoadConfig()
	appKonf := config.Config{}

	// Unmarshalling config into struct
	err := k.Unmarshal("", &appKonf)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Validate the config loaded
	if err = appKonf.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if !appKonf.IsProdMode {
		k.Print()
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "logfmt"
	_ = cfg.Level.UnmarshalText([]byte(k.String("logger.level")))
	cfg.InitialFields = make(map[string]any)
	cfg.InitialFields["host"], _ = os.Hostname()
	cfg.InitialFields["service"] = appKonf.Application
	cfg.OutputPaths = []string{"stdout"}
	logger, _ := cfg.Build()
	defer func() {
		_ = logger.Sync()
	}()

	// Initialize store
	store, err := sqlite.New(appKonf.Database.Path)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	// Wire domain services
	payoutSvc := payout.NewService(store, appKonf.Payout.Timezone, logger)
	instantSvc := instantwin.NewService(
		store,
		appKonf.Payout.Timezone,
		instantWinDefaults(appKonf.InstantWin),
		appKonf.Monitor.WarnThreshold,
		appKonf.Monitor.CriticalThreshold,
		logger,
	)

	handler := api.NewHandler(payoutSvc, instantSvc, store, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", appKonf.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			zap.Int("port", appKonf.Server.Port),
			zap.String("timezone", appKonf.Payout.Timezone))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// instantWinDefaults converts the string-typed config values into the
// settings seed. Config validation happened already; a malformed decimal
// here falls back to zero and gets clamped on first use.
func instantWinDefaults(c config.InstantWin) engine.InstantWinSettings {
	parse := func(s string) decimal.Decimal {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		return d
	}
	probability, err := strconv.ParseFloat(c.BaseProbability, 64)
	if err != nil {
		probability = 0
	}
	return engine.InstantWinSettings{
		Enabled:         c.Enabled,
		MaxPercentage:   parse(c.MaxPercentage),
		BaseProbability: probability,
		MinAmount:       parse(c.MinAmount),
		MaxAmount:       parse(c.MaxAmount),
		WinMessage:      c.WinMessage,
		NotifyEnabled:   c.NotifyEnabled,
	}
}
