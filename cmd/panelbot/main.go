package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/panelbot/config"
	"github.com/alejandrodnm/panelbot/internal/adapters/backend"
	"github.com/alejandrodnm/panelbot/internal/adapters/console"
	"github.com/alejandrodnm/panelbot/internal/adapters/storage"
	"github.com/alejandrodnm/panelbot/internal/domain"
	"github.com/alejandrodnm/panelbot/internal/ports"
	"github.com/alejandrodnm/panelbot/internal/syncer"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "refresh everything once and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full holdings + trades tables (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("panelbot starting",
		"config", *configPath,
		"backend", cfg.Backend.BaseURL,
		"currency", cfg.Backend.Currency,
		"fast_interval", cfg.FastInterval(),
		"slow_interval", cfg.SlowInterval(),
		"once", *once,
	)

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Currency)

	var store ports.Storage
	if cfg.Storage.DSN != "" {
		s, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer s.Close()
		store = s
	}

	sink := console.NewConsole(*table)

	engine := syncer.NewEngine(
		cfg.Backend.Currency,
		syncer.RealClock(),
		client,
		sink,
		store,
		resourceTTLs(cfg),
		cfg.DebounceWindow(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *once {
		engine.RefreshDashboard(ctx, true)
		engine.RefreshCharts(ctx)
		slog.Info("panelbot single refresh complete")
		return
	}

	driverCfg := syncer.DriverConfig{
		FastInterval: cfg.FastInterval(),
		SlowInterval: cfg.SlowInterval(),
		Stagger:      cfg.Stagger(),
	}
	driver := syncer.NewDriver(syncer.RealClock(), engine, driverCfg)

	driver.Start(ctx)
	<-ctx.Done()
	driver.Stop()

	slog.Info("panelbot stopped cleanly")
}

// resourceTTLs mezcla los defaults del engine con los overrides del YAML.
func resourceTTLs(cfg *config.Config) map[domain.Resource]time.Duration {
	ttls := syncer.DefaultTTLs()
	for name, secs := range cfg.Sync.TTLSeconds {
		ttls[domain.Resource(name)] = time.Duration(secs) * time.Second
	}
	return ttls
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
