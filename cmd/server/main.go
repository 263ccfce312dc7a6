// Command server runs the MBR deliverability dashboard API.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/ignite/mbr-dashboard/internal/api"
	"github.com/ignite/mbr-dashboard/internal/cache"
	"github.com/ignite/mbr-dashboard/internal/config"
	"github.com/ignite/mbr-dashboard/internal/druid"
	"github.com/ignite/mbr-dashboard/internal/espinfo"
	"github.com/ignite/mbr-dashboard/internal/mailgun"
	"github.com/ignite/mbr-dashboard/internal/mapping"
	"github.com/ignite/mbr-dashboard/internal/pkg/logger"
	"github.com/ignite/mbr-dashboard/internal/pulsation"
	"github.com/ignite/mbr-dashboard/internal/sendgrid"
	"github.com/ignite/mbr-dashboard/internal/snapshot"
	"github.com/ignite/mbr-dashboard/internal/sparkpost"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		logger.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	if cfg.Database.URL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx := context.Background()
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		cancel()
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}
	cancel()

	mappingStore := mapping.NewStore(db)
	snapshotStore := snapshot.NewStore(db)
	dailyStore := pulsation.NewStore(db)
	for _, migrate := range []func(context.Context) error{
		mappingStore.Migrate, snapshotStore.Migrate, dailyStore.Migrate,
	} {
		if err := migrate(ctx); err != nil {
			logger.Error("migration failed", "error", err)
			os.Exit(1)
		}
	}

	var druidClients []*druid.Client
	if cfg.Druid.USBroker != "" {
		druidClients = append(druidClients,
			druid.NewClient(cfg.Druid.USBroker, "US", cfg.Druid.Timeout()))
	}
	if cfg.Druid.EUBroker != "" {
		druidClients = append(druidClients,
			druid.NewClient(cfg.Druid.EUBroker, "EU", cfg.Druid.Timeout()))
	}
	if len(druidClients) == 0 {
		logger.Error("no druid brokers configured")
		os.Exit(1)
	}
	collector := druid.NewCollector(druidClients...)

	var store cache.Cache = cache.NewMemory()
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, using in-memory cache", "error", err)
		} else {
			defer redisCache.Close()
			store = redisCache
			logger.Info("redis cache connected", "addr", cfg.Redis.Addr)
		}
	}

	espInfo := buildESPInfo(cfg, store)

	handlers := api.NewHandlers(collector, mappingStore, snapshotStore, dailyStore, espInfo, cfg)
	server := api.NewServer(cfg.Server, handlers)

	// Fail fast when the port is taken instead of racing the goroutine below.
	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	if ln, err := net.Listen("tcp", addr); err != nil {
		logger.Error("port unavailable", "addr", addr, "error", err)
		os.Exit(1)
	} else {
		ln.Close()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}

// buildESPInfo wires the account-info service from whatever ESP keys are
// configured. Returns nil when no vendor is configured at all.
func buildESPInfo(cfg *config.Config, store cache.Cache) *espinfo.Service {
	var (
		sp   *sparkpost.Client
		sg   *sendgrid.Client
		mgUS *mailgun.Client
		mgEU *mailgun.Client
	)
	if cfg.SparkPost.APIKey != "" {
		sp = sparkpost.NewClient(cfg.SparkPost)
	}
	if cfg.Sendgrid.APIKey != "" {
		sg = sendgrid.NewClient(cfg.Sendgrid)
	}
	if cfg.Mailgun.APIKey != "" {
		mgUS = mailgun.NewClient(cfg.Mailgun, cfg.Mailgun.USBaseURL, "US")
		mgEU = mailgun.NewClient(cfg.Mailgun, cfg.Mailgun.EUBaseURL, "EU")
	}
	if sp == nil && sg == nil && mgUS == nil {
		return nil
	}
	return espinfo.NewService(sp, sg, mgUS, mgEU, store, cfg.ESPInfo.CacheTTL())
}
