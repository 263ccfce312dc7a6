// Command migrate creates or updates the dashboard's database schema without
// starting the API server. Useful in deploy pipelines that run migrations as
// a separate step.
package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/ignite/mbr-dashboard/internal/mapping"
	"github.com/ignite/mbr-dashboard/internal/pkg/logger"
	"github.com/ignite/mbr-dashboard/internal/pulsation"
	"github.com/ignite/mbr-dashboard/internal/snapshot"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	migrations := []struct {
		name string
		run  func(context.Context) error
	}{
		{"domain_account_mapping", mapping.NewStore(db).Migrate},
		{"mbr_reports", snapshot.NewStore(db).Migrate},
		{"daily_metrics", pulsation.NewStore(db).Migrate},
	}
	for _, m := range migrations {
		if err := m.run(ctx); err != nil {
			logger.Error("migration failed", "table", m.name, "error", err)
			os.Exit(1)
		}
		logger.Info("migrated", "table", m.name)
	}

	logger.Info("all migrations applied")
}
