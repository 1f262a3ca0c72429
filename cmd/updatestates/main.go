// Command updatestates refreshes the state and arrears of every membership
// once and exits. It runs the same batch as the daily job.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/config"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/db"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/logger"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/membership"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/state"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "maximum time for the refresh")
	migrate := flag.Bool("migrate", false, "apply pending migrations first")
	flag.Parse()

	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if *migrate {
		if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sync := membership.NewSynchronizer(membership.NewRepository(database), state.NewResolver(database), cfg.Location())
	updated, err := sync.SyncAll(ctx)
	if err != nil {
		logger.Error("State refresh failed", "error", err)
		database.Close()
		os.Exit(1)
	}

	fmt.Printf("Updated %d memberships\n", updated)
}
