// Command setup creates the tables the API expects for the configured store driver.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/prohmpiriya/career-passport/internal/repository"
	"github.com/prohmpiriya/career-passport/pkg/config"
	"github.com/prohmpiriya/career-passport/pkg/database"
	"github.com/prohmpiriya/career-passport/pkg/logger"
)

const tableWait = 2 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "setup: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name + "-setup",
		Development: true,
		OutputPath:  "stdout",
	}); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	log := logger.Get()
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), tableWait+time.Minute)
	defer cancel()

	switch cfg.Store.Driver {
	case config.StoreDriverDynamoDB:
		client, err := repository.NewDynamoClient(ctx, cfg.AWS)
		if err != nil {
			return err
		}
		results, err := repository.EnsureTables(ctx, client, repository.DynamoTables(cfg.Store), tableWait)
		for _, r := range results {
			if r.Created {
				log.Info("table created", zap.String("table", r.Table))
			} else {
				log.Info("table exists, skipped", zap.String("table", r.Table))
			}
		}
		return err

	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(ctx, repository.PostgresConfig(cfg.Database))
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer db.Close()
		if err := repository.EnsureSchema(ctx, db); err != nil {
			return err
		}
		log.Info("postgres schema applied", zap.String("database", cfg.Database.DBName))
		return nil

	case config.StoreDriverMemory:
		log.Info("memory store needs no setup")
		return nil

	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
