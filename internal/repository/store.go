package repository

import (
	"context"
	"fmt"

	"github.com/prohmpiriya/career-passport/pkg/config"
	"github.com/prohmpiriya/career-passport/pkg/database"
)

// NewStore builds the Store for the configured driver
func NewStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		return NewMemoryStore().Store(), nil

	case config.StoreDriverDynamoDB:
		client, err := NewDynamoClient(ctx, cfg.AWS)
		if err != nil {
			return nil, err
		}
		return NewDynamoStore(client, cfg.Store), nil

	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(ctx, PostgresConfig(cfg.Database))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return NewPostgresStore(db), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// PostgresConfig maps the database config section onto pool settings
func PostgresConfig(cfg config.DatabaseConfig) *database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = cfg.Host
	pg.Port = cfg.Port
	pg.User = cfg.User
	pg.Password = cfg.Password
	pg.Database = cfg.DBName
	if cfg.SSLMode != "" {
		pg.SSLMode = cfg.SSLMode
	}
	if cfg.MaxConns > 0 {
		pg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		pg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		pg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}
	return pg
}
