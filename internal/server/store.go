package server

import (
	"context"
	"fmt"
	"time"

	"repair-desk/internal/config"
	"repair-desk/internal/database"
	"repair-desk/internal/repository"
	"repair-desk/internal/repository/mongorepo"

	"go.uber.org/zap"
)

// Store is an open persistence backend
type Store struct {
	Repos  *repository.Repositories
	Health func(ctx context.Context) map[string]string
	Close  func(ctx context.Context) error
}

// OpenStore connects to the backend named by cfg.Store.Driver and prepares
// its schema
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case config.DriverMongo:
		return openMongo(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("Database health check", zap.Any("health", db.Health(ctx)))

	if err := database.RunMigrations(ctx, db.DB(), cfg.Store.MigrationsDir, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		Repos:  repository.NewPostgresRepositories(db.DB()),
		Health: db.Health,
		Close:  func(context.Context) error { return db.Close() },
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	client, err := database.ConnectMongo(cfg.Mongo, 10, 3*time.Second, logger)
	if err != nil {
		return nil, err
	}
	if err := mongorepo.EnsureIndexes(ctx, client, cfg.Mongo.Database); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	health := func(ctx context.Context) map[string]string {
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := client.Ping(ctx, nil); err != nil {
			return map[string]string{"status": "down", "error": err.Error()}
		}
		return map[string]string{"status": "up", "database": cfg.Mongo.Database}
	}

	return &Store{
		Repos:  mongorepo.New(client, cfg.Mongo.Database),
		Health: health,
		Close:  client.Disconnect,
	}, nil
}
