package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// RunMigrations applies every pending migration found in migrationsDir and
// logs each one applied
func RunMigrations(ctx context.Context, db *sql.DB, migrationsDir string, logger *zap.Logger) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, os.DirFS(migrationsDir))
	if err != nil {
		return fmt.Errorf("failed to load migrations from %s: %w", migrationsDir, err)
	}

	results, err := provider.Up(ctx)
	for _, res := range results {
		if res.Error != nil {
			logger.Error("Migration failed", zap.String("file", res.Source.Path), zap.Error(res.Error))
			continue
		}
		logger.Info("Migration applied",
			zap.String("file", res.Source.Path),
			zap.Int64("version", res.Source.Version),
			zap.Duration("duration", res.Duration),
		)
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	logger.Info("Schema up to date", zap.Int64("version", version), zap.Int("applied", len(results)))
	return nil
}
