package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/licensegate/pkg/config"
	"github.com/angelmondragon/licensegate/pkg/logger"
)

// AutoApply brings the schema up to date at process start. It runs when the
// auto-migrate flag is set outside prod, or whenever the embedded sqlite driver is in
// use. It reports whether migrations were attempted.
func AutoApply(ctx context.Context, cfg *config.Config, logg *logger.Logger, db *sql.DB) (bool, error) {
	if !shouldAutoApply(cfg) {
		return false, nil
	}

	dialect := Dialect(cfg.DB.Driver)
	if err := prepare(dialect); err != nil {
		return true, err
	}
	before, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return true, fmt.Errorf("read schema version: %w", err)
	}
	if err := goose.UpContext(ctx, db, DefaultDir); err != nil {
		return true, fmt.Errorf("goose up: %w", err)
	}
	after, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return true, fmt.Errorf("read schema version: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"env":          cfg.App.Env,
			"dialect":      dialect,
			"from_version": before,
			"to_version":   after,
		}), "migrate.auto_applied")
	}
	return true, nil
}

func shouldAutoApply(cfg *config.Config) bool {
	if cfg.DB.IsSQLite() {
		return true
	}
	return cfg.FeatureFlags.AutoMigrate && !cfg.App.IsProd()
}
