package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/shophub/pkg/config"
	"github.com/angelmondragon/shophub/pkg/db"
	"github.com/angelmondragon/shophub/pkg/logger"
)

// MaybeRunDev applies the embedded migrations on startup in dev when SHOPHUB_AUTO_MIGRATE is set.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extract sql.DB: %w", err)
	}

	dialect := cfg.DB.Dialect()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": dialect})
	logg.Info(ctx, "migrations.autorun.start")
	if err := Run(ctx, sqlDB, dialect, "", "up"); err != nil {
		return err
	}
	logg.Info(ctx, "migrations.autorun.done")
	return nil
}
