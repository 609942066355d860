package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/angelmondragon/shophub/pkg/config"
	"github.com/angelmondragon/shophub/pkg/db"
	"github.com/angelmondragon/shophub/pkg/logger"
	"github.com/angelmondragon/shophub/pkg/migrate"
	"github.com/joho/godotenv"
)

type flags struct {
	dir     string
	name    string
	version string
}

// offline commands only touch the filesystem.
var offline = map[string]func(f flags) error{
	"create": func(f flags) error {
		if f.name == "" {
			return fmt.Errorf("-name is required for create")
		}
		dir := f.dir
		if dir == "" {
			dir = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(dir, f.name)
		if err != nil {
			return err
		}
		fmt.Println("created migration:", path)
		return nil
	},
	"validate": func(f flags) error {
		if err := migrate.ValidateDir(f.dir); err != nil {
			return err
		}
		fmt.Println("migrations valid")
		return nil
	},
}

type onlineFunc func(ctx context.Context, sqlDB *sql.DB, dialect string, f flags) error

func gooseCommand(name string) onlineFunc {
	return func(ctx context.Context, sqlDB *sql.DB, dialect string, f flags) error {
		return migrate.Run(ctx, sqlDB, dialect, f.dir, name)
	}
}

var online = map[string]onlineFunc{
	"up":     gooseCommand("up"),
	"down":   gooseCommand("down"),
	"status": gooseCommand("status"),
	"version": func(ctx context.Context, sqlDB *sql.DB, dialect string, f flags) error {
		if f.version == "" {
			return fmt.Errorf("-version is required for version")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, dialect, f.dir, f.version)
	},
}

func main() {
	_ = godotenv.Load()

	var f flags
	cmd := flag.String("cmd", "up", "migration command: "+strings.Join(commandNames(), "|"))
	flag.StringVar(&f.dir, "dir", "", "migrations directory (empty uses the migrations built into the binary)")
	flag.StringVar(&f.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&f.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	if run, ok := offline[*cmd]; ok {
		if err := run(f); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", *cmd, err)
			os.Exit(1)
		}
		return
	}
	run, ok := online[*cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown -cmd %q (want %s)\n", *cmd, strings.Join(commandNames(), "|"))
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	dialect := cfg.DB.Dialect()
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"cmd":     *cmd,
		"dialect": dialect,
	})
	if err := execute(ctx, cfg, logg, run, dialect, f); err != nil {
		logg.Error(ctx, "migrate.failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "migrate.done")
}

func execute(ctx context.Context, cfg *config.Config, logg *logger.Logger, run onlineFunc, dialect string, f flags) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("sql database: %w", err)
	}
	return run(ctx, sqlDB, dialect, f)
}

func commandNames() []string {
	names := make([]string, 0, len(offline)+len(online))
	for name := range offline {
		names = append(names, name)
	}
	for name := range online {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
