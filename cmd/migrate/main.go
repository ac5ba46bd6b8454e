// Package main 提供商品库 MySQL 迁移的命令行工具，支持 up/down/version/force
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/MorseWayne/catalog_admin/internal/config"
	"github.com/MorseWayne/catalog_admin/internal/database"
	"github.com/MorseWayne/catalog_admin/internal/logger"
)

var errUsage = errors.New("usage")

// migrator 由 *database.DB 实现
type migrator interface {
	RunMigrations(dir string) error
	MigrateDown(dir string, steps int) error
	MigrateToVersion(dir string, version uint) error
	ForceMigrationVersion(dir string, version uint) error
}

func run(m migrator, dir, action string, steps int, target uint) error {
	switch action {
	case "up":
		return m.RunMigrations(dir)
	case "down":
		if steps <= 0 {
			return fmt.Errorf("%w: steps must be positive", errUsage)
		}
		return m.MigrateDown(dir, steps)
	case "version":
		if target == 0 {
			return fmt.Errorf("%w: target version must be specified", errUsage)
		}
		return m.MigrateToVersion(dir, target)
	case "force":
		// force 允许版本0，表示回到无迁移状态
		return m.ForceMigrationVersion(dir, target)
	default:
		return fmt.Errorf("%w: unknown action %q", errUsage, action)
	}
}

func main() {
	var (
		action = flag.String("action", "up", "Migration action: up, down, version, force")
		steps  = flag.Int("steps", 1, "Number of steps for down migration")
		target = flag.Uint("target", 0, "Target version for version or force migration")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s -action=[up|down|version|force] [options]\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output(), "\nExamples:\n  migrate -action=up\n  migrate -action=down -steps=1\n  migrate -action=version -target=2\n  migrate -action=force -target=0")
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.App.Env, cfg.Log.Level, cfg.Log.Encoding, "catalog-migrate", cfg.App.Version)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	db, err := database.New(cfg, lg)
	if err != nil {
		lg.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			lg.Sugar().Errorw("failed to close database", "error", err)
		}
	}()

	lg.Sugar().Infow("running migration", "action", *action, "dir", cfg.Migrations.Dir, "steps", *steps, "target", *target)
	if err := run(db, cfg.Migrations.Dir, *action, *steps, *target); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			flag.Usage()
			os.Exit(2)
		}
		lg.Sugar().Fatalw("migration failed", "action", *action, "error", err)
	}
	lg.Sugar().Infow("migration completed", "action", *action)
}
