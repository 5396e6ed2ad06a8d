// Package main implements the database migration utility for the service.
package main

import (
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/thiagogitai/sinconsult-crm/internal/infrastructure/migrate"
)

const defaultMigrationsPath = "./migrations"

func main() {
	var (
		migrationsPath string
		steps          int
	)

	flag.StringVar(&migrationsPath, "path", defaultMigrationsPath, "Path to migrations directory")
	flag.IntVar(&steps, "steps", 0, "Number of migrations to run (0 = all for up, 1 for down)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal("DATABASE_URL environment variable is required")
	}

	args := flag.Args()
	if len(args) == 0 {
		logger.Fatal("Please specify a command: up, down, or version")
	}

	runner := migrate.NewRunner(&migrate.Config{
		DatabaseURL:    databaseURL,
		MigrationsPath: migrationsPath,
	}, logger)

	switch command := args[0]; command {
	case "up":
		if err := runner.Up(steps); err != nil {
			logger.Fatal("Migration failed", zap.Error(err))
		}

	case "down":
		if err := runner.Down(steps); err != nil {
			logger.Fatal("Rollback failed", zap.Error(err))
		}
		reportVersion(runner, logger)

	case "version":
		reportVersion(runner, logger)

	default:
		logger.Fatal("Unknown command, use 'up', 'down', or 'version'",
			zap.String("command", command))
	}
}

func reportVersion(runner *migrate.Runner, logger *zap.Logger) {
	version, dirty, err := runner.Version()
	if err != nil {
		logger.Fatal("Failed to get version", zap.Error(err))
	}
	logger.Info("Schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
}
