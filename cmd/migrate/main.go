package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/config"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/logger"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/migration"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/migrations"
)

func main() {
	var (
		migrationsDir string
		logLevel      string
		confirm       bool
	)

	flag.StringVar(&migrationsDir, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&confirm, "confirm", false, "Confirm destructive commands (drop)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// Commands that only touch files
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		dir := migrationsDir
		if dir == "" {
			dir = "migrations"
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		created, err := migration.CreateMigration(dir, args[1], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.Uint("version", created.Version),
			zap.String("up_file", created.UpPath),
			zap.String("down_file", created.DownPath),
		)
		return

	case "list":
		files := migrations.FS
		source := "embedded"
		var list []migration.Migration
		if migrationsDir != "" {
			list, err = migration.ListMigrations(os.DirFS(migrationsDir))
			source = migrationsDir
		} else {
			list, err = migration.ListMigrations(files)
		}
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		log.Info("Available migrations", zap.String("source", source), zap.Int("count", len(list)))
		for _, m := range list {
			fmt.Println("  -", m.File())
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Database.Driver != "postgres" {
		log.Fatal("Versioned migrations require the postgres driver; sqlite schemas are created by auto-migrate",
			zap.String("driver", cfg.Database.Driver))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		log.Fatal("Failed to reach database", zap.Error(err))
	}

	m, err := migration.New(db,
		migration.WithDirectory(migrationsDir),
		migration.WithLogger(log),
	)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() { _ = m.Close() }()

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("database", cfg.Database.DBName),
	)

	switch command {
	case "up":
		err = m.Up()

	case "down":
		err = m.Down()

	case "step":
		if len(args) < 2 {
			log.Fatal("Step count required. Usage: migrate step <n>")
		}
		n, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			log.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		err = m.Steps(n)

	case "goto":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate goto <version>")
		}
		version, convErr := strconv.ParseUint(args[1], 10, 32)
		if convErr != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		err = m.GoTo(uint(version))

	case "version", "status":
		var status *migration.Status
		status, err = m.Status()
		if err == nil {
			log.Info("Schema status",
				zap.Uint("version", status.Version),
				zap.Bool("dirty", status.Dirty),
				zap.Int("applied", len(status.Applied)),
				zap.Int("pending", len(status.Pending)),
			)
			for _, p := range status.Pending {
				fmt.Println("  pending:", p.File())
			}
		}

	case "force":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate force <version>")
		}
		version, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		err = m.Force(version)

	case "drop":
		if !confirm {
			log.Fatal("Drop removes every table in the database. Re-run with -confirm to proceed.")
		}
		err = m.Drop()

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}

func printUsage() {
	fmt.Println(`Mercato schema migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  goto <version>        Migrate to a specific version
  status                Show applied version and pending migrations
  force <version>       Set the version without running SQL (repairs a dirty schema)
  drop                  Drop all database objects (requires -confirm)
  create <name> [desc]  Scaffold the next NNNNNN_name.{up,down}.sql pair
  list                  List available migrations

Flags:
  -path string          Migrations directory (default: the set embedded in the binary)
  -log-level string     Log level: debug, info, warn, error (default: info)
  -confirm              Confirm destructive commands

Environment:
  MERCATO_DATABASE_HOST, MERCATO_DATABASE_PORT, MERCATO_DATABASE_USER,
  MERCATO_DATABASE_PASSWORD, MERCATO_DATABASE_DBNAME, MERCATO_DATABASE_SSLMODE

Examples:
  migrate up
  migrate step -1
  migrate create add_payout_ledger "Ledger of seller payouts"
  migrate -confirm drop`)
}
