// Command migrate applies the voidsort schema migrations. The connection is
// resolved from the [database] section of config.toml and VOIDSORT_DB_*
// variables, the same way the server resolves it; -dsn overrides both.
package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/voidsort/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(os.Args[1:], logger); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	var (
		dsn     = fs.String("dsn", "", "Database connection URL (overrides config.toml and VOIDSORT_DB_*)")
		up      = fs.Bool("up", false, "Run all up migrations")
		down    = fs.Bool("down", false, "Run all down migrations")
		steps   = fs.Int("steps", 0, "Number of migrations (positive=up, negative=down)")
		version = fs.Bool("version", false, "Print current migration version")
		force   = fs.Int("force", -1, "Force set version (use with caution)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	forceSet := false
	fs.Visit(func(f *flag.Flag) {
		forceSet = forceSet || f.Name == "force"
	})

	url := *dsn
	if url == "" {
		db, err := config.LoadDatabase()
		if err != nil {
			return err
		}
		url = db.Dsn()
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()
	m.Log = migrateLogger{logger.With("system", "migrate")}

	switch {
	case *version:
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			return nil
		}
		if err != nil {
			return fmt.Errorf("get version: %w", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", v, dirty)
	case forceSet:
		if err := m.Force(*force); err != nil {
			return fmt.Errorf("force version: %w", err)
		}
		logger.Info("forced version", "version", *force)
	case *up:
		if err := noChange(m.Up()); err != nil {
			return fmt.Errorf("up: %w", err)
		}
		logger.Info("migrations applied")
	case *down:
		if err := noChange(m.Down()); err != nil {
			return fmt.Errorf("down: %w", err)
		}
		logger.Info("migrations reverted")
	case *steps != 0:
		if err := noChange(m.Steps(*steps)); err != nil {
			return fmt.Errorf("steps %d: %w", *steps, err)
		}
		logger.Info("migration steps applied", "steps", *steps)
	default:
		fmt.Fprintln(fs.Output(), "usage: migrate [-dsn <url>] -up|-down|-steps N|-version|-force N")
		fs.PrintDefaults()
	}

	return nil
}

func noChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// migrateLogger adapts slog to migrate.Logger.
type migrateLogger struct {
	logger *slog.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool {
	return false
}
