// Command voidsort reviews an archive of void-property documents in the
// terminal and writes the renamed, folder-sorted archive to disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JaimeStill/voidsort/internal/classifications"
	"github.com/JaimeStill/voidsort/internal/config"
	"github.com/JaimeStill/voidsort/internal/documents"
	"github.com/JaimeStill/voidsort/internal/sessions"
	"github.com/JaimeStill/voidsort/internal/tui"
	"github.com/JaimeStill/voidsort/pkg/formatting"
	"github.com/JaimeStill/voidsort/pkg/settings"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "voidsort: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		address    = flag.String("address", "", "Property address (required)")
		in         = flag.String("in", "", "Input zip archive of PDF documents (required)")
		out        = flag.String("out", ".", "Output directory for the renamed archive")
		rules      = flag.String("rules", os.Getenv(config.EnvBuildRulesFile), "YAML routing rules file replacing the default table")
		skipPolicy = flag.String("skip-policy", envOr(config.EnvBuildSkipPolicy, "omit"), "Handling of skipped documents: omit or placeholder")
		holder     = flag.String("placeholder", os.Getenv(config.EnvBuildPlaceholder), "Name stem for skipped documents under the placeholder policy")
		markers    = flag.String("markers", os.Getenv(config.EnvBuildAsbestosMarkers), "Comma-separated asbestos contractor names")
		maxSize    = flag.String("max-document-size", "25MB", "Largest PDF accepted from the archive")
		logPath    = flag.String("log", "", "Write logs to this file instead of discarding them")
	)
	flag.Parse()

	if classifications.Normalize(*address) == "" {
		flag.Usage()
		return sessions.ErrAddressRequired
	}
	if *in == "" {
		flag.Usage()
		return fmt.Errorf("-in is required")
	}

	logger, closeLog, err := newLogger(*logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	build := config.BuildConfig{
		SkipPolicy:      *skipPolicy,
		Placeholder:     *holder,
		RulesFile:       *rules,
		AsbestosMarkers: settings.Split(*markers),
	}
	builder, err := build.Builder()
	if err != nil {
		return err
	}

	size, err := formatting.ParseBytes(*maxSize)
	if err != nil {
		return fmt.Errorf("invalid -max-document-size: %w", err)
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	docs, err := documents.NewLoader(documents.LoadOptions{MaxDocumentSize: size}, logger).
		Load(context.Background(), data)
	if err != nil {
		return err
	}

	sess, err := sessions.New(*address, docs)
	if err != nil {
		return err
	}

	logger.Info("session started", "address", sess.Address(), "documents", sess.Len(), "input", *in)

	app := tui.New(sess, builder, *out, logger)
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}

	if res := app.Result(); res != nil {
		fmt.Printf("wrote %s (%d files, %d skipped)\n", res.Path, len(res.Plan.Entries), res.Plan.Skipped)
	}
	return nil
}

func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
