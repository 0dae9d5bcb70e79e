package main

import (
	"context"
	"os"

	"github.com/desertthunder/vidctl/internal/history"
	"github.com/desertthunder/vidctl/internal/reconcile"
	"github.com/desertthunder/vidctl/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	// The history log is best-effort: a missing or broken database never
	// blocks playback control.
	var recorder reconcile.Recorder
	if _, err := os.Stat(config.Database.Path); err == nil {
		if db, err := shared.NewDatabase(config.Database.Path); err == nil {
			defer db.Close()
			shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
			recorder = history.NewRepository(db, logger)
		} else {
			logger.Warn("history database unavailable", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:   config,
		Recorder: recorder,
		Logger:   logger,
	})

	app := &cli.Command{
		Name:     "vidctl",
		Usage:    "Control a networked video player device",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
