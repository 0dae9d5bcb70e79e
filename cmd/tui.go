package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vidctl/internal/reconcile"
	"github.com/desertthunder/vidctl/internal/shared"
	"github.com/desertthunder/vidctl/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive playlist controller.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/vidctl-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	poller := reconcile.NewPoller(r.rec, r.config.Poller.Interval(), fileLogger)
	poller.Start(ctx)
	defer poller.Stop()

	model := ui.NewModel(ctx, r.rec, poller)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
