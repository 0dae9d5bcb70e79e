// Playback command actions: transport control, status, and the watch loop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/desertthunder/vidctl/internal/formatter"
	"github.com/desertthunder/vidctl/internal/player"
	"github.com/desertthunder/vidctl/internal/reconcile"
	"github.com/urfave/cli/v3"
)

// Play starts playback of the named video, or lets the device pick when no
// filename is given.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	return r.playback(ctx, player.CmdPlay, cmd.StringArg("filename"))
}

// Pause toggles pause on the device.
func (r *Runner) Pause(ctx context.Context, cmd *cli.Command) error {
	return r.playback(ctx, player.CmdPause, "")
}

// Stop stops playback.
func (r *Runner) Stop(ctx context.Context, cmd *cli.Command) error {
	return r.playback(ctx, player.CmdStop, "")
}

// Next skips forward, wrapping at the end of the playlist.
func (r *Runner) Next(ctx context.Context, cmd *cli.Command) error {
	return r.playback(ctx, player.CmdNext, "")
}

// Previous skips backward, wrapping at the start of the playlist.
func (r *Runner) Previous(ctx context.Context, cmd *cli.Command) error {
	return r.playback(ctx, player.CmdPrevious, "")
}

// playback runs one transport command through the reconciler and prints the
// re-polled status, so the printed line reflects the device's new state
// rather than an assumption.
func (r *Runner) playback(ctx context.Context, cmd player.Command, filename string) error {
	if _, err := r.rec.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to fetch playlist: %w", err)
	}

	if _, err := r.rec.Command(ctx, cmd, filename); err != nil {
		return err
	}

	return r.writePlainln("%s", formatter.StatusLine(r.rec.LastStatus()))
}

// Status fetches and prints the device status once.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.rec.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to fetch playlist: %w", err)
	}

	status, err := r.rec.Poll(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	snap := r.rec.State().Snapshot()
	r.writePlainln("%s", formatter.StatusLine(status))
	if snap.PlayingIndex != -1 {
		r.writePlainln("Position: %d of %d", snap.PlayingIndex+1, len(snap.Items))
	}
	return nil
}

// Watch polls the device on the configured interval and prints each
// observation until the user interrupts.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if _, err := r.rec.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to fetch playlist: %w", err)
	}

	interval := r.config.Poller.Interval()
	if secs := cmd.Int("interval"); secs > 0 {
		interval = time.Duration(secs) * time.Second
	}

	poller := reconcile.NewPoller(r.rec, interval, r.logger)
	poller.Start(ctx)
	defer poller.Stop()

	last := ""
	for update := range poller.Updates() {
		line := formatter.StatusLine(update.Status)
		if update.Err != nil {
			line = fmt.Sprintf("poll failed: %v (showing last known state)", update.Err)
		}
		if line == last {
			continue
		}
		last = line
		r.writePlainln("%s  %s", time.Now().Format("15:04:05"), line)
	}

	return nil
}
