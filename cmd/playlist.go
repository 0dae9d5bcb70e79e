// Playlist command actions: list, upload, delete, reorder, history.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/vidctl/internal/formatter"
	"github.com/desertthunder/vidctl/internal/history"
	"github.com/desertthunder/vidctl/internal/shared"
	"github.com/desertthunder/vidctl/internal/tasks"
	"github.com/urfave/cli/v3"
)

// List prints the device playlist.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	snap, err := r.rec.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch playlist: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(snap.Items, true)
	}

	var data []byte
	switch cmd.String("format") {
	case "", "text":
		data = formatter.ExportToText(snap)
	case "csv":
		if data, err = formatter.ExportToCSV(snap); err != nil {
			return err
		}
	case "md", "markdown":
		if data, err = formatter.ExportToMarkdown(snap, r.client.BaseURL()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, cmd.String("format"))
	}

	if path := cmd.String("output"); path != "" {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return r.writePlainln("Wrote %s", path)
	}

	return r.writePlain("%s", data)
}

// Upload pushes one or more files to the device and prints per-file results.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one file to upload", shared.ErrMissingArgument)
	}

	opts := tasks.UploadOpts{
		NumWorkers: r.config.Upload.Workers,
		RateLimit:  r.config.Upload.RateLimit,
	}
	if n := cmd.Int("workers"); n > 0 {
		opts.NumWorkers = n
	}
	if rl := cmd.Float("rate"); rl > 0 {
		opts.RateLimit = rl
	}

	prog := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.writePlainln("%s", update.Message)
		}
	}()

	result, err := r.engine.BulkUpload(ctx, prog, paths, opts)
	close(prog)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("Uploaded %d of %d files; playlist now has %d videos",
		result.SuccessCount, result.TotalFiles, len(result.Snapshot.Items))

	if result.FailedCount > 0 {
		return fmt.Errorf("%d uploads failed", result.FailedCount)
	}
	return nil
}

// Delete removes a video from the device after confirmation.
func (r *Runner) Delete(ctx context.Context, cmd *cli.Command) error {
	filename := cmd.StringArg("filename")
	if filename == "" {
		return fmt.Errorf("%w: filename", shared.ErrMissingArgument)
	}

	if !cmd.Bool("yes") && !r.confirm(fmt.Sprintf("Delete %q from the device?", filename)) {
		return r.writePlainln("Aborted.")
	}

	snap, err := r.rec.Delete(ctx, filename)
	if err != nil {
		return err
	}

	return r.writePlainln("Deleted %s; %d videos remain", filename, len(snap.Items))
}

// Reorder replaces the playlist order with the filenames given as arguments.
func (r *Runner) Reorder(ctx context.Context, cmd *cli.Command) error {
	order := cmd.Args().Slice()
	if len(order) < 2 {
		return fmt.Errorf("%w: the full playlist in its new order", shared.ErrMissingArgument)
	}

	if _, err := r.rec.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to fetch playlist: %w", err)
	}

	snap, err := r.rec.Reorder(ctx, order)
	if err != nil {
		return fmt.Errorf("reorder not applied: %w", err)
	}

	return r.writePlain("%s", formatter.ExportToText(snap))
}

// History prints the local activity log.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open history database (run `vidctl setup` first): %w", err)
	}
	defer db.Close()

	repo := history.NewRepository(db, r.logger)
	limit := cmd.Int("limit")

	if cmd.Bool("statuses") {
		records, err := repo.Statuses(limit)
		if err != nil {
			return err
		}
		for _, rec := range records {
			name := rec.VideoName
			if name == "" {
				name = "-"
			}
			r.writePlainln("%s  playing=%-5v  %s", rec.ObservedAt.Local().Format("2006-01-02 15:04:05"), rec.IsPlaying, name)
		}
		return nil
	}

	records, err := repo.Commands(limit)
	if err != nil {
		return err
	}
	for _, rec := range records {
		outcome := "ok"
		if !rec.Succeeded {
			outcome = "failed: " + rec.Error
		}
		target := rec.Filename
		if target == "" {
			target = "-"
		}
		r.writePlainln("%s  %-8s  %-24s  %s", rec.IssuedAt.Local().Format("2006-01-02 15:04:05"), rec.Command, target, outcome)
	}
	return nil
}
