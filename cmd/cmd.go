// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// listCommand prints the device playlist
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List the device playlist in playback order",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, csv, md",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to file instead of stdout",
			},
		},
		Action: r.List,
	}
}

// statusCommand fetches playback status once
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show current playback status",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Status,
	}
}

// playCommand starts playback, optionally of a specific video
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play a video, or resume/advance when no filename is given",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "filename"},
		},
		Action: r.Play,
	}
}

func pauseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "pause",
		Usage:  "Toggle pause on the current video",
		Action: r.Pause,
	}
}

func stopCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "stop",
		Usage:  "Stop playback (the device shows its black screen)",
		Action: r.Stop,
	}
}

func nextCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "next",
		Usage:  "Skip to the next video",
		Action: r.Next,
	}
}

func previousCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "previous",
		Aliases: []string{"prev"},
		Usage:   "Skip to the previous video",
		Action:  r.Previous,
	}
}

// uploadCommand sends one or more media files to the device
func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload media files to the device playlist",
		ArgsUsage: "<file> [file...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent upload workers",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Uploads started per second",
			},
		},
		Action: r.Upload,
	}
}

// deleteCommand removes a video from the device
func deleteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a video from the device",
		ArgsUsage: "<filename>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "filename"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
		},
		Action: r.Delete,
	}
}

// reorderCommand replaces the playlist order
func reorderCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "reorder",
		Usage:     "Reorder the playlist; pass every filename in the new order",
		ArgsUsage: "<filename> <filename> [filename...]",
		Action:    r.Reorder,
	}
}

// watchCommand polls status until interrupted
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Poll playback status continuously until interrupted",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "interval",
				Usage: "Poll period in seconds",
			},
		},
		Action: r.Watch,
	}
}

// historyCommand prints the local activity log
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded commands and status transitions",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum records to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "statuses",
				Usage: "Show status transitions instead of commands",
			},
		},
		Action: r.History,
	}
}

// tuiCommand launches the interactive terminal UI
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Interactive playlist controller",
		Action: r.TUI,
	}
}
