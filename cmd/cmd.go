// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

// filterFlags select records by classification.
func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "type",
			Aliases: []string{"t"},
			Usage:   "Keep entries of this type (channel, movie, series_episode, none)",
		},
		&cli.StringSliceFlag{
			Name:    "group",
			Aliases: []string{"g"},
			Usage:   "Keep entries in this group",
		},
		&cli.StringSliceFlag{
			Name:  "country",
			Usage: "Keep entries with this country code",
		},
		&cli.StringFlag{
			Name:    "search",
			Aliases: []string{"q"},
			Usage:   "Keep entries whose name contains this text",
		},
	}
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

func flags(groups ...[]cli.Flag) []cli.Flag {
	out := []cli.Flag{configFlag()}
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// setupCommand handles setup operations for the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: flags([]cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				}),
				Action: r.SetupDatabase,
			},
		},
	}
}

// parseCommand prints the classified entries of a playlist.
func parseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Aliases:   []string{"ls"},
		Usage:     "Parse a playlist and print its classified entries",
		ArgsUsage: "<location|cached id or name>",
		Flags: flags(filterFlags(), jsonFlags(), []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of entries to print",
			},
		}),
		Action: r.Parse,
	}
}

// convertCommand writes a filtered, normalised copy of a playlist.
func convertCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Filter a playlist and write it as extended M3U",
		ArgsUsage: "<location|cached id or name>",
		Flags: flags(filterFlags(), []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file (defaults to [playlist] output)",
			},
		}),
		Action: r.Convert,
	}
}

// exportCommand renders a playlist in one of the export formats.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a playlist as m3u, csv, markdown, txt or json",
		ArgsUsage: "<location|cached id or name>",
		Flags: flags(filterFlags(), []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format",
				Value:   "csv",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file (defaults to a name derived from the playlist; - for stdout)",
			},
		}),
		Action: r.Export,
	}
}

// groupsCommand summarizes a playlist by group.
func groupsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "groups",
		Usage:     "Count entries per group, type and country",
		ArgsUsage: "<location|cached id or name>",
		Flags:     flags(filterFlags(), jsonFlags()),
		Action:    r.Groups,
	}
}

// cacheCommand handles opt-in playlist caching
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Cache parsed playlists locally",
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Parse a playlist and store its classified entries",
				ArgsUsage: "<location>",
				Flags: flags([]cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Name to store the playlist under (defaults to one derived from the location)",
					},
				}),
				Action: r.CacheImport,
			},
			{
				Name:   "list",
				Usage:  "List cached playlists",
				Flags:  flags(jsonFlags()),
				Action: r.CacheList,
			},
			{
				Name:      "show",
				Usage:     "Show a cached playlist and its groups",
				ArgsUsage: "<id or name>",
				Flags:     flags(jsonFlags()),
				Action:    r.CacheShow,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Remove a cached playlist",
				ArgsUsage: "<id or name>",
				Flags:     flags(),
				Action:    r.CacheDelete,
			},
		},
	}
}

// bulkCommand imports several playlists concurrently.
func bulkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "bulk",
		Usage:     "Import several playlists with a bounded worker pool",
		ArgsUsage: "<location>...",
		Flags: flags([]cli.Flag{
			&cli.StringFlag{
				Name:  "file",
				Usage: "Read locations from this file, one per line",
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Write one export per playlist and a manifest to this directory",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format for --output-dir",
				Value:   "m3u",
			},
			&cli.BoolFlag{
				Name:  "cache",
				Usage: "Store every imported playlist in the database",
			},
			&cli.StringFlag{
				Name:  "merge",
				Usage: "Write all entries, deduplicated by link, to this M3U file",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent imports (defaults to [http] workers)",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Sources started per second (defaults to [http] rate_limit)",
			},
		}),
		Action: r.Bulk,
	}
}

// serveCommand publishes a playlist over HTTP.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "Serve a filtered playlist over HTTP",
		ArgsUsage: "<location|cached id or name>",
		Flags: flags([]cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (defaults to [server] host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (defaults to [server] port)",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "Require this token from clients (defaults to [server] token)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the playlist URL in the default browser",
			},
		}),
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Aliases:   []string{"interactive", "ui"},
		Usage:     "Browse a playlist by group in an interactive TUI",
		ArgsUsage: "<location|cached id or name>",
		Flags: flags([]cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Format for exported groups",
				Value:   "m3u",
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory for exported groups",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log file used while the TUI owns the terminal",
				Value: "./tmp/m3ux-tui.log",
			},
		}),
		Action: r.TUI,
	}
}
