package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/m3ux/internal/formatter"
	"github.com/desertthunder/m3ux/internal/m3u"
	"github.com/desertthunder/m3ux/internal/shared"
	"github.com/desertthunder/m3ux/internal/tasks"
	"github.com/urfave/cli/v3"
)

// readLocations returns the non-empty, non-comment lines of path.
func readLocations(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locations file: %w", err)
	}

	var locations []string
	for line := range strings.Lines(string(data)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		locations = append(locations, line)
	}
	return locations, nil
}

// Bulk imports several playlists concurrently.
func (r *Runner) Bulk(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	locations := cmd.Args().Slice()
	if file := cmd.String("file"); file != "" {
		fromFile, err := readLocations(file)
		if err != nil {
			return err
		}
		locations = append(locations, fromFile...)
	}
	if len(locations) == 0 {
		return fmt.Errorf("%w: at least one location or --file", shared.ErrMissingArgument)
	}

	if err := r.prepare(cmd, cmd.Bool("cache")); err != nil {
		return err
	}

	opts := tasks.BulkImportOpts{
		NumWorkers: orConfig(cmd.Int("workers"), r.config.HTTP.Workers),
		RateLimit:  orConfig(cmd.Float("rate"), r.config.HTTP.RateLimit),
		Cache:      cmd.Bool("cache"),
		OutputDir:  cmd.String("output-dir"),
		Format:     format,
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := r.reportProgress(progress)
	result, err := r.engine.BulkImport(ctx, progress, locations, opts)
	close(progress)
	<-done

	if result == nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Bulk Import Complete")
	r.writePlain("Sources: %d (%d succeeded, %d failed)\n", result.TotalSources, result.Succeeded, result.Failed)
	if len(result.Duplicates) > 0 {
		r.writePlain("Skipped duplicates: %d\n", len(result.Duplicates))
	}
	if result.OutputDirectory != "" {
		r.writePlain("Output: %s\n", result.OutputDirectory)
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}

	if result.Failed > 0 {
		r.writePlain("\nFailed sources:\n")
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %s\n", res.Location, res.ErrorMessage)
			}
		}
	}

	if merge := cmd.String("merge"); merge != "" && err == nil {
		written, mergeErr := writeMerged(merge, result.Merged())
		if mergeErr != nil {
			return mergeErr
		}
		r.writePlain("Merged %d unique entries into %s\n", written, merge)
	}

	return err
}

func writeMerged(path string, records []*m3u.Record) (int, error) {
	fs, err := m3u.Create(path)
	if err != nil {
		return 0, err
	}
	writeErr := fs.WriteAll(records)
	if err := errors.Join(writeErr, fs.Close()); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return len(records), nil
}

// orConfig returns flag when set, otherwise the configured value.
func orConfig[T int | float64](flag, configured T) T {
	if flag > 0 {
		return flag
	}
	return configured
}
