package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/m3ux/internal/formatter"
	"github.com/desertthunder/m3ux/internal/shared"
	"github.com/desertthunder/m3ux/internal/tasks"
	"github.com/urfave/cli/v3"
)

// resolve prepares the runner and loads the records named by the first argument.
func (r *Runner) resolve(ctx context.Context, cmd *cli.Command) (*tasks.ImportResult, tasks.Filter, error) {
	if err := r.prepare(cmd, false); err != nil {
		return nil, tasks.Filter{}, err
	}

	filter, err := r.filter(cmd)
	if err != nil {
		return nil, filter, err
	}

	location, err := r.location(cmd)
	if err != nil {
		return nil, filter, err
	}

	result, err := r.engine.Resolve(ctx, location, nil)
	if err != nil {
		return nil, filter, fmt.Errorf("failed to load %s: %w", location, err)
	}
	return result, filter, nil
}

// Parse prints the classified entries of a playlist.
func (r *Runner) Parse(ctx context.Context, cmd *cli.Command) error {
	result, filter, err := r.resolve(ctx, cmd)
	if err != nil {
		return err
	}

	records := filter.Apply(result.Records)
	if limit := cmd.Int("limit"); limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	r.logger.Debug("parsed playlist", "name", result.Name, "entries", len(result.Records), "shown", len(records))

	if cmd.Bool("json") {
		view := formatter.PlaylistView{
			Name:    result.Name,
			Source:  result.Location,
			Count:   len(records),
			Records: make([]formatter.RecordView, 0, len(records)),
		}
		for _, rec := range records {
			view.Records = append(view.Records, formatter.NewRecordView(rec))
		}
		return r.writeJSON(view, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d of %d entries)", result.Name, len(records), len(result.Records)))

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			strconv.Itoa(rec.ChannelNumber()), rec.TypeString(), rec.Country(), rec.Group(), rec.Name(),
			shared.FormatDuration(rec.Seconds()),
		})
	}
	return r.writeTable([]string{"#", "TYPE", "COUNTRY", "GROUP", "NAME", "DURATION"}, rows)
}

// Convert writes the filtered records of a playlist to an M3U file.
func (r *Runner) Convert(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd, false); err != nil {
		return err
	}

	location, err := r.location(cmd)
	if err != nil {
		return err
	}
	filter, err := r.filter(cmd)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		output = r.config.Playlist.Output
	}
	if output == "" {
		return fmt.Errorf("%w: --output", shared.ErrMissingArgument)
	}

	progress := make(chan tasks.ProgressUpdate, 10)
	done := r.reportProgress(progress)
	result, err := r.engine.Convert(ctx, location, output, filter, progress)
	close(progress)
	<-done

	if err != nil {
		return err
	}

	r.writePlainln("✓ Wrote %d of %d entries to %s", result.Written, result.Total, result.Output)
	return nil
}

// Export renders a playlist in the requested format.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	result, filter, err := r.resolve(ctx, cmd)
	if err != nil {
		return err
	}

	export := &formatter.Export{
		Name:    result.Name,
		Source:  result.Location,
		Records: filter.Apply(result.Records),
	}

	if cmd.String("output") == "-" {
		data, err := formatter.Render(export, format)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	path, err := formatter.WriteExport(export, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("exported playlist", "name", export.Name, "format", format, "path", path)
	r.writePlain("✓ Exported %d entries to %s\n", len(export.Records), path)
	return nil
}

// Groups prints entry counts per group, type and country.
func (r *Runner) Groups(ctx context.Context, cmd *cli.Command) error {
	result, filter, err := r.resolve(ctx, cmd)
	if err != nil {
		return err
	}

	summary := tasks.Summarize(filter.Apply(result.Records))
	if cmd.Bool("json") {
		return r.writeJSON(summary, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d entries)", result.Name, summary.Total))

	if err := r.writeTable([]string{"TYPE", "COUNT"}, countRows(tasks.GroupCounts(summary.Types))); err != nil {
		return err
	}
	if len(summary.Countries) > 0 {
		if err := r.writeTable([]string{"COUNTRY", "COUNT"}, countRows(tasks.GroupCounts(summary.Countries))); err != nil {
			return err
		}
	}
	return r.writeTable([]string{"GROUP", "COUNT"}, countRows(summary.Groups))
}

func countRows(counts []tasks.GroupCount) [][]string {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Name, strconv.Itoa(c.Count)})
	}
	return rows
}
