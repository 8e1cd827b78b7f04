package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/desertthunder/m3ux/internal/formatter"
	"github.com/desertthunder/m3ux/internal/m3u"
	"github.com/desertthunder/m3ux/internal/shared"
	"golang.org/x/time/rate"
)

// BulkImportOpts contains configuration for bulk playlist imports.
type BulkImportOpts struct {
	NumWorkers int              // Concurrent workers (default: 5, max: 10)
	RateLimit  float64          // Source fetches per second (default: 5)
	Cache      bool             // Save each playlist to the store
	OutputDir  string           // When set, each playlist is exported here
	Format     formatter.Format // Export format (default: m3u)
}

// SourceResult is the outcome of importing one location.
type SourceResult struct {
	Location     string   `json:"location"`
	Name         string   `json:"name"`
	Entries      int      `json:"entries"`
	PlaylistID   string   `json:"playlist_id,omitempty"`
	Files        []string `json:"files,omitempty"`
	Success      bool     `json:"success"`
	ErrorMessage string   `json:"error,omitempty"`
	Error        error    `json:"-"`

	index   int
	records []*m3u.Record
}

func (r *SourceResult) fail(err error) {
	r.Success = false
	r.Error = err
	r.ErrorMessage = err.Error()
}

// Records returns the records imported from the location.
func (r *SourceResult) Records() []*m3u.Record { return r.records }

// BulkImportResult summarizes a bulk import. Results are in input order.
type BulkImportResult struct {
	TotalSources    int            `json:"total_sources"`
	Succeeded       int            `json:"succeeded"`
	Failed          int            `json:"failed"`
	Duplicates      []string       `json:"duplicates,omitempty"`
	Results         []SourceResult `json:"results"`
	OutputDirectory string         `json:"output_directory,omitempty"`
	ManifestPath    string         `json:"-"`
}

// Merged returns the records of every successful import, dropping records
// whose link was already seen. Records are renumbered 1, 2, 3… in order.
func (r *BulkImportResult) Merged() []*m3u.Record {
	seen := make(map[string]bool)
	var merged []*m3u.Record
	for _, res := range r.Results {
		for _, record := range res.records {
			key := shared.NormalizeKey(record.Link())
			if seen[key] {
				continue
			}
			seen[key] = true
			record.SetChannelNumber(len(merged) + 1)
			merged = append(merged, record)
		}
	}
	return merged
}

type bulkJob struct {
	index    int
	location string
}

// dedupeLocations drops blank and repeated locations, comparing them with [shared.NormalizeKey].
func dedupeLocations(locations []string) (unique, duplicates []string) {
	seen := make(map[string]bool)
	for _, loc := range locations {
		loc = strings.TrimSpace(loc)
		if loc == "" {
			continue
		}
		key := shared.NormalizeKey(loc)
		if seen[key] {
			duplicates = append(duplicates, loc)
			continue
		}
		seen[key] = true
		unique = append(unique, loc)
	}
	return unique, duplicates
}

// BulkImport imports multiple playlists concurrently with rate limiting and progress tracking.
//
// A bounded worker pool fetches and parses sources; the limiter spaces out
// fetch starts. Each source is parsed by the worker that fetched it. A failed
// source does not stop the others. When OutputDir is set each playlist is
// exported there and a manifest summarizing the run is written alongside.
func (e *PlaylistEngine) BulkImport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	locations []string,
	opts BulkImportOpts,
) (*BulkImportResult, error) {
	if e.open == nil {
		return nil, fmt.Errorf("%w: no source opener configured", shared.ErrServiceUnavailable)
	}
	if opts.Cache && e.store == nil {
		return nil, fmt.Errorf("%w: playlist store not initialized", shared.ErrServiceUnavailable)
	}

	unique, duplicates := dedupeLocations(locations)
	if len(unique) == 0 {
		return nil, fmt.Errorf("%w: no playlist locations", shared.ErrMissingArgument)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatM3U
	}

	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	result := &BulkImportResult{
		TotalSources:    len(unique),
		Duplicates:      duplicates,
		Results:         make([]SourceResult, len(unique)),
		OutputDirectory: opts.OutputDir,
	}
	dispatched := make([]bool, len(unique))

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan bulkJob, len(unique))
	results := make(chan SourceResult, len(unique))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.importWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		e.sendProgress(prog, bulkStartedUpdate(len(unique)))
		for i, loc := range unique {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			dispatched[i] = true
			jobs <- bulkJob{index: i, location: loc}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results[res.index] = res

		if res.Success {
			result.Succeeded++
			e.sendProgress(prog, bulkCompletedUpdate(completed, len(unique), res.Location, res.Entries))
		} else {
			result.Failed++
			e.sendProgress(prog, bulkFailedUpdate(completed, len(unique), res.Location, res.Error))
		}
	}

	// The producer has exited once results is closed.
	for i, loc := range unique {
		if dispatched[i] {
			continue
		}
		res := SourceResult{index: i, Location: loc, Name: PlaylistName(loc)}
		res.fail(fmt.Errorf("not imported: %w", context.Cause(ctx)))
		result.Results[i] = res
		result.Failed++
	}

	if opts.OutputDir != "" {
		manifestPath := filepath.Join(opts.OutputDir, "import_manifest.json")
		data, err := shared.MarshalJSON(result, true)
		if err == nil {
			err = os.WriteFile(manifestPath, data, 0644)
		}
		if err != nil {
			return result, fmt.Errorf("import completed but failed to write manifest: %w", err)
		}
		result.ManifestPath = manifestPath
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("bulk import interrupted: %w", err)
	}
	return result, nil
}

// importWorker is a worker goroutine that imports playlists from the jobs channel.
func (e *PlaylistEngine) importWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan bulkJob,
	results chan<- SourceResult,
	opts BulkImportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		results <- e.importSingle(ctx, job, opts)
	}
}

// importSingle fetches, parses and optionally caches and exports one playlist.
func (e *PlaylistEngine) importSingle(ctx context.Context, j bulkJob, opts BulkImportOpts) SourceResult {
	res := SourceResult{index: j.index, Location: j.location, Name: PlaylistName(j.location)}

	imported, err := e.Import(ctx, j.location, nil)
	if err != nil {
		e.logger.Warn("import failed", "location", j.location, "error", err)
		res.fail(err)
		return res
	}
	res.records = imported.Records
	res.Entries = len(imported.Records)

	if opts.Cache {
		if err := e.save(imported); err != nil {
			res.fail(fmt.Errorf("cache failed: %w", err))
			return res
		}
		res.PlaylistID = imported.Playlist.ID()
	}

	if opts.OutputDir != "" {
		export := &formatter.Export{Name: imported.Name, Source: j.location, Records: imported.Records}
		filename := formatter.Filename(fmt.Sprintf("%02d_%s", j.index+1, imported.Name), opts.Format)

		path, err := formatter.WriteExport(export, opts.Format, filepath.Join(opts.OutputDir, filename))
		if err != nil {
			res.fail(fmt.Errorf("%s export failed: %w", opts.Format, err))
			return res
		}
		res.Files = []string{path}
	}

	res.Success = true
	return res
}
