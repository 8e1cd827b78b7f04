// package tasks implements playlist operations on top of the m3u parser.
//
// The core abstraction is PlaylistEngine, which orchestrates imports, conversions and bulk imports.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/m3ux/internal/m3u"
	"github.com/desertthunder/m3ux/internal/models"
	"github.com/desertthunder/m3ux/internal/shared"
)

// SourceOpener resolves a location (path or URL) to a playlist source.
type SourceOpener func(location string) (m3u.Source, error)

// PlaylistStore persists parsed playlists.
type PlaylistStore interface {
	// Save stores the records under name and returns the persisted playlist.
	Save(name, source string, records []*m3u.Record) (*models.PersistedPlaylist, error)

	// Load returns a stored playlist by ID or name, with its records in channel order.
	Load(ref string) (*models.PersistedPlaylist, []*m3u.Record, error)
}

// ImportResult contains the records read from one source.
type ImportResult struct {
	Location string
	Name     string
	Records  []*m3u.Record
	Playlist *models.PersistedPlaylist // Set when the import was cached
}

// ConvertResult describes a written playlist.
type ConvertResult struct {
	Output  string
	Total   int // Records parsed from the source
	Written int // Records that passed the filter
}

// EngineOpts configures a [PlaylistEngine].
type EngineOpts struct {
	Open       SourceOpener
	Store      PlaylistStore // Optional; required by Cache and BulkImport with caching
	MediaFiles []string      // Extra movie extensions for the classifier
	Logger     *log.Logger
}

// PlaylistEngine runs playlist operations.
// Every import uses its own deserializer, so one text is only ever parsed by one goroutine.
type PlaylistEngine struct {
	open       SourceOpener
	store      PlaylistStore
	mediaFiles []string
	logger     *log.Logger

	storeMu sync.Mutex
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided dependencies.
func NewPlaylistEngine(opts EngineOpts) *PlaylistEngine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &PlaylistEngine{
		open:       opts.Open,
		store:      opts.Store,
		mediaFiles: opts.MediaFiles,
		logger:     logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Parse loads src and returns its classified records.
func (e *PlaylistEngine) Parse(ctx context.Context, src m3u.Source) ([]*m3u.Record, error) {
	d := m3u.NewDeserializer(m3u.DeserializerOpts{
		MediaFiles: e.mediaFiles,
		Logger:     e.logger,
	})
	if err := d.Open(ctx, src); err != nil {
		return nil, err
	}
	defer d.Close()

	records, err := d.All()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name(), err)
	}
	return records, nil
}

// Import opens location and parses it.
func (e *PlaylistEngine) Import(ctx context.Context, location string, progress chan<- ProgressUpdate) (*ImportResult, error) {
	if e.open == nil {
		return nil, fmt.Errorf("%w: no source opener configured", shared.ErrServiceUnavailable)
	}

	src, err := e.open(location)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, fetchSourceUpdate(1, 1, src.Name()))
	records, err := e.Parse(ctx, src)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, parsedEntriesUpdate(len(records)))

	return &ImportResult{Location: location, Name: PlaylistName(location), Records: records}, nil
}

// Cache imports location and saves it to the store under name.
// An empty name is derived from the location.
func (e *PlaylistEngine) Cache(ctx context.Context, name, location string, progress chan<- ProgressUpdate) (*ImportResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: playlist store not initialized", shared.ErrServiceUnavailable)
	}

	result, err := e.Import(ctx, location, progress)
	if err != nil {
		return nil, err
	}
	if name != "" {
		result.Name = name
	}

	if err := e.save(result); err != nil {
		return result, err
	}
	e.sendProgress(progress, cachePlaylistUpdate(result.Playlist))
	return result, nil
}

func (e *PlaylistEngine) save(result *ImportResult) error {
	e.storeMu.Lock()
	defer e.storeMu.Unlock()

	playlist, err := e.store.Save(result.Name, result.Location, result.Records)
	if err != nil {
		return err
	}
	result.Playlist = playlist
	e.logger.Info("cached playlist", "name", playlist.Name(), "id", playlist.ID(), "entries", len(result.Records))
	return nil
}

// Resolve returns the records for ref. A cached playlist with that ID or name
// wins; otherwise ref is imported as a location.
func (e *PlaylistEngine) Resolve(ctx context.Context, ref string, progress chan<- ProgressUpdate) (*ImportResult, error) {
	if e.store != nil {
		playlist, records, err := e.store.Load(ref)
		switch {
		case err == nil:
			return &ImportResult{Location: playlist.Source(), Name: playlist.Name(), Records: records, Playlist: playlist}, nil
		case !errors.Is(err, shared.ErrPlaylistNotFound):
			return nil, err
		}
	}
	return e.Import(ctx, ref, progress)
}

// Convert reads location, keeps the records matching filter and writes them
// to output as an extended M3U playlist.
func (e *PlaylistEngine) Convert(ctx context.Context, location, output string, filter Filter, progress chan<- ProgressUpdate) (*ConvertResult, error) {
	result, err := e.Resolve(ctx, location, progress)
	if err != nil {
		return nil, err
	}

	kept := filter.Apply(result.Records)
	e.sendProgress(progress, filterEntriesUpdate(len(kept), len(result.Records)))

	fs, err := m3u.Create(output)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, writePlaylistUpdate(fs.Path(), len(kept)))
	writeErr := fs.WriteAll(kept)
	if err := errors.Join(writeErr, fs.Close()); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", output, err)
	}

	e.logger.Info("converted playlist", "source", location, "output", output, "entries", len(kept))
	return &ConvertResult{Output: fs.Path(), Total: len(result.Records), Written: len(kept)}, nil
}

// PlaylistName derives a display name from a location: the last path element
// without its extension, or the host for URLs without a path.
func PlaylistName(location string) string {
	location = strings.TrimSpace(location)
	p := location

	if u, err := url.Parse(location); err == nil && u.Host != "" {
		p = u.Path
		if strings.Trim(p, "/") == "" {
			return u.Host
		}
	}

	p = strings.ReplaceAll(p, "\\", "/")
	base := path.Base(strings.TrimSuffix(p, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" || base == "." || base == "/" {
		return "playlist"
	}
	return base
}

// Filter selects records by type, group and country. Empty fields match everything.
// Group and country comparisons ignore case; Search matches a substring of the name.
type Filter struct {
	Types     []m3u.ItemType
	Groups    []string
	Countries []string
	Search    string
}

// ParseTypes parses type names for a [Filter].
func ParseTypes(names []string) ([]m3u.ItemType, error) {
	types := make([]m3u.ItemType, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		t, err := m3u.ParseItemType(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrInvalidFlag, err)
		}
		types = append(types, t)
	}
	return types, nil
}

// IsEmpty reports whether the filter matches every record.
func (f Filter) IsEmpty() bool {
	return len(f.Types) == 0 && len(f.Groups) == 0 && len(f.Countries) == 0 && f.Search == ""
}

func containsFold(values []string, s string) bool {
	return slices.ContainsFunc(values, func(v string) bool { return strings.EqualFold(strings.TrimSpace(v), s) })
}

// Match reports whether r passes the filter.
func (f Filter) Match(r *m3u.Record) bool {
	if len(f.Types) > 0 && !slices.Contains(f.Types, r.Type()) {
		return false
	}
	if len(f.Groups) > 0 && !containsFold(f.Groups, r.Group()) {
		return false
	}
	if len(f.Countries) > 0 && !containsFold(f.Countries, r.Country()) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(r.Name()), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// Apply returns the records that pass the filter, in order.
func (f Filter) Apply(records []*m3u.Record) []*m3u.Record {
	if f.IsEmpty() {
		return records
	}

	kept := make([]*m3u.Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			kept = append(kept, r)
		}
	}
	return kept
}
