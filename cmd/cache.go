package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/m3ux/internal/models"
	"github.com/desertthunder/m3ux/internal/shared"
	"github.com/desertthunder/m3ux/internal/tasks"
	"github.com/urfave/cli/v3"
)

// cachedPlaylist is the JSON shape of a cached playlist.
type cachedPlaylist struct {
	ID        string             `json:"id"`
	Sequence  int                `json:"sequence"`
	Name      string             `json:"name"`
	Source    string             `json:"source"`
	Entries   int                `json:"entries"`
	CreatedAt time.Time          `json:"created_at"`
	Groups    []tasks.GroupCount `json:"groups,omitempty"`
}

func newCachedPlaylist(p *models.PersistedPlaylist) cachedPlaylist {
	return cachedPlaylist{
		ID:        p.ID(),
		Sequence:  p.Sequence(),
		Name:      p.Name(),
		Source:    p.Source(),
		Entries:   p.EntryCount(),
		CreatedAt: p.CreatedAt(),
	}
}

func (r *Runner) cacheRef(cmd *cli.Command) (string, error) {
	ref := cmd.Args().First()
	if ref == "" {
		return "", fmt.Errorf("%w: playlist id or name", shared.ErrMissingArgument)
	}
	return ref, nil
}

// CacheImport parses a playlist and stores its classified entries.
func (r *Runner) CacheImport(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd, true); err != nil {
		return err
	}

	location, err := r.location(cmd)
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 10)
	done := r.reportProgress(progress)
	result, err := r.engine.Cache(ctx, cmd.String("name"), location, progress)
	close(progress)
	<-done

	if err != nil {
		return err
	}

	r.writePlainln("✓ Cached %s: %d entries (ID: %s)", result.Playlist.Name(), result.Playlist.EntryCount(), result.Playlist.ID())
	return nil
}

// CacheList prints every cached playlist.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd, true); err != nil {
		return err
	}

	playlists, err := r.cache.List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]cachedPlaylist, 0, len(playlists))
		for _, p := range playlists {
			views = append(views, newCachedPlaylist(p))
		}
		return r.writeJSON(views, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		r.writePlain("No cached playlists\n")
		return nil
	}

	rows := make([][]string, 0, len(playlists))
	for _, p := range playlists {
		rows = append(rows, []string{
			strconv.Itoa(p.Sequence()), p.Name(), strconv.Itoa(p.EntryCount()), p.CreatedAt().Format(time.DateTime), p.ID(),
		})
	}
	return r.writeTable([]string{"#", "NAME", "ENTRIES", "CACHED", "ID"}, rows)
}

// CacheShow prints a cached playlist and its group counts.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd, true); err != nil {
		return err
	}

	ref, err := r.cacheRef(cmd)
	if err != nil {
		return err
	}

	playlist, err := r.cache.Find(ref)
	if err != nil {
		return err
	}
	counts, err := r.cache.Groups(playlist.ID())
	if err != nil {
		return err
	}

	view := newCachedPlaylist(playlist)
	view.Groups = tasks.GroupCounts(counts)

	if cmd.Bool("json") {
		return r.writeJSON(view, cmd.Bool("pretty"))
	}

	r.writePlainHeader(view.Name)
	r.writePlain("ID:      %s\n", view.ID)
	r.writePlain("Source:  %s\n", view.Source)
	r.writePlain("Entries: %d\n", view.Entries)
	r.writePlain("Cached:  %s\n", view.CreatedAt.Format(time.DateTime))
	r.writePlainln("Groups:")
	return r.writeTable([]string{"GROUP", "COUNT"}, countRows(view.Groups))
}

// CacheDelete removes a cached playlist.
func (r *Runner) CacheDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd, true); err != nil {
		return err
	}

	ref, err := r.cacheRef(cmd)
	if err != nil {
		return err
	}

	if err := r.cache.Delete(ref); err != nil {
		return err
	}

	r.logger.Info("deleted cached playlist", "ref", ref)
	r.writePlain("✓ Deleted %s\n", ref)
	return nil
}
