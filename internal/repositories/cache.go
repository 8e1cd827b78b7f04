package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/m3ux/internal/m3u"
	"github.com/desertthunder/m3ux/internal/models"
	"github.com/desertthunder/m3ux/internal/shared"
)

// PlaylistCache implements tasks.PlaylistStore using [PlaylistRepository] and [EntryRepository].
//
// Playlists can be addressed by ID or by name; a name resolves to the most
// recently cached playlist carrying it.
type PlaylistCache struct {
	playlists *PlaylistRepository
	entries   *EntryRepository
}

// NewPlaylistCache creates a cache backed by db
func NewPlaylistCache(db *sql.DB) *PlaylistCache {
	return &PlaylistCache{
		playlists: NewPlaylistRepository(db),
		entries:   NewEntryRepository(db),
	}
}

// Save stores a playlist and its classified records.
func (c *PlaylistCache) Save(name, source string, records []*m3u.Record) (*models.PersistedPlaylist, error) {
	playlist := models.NewPersistedPlaylist(0, name, source, len(records))
	if err := c.playlists.Create(playlist); err != nil {
		return nil, fmt.Errorf("failed to cache playlist: %w", err)
	}

	entries := make([]*models.PersistedEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, models.NewPersistedEntry(playlist.ID(), record))
	}

	if err := c.entries.CreateBatch(entries); err != nil {
		if delErr := c.playlists.Delete(playlist.ID()); delErr != nil {
			err = errors.Join(err, delErr)
		}
		return nil, fmt.Errorf("failed to cache entries: %w", err)
	}

	return playlist, nil
}

// Find resolves a playlist by ID, then by name.
func (c *PlaylistCache) Find(ref string) (*models.PersistedPlaylist, error) {
	playlist, err := c.playlists.Get(ref)
	if errors.Is(err, shared.ErrPlaylistNotFound) {
		playlist, err = c.playlists.GetByName(ref)
	}
	if err != nil {
		return nil, fmt.Errorf("%q: %w", ref, err)
	}
	return playlist, nil
}

// Load returns a cached playlist and its records in channel order.
func (c *PlaylistCache) Load(ref string) (*models.PersistedPlaylist, []*m3u.Record, error) {
	playlist, err := c.Find(ref)
	if err != nil {
		return nil, nil, err
	}

	entries, err := c.entries.List(map[string]any{"playlist_id": playlist.ID()})
	if err != nil {
		return nil, nil, err
	}

	records := make([]*m3u.Record, 0, len(entries))
	for _, entry := range entries {
		record, err := entry.Record()
		if err != nil {
			return nil, nil, err
		}
		records = append(records, record)
	}

	return playlist, records, nil
}

// List returns every cached playlist.
func (c *PlaylistCache) List() ([]*models.PersistedPlaylist, error) {
	return c.playlists.List(nil)
}

// Delete soft-deletes a cached playlist and its entries.
func (c *PlaylistCache) Delete(ref string) error {
	playlist, err := c.Find(ref)
	if err != nil {
		return err
	}
	return c.playlists.Delete(playlist.ID())
}

// Groups returns entry counts per group for a cached playlist.
func (c *PlaylistCache) Groups(ref string) (map[string]int, error) {
	playlist, err := c.Find(ref)
	if err != nil {
		return nil, err
	}
	return c.entries.CountByGroup(playlist.ID())
}
