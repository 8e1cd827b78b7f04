package models

import (
	"fmt"
	"strconv"

	"github.com/desertthunder/m3ux/internal/m3u"
	"github.com/desertthunder/m3ux/internal/shared"
)

// PersistedEntry is one classified record of a cached playlist.
//
// Attributes are stored as their playlist text so a record can be rebuilt
// exactly, while group, type and country get their own columns for filtering.
type PersistedEntry struct {
	timestamps
	id         string
	playlistID string
	position   int
	duration   string
	name       string
	link       string
	attributes string
	group      string
	itemType   string
	season     string
	episode    string
	genre      string
	country    string
}

// NewPersistedEntry captures a classified record for storage under playlistID.
func NewPersistedEntry(playlistID string, r *m3u.Record) *PersistedEntry {
	return &PersistedEntry{
		timestamps: newTimestamps(),
		playlistID: playlistID,
		position:   r.ChannelNumber(),
		duration:   r.Duration(),
		name:       r.Name(),
		link:       r.Link(),
		attributes: r.Attributes(),
		group:      r.Group(),
		itemType:   r.TypeString(),
		season:     r.Season(),
		episode:    r.Episode(),
		genre:      r.Genre(),
		country:    r.Country(),
	}
}

// EntryFields are the stored columns of an entry, used when scanning rows.
type EntryFields struct {
	PlaylistID string
	Position   int
	Duration   string
	Name       string
	Link       string
	Attributes string
	Group      string
	Type       string
	Season     string
	Episode    string
	Genre      string
	Country    string
}

// RestoreEntry rebuilds an entry from stored columns.
func RestoreEntry(id string, f EntryFields) *PersistedEntry {
	return &PersistedEntry{
		timestamps: newTimestamps(),
		id:         id,
		playlistID: f.PlaylistID,
		position:   f.Position,
		duration:   f.Duration,
		name:       f.Name,
		link:       f.Link,
		attributes: f.Attributes,
		group:      f.Group,
		itemType:   f.Type,
		season:     f.Season,
		episode:    f.Episode,
		genre:      f.Genre,
		country:    f.Country,
	}
}

func (e *PersistedEntry) ID() string         { return e.id }
func (e *PersistedEntry) PlaylistID() string { return e.playlistID }
func (e *PersistedEntry) Position() int      { return e.position }
func (e *PersistedEntry) Duration() string   { return e.duration }
func (e *PersistedEntry) Name() string       { return e.name }
func (e *PersistedEntry) Link() string       { return e.link }
func (e *PersistedEntry) Attributes() string { return e.attributes }
func (e *PersistedEntry) Group() string      { return e.group }
func (e *PersistedEntry) Type() string       { return e.itemType }
func (e *PersistedEntry) Season() string     { return e.season }
func (e *PersistedEntry) Episode() string    { return e.episode }
func (e *PersistedEntry) Genre() string      { return e.genre }
func (e *PersistedEntry) Country() string    { return e.country }

func (e *PersistedEntry) SetID(id string) { e.id = id }

// SetPosition changes the 1-based channel number of the entry.
func (e *PersistedEntry) SetPosition(n int) { e.position = n }

// Validate checks the entry can be turned back into a record.
func (e *PersistedEntry) Validate() error {
	if e.playlistID == "" {
		return fmt.Errorf("%w: entry must belong to a playlist", shared.ErrInvalidInput)
	}
	if e.link == "" {
		return fmt.Errorf("%w: entry %q has no link", shared.ErrInvalidInput, e.name)
	}
	if e.position < 1 {
		return fmt.Errorf("%w: entry position must be positive", shared.ErrInvalidInput)
	}
	if _, err := m3u.ParseItemType(e.itemType); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	return nil
}

// Record rebuilds the classified record without re-running classification.
func (e *PersistedEntry) Record() (*m3u.Record, error) {
	r, err := m3u.NewRecordFrom(e.duration, e.attributes, e.name, e.link)
	if err != nil {
		return nil, fmt.Errorf("failed to restore entry %s: %w", e.id, err)
	}

	err = r.Apply(m3u.Overrides{
		m3u.OverrideType:    e.itemType,
		m3u.OverrideSeason:  e.season,
		m3u.OverrideEpisode: e.episode,
		m3u.OverrideGenre:   e.genre,
		m3u.OverrideCountry: e.country,
		m3u.OverrideNumber:  strconv.Itoa(e.position),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to restore entry %s: %w", e.id, err)
	}
	return r, nil
}
