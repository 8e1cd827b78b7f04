package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/m3ux/internal/shared"
)

// PersistedPlaylist is a cached copy of a parsed playlist.
type PersistedPlaylist struct {
	timestamps
	id         string
	sequence   int
	name       string
	source     string
	entryCount int
}

// NewPersistedPlaylist creates a playlist named name that was loaded from source.
func NewPersistedPlaylist(sequence int, name, source string, entryCount int) *PersistedPlaylist {
	return &PersistedPlaylist{
		timestamps: newTimestamps(),
		sequence:   sequence,
		name:       strings.TrimSpace(name),
		source:     source,
		entryCount: entryCount,
	}
}

func (p *PersistedPlaylist) ID() string      { return p.id }
func (p *PersistedPlaylist) Sequence() int   { return p.sequence }
func (p *PersistedPlaylist) Name() string    { return p.name }
func (p *PersistedPlaylist) Source() string  { return p.source }
func (p *PersistedPlaylist) EntryCount() int { return p.entryCount }

func (p *PersistedPlaylist) SetID(id string)      { p.id = id }
func (p *PersistedPlaylist) SetSequence(n int)    { p.sequence = n }
func (p *PersistedPlaylist) SetName(name string)  { p.name = strings.TrimSpace(name) }
func (p *PersistedPlaylist) SetEntryCount(n int)  { p.entryCount = n }
func (p *PersistedPlaylist) SetSource(src string) { p.source = src }

// Validate checks that the playlist has a name and a non-negative entry count.
func (p *PersistedPlaylist) Validate() error {
	if p.name == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	}
	if p.entryCount < 0 {
		return fmt.Errorf("%w: entry count must not be negative", shared.ErrInvalidInput)
	}
	return nil
}
