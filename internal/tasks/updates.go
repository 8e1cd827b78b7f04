package tasks

import (
	"fmt"

	"github.com/desertthunder/m3ux/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	ParseEntries
	FilterEntries
	WritePlaylist
	CachePlaylist
	BulkImport
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case ParseEntries:
		return "parse_entries"
	case FilterEntries:
		return "filter_entries"
	case WritePlaylist:
		return "write_playlist"
	case CachePlaylist:
		return "cache_playlist"
	case BulkImport:
		return "bulk_import"
	default:
		return ""
	}
}

func fetchSourceUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching playlist (%s)...", name),
	}
}

func parsedEntriesUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ParseEntries,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Parsed %d entries", count),
		Data:    count,
	}
}

func filterEntriesUpdate(kept, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FilterEntries,
		Step:    kept,
		Total:   total,
		Message: fmt.Sprintf("Kept %d of %d entries", kept, total),
	}
}

func writePlaylistUpdate(path string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WritePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing %d entries to %s...", count, path),
	}
}

func cachePlaylistUpdate(pl *models.PersistedPlaylist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CachePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist cached: %s (ID: %s)", pl.Name(), pl.ID()),
		Data:    pl,
	}
}

func bulkStartedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BulkImport,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Importing %d playlists...", total),
	}
}

func bulkCompletedUpdate(step, total int, location string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BulkImport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d entries)", step, total, location, count),
	}
}

func bulkFailedUpdate(step, total int, location string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BulkImport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, location, err),
	}
}
