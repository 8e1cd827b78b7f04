// Package repositories implements SQLite persistence for cached playlists.
//
// Each repository handles CRUD operations; playlists get atomic sequence numbers for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [PlaylistRepository] : Cached playlists with name and source lookups
//   - [EntryRepository] : Classified entries of a playlist, filterable by group, type and country
//   - [PlaylistCache] : Adapter used by the task engine to store and restore whole playlists
//
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
