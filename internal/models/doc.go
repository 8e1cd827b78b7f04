// Package models defines the persisted form of parsed playlists.
//
// Records produced by the m3u package live in memory only. The cache stores
// them so a playlist can be browsed, filtered and exported again without
// downloading it:
//   - [PersistedPlaylist] : a cached playlist with its source location and entry count
//   - [PersistedEntry] : one classified record, restorable with [PersistedEntry.Record]
//
// All persistent entities implement the [Model] interface providing ID, timestamps, validation, and soft delete support.
// The [Repository] interface defines standard CRUD operations for database access.
package models
