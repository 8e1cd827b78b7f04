// Package tasks orchestrates playlist operations with real-time progress reporting.
//
// # Core Operations
//
// [PlaylistEngine] exposes the operations behind the CLI commands:
//
//  1. [PlaylistEngine.Import] : Load and parse one location
//     - Resolves the location with the configured [SourceOpener]
//     - Parses it with a fresh [m3u.Deserializer]
//
//  2. [PlaylistEngine.Cache] : Import and save to a [PlaylistStore]
//
//  3. [PlaylistEngine.Resolve] : Prefer a cached playlist, fall back to importing
//
//  4. [PlaylistEngine.Convert] : Filter records and write a normalized M3U file
//
//  5. [PlaylistEngine.BulkImport] : Import many locations concurrently
//     - Bounded worker pool with a [rate.Limiter] on fetches
//     - Duplicate locations are skipped
//     - Optional caching, per-playlist export and a JSON manifest
//
// [Summarize] counts records per type, group and country.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Concurrency
//
// A playlist text is parsed by exactly one goroutine. Bulk imports parallelize
// across sources, never within one. Writes to the store are serialized by the
// engine since SQLite allows a single writer.
package tasks
