// Package ui implements an interactive playlist browser using bubbletea's Elm architecture.
//
// The TUI walks down a parsed playlist:
//  1. [LoadingView] : Fetch and parse the source, or load it from the cache
//  2. [GroupListView] : Browse groups, largest first
//  3. [EntryListView] : Browse the entries of one group
//  4. [DetailView] : Inspect a single entry and its attributes
//  5. [ConfirmView] : Confirm exporting the current group
//  6. [ResultView] : Show where the export was written
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the PlaylistEngine while the playlist loads.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, e, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
