package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/m3ux/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgPlaylistLoaded
	MsgGroupExported
)

type loadedData struct {
	result *tasks.ImportResult
	err    error
}

type exportedData struct {
	path  string
	count int
	err   error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// playlistLoadedMsg is the constructor for [MsgPlaylistLoaded]
func playlistLoadedMsg(result *tasks.ImportResult, err error) Msg {
	return Msg{kind: MsgPlaylistLoaded, data: loadedData{result, err}}
}

// groupExportedMsg is the constructor for [MsgGroupExported]
func groupExportedMsg(path string, count int, err error) Msg {
	return Msg{kind: MsgGroupExported, data: exportedData{path, count, err}}
}
