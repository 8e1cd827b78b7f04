package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/m3ux/internal/formatter"
	"github.com/desertthunder/m3ux/internal/m3u"
	"github.com/desertthunder/m3ux/internal/shared"
	"github.com/desertthunder/m3ux/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	GroupListView
	EntryListView
	DetailView
	ConfirmView
	ResultView
)

// Options selects what the TUI opens and where exports go.
type Options struct {
	Ref       string           // Cached playlist ID or name, or a location
	Format    formatter.Format // Export format for groups; defaults to m3u
	OutputDir string           // Export directory; defaults to the working directory
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.PlaylistEngine
	opts         Options
	width        int
	height       int
	spinner      spinner.Model
	progressChan chan tasks.ProgressUpdate
	done         chan loadedData
	progress     tasks.ProgressUpdate
	playlist     *tasks.ImportResult
	groupList    list.Model
	entryList    list.Model
	group        string
	entries      []*m3u.Record
	selected     *m3u.Record
	exported     exportedData
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.PlaylistEngine, opts Options) *Model {
	if opts.Format == "" {
		opts.Format = formatter.FormatM3U
	}
	return &Model{
		ctx:       ctx,
		view:      LoadingView,
		engine:    engine,
		opts:      opts,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		groupList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		entryList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts loading the playlist.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startLoad())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.groupList.SetSize(msg.Width-4, msg.Height-8)
		m.entryList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case spinner.TickMsg:
		if m.view != LoadingView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case LoadingView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case GroupListView:
			return m.handleGroupListKeys(msg)
		case EntryListView:
			return m.handleEntryListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgPlaylistLoaded:
		data := msg.data.(loadedData)
		m.progressChan = nil
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.playlist = data.result
		m.groupList = list.New(groupItems(tasks.Summarize(data.result.Records).Groups), list.NewDefaultDelegate(), 0, 0)
		m.groupList.Title = fmt.Sprintf("%s (%d entries)", data.result.Name, len(data.result.Records))
		m.groupList.SetSize(m.width-4, m.height-8)
		m.view = GroupListView
		return m, nil

	case MsgGroupExported:
		m.exported = msg.data.(exportedData)
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case GroupListView:
		return m.renderList(m.groupList)
	case EntryListView:
		return m.renderList(m.entryList)
	case DetailView:
		return m.renderDetail()
	case ConfirmView:
		return m.renderConfirm()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleGroupListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.groupList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.open):
		if item, ok := m.groupList.SelectedItem().(groupItem); ok {
			m.openGroup(item.group.Name)
			return m, nil
		}
	}
	return m.updateLists(msg)
}

func (m *Model) openGroup(name string) {
	m.group = name
	m.entries = recordsInGroup(m.playlist.Records, name)
	m.entryList = list.New(entryItems(m.entries), list.NewDefaultDelegate(), 0, 0)
	m.entryList.Title = groupItem{group: tasks.GroupCount{Name: name}}.Title()
	m.entryList.SetSize(m.width-4, m.height-8)
	m.view = EntryListView
}

func (m *Model) handleEntryListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.entryList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		if m.entryList.FilterState() == list.FilterApplied {
			return m.updateLists(msg)
		}
		m.view = GroupListView
		return m, nil
	case key.Matches(msg, m.keys.export):
		m.view = ConfirmView
		return m, nil
	case key.Matches(msg, m.keys.open):
		if item, ok := m.entryList.SelectedItem().(entryItem); ok {
			m.selected = item.record
			m.view = DetailView
			return m, nil
		}
	}
	return m.updateLists(msg)
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.open):
		m.selected = nil
		m.view = EntryListView
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.confirm):
		return m, m.exportGroup()
	case key.Matches(msg, m.keys.cancel), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = EntryListView
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = EntryListView
	case key.Matches(msg, m.keys.groups):
		m.view = GroupListView
		m.group = ""
		m.entries = nil
		m.exported = exportedData{}
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case GroupListView:
		m.groupList, cmd = m.groupList.Update(msg)
	case EntryListView:
		m.entryList, cmd = m.entryList.Update(msg)
	}
	return m, cmd
}

func (m *Model) startLoad() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.done = make(chan loadedData, 1)
	progress, done := m.progressChan, m.done

	go func() {
		result, err := m.engine.Resolve(m.ctx, m.opts.Ref, progress)
		done <- loadedData{result, err}
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	return func() tea.Msg {
		if progress != nil {
			if update, ok := <-progress; ok {
				return progressUpdateMsg(update)
			}
		}
		data := <-done
		return playlistLoadedMsg(data.result, data.err)
	}
}

func (m *Model) exportGroup() tea.Cmd {
	name := m.group
	if name == "" {
		name = "ungrouped"
	}
	export := &formatter.Export{
		Name:    fmt.Sprintf("%s - %s", m.playlist.Name, name),
		Source:  m.playlist.Location,
		Records: m.entries,
	}

	var path string
	if m.opts.OutputDir != "" {
		path = filepath.Join(m.opts.OutputDir, formatter.Filename(export.Name, m.opts.Format))
	}
	format := m.opts.Format

	return func() tea.Msg {
		written, err := formatter.WriteExport(export, format, path)
		return groupExportedMsg(written, len(export.Records), err)
	}
}

func (m *Model) renderList(l list.Model) string {
	return fmt.Sprintf("%s\n\n%s", l.View(), m.help.ShortHelpView(m.keys.forView(m.view)))
}

func (m *Model) renderLoading() string {
	title := styles.title.Render("Loading Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchSource:
		phase = "Fetching source..."
	case tasks.ParseEntries:
		phase = "Parsing entries..."
	case tasks.CachePlaylist:
		phase = "Caching playlist..."
	default:
		phase = "Opening " + m.opts.Ref
	}

	return fmt.Sprintf("%s\n\n%s %s\n%s", title, m.spinner.View(), phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderDetail() string {
	r := m.selected
	if r == nil {
		return ""
	}

	rows := [][2]string{
		{"Number", fmt.Sprint(r.ChannelNumber())},
		{"Type", styles.Type(r.Type())},
		{"Group", r.Group()},
		{"Genre", r.Genre()},
		{"Country", r.Country()},
		{"Season", r.Season()},
		{"Episode", r.Episode()},
		{"Duration", shared.FormatDuration(r.Seconds())},
		{"Link", r.Link()},
	}
	for _, a := range r.AttributeList() {
		if a.Key != m3u.AttrGroupTitle {
			rows = append(rows, [2]string{a.Key, a.Value})
		}
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(r.Name()))
	b.WriteString("\n")
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", styles.label.Render(row[0]), row[1])
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.forView(DetailView)))
	return b.String()
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Export '%s'?", m.entryList.Title))
	info := fmt.Sprintf("\nEntries: %d\nFormat: %s\n", len(m.entries), m.opts.Format)
	helpView := m.help.ShortHelpView(m.keys.forView(ConfirmView))
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView(m.keys.forView(ResultView))
	if m.exported.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Export failed: %v", m.exported.err)), helpView)
	}

	title := styles.ok.Render("✓ Export Complete!")
	info := fmt.Sprintf("\nWrote %d entries to %s", m.exported.count, m.exported.path)
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
