package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the browser's actions. Cursor movement and filtering are
// handled by the bubbles list itself.
type keyMap struct {
	open    key.Binding
	back    key.Binding
	export  key.Binding
	confirm key.Binding
	cancel  key.Binding
	groups  key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:    key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "up one level")),
		export:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export group")),
		confirm: key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "write file")),
		cancel:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "keep browsing")),
		groups:  key.NewBinding(key.WithKeys("g", "r"), key.WithHelp("g", "all groups")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// forView lists the bindings shown in the help line of view.
func (k keyMap) forView(view ViewState) []key.Binding {
	switch view {
	case GroupListView:
		return []key.Binding{k.open, k.quit}
	case EntryListView:
		return []key.Binding{k.open, k.export, k.back, k.quit}
	case DetailView:
		return []key.Binding{k.back, k.quit}
	case ConfirmView:
		return []key.Binding{k.confirm, k.cancel}
	case ResultView:
		return []key.Binding{k.groups, k.back, k.quit}
	default:
		return []key.Binding{k.quit}
	}
}
