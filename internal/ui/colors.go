package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/m3ux/internal/m3u"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	label lipgloss.Style
	types map[m3u.ItemType]lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		label: NewBold(h).Width(10),
		types: map[m3u.ItemType]lipgloss.Style{
			m3u.TypeChannel:       NewStyle(s),
			m3u.TypeMovie:         NewStyle(w),
			m3u.TypeSeriesEpisode: NewStyle(t),
			m3u.TypeNone:          NewStyle(h),
		},
	}
}

// Type renders t in the color assigned to its kind.
func (p *Palette) Type(t m3u.ItemType) string {
	return p.types[t].Render(t.String())
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
