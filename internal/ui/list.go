package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/m3ux/internal/m3u"
	"github.com/desertthunder/m3ux/internal/shared"
	"github.com/desertthunder/m3ux/internal/tasks"
)

var (
	_ list.Item = groupItem{}
	_ list.Item = entryItem{}
)

const noGroup = "(no group)"

// groupItem wraps [tasks.GroupCount] to implement [list.Item].
type groupItem struct {
	group tasks.GroupCount
}

func (i groupItem) FilterValue() string { return i.group.Name }
func (i groupItem) Title() string {
	if i.group.Name == "" {
		return noGroup
	}
	return i.group.Name
}
func (i groupItem) Description() string {
	if i.group.Count == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", i.group.Count)
}

// entryItem wraps [m3u.Record] to implement [list.Item].
type entryItem struct {
	record *m3u.Record
}

func (i entryItem) FilterValue() string { return i.record.Name() }
func (i entryItem) Title() string {
	return fmt.Sprintf("%d. %s", i.record.ChannelNumber(), i.record.Name())
}
func (i entryItem) Description() string {
	parts := []string{i.record.TypeString()}
	if i.record.Season() != "" || i.record.Episode() != "" {
		parts = append(parts, i.record.Season()+i.record.Episode())
	}
	if i.record.Country() != "" {
		parts = append(parts, i.record.Country())
	}
	parts = append(parts, shared.FormatDuration(i.record.Seconds()))
	return strings.Join(parts, " • ")
}

func groupItems(groups []tasks.GroupCount) []list.Item {
	items := make([]list.Item, len(groups))
	for i, g := range groups {
		items[i] = groupItem{group: g}
	}
	return items
}

func entryItems(records []*m3u.Record) []list.Item {
	items := make([]list.Item, len(records))
	for i, r := range records {
		items[i] = entryItem{record: r}
	}
	return items
}

// recordsInGroup selects records whose group matches name the way
// [tasks.Summarize] merges them.
func recordsInGroup(records []*m3u.Record, name string) []*m3u.Record {
	key := shared.NormalizeKey(name)
	var out []*m3u.Record
	for _, r := range records {
		if shared.NormalizeKey(r.Group()) == key {
			out = append(out, r)
		}
	}
	return out
}
