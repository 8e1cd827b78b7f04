package tasks

import (
	"cmp"
	"slices"

	"github.com/desertthunder/m3ux/internal/m3u"
	"github.com/desertthunder/m3ux/internal/shared"
)

// GroupCount is the number of records in one group.
type GroupCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary counts records per type, country and group.
type Summary struct {
	Total     int            `json:"total"`
	Types     map[string]int `json:"types"`
	Countries map[string]int `json:"countries,omitempty"`
	Groups    []GroupCount   `json:"groups"`
}

// Summarize counts records. Groups differing only in case or spacing are
// merged under the first spelling seen, and are sorted by descending count.
func Summarize(records []*m3u.Record) *Summary {
	s := &Summary{
		Total:     len(records),
		Types:     make(map[string]int),
		Countries: make(map[string]int),
	}

	index := make(map[string]int)
	for _, r := range records {
		s.Types[r.TypeString()]++
		if c := r.Country(); c != "" {
			s.Countries[c]++
		}

		key := shared.NormalizeKey(r.Group())
		i, ok := index[key]
		if !ok {
			i = len(s.Groups)
			index[key] = i
			s.Groups = append(s.Groups, GroupCount{Name: r.Group()})
		}
		s.Groups[i].Count++
	}

	slices.SortStableFunc(s.Groups, func(a, b GroupCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return s
}

// GroupCounts converts stored per-group counts to the sorted form used by [Summary].
func GroupCounts(counts map[string]int) []GroupCount {
	groups := make([]GroupCount, 0, len(counts))
	for name, count := range counts {
		groups = append(groups, GroupCount{Name: name, Count: count})
	}
	slices.SortFunc(groups, func(a, b GroupCount) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Name, b.Name))
	})
	return groups
}
