package m3u

import (
	"fmt"
	"iter"
	"regexp"
	"strings"

	"github.com/desertthunder/m3ux/internal/shared"
)

const (
	HeaderDirective = "#EXTM3U"
	EntryDirective  = "#EXTINF:"
)

// entryRegex matches one entry: the #EXTINF line with duration, optional
// attribute fragment and a name starting with A-Z, then the link line.
var entryRegex = regexp.MustCompile(`(?:^|\n)#EXTINF:([-+]?(?:\d*\.\d+|\d+))[. ]([^,]+)?,([A-Z].*?)[\r\n]+(.*)`)

// Entry holds the raw fields of a single playlist item as matched in the text.
type Entry struct {
	Duration   string // Duration token, e.g. "-1" or "12.5"
	Fraction   string // Digits after the decimal point of Duration, informational only
	Attributes string // Attribute fragment between the duration and the comma
	Name       string // Display name, starts with an uppercase letter
	Link       string // Stream address from the following line
}

func newEntry(text string, loc []int) Entry {
	group := func(n int) string {
		if loc[2*n] < 0 {
			return ""
		}
		return text[loc[2*n]:loc[2*n+1]]
	}

	entry := Entry{
		Duration:   group(1),
		Attributes: group(2),
		Name:       group(3),
		Link:       group(4),
	}
	if _, frac, ok := strings.Cut(entry.Duration, "."); ok {
		entry.Fraction = frac
	}
	return entry
}

// Entries returns a lazy sequence over the entries found in text.
//
// Scanning is header-agnostic: #EXTINF lines are found anywhere at a line
// start. Spans that do not form a complete entry (lowercase name, missing
// link line) are skipped; when the line after an #EXTINF is another #EXTINF,
// scanning resumes there so the second entry is still found. Ranging over the sequence again rescans the text.
func Entries(text string) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		pos := 0
		for pos < len(text) {
			loc := entryRegex.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				return
			}
			for i := range loc {
				if loc[i] >= 0 {
					loc[i] += pos
				}
			}

			entry := newEntry(text, loc)
			if link := strings.TrimSpace(entry.Link); strings.HasPrefix(link, EntryDirective) {
				// The link line is the next entry; rescan from its start.
				pos = loc[8]
				continue
			} else if link == "" {
				pos = max(loc[1], pos+1)
				continue
			}

			if !yield(entry) {
				return
			}
			pos = max(loc[1], pos+1)
		}
	}
}

// Extract collects every entry in text.
func Extract(text string) []Entry {
	var entries []Entry
	for entry := range Entries(text) {
		entries = append(entries, entry)
	}
	return entries
}

// ParseEntry parses text that must begin with a single complete entry.
//
// Unlike [Entries], which silently skips spans it cannot match, ParseEntry
// reports [shared.ErrMalformedEntry] when the leading #EXTINF line does not
// form an entry.
func ParseEntry(text string) (Entry, error) {
	text = strings.TrimLeft(text, " \t\r\n")
	if !strings.HasPrefix(text, EntryDirective) {
		return Entry{}, fmt.Errorf("%w: expected %s directive", shared.ErrMalformedEntry, EntryDirective)
	}

	loc := entryRegex.FindStringSubmatchIndex(text)
	if loc == nil || loc[0] != 0 {
		line, _, _ := strings.Cut(text, "\n")
		return Entry{}, fmt.Errorf("%w: %q", shared.ErrMalformedEntry, strings.TrimSpace(line))
	}

	entry := newEntry(text, loc)
	if link := strings.TrimSpace(entry.Link); link == "" || strings.HasPrefix(link, EntryDirective) {
		return Entry{}, fmt.Errorf("%w: missing link for %q", shared.ErrMalformedEntry, entry.Name)
	}
	return entry, nil
}

// HasHeader reports whether text starts with the #EXTM3U directive.
func HasHeader(text string) bool {
	return strings.HasPrefix(strings.TrimLeft(text, "\ufeff \t\r\n"), HeaderDirective)
}
