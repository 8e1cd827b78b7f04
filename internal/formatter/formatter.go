// package formatter exports classified playlist records to M3U, CSV, Markdown, plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/desertthunder/m3ux/internal/m3u"
	"github.com/desertthunder/m3ux/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatM3U      Format = "m3u"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatM3U, FormatCSV, FormatMarkdown, FormatText, FormatJSON}

// ParseFormat accepts a format name or one of its aliases ("md", "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m3u", "m3u8":
		return FormatM3U, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return ".md"
	}
	return "." + string(f)
}

// Export is a named list of records.
type Export struct {
	Name    string
	Source  string
	Records []*m3u.Record
}

// RecordView is the JSON shape of a record.
type RecordView struct {
	Number     int               `json:"number"`
	Name       string            `json:"name"`
	Link       string            `json:"link"`
	Duration   string            `json:"duration"`
	Type       string            `json:"type"`
	Group      string            `json:"group,omitempty"`
	Genre      string            `json:"genre,omitempty"`
	Country    string            `json:"country,omitempty"`
	Season     string            `json:"season,omitempty"`
	Episode    string            `json:"episode,omitempty"`
	TvgID      string            `json:"tvg_id,omitempty"`
	TvgName    string            `json:"tvg_name,omitempty"`
	TvgLogo    string            `json:"tvg_logo,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// NewRecordView flattens r for encoding.
func NewRecordView(r *m3u.Record) RecordView {
	return RecordView{
		Number:     r.ChannelNumber(),
		Name:       r.Name(),
		Link:       r.Link(),
		Duration:   r.Duration(),
		Type:       r.TypeString(),
		Group:      r.Group(),
		Genre:      r.Genre(),
		Country:    r.Country(),
		Season:     r.Season(),
		Episode:    r.Episode(),
		TvgID:      r.TvgID(),
		TvgName:    r.TvgName(),
		TvgLogo:    r.TvgLogo(),
		Attributes: r.AttributeMap(),
	}
}

// PlaylistView is the JSON shape of an [Export].
type PlaylistView struct {
	Name    string       `json:"name"`
	Source  string       `json:"source,omitempty"`
	Count   int          `json:"count"`
	Records []RecordView `json:"records"`
}

// ExportToM3U serializes records as an extended M3U playlist.
func ExportToM3U(records []*m3u.Record) ([]byte, error) {
	var buf bytes.Buffer
	s := m3u.NewSerializer(&buf)

	if err := s.WriteHeader(); err != nil {
		return nil, err
	}
	if err := s.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write playlist: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToCSV converts records to CSV with one row per record.
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Number", "Name", "Type", "Group", "Genre", "Country", "Season", "Episode", "Duration", "Link", "TvgID"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range export.Records {
		row := []string{
			strconv.Itoa(r.ChannelNumber()),
			r.Name(),
			r.TypeString(),
			r.Group(),
			r.Genre(),
			r.Country(),
			r.Season(),
			r.Episode(),
			r.Duration(),
			r.Link(),
			r.TvgID(),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// groupOrder returns group names in order of first appearance.
func groupOrder(records []*m3u.Record) ([]string, map[string][]*m3u.Record) {
	var order []string
	groups := make(map[string][]*m3u.Record)
	for _, r := range records {
		g := r.Group()
		if _, ok := groups[g]; !ok {
			order = append(order, g)
		}
		groups[g] = append(groups[g], r)
	}
	return order, groups
}

func episodeLabel(r *m3u.Record) string {
	if r.Type() != m3u.TypeSeriesEpisode {
		return ""
	}
	return fmt.Sprintf(" (%s%s)", r.Season(), r.Episode())
}

// ExportToMarkdown renders records as a Markdown document with one section per group.
func ExportToMarkdown(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Name)
	if export.Source != "" {
		fmt.Fprintf(&buf, "**Source**: %s\n", export.Source)
	}
	fmt.Fprintf(&buf, "**Entries**: %d\n", len(export.Records))

	order, groups := groupOrder(export.Records)
	for _, g := range order {
		title := g
		if title == "" {
			title = "Ungrouped"
		}
		fmt.Fprintf(&buf, "\n## %s (%d)\n\n", title, len(groups[g]))

		for _, r := range groups[g] {
			fmt.Fprintf(&buf, "%d. %s [%s]%s\n", r.ChannelNumber(), r.Name(), shared.FormatDuration(r.Seconds()), episodeLabel(r))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts records to a plain text listing.
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", export.Name)
	if export.Source != "" {
		fmt.Fprintf(&buf, "Source: %s\n", export.Source)
	}
	fmt.Fprintf(&buf, "Entries: %d\n\n", len(export.Records))

	for _, r := range export.Records {
		fmt.Fprintf(&buf, "%d. [%s] %s - %s%s\n", r.ChannelNumber(), r.TypeString(), r.Group(), r.Name(), episodeLabel(r))
	}

	return buf.Bytes(), nil
}

// ExportToJSON encodes the export as indented JSON.
func ExportToJSON(export *Export) ([]byte, error) {
	view := PlaylistView{
		Name:    export.Name,
		Source:  export.Source,
		Count:   len(export.Records),
		Records: make([]RecordView, 0, len(export.Records)),
	}
	for _, r := range export.Records {
		view.Records = append(view.Records, NewRecordView(r))
	}
	return shared.MarshalJSON(view, true)
}

// Render produces the export in the given format.
func Render(export *Export, format Format) ([]byte, error) {
	switch format {
	case FormatM3U:
		return ExportToM3U(export.Records)
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	case FormatJSON:
		return ExportToJSON(export)
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
}

// Filename derives a safe file name from the export name.
func Filename(name string, format Format) string {
	base := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, strings.TrimSpace(name))

	if strings.Trim(base, "_") == "" {
		base = "playlist"
	}
	return base + format.Extension()
}

// WriteExport renders the export and writes it to path.
//
// Defaults to a file named after the export in the current directory.
// Parent directories are created as needed.
func WriteExport(export *Export, format Format, path string) (string, error) {
	if path == "" {
		path = Filename(export.Name, format)
	}

	data, err := Render(export, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}
