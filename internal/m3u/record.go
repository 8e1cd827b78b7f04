package m3u

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/desertthunder/m3ux/internal/shared"
)

const (
	// UnknownDuration marks a live stream or a stream of unknown length.
	UnknownDuration = "-1"
	// UnassignedChannel is the channel number of a record that was never numbered.
	UnassignedChannel = 9999
)

var durationRegex = regexp.MustCompile(`^[-+]?(?:\d*\.\d+|\d+)$`)

// ItemType classifies what a playlist entry points at.
type ItemType int

const (
	TypeNone ItemType = iota
	TypeChannel
	TypeSeriesEpisode
	TypeMovie
)

func (t ItemType) String() string {
	switch t {
	case TypeChannel:
		return "CHANNEL"
	case TypeSeriesEpisode:
		return "SERIES_EPISODE"
	case TypeMovie:
		return "MOVIE"
	default:
		return "NONE"
	}
}

// ParseItemType parses a type name, case-insensitively.
//
// The legacy names IPTV_CHANNEL and SERIE_EPISODE are accepted as aliases.
func ParseItemType(s string) (ItemType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NONE":
		return TypeNone, nil
	case "CHANNEL", "IPTV_CHANNEL":
		return TypeChannel, nil
	case "SERIES_EPISODE", "SERIE_EPISODE", "SERIES", "EPISODE":
		return TypeSeriesEpisode, nil
	case "MOVIE":
		return TypeMovie, nil
	default:
		return TypeNone, fmt.Errorf("%w: unknown type %q", shared.ErrInvalidAttributeValue, s)
	}
}

// Record is one structured playlist entry.
//
// A record is populated once, optionally classified, and handed to the
// consumer. The reserved attributes (tvg-id, tvg-logo, tvg-name, group-title)
// live in the attribute map like any other key; the typed accessors read and
// write that map so there is a single source of truth.
type Record struct {
	duration string
	name     string
	link     string
	attrs    map[string]string
	keys     []string // insertion order of attrs

	itemType      ItemType
	season        string
	episode       string
	genre         string
	country       string
	channelNumber int
}

// NewRecord returns an empty record with construction defaults.
func NewRecord() *Record {
	r := &Record{}
	r.Clear()
	return r
}

// NewRecordFrom builds a populated record for the write path.
//
// attrs accepts the same values as [Record.Populate].
func NewRecordFrom(duration string, attrs any, name, link string) (*Record, error) {
	r := NewRecord()
	if err := r.Populate(duration, attrs, name, link); err != nil {
		return nil, err
	}
	return r, nil
}

// Clear resets every field to its construction default.
func (r *Record) Clear() {
	r.duration = UnknownDuration
	r.name = ""
	r.link = ""
	r.attrs = map[string]string{}
	r.keys = nil
	r.itemType = TypeNone
	r.season = ""
	r.episode = ""
	r.genre = ""
	r.country = ""
	r.channelNumber = UnassignedChannel
}

// Populate fills the record from raw fields.
//
// attrs may be nil (no attributes), an attribute fragment string, a
// map[string]string or a []Attribute. Any other type fails with
// [shared.ErrInvalidAttributeValue]. Values read from a fragment have quote
// characters and commas dropped; values given as a map or list must already
// be writable. An empty duration is read as the unknown
// sentinel; a non-numeric one fails with [shared.ErrInvalidDuration]. The
// record is left untouched when an error is returned.
func (r *Record) Populate(duration string, attrs any, name, link string) error {
	duration = strings.TrimSpace(duration)
	if duration == "" {
		duration = UnknownDuration
	}
	if !durationRegex.MatchString(duration) {
		return fmt.Errorf("%w: %q", shared.ErrInvalidDuration, duration)
	}

	var pairs []Attribute
	switch v := attrs.(type) {
	case nil:
	case string:
		pairs = ParseAttributes(v)
		for i := range pairs {
			pairs[i].Value = attrText(pairs[i].Value)
		}
	case []Attribute:
		pairs = v
	case map[string]string:
		for _, key := range slices.Sorted(maps.Keys(v)) {
			pairs = append(pairs, Attribute{Key: key, Value: v[key]})
		}
	default:
		return fmt.Errorf("%w: attributes must be text or a mapping, got %T", shared.ErrInvalidAttributeValue, attrs)
	}

	for _, pair := range pairs {
		if !validAttribute(strings.TrimSpace(pair.Key), strings.TrimSpace(pair.Value)) {
			return fmt.Errorf("%w: %s=%q", shared.ErrInvalidAttributeValue, pair.Key, pair.Value)
		}
	}

	r.duration = duration
	r.name = strings.TrimSpace(name)
	r.link = strings.TrimSpace(link)
	for _, pair := range pairs {
		r.put(strings.TrimSpace(pair.Key), strings.TrimSpace(pair.Value))
	}
	return nil
}

// PopulateEntry fills the record from an extracted [Entry].
func (r *Record) PopulateEntry(e Entry) error {
	return r.Populate(e.Duration, e.Attributes, e.Name, e.Link)
}

func (r *Record) put(key, value string) {
	if _, ok := r.attrs[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.attrs[key] = value
}

// Attribute returns the value stored under key.
func (r *Record) Attribute(key string) (string, bool) {
	v, ok := r.attrs[key]
	return v, ok
}

// SetAttribute inserts or replaces one attribute.
//
// Keys must have the hyphenated word-word shape and values must not contain
// double quotes, commas or line breaks, otherwise the record could not be written
// back as playlist text.
func (r *Record) SetAttribute(key, value string) error {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if !validAttribute(key, value) {
		return fmt.Errorf("%w: %s=%q", shared.ErrInvalidAttributeValue, key, value)
	}
	r.put(key, value)
	return nil
}

// Attributes serializes the attribute map as space separated key="value" pairs in insertion order.
func (r *Record) Attributes() string {
	return FormatAttributes(r.AttributeList())
}

// AttributeList returns the attributes in insertion order.
func (r *Record) AttributeList() []Attribute {
	list := make([]Attribute, 0, len(r.keys))
	for _, key := range r.keys {
		list = append(list, Attribute{Key: key, Value: r.attrs[key]})
	}
	return list
}

// AttributeMap returns a copy of the attribute map.
func (r *Record) AttributeMap() map[string]string {
	return maps.Clone(r.attrs)
}

func (r *Record) Duration() string { return r.duration }

// SetDuration validates and stores a duration; "-1" marks unknown length.
func (r *Record) SetDuration(d string) error {
	d = strings.TrimSpace(d)
	if !durationRegex.MatchString(d) {
		return fmt.Errorf("%w: %q", shared.ErrInvalidDuration, d)
	}
	r.duration = d
	return nil
}

// Seconds returns the duration as a number, -1 for live streams.
func (r *Record) Seconds() float64 {
	f, err := strconv.ParseFloat(r.duration, 64)
	if err != nil {
		return -1
	}
	return f
}

func (r *Record) Name() string           { return r.name }
func (r *Record) SetName(name string)    { r.name = strings.TrimSpace(name) }
func (r *Record) Link() string           { return r.link }
func (r *Record) SetLink(link string)    { r.link = strings.TrimSpace(link) }
func (r *Record) TvgID() string          { return r.attrs[AttrTvgID] }
func (r *Record) TvgLogo() string        { return r.attrs[AttrTvgLogo] }
func (r *Record) TvgName() string        { return r.attrs[AttrTvgName] }
func (r *Record) Group() string          { return r.attrs[AttrGroupTitle] }
func (r *Record) Type() ItemType         { return r.itemType }
func (r *Record) Season() string         { return r.season }
func (r *Record) Episode() string        { return r.episode }
func (r *Record) Genre() string          { return r.genre }
func (r *Record) Country() string        { return r.country }
func (r *Record) ChannelNumber() int     { return r.channelNumber }
func (r *Record) SetChannelNumber(n int) { r.channelNumber = n }

func (r *Record) SetTvgID(v string) error   { return r.SetAttribute(AttrTvgID, v) }
func (r *Record) SetTvgLogo(v string) error { return r.SetAttribute(AttrTvgLogo, v) }
func (r *Record) SetTvgName(v string) error { return r.SetAttribute(AttrTvgName, v) }
func (r *Record) SetGroup(v string) error   { return r.SetAttribute(AttrGroupTitle, v) }

// Apply sets classification fields from overrides without running the heuristics.
//
// Every override is checked before any field changes, so a failed Apply
// leaves the record as it was. It is used by [Classifier.Classify] and to
// restore records loaded from storage.
func (r *Record) Apply(overrides Overrides) error {
	itemType, number := r.itemType, r.channelNumber
	var extra []Attribute
	for _, key := range slices.Sorted(maps.Keys(overrides)) {
		value := strings.TrimSpace(overrides[key])
		switch key {
		case OverrideCountry, OverrideSeason, OverrideEpisode, OverrideGenre:
		case OverrideType:
			t, err := ParseItemType(value)
			if err != nil {
				return err
			}
			itemType = t
		case OverrideNumber:
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return fmt.Errorf("%w: channel number %q", shared.ErrInvalidAttributeValue, value)
			}
			number = n
		default:
			k := strings.TrimSpace(key)
			if !validAttribute(k, value) {
				return fmt.Errorf("%w: %s=%q", shared.ErrInvalidAttributeValue, k, value)
			}
			extra = append(extra, Attribute{Key: k, Value: value})
		}
	}

	if v, ok := overrides[OverrideCountry]; ok {
		r.country = strings.TrimSpace(v)
	}
	if v, ok := overrides[OverrideSeason]; ok {
		r.season = strings.TrimSpace(v)
	}
	if v, ok := overrides[OverrideEpisode]; ok {
		r.episode = strings.TrimSpace(v)
	}
	if v, ok := overrides[OverrideGenre]; ok {
		r.genre = strings.TrimSpace(v)
	}
	r.itemType, r.channelNumber = itemType, number
	for _, attr := range extra {
		r.put(attr.Key, attr.Value)
	}
	return nil
}

// TypeString returns the name of the record's [ItemType].
func (r *Record) TypeString() string { return r.itemType.String() }

// String renders the record as its two playlist lines.
func (r *Record) String() string {
	return fmt.Sprintf("%s%s %s,%s\n%s\n", EntryDirective, r.duration, r.Attributes(), r.name, r.link)
}

func (r *Record) GoString() string {
	return fmt.Sprintf("<Record name='%s' group='%s' link='%s'>", r.name, r.Group(), r.link)
}
