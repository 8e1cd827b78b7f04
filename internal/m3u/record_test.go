package m3u

import (
	"errors"
	"maps"
	"slices"
	"testing"

	"github.com/desertthunder/m3ux/internal/shared"
)

func TestNewRecord(t *testing.T) {
	r := NewRecord()

	if r.Duration() != UnknownDuration {
		t.Errorf("expected duration %q, got %q", UnknownDuration, r.Duration())
	}
	if r.ChannelNumber() != UnassignedChannel {
		t.Errorf("expected channel %d, got %d", UnassignedChannel, r.ChannelNumber())
	}
	if r.Type() != TypeNone {
		t.Errorf("expected type NONE, got %s", r.Type())
	}
	if len(r.AttributeMap()) != 0 {
		t.Errorf("expected no attributes, got %v", r.AttributeMap())
	}
}

func TestRecordPopulate(t *testing.T) {
	t.Run("from attribute text", func(t *testing.T) {
		r := NewRecord()
		err := r.Populate("-1", `tvg-id="cnn.us" tvg-logo="http://l/cnn.png" group-title="News"`, " CNN ", " http://cnn ")
		if err != nil {
			t.Fatalf("Populate failed: %v", err)
		}

		if r.Name() != "CNN" || r.Link() != "http://cnn" {
			t.Errorf("expected trimmed name and link, got %q %q", r.Name(), r.Link())
		}
		if r.TvgID() != "cnn.us" || r.TvgLogo() != "http://l/cnn.png" || r.Group() != "News" {
			t.Errorf("unexpected reserved attributes: %v", r.AttributeMap())
		}
		if r.TvgName() != "" {
			t.Errorf("expected empty tvg-name, got %q", r.TvgName())
		}
		if got := r.Attributes(); got != `tvg-id="cnn.us" tvg-logo="http://l/cnn.png" group-title="News"` {
			t.Errorf("attributes not in insertion order: %s", got)
		}
	})

	t.Run("from a map", func(t *testing.T) {
		r, err := NewRecordFrom("30", map[string]string{"group-title": "B", "tvg-id": "a"}, "Name", "http://x")
		if err != nil {
			t.Fatalf("NewRecordFrom failed: %v", err)
		}
		want := map[string]string{"group-title": "B", "tvg-id": "a"}
		if !maps.Equal(r.AttributeMap(), want) {
			t.Errorf("expected %v, got %v", want, r.AttributeMap())
		}
	})

	t.Run("from a list", func(t *testing.T) {
		r, err := NewRecordFrom("", []Attribute{{"tvg-name", "X"}}, "X", "http://x")
		if err != nil {
			t.Fatalf("NewRecordFrom failed: %v", err)
		}
		if r.Duration() != UnknownDuration {
			t.Errorf("expected empty duration to read as unknown, got %q", r.Duration())
		}
		if r.TvgName() != "X" {
			t.Errorf("expected tvg-name X, got %q", r.TvgName())
		}
	})

	t.Run("nil attributes", func(t *testing.T) {
		r, err := NewRecordFrom("-1", nil, "X", "http://x")
		if err != nil {
			t.Fatalf("NewRecordFrom failed: %v", err)
		}
		if r.Attributes() != "" {
			t.Errorf("expected no attributes, got %q", r.Attributes())
		}
	})

	t.Run("invalid duration leaves the record untouched", func(t *testing.T) {
		r := NewRecord()
		err := r.Populate("abc", `tvg-id="a"`, "Name", "http://x")
		if !errors.Is(err, shared.ErrInvalidDuration) {
			t.Fatalf("expected ErrInvalidDuration, got %v", err)
		}
		if r.Name() != "" || len(r.AttributeMap()) != 0 {
			t.Errorf("record was modified: %#v", r)
		}
	})

	t.Run("unsupported attribute type", func(t *testing.T) {
		_, err := NewRecordFrom("-1", 42, "Name", "http://x")
		if !errors.Is(err, shared.ErrInvalidAttributeValue) {
			t.Errorf("expected ErrInvalidAttributeValue, got %v", err)
		}
	})

	t.Run("unserializable attribute value", func(t *testing.T) {
		for _, value := range []string{`say "hi"`, "News, Sports"} {
			_, err := NewRecordFrom("-1", map[string]string{"group-title": value}, "Name", "http://x")
			if !errors.Is(err, shared.ErrInvalidAttributeValue) {
				t.Errorf("%q: expected ErrInvalidAttributeValue, got %v", value, err)
			}
		}
	})

	t.Run("fragment values are cleaned instead of rejected", func(t *testing.T) {
		r := NewRecord()
		err := r.Populate("-1", `tvg-name='Say "Hi"' group-title='News, Sports'`, "Alpha", "http://a")
		if err != nil {
			t.Fatalf("Populate failed: %v", err)
		}
		if r.TvgName() != "Say Hi" || r.Group() != "News Sports" {
			t.Errorf("unexpected values %q %q", r.TvgName(), r.Group())
		}

		entries := Extract(r.String())
		if len(entries) != 1 || entries[0].Name != "Alpha" {
			t.Fatalf("expected the record to read back, got %+v", entries)
		}
	})
}

func TestRecordSetters(t *testing.T) {
	t.Run("SetDuration", func(t *testing.T) {
		r := NewRecord()
		for _, d := range []string{"-1", "0", "120", "12.5", ".5", "+3"} {
			if err := r.SetDuration(d); err != nil {
				t.Errorf("SetDuration(%q) failed: %v", d, err)
			}
		}
		for _, d := range []string{"", "abc", "1.2.3", "12s"} {
			if err := r.SetDuration(d); !errors.Is(err, shared.ErrInvalidDuration) {
				t.Errorf("SetDuration(%q): expected ErrInvalidDuration, got %v", d, err)
			}
		}
	})

	t.Run("Seconds", func(t *testing.T) {
		r := NewRecord()
		if r.Seconds() != -1 {
			t.Errorf("expected -1, got %v", r.Seconds())
		}
		_ = r.SetDuration("90.5")
		if r.Seconds() != 90.5 {
			t.Errorf("expected 90.5, got %v", r.Seconds())
		}
	})

	t.Run("SetAttribute replaces in place", func(t *testing.T) {
		r, _ := NewRecordFrom("-1", `tvg-id="a" group-title="B"`, "N", "http://x")
		if err := r.SetGroup("C"); err != nil {
			t.Fatalf("SetGroup failed: %v", err)
		}
		if got := r.Attributes(); got != `tvg-id="a" group-title="C"` {
			t.Errorf("unexpected attributes %s", got)
		}
	})

	t.Run("SetAttribute rejects bad pairs", func(t *testing.T) {
		r := NewRecord()
		cases := [][2]string{{"nokey", "v"}, {"tvg-id", "a\"b"}, {"tvg-id", "a\nb"}, {"group-title", "News, World"}}
		for _, c := range cases {
			if err := r.SetAttribute(c[0], c[1]); !errors.Is(err, shared.ErrInvalidAttributeValue) {
				t.Errorf("SetAttribute(%q, %q): expected ErrInvalidAttributeValue, got %v", c[0], c[1], err)
			}
		}
	})

	t.Run("Clear", func(t *testing.T) {
		r, _ := NewRecordFrom("10", `tvg-id="a"`, "N", "http://x")
		r.SetChannelNumber(3)
		r.Clear()
		if r.Name() != "" || r.Link() != "" || r.Duration() != UnknownDuration || r.ChannelNumber() != UnassignedChannel {
			t.Errorf("record not reset: %#v", r)
		}
		if len(r.AttributeList()) != 0 {
			t.Errorf("expected no attributes after Clear")
		}
	})
}

func TestRecordString(t *testing.T) {
	t.Run("renders two playlist lines", func(t *testing.T) {
		r, _ := NewRecordFrom("-1", `tvg-id="a" group-title="News"`, "CNN", "http://cnn")
		want := "#EXTINF:-1 tvg-id=\"a\" group-title=\"News\",CNN\nhttp://cnn\n"
		if got := r.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("GoString", func(t *testing.T) {
		r, _ := NewRecordFrom("-1", `group-title="News"`, "CNN", "http://cnn")
		want := "<Record name='CNN' group='News' link='http://cnn'>"
		if got := r.GoString(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		records := []*Record{}
		for _, attrs := range []any{
			nil,
			`tvg-id="npo1.nl" tvg-name="NPO 1" tvg-logo="http://l/npo.png" group-title="NL"`,
			map[string]string{"group-title": "Movies: Action", "tvg-shift": "+1"},
		} {
			r, err := NewRecordFrom("12.5", attrs, "Some Channel", "http://example.org/stream")
			if err != nil {
				t.Fatalf("NewRecordFrom failed: %v", err)
			}
			records = append(records, r)
		}

		for _, original := range records {
			entry, err := ParseEntry(original.String())
			if err != nil {
				t.Fatalf("ParseEntry(%q) failed: %v", original.String(), err)
			}

			parsed := NewRecord()
			if err := parsed.PopulateEntry(entry); err != nil {
				t.Fatalf("PopulateEntry failed: %v", err)
			}

			if parsed.Duration() != original.Duration() || parsed.Name() != original.Name() || parsed.Link() != original.Link() {
				t.Errorf("fields differ: %#v vs %#v", parsed, original)
			}
			if !maps.Equal(parsed.AttributeMap(), original.AttributeMap()) {
				t.Errorf("attributes differ: %v vs %v", parsed.AttributeMap(), original.AttributeMap())
			}
		}
	})

	t.Run("attribute text parses back to the same pairs", func(t *testing.T) {
		r, _ := NewRecordFrom("-1", `tvg-id="a" tvg-logo='http://l' group-title="G"`, "N", "http://x")
		if got := ParseAttributes(r.Attributes()); !slices.Equal(got, r.AttributeList()) {
			t.Errorf("expected %v, got %v", r.AttributeList(), got)
		}
	})
}

func TestParseItemType(t *testing.T) {
	tests := []struct {
		input    string
		expected ItemType
	}{
		{"none", TypeNone},
		{"CHANNEL", TypeChannel},
		{"iptv_channel", TypeChannel},
		{"SERIES_EPISODE", TypeSeriesEpisode},
		{"serie_episode", TypeSeriesEpisode},
		{" movie ", TypeMovie},
	}

	for _, tt := range tests {
		got, err := ParseItemType(tt.input)
		if err != nil {
			t.Errorf("ParseItemType(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseItemType(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}

	if _, err := ParseItemType("radio"); !errors.Is(err, shared.ErrInvalidAttributeValue) {
		t.Errorf("expected ErrInvalidAttributeValue, got %v", err)
	}
}

func TestRecordApply(t *testing.T) {
	t.Run("restores classification without heuristics", func(t *testing.T) {
		r, _ := NewRecordFrom("-1", `group-title="Breaking Bad"`, "UK| Breaking Bad S02E05", "http://x")
		err := r.Apply(Overrides{
			OverrideType:    "SERIES_EPISODE",
			OverrideSeason:  "S02",
			OverrideEpisode: "E05",
			OverrideCountry: "UK",
			OverrideNumber:  "12",
		})
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		if r.Type() != TypeSeriesEpisode || r.Season() != "S02" || r.Episode() != "E05" || r.Country() != "UK" {
			t.Errorf("unexpected classification %s %q %q %q", r.Type(), r.Season(), r.Episode(), r.Country())
		}
		if r.Name() != "UK| Breaking Bad S02E05" {
			t.Errorf("Apply must not touch the name, got %q", r.Name())
		}
		if r.ChannelNumber() != 12 {
			t.Errorf("expected channel 12, got %d", r.ChannelNumber())
		}
	})

	t.Run("invalid override changes nothing", func(t *testing.T) {
		r, _ := NewRecordFrom("-1", `group-title="News"`, "CNN", "http://cnn")
		for _, o := range []Overrides{
			{OverrideCountry: "US", OverrideGenre: "Talk", OverrideType: "radio"},
			{OverrideEpisode: "E01", OverrideNumber: "zero"},
			{OverrideSeason: "S01", "tvg-name": "a, b"},
		} {
			if err := r.Apply(o); !errors.Is(err, shared.ErrInvalidAttributeValue) {
				t.Errorf("%v: expected ErrInvalidAttributeValue, got %v", o, err)
			}
		}
		if r.Country() != "" || r.Genre() != "" || r.Season() != "" || r.Episode() != "" {
			t.Errorf("fields changed by a failed Apply: %q %q %q %q", r.Country(), r.Genre(), r.Season(), r.Episode())
		}
		if r.Type() != TypeNone || r.ChannelNumber() != UnassignedChannel || r.TvgName() != "" {
			t.Errorf("record changed by a failed Apply: %#v", r)
		}
	})

	t.Run("empty overrides", func(t *testing.T) {
		r := NewRecord()
		if err := r.Apply(nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
