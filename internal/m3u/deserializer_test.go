package m3u

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/m3ux/internal/shared"
)

type textSource struct {
	text string
	err  error
}

func (s textSource) Name() string { return "memory" }

func (s textSource) Load(ctx context.Context) (string, error) {
	return s.text, s.err
}

func TestDeserializer(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		d := NewDeserializer(DeserializerOpts{})
		if _, err := d.Records(); !errors.Is(err, shared.ErrNoDataAvailable) {
			t.Errorf("expected ErrNoDataAvailable, got %v", err)
		}

		d.Set("")
		if _, err := d.All(); !errors.Is(err, shared.ErrNoDataAvailable) {
			t.Errorf("expected ErrNoDataAvailable for empty text, got %v", err)
		}
	})

	t.Run("classifies and numbers records in order", func(t *testing.T) {
		d := NewDeserializer(DeserializerOpts{})
		d.Set(samplePlaylist)

		records, err := d.All()
		if err != nil {
			t.Fatalf("All failed: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected 3 records, got %d", len(records))
		}

		expected := []struct {
			name     string
			itemType ItemType
			group    string
		}{
			{"NPO 1", TypeChannel, "NL"},
			{"Inception", TypeMovie, "Movies: Films"},
			{"Breaking Bad S02E05", TypeSeriesEpisode, "Breaking Bad"},
		}
		for i, want := range expected {
			r := records[i]
			if r.Name() != want.name || r.Type() != want.itemType || r.Group() != want.group {
				t.Errorf("record %d: got %q %s %q", i, r.Name(), r.Type(), r.Group())
			}
			if r.ChannelNumber() != i+1 {
				t.Errorf("record %d: expected channel %d, got %d", i, i+1, r.ChannelNumber())
			}
		}
	})

	t.Run("two entries", func(t *testing.T) {
		d := NewDeserializer(DeserializerOpts{})
		d.Set("#EXTM3U\n#EXTINF:-1 ,First\nhttp://a\n#EXTINF:-1 ,Second\nhttp://b\n")

		seq, err := d.Records()
		if err != nil {
			t.Fatalf("Records failed: %v", err)
		}

		var names []string
		last := 0
		for r := range seq {
			if r.ChannelNumber() <= last {
				t.Errorf("channel numbers must increase, got %d after %d", r.ChannelNumber(), last)
			}
			last = r.ChannelNumber()
			names = append(names, r.Name())
		}
		if strings.Join(names, ",") != "First,Second" {
			t.Errorf("unexpected order %v", names)
		}
	})

	t.Run("one bad attribute does not drop the entry", func(t *testing.T) {
		d := NewDeserializer(DeserializerOpts{})
		d.Set("#EXTINF:-1 tvg-name='Say \"Hi\"' group-title=\"News\",Alpha\nhttp://a\n")
		records, err := d.All()
		if err != nil {
			t.Fatalf("All failed: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].TvgName() != "Say Hi" || records[0].Group() != "News" {
			t.Errorf("unexpected attributes %v", records[0].AttributeMap())
		}
	})

	t.Run("entry without a link is skipped", func(t *testing.T) {
		d := NewDeserializer(DeserializerOpts{})
		d.Set("#EXTM3U\n#EXTINF:-1 ,Alpha\n#EXTINF:-1 ,Beta\nhttp://b\n")
		records, _ := d.All()
		if len(records) != 1 || records[0].Name() != "Beta" || records[0].Link() != "http://b" {
			t.Errorf("expected only Beta, got %v", records)
		}
		if len(records) == 1 && records[0].ChannelNumber() != 1 {
			t.Errorf("expected Beta to be numbered 1, got %d", records[0].ChannelNumber())
		}
	})

	t.Run("records are fresh on every pass", func(t *testing.T) {
		d := NewDeserializer(DeserializerOpts{})
		d.Set(samplePlaylist)

		first, _ := d.All()
		second, _ := d.All()
		if first[0] == second[0] {
			t.Error("expected distinct record values across passes")
		}
		if second[0].ChannelNumber() != 1 {
			t.Errorf("expected numbering to restart, got %d", second[0].ChannelNumber())
		}
	})

	t.Run("early stop", func(t *testing.T) {
		d := NewDeserializer(DeserializerOpts{})
		d.Set(samplePlaylist)
		seq, _ := d.Records()

		count := 0
		for range seq {
			count++
			if count == 2 {
				break
			}
		}
		if count != 2 {
			t.Errorf("expected 2 records, got %d", count)
		}
	})

	t.Run("media file option", func(t *testing.T) {
		d := NewDeserializer(DeserializerOpts{MediaFiles: []string{".ts"}})
		d.Set("#EXTINF:-1 ,Clip\nhttp://x/clip.ts\n")
		records, err := d.All()
		if err != nil {
			t.Fatalf("All failed: %v", err)
		}
		if records[0].Type() != TypeMovie {
			t.Errorf("expected MOVIE, got %s", records[0].Type())
		}
		if !d.Classifier().IsMediaFile("http://x/film.mkv") {
			t.Error("expected default extensions to be kept")
		}
	})

	t.Run("open and close", func(t *testing.T) {
		var buf bytes.Buffer
		d := NewDeserializer(DeserializerOpts{Logger: log.New(&buf)})

		if err := d.Open(context.Background(), textSource{text: samplePlaylist}); err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if !strings.Contains(buf.String(), "loaded playlist") {
			t.Errorf("expected load to be logged, got %q", buf.String())
		}
		if err := d.Open(context.Background(), textSource{text: samplePlaylist}); !errors.Is(err, shared.ErrAlreadyOpened) {
			t.Errorf("expected ErrAlreadyOpened, got %v", err)
		}

		d.Close()
		if _, err := d.Records(); !errors.Is(err, shared.ErrNoDataAvailable) {
			t.Errorf("expected ErrNoDataAvailable after Close, got %v", err)
		}
		if err := d.Open(context.Background(), textSource{text: samplePlaylist}); err != nil {
			t.Errorf("expected reopen to succeed, got %v", err)
		}
	})

	t.Run("open errors", func(t *testing.T) {
		d := NewDeserializer(DeserializerOpts{})
		if err := d.Open(context.Background(), nil); !errors.Is(err, shared.ErrMissingSource) {
			t.Errorf("expected ErrMissingSource, got %v", err)
		}

		err := d.Open(context.Background(), textSource{err: shared.ErrDownload})
		if !errors.Is(err, shared.ErrDownload) {
			t.Errorf("expected wrapped ErrDownload, got %v", err)
		}
		if _, err := d.Records(); !errors.Is(err, shared.ErrNoDataAvailable) {
			t.Errorf("failed open must not load data, got %v", err)
		}
	})

	t.Run("SetReader", func(t *testing.T) {
		d := NewDeserializer(DeserializerOpts{})
		if err := d.SetReader(strings.NewReader(samplePlaylist)); err != nil {
			t.Fatalf("SetReader failed: %v", err)
		}
		records, _ := d.All()
		if len(records) != 3 {
			t.Errorf("expected 3 records, got %d", len(records))
		}
		if err := d.SetReader(nil); !errors.Is(err, shared.ErrInvalidParameter) {
			t.Errorf("expected ErrInvalidParameter, got %v", err)
		}
	})
}
