package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/m3ux/internal/formatter"
	"github.com/desertthunder/m3ux/internal/shared"
	tu "github.com/desertthunder/m3ux/internal/testing"
)

const otherPlaylist = `#EXTM3U
#EXTINF:-1 group-title="News",CNN
http://iptv.example.org/live/cnn
#EXTINF:-1 tvg-id="npo1.nl" group-title="NL",NPO 1
http://iptv.example.org/live/npo1
`

func TestBulkImport(t *testing.T) {
	ctx := context.Background()

	t.Run("imports every unique source", func(t *testing.T) {
		first := tu.NewFakeSource("http://a.example.org/first.m3u", testPlaylist)
		second := tu.NewFakeSource("http://b.example.org/second.m3u", otherPlaylist)
		broken := &tu.FakeSource{Location: "http://c.example.org/broken.m3u", Err: shared.ErrDownload}

		store := newMemoryStore()
		engine := NewPlaylistEngine(EngineOpts{Open: fakeOpener(first, second, broken), Store: store})
		outputDir := filepath.Join(t.TempDir(), "exports")
		progress := make(chan ProgressUpdate, 20)

		locations := []string{first.Location, second.Location, " ", broken.Location, " HTTP://A.example.org/first.m3u "}
		result, err := engine.BulkImport(ctx, progress, locations, BulkImportOpts{
			NumWorkers: 2,
			RateLimit:  100,
			Cache:      true,
			OutputDir:  outputDir,
			Format:     formatter.FormatCSV,
		})
		if err != nil {
			t.Fatalf("BulkImport failed: %v", err)
		}

		if result.TotalSources != 3 || result.Succeeded != 2 || result.Failed != 1 {
			t.Errorf("unexpected counts: total=%d succeeded=%d failed=%d", result.TotalSources, result.Succeeded, result.Failed)
		}
		if len(result.Duplicates) != 1 {
			t.Errorf("expected 1 duplicate, got %v", result.Duplicates)
		}

		for i, want := range []string{first.Location, second.Location, broken.Location} {
			if result.Results[i].Location != want {
				t.Errorf("result %d: expected %s, got %s", i, want, result.Results[i].Location)
			}
		}

		ok := result.Results[0]
		if !ok.Success || ok.Entries != 3 || ok.PlaylistID == "" || len(ok.Files) != 1 {
			t.Errorf("unexpected first result %+v", ok)
		}
		if !strings.HasSuffix(ok.Files[0], "01_first.csv") {
			t.Errorf("unexpected export file %s", ok.Files[0])
		}
		tu.AssertFileExists(t, ok.Files[0])

		failed := result.Results[2]
		if failed.Success || !errors.Is(failed.Error, shared.ErrDownload) || failed.ErrorMessage == "" {
			t.Errorf("unexpected failed result %+v", failed)
		}

		if first.Loads() != 1 || second.Loads() != 1 {
			t.Errorf("expected each source to load once, got %d and %d", first.Loads(), second.Loads())
		}
		if store.saves != 2 {
			t.Errorf("expected 2 saves, got %d", store.saves)
		}

		data, err := os.ReadFile(result.ManifestPath)
		if err != nil {
			t.Fatalf("manifest not written: %v", err)
		}
		var manifest BulkImportResult
		if err := json.Unmarshal(data, &manifest); err != nil {
			t.Fatalf("invalid manifest: %v", err)
		}
		if manifest.Succeeded != 2 || len(manifest.Results) != 3 || manifest.Results[2].ErrorMessage == "" {
			t.Errorf("unexpected manifest %+v", manifest)
		}

		if updates := drain(progress); len(updates) != 4 || updates[0].Phase != BulkImport {
			t.Errorf("expected start and 3 completion updates, got %+v", updates)
		}
	})

	t.Run("merged records drop repeated links", func(t *testing.T) {
		first := tu.NewFakeSource("first.m3u", testPlaylist)
		second := tu.NewFakeSource("second.m3u", otherPlaylist)
		engine := NewPlaylistEngine(EngineOpts{Open: fakeOpener(first, second)})

		result, err := engine.BulkImport(ctx, nil, []string{first.Location, second.Location}, BulkImportOpts{RateLimit: 100})
		if err != nil {
			t.Fatalf("BulkImport failed: %v", err)
		}

		merged := result.Merged()
		if len(merged) != 4 {
			t.Fatalf("expected 4 merged records, got %d", len(merged))
		}
		for i, r := range merged {
			if r.ChannelNumber() != i+1 {
				t.Errorf("record %d: expected channel %d, got %d", i, i+1, r.ChannelNumber())
			}
		}
		if merged[3].Name() != "CNN" {
			t.Errorf("expected CNN last, got %q", merged[3].Name())
		}
		if len(result.Results[1].Records()) != 2 {
			t.Errorf("expected source records to be kept, got %d", len(result.Results[1].Records()))
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		src := tu.NewFakeSource("first.m3u", testPlaylist)
		engine := NewPlaylistEngine(EngineOpts{Open: fakeOpener(src)})

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		result, err := engine.BulkImport(cancelled, nil, []string{src.Location}, BulkImportOpts{})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if result.Failed != 1 || result.Results[0].Success {
			t.Errorf("expected the undispatched source to fail, got %+v", result.Results)
		}
		if src.Loads() != 0 {
			t.Errorf("expected no loads, got %d", src.Loads())
		}
	})

	t.Run("argument errors", func(t *testing.T) {
		engine := NewPlaylistEngine(EngineOpts{Open: fakeOpener()})

		if _, err := engine.BulkImport(ctx, nil, []string{" ", ""}, BulkImportOpts{}); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if _, err := engine.BulkImport(ctx, nil, []string{"a"}, BulkImportOpts{Cache: true}); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable without a store, got %v", err)
		}
		if _, err := NewPlaylistEngine(EngineOpts{}).BulkImport(ctx, nil, []string{"a"}, BulkImportOpts{}); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable without an opener, got %v", err)
		}
	})
}

func TestDedupeLocations(t *testing.T) {
	unique, duplicates := dedupeLocations([]string{"a.m3u", " A.M3U", "", "b.m3u", "a.m3u"})
	if strings.Join(unique, ",") != "a.m3u,b.m3u" {
		t.Errorf("unexpected unique locations %v", unique)
	}
	if len(duplicates) != 2 {
		t.Errorf("expected 2 duplicates, got %v", duplicates)
	}
}
