package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/m3ux/internal/shared"
	tu "github.com/desertthunder/m3ux/internal/testing"
)

const playlist = "#EXTM3U\n#EXTINF:-1 group-title=\"News\",CNN\nhttp://cnn\n"

func TestOpenSource(t *testing.T) {
	tests := []struct {
		location string
		remote   bool
		name     string
	}{
		{"http://example.org/list.m3u", true, "http://example.org/list.m3u"},
		{"HTTPS://example.org/list.m3u", true, "HTTPS://example.org/list.m3u"},
		{"file:///tmp/list.m3u", false, "/tmp/list.m3u"},
		{"FILE://list.m3u", false, "list.m3u"},
		{" ./list.m3u ", false, "./list.m3u"},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			src, err := OpenSource(tt.location, Options{})
			if err != nil {
				t.Fatalf("OpenSource failed: %v", err)
			}

			_, isHTTP := src.(*HTTPSource)
			if isHTTP != tt.remote {
				t.Errorf("expected remote=%v, got %T", tt.remote, src)
			}
			if src.Name() != tt.name {
				t.Errorf("expected name %q, got %q", tt.name, src.Name())
			}
		})
	}

	t.Run("empty location", func(t *testing.T) {
		if _, err := OpenSource("  ", Options{}); !errors.Is(err, shared.ErrMissingSource) {
			t.Errorf("expected ErrMissingSource, got %v", err)
		}
	})
}

func TestOptionsFromConfig(t *testing.T) {
	t.Run("copies playlist and http settings", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Playlist.StorePath = "copy.m3u"

		opts, err := OptionsFromConfig(cfg, nil)
		if err != nil {
			t.Fatalf("OptionsFromConfig failed: %v", err)
		}
		if opts.Encoding != cfg.Playlist.Encoding || opts.StorePath != "copy.m3u" {
			t.Errorf("unexpected options %+v", opts)
		}
		if opts.Headers != nil {
			t.Errorf("expected no headers, got %+v", opts.Headers)
		}
	})

	t.Run("parses the headers file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "headers.sh")
		tu.MustWriteFile(t, path, `curl 'http://portal/get.php' -H 'Referer: http://portal/' -b 'session=abc'`)

		cfg := shared.DefaultConfig()
		cfg.HTTP.HeadersFile = path

		opts, err := OptionsFromConfig(cfg, nil)
		if err != nil {
			t.Fatalf("OptionsFromConfig failed: %v", err)
		}
		if opts.Headers == nil || opts.Headers.Cookie != "session=abc" {
			t.Errorf("expected parsed headers, got %+v", opts.Headers)
		}
	})

	t.Run("missing headers file", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.HTTP.HeadersFile = filepath.Join(t.TempDir(), "missing.sh")

		if _, err := OptionsFromConfig(cfg, nil); err == nil {
			t.Error("expected error for missing headers file")
		}
	})
}

func TestFileSource(t *testing.T) {
	t.Run("reads the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "list.m3u")
		tu.MustWriteFile(t, path, "\ufeff"+playlist)

		text, err := NewFileSource(path, Options{}).Load(context.Background())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if text != playlist {
			t.Errorf("expected BOM to be dropped, got %q", text)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.m3u"), Options{}).Load(context.Background())
		if err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := NewFileSource("list.m3u", Options{}).Load(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestHTTPSource(t *testing.T) {
	t.Run("downloads the playlist", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("expected GET, got %s", r.Method)
			}
			if ua := r.Header.Get("User-Agent"); ua != "m3ux-test" {
				t.Errorf("expected user agent m3ux-test, got %q", ua)
			}
			if auth := r.Header.Get("Authorization"); auth != "" {
				t.Errorf("expected no Authorization header, got %q", auth)
			}
			w.Write([]byte(playlist))
		}))
		defer server.Close()

		storePath := filepath.Join(t.TempDir(), "cache", "copy.m3u")
		src := NewHTTPSource(server.URL, Options{
			HTTP:      shared.HTTPConfig{UserAgent: "m3ux-test"},
			StorePath: storePath,
		})

		text, err := src.Load(context.Background())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if text != playlist {
			t.Errorf("unexpected body %q", text)
		}
		if stored := tu.MustReadFile(t, storePath); stored != playlist {
			t.Errorf("unexpected stored copy %q", stored)
		}
	})

	t.Run("replays curl headers and bearer token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ua := r.Header.Get("User-Agent"); ua != "VLC/3.0.20" {
				t.Errorf("expected curl user agent to win, got %q", ua)
			}
			if ref := r.Header.Get("Referer"); ref != "http://portal/" {
				t.Errorf("expected referer, got %q", ref)
			}
			if cookie := r.Header.Get("Cookie"); cookie != "session=abc" {
				t.Errorf("expected cookie, got %q", cookie)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
				t.Errorf("expected bearer token, got %q", auth)
			}
			w.Write([]byte(playlist))
		}))
		defer server.Close()

		src := NewHTTPSource(server.URL, Options{
			HTTP: shared.HTTPConfig{UserAgent: "m3ux-test", Token: "secret"},
			Headers: &shared.CurlHeaders{
				Headers: map[string]string{"User-Agent": "VLC/3.0.20", "Referer": "http://portal/"},
				Cookie:  "session=abc",
			},
		})
		if _, err := src.Load(context.Background()); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	})

	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer server.Close()

		_, err := NewHTTPSource(server.URL, Options{}).Load(context.Background())
		if !errors.Is(err, shared.ErrDownload) {
			t.Fatalf("expected ErrDownload, got %v", err)
		}
		if !strings.Contains(err.Error(), "404") {
			t.Errorf("expected status in error, got %v", err)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
		_, err := NewHTTPSource("http://example.org/list.m3u", Options{Client: client}).Load(context.Background())
		if !errors.Is(err, shared.ErrDownload) {
			t.Errorf("expected ErrDownload, got %v", err)
		}
	})

	t.Run("body read failure", func(t *testing.T) {
		rt := tu.NewMockRoundTripper(&http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}, nil)
		_, err := NewHTTPSource("http://example.org/list.m3u", Options{Client: &http.Client{Transport: rt}}).Load(context.Background())
		if !errors.Is(err, shared.ErrDownload) {
			t.Errorf("expected ErrDownload, got %v", err)
		}
		if rt.Request == nil || rt.Request.URL.Host != "example.org" {
			t.Errorf("expected request to reach the transport, got %v", rt.Request)
		}
	})

	t.Run("unknown encoding", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("#EXTM3U\n#EXTINF:-1 ,Caf\xe9\nhttp://x\n"))
		}))
		defer server.Close()

		_, err := NewHTTPSource(server.URL, Options{Encoding: "klingon"}).Load(context.Background())
		if !errors.Is(err, shared.ErrUnknownEncoding) {
			t.Errorf("expected ErrUnknownEncoding, got %v", err)
		}
	})
}
