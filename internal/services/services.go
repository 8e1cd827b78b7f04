// package services loads playlist text from local files and HTTP endpoints
package services

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/m3ux/internal/m3u"
	"github.com/desertthunder/m3ux/internal/shared"
)

const fileScheme = "file://"

// Options configure how playlist text is fetched and decoded.
type Options struct {
	HTTP      shared.HTTPConfig
	Headers   *shared.CurlHeaders // Replayed on every HTTP request
	Encoding  string              // Charset used when the text is not valid UTF-8
	StorePath string              // When set, downloaded text is also written here
	Client    *http.Client        // Overrides the client built from HTTP
	Logger    *log.Logger
}

// OptionsFromConfig builds [Options] from the [http] and [playlist] sections.
// The headers file, when configured, is parsed eagerly so that a bad file
// fails before any request is made.
func OptionsFromConfig(cfg *shared.Config, logger *log.Logger) (Options, error) {
	opts := Options{
		HTTP:      cfg.HTTP,
		Encoding:  cfg.Playlist.Encoding,
		StorePath: cfg.Playlist.StorePath,
		Logger:    logger,
	}

	if cfg.HTTP.HeadersFile != "" {
		headers, err := shared.ParseCurlFile(cfg.HTTP.HeadersFile)
		if err != nil {
			return opts, fmt.Errorf("failed to load headers file: %w", err)
		}
		opts.Headers = headers
	}
	return opts, nil
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard)
	}
	return o.Logger
}

// IsRemote reports whether location is fetched over HTTP.
func IsRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// OpenSource picks the source for location. Remote URLs get an [HTTPSource];
// everything else is a local path, with any file:// prefix stripped.
func OpenSource(location string, opts Options) (m3u.Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", shared.ErrMissingSource)
	}

	if IsRemote(location) {
		return NewHTTPSource(location, opts), nil
	}

	if len(location) >= len(fileScheme) && strings.EqualFold(location[:len(fileScheme)], fileScheme) {
		location = location[len(fileScheme):]
	}
	return NewFileSource(location, opts), nil
}

// store writes a copy of text to path, creating parent directories.
func store(path, text string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to store playlist: %w", err)
	}
	return nil
}
