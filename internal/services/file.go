package services

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// FileSource reads a playlist from the local filesystem.
type FileSource struct {
	path     string
	encoding string
	logger   *log.Logger
}

func NewFileSource(path string, opts Options) *FileSource {
	return &FileSource{path: path, encoding: opts.Encoding, logger: opts.logger()}
}

func (f *FileSource) Name() string { return f.path }

// Load reads and decodes the file.
func (f *FileSource) Load(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("failed to read playlist: %w", err)
	}

	text, err := Decode(data, f.encoding)
	if err != nil {
		return "", err
	}

	f.logger.Info("read playlist", "path", f.path, "size", len(data))
	return text, nil
}
