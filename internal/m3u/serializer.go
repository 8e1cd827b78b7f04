package m3u

import (
	"fmt"
	"io"
	"os"

	"github.com/desertthunder/m3ux/internal/shared"
)

// Serializer writes records as playlist text.
type Serializer struct {
	w             io.Writer
	headerWritten bool
	count         int
}

// NewSerializer creates a [Serializer] writing to w.
func NewSerializer(w io.Writer) *Serializer {
	return &Serializer{w: w}
}

// WriteHeader writes the #EXTM3U line. Later calls are no-ops.
func (s *Serializer) WriteHeader() error {
	if s.headerWritten {
		return nil
	}
	if _, err := io.WriteString(s.w, HeaderDirective+"\n"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	s.headerWritten = true
	return nil
}

// Write writes one record, preceded by the header if it has not been written yet.
func (s *Serializer) Write(r *Record) error {
	if r == nil {
		return fmt.Errorf("%w: record must not be nil", shared.ErrInvalidParameter)
	}
	if err := s.WriteHeader(); err != nil {
		return err
	}
	if _, err := io.WriteString(s.w, r.String()); err != nil {
		return fmt.Errorf("failed to write record %q: %w", r.Name(), err)
	}
	s.count++
	return nil
}

// WriteAll writes every record in order.
func (s *Serializer) WriteAll(records []*Record) error {
	if err := s.WriteHeader(); err != nil {
		return err
	}
	for _, r := range records {
		if err := s.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of records written.
func (s *Serializer) Count() int {
	return s.count
}

// FileSerializer is a [Serializer] that owns the file it writes to.
type FileSerializer struct {
	*Serializer
	file *os.File
	path string
}

// Create opens path for writing and writes the header.
func Create(path string) (*FileSerializer, error) {
	if path == "" {
		return nil, shared.ErrMissingFilename
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	fs := &FileSerializer{Serializer: NewSerializer(f), file: f, path: path}
	if err := fs.WriteHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return fs, nil
}

// Path returns the file being written.
func (f *FileSerializer) Path() string {
	return f.path
}

// Close closes the file. Closing twice fails with [shared.ErrNotOpened].
func (f *FileSerializer) Close() error {
	if f.file == nil {
		return shared.ErrNotOpened
	}
	err := f.file.Close()
	f.file = nil
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", f.path, err)
	}
	return nil
}
