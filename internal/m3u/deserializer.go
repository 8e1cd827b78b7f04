package m3u

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/m3ux/internal/shared"
)

// Source supplies the full playlist text, already decoded.
type Source interface {
	Load(ctx context.Context) (string, error)
	Name() string // Name describes the source for logs, e.g. a path or URL
}

// DeserializerOpts configures a [Deserializer].
type DeserializerOpts struct {
	MediaFiles []string    // Extra movie extensions added to [DefaultMediaFiles]
	Logger     *log.Logger // Defaults to a discarding logger
}

// Deserializer turns playlist text into classified, numbered records.
//
// Text is supplied once through [Deserializer.Set], [Deserializer.SetReader]
// or [Deserializer.Open] and kept in memory until [Deserializer.Close].
// A Deserializer is not safe for concurrent use.
type Deserializer struct {
	data       string
	loaded     bool
	classifier *Classifier
	logger     *log.Logger
}

// NewDeserializer creates a [Deserializer] with the given options.
func NewDeserializer(opts DeserializerOpts) *Deserializer {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Deserializer{
		classifier: NewClassifier(opts.MediaFiles...),
		logger:     opts.Logger,
	}
}

// Classifier returns the classifier applied to every record.
func (d *Deserializer) Classifier() *Classifier {
	return d.classifier
}

// Set replaces the loaded text.
func (d *Deserializer) Set(data string) {
	d.data = data
	d.loaded = true
}

// SetReader reads all of r and replaces the loaded text with it.
func (d *Deserializer) SetReader(r io.Reader) error {
	if r == nil {
		return fmt.Errorf("%w: reader must not be nil", shared.ErrInvalidParameter)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read playlist: %w", err)
	}
	d.Set(string(data))
	return nil
}

// Open loads the text from src. A second Open without Close fails with [shared.ErrAlreadyOpened].
func (d *Deserializer) Open(ctx context.Context, src Source) error {
	if d.loaded {
		return shared.ErrAlreadyOpened
	}
	if src == nil {
		return shared.ErrMissingSource
	}

	data, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", src.Name(), err)
	}

	d.logger.Info("loaded playlist", "source", src.Name(), "size", len(data))
	d.Set(data)
	return nil
}

// Close drops the loaded text.
func (d *Deserializer) Close() {
	d.data = ""
	d.loaded = false
}

// Records returns a lazy sequence of classified records numbered from 1 in text order.
//
// It fails with [shared.ErrNoDataAvailable] when no text, or empty text, is
// loaded. Each yielded record is fresh. Entries that cannot be populated or
// classified are logged and skipped without consuming a channel number.
func (d *Deserializer) Records() (iter.Seq[*Record], error) {
	if !d.loaded || d.data == "" {
		return nil, shared.ErrNoDataAvailable
	}

	data := d.data
	return func(yield func(*Record) bool) {
		number := 1
		for entry := range Entries(data) {
			record := NewRecord()
			if err := record.PopulateEntry(entry); err != nil {
				d.logger.Warn("skipping entry", "name", entry.Name, "error", err)
				continue
			}

			overrides := Overrides{OverrideNumber: strconv.Itoa(number)}
			if err := d.classifier.Classify(record, overrides); err != nil {
				d.logger.Warn("skipping entry", "name", entry.Name, "error", err)
				continue
			}

			d.logger.Debugf("%s :: %#v", record.Group(), record)
			if !yield(record) {
				return
			}
			number++
		}
	}, nil
}

// All collects every record from [Deserializer.Records].
func (d *Deserializer) All() ([]*Record, error) {
	seq, err := d.Records()
	if err != nil {
		return nil, err
	}

	var records []*Record
	for record := range seq {
		records = append(records, record)
	}
	return records, nil
}
