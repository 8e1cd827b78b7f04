package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/desertthunder/m3ux/internal/m3u"
	"github.com/desertthunder/m3ux/internal/shared"
	tu "github.com/desertthunder/m3ux/internal/testing"
	"github.com/urfave/cli/v3"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			db := newTestDB(t)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				DB:         db,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.db != db || runner.cache == nil {
				t.Error("expected database and cache to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("without a database", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.cache != nil {
				t.Error("expected no cache without a database")
			}
			if err := runner.Close(); err != nil {
				t.Errorf("expected Close to be a no-op, got %v", err)
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "/test/path/config.toml",
			})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writes plain text without formatting", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("simple text")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "simple text" {
				t.Errorf("expected 'simple text', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		var names []string
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names = append(names, cmd.Name)
		}

		for _, want := range []string{"setup", "parse", "convert", "export", "groups", "cache", "bulk", "serve", "tui"} {
			if !slices.Contains(names, want) {
				t.Errorf("expected %q to be registered, got %v", want, names)
			}
		}
	})

	t.Run("prepare", func(t *testing.T) {
		t.Run("loads the config named by the flag", func(t *testing.T) {
			dir := t.TempDir()
			configPath := filepath.Join(dir, "custom.toml")
			tu.MustWriteFile(t, configPath, "[playlist]\nsource = \"lists/main.m3u\"\nmedia_files = [\".ts\"]\n")

			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
			cmd := newFlagCommand(t, "--config", configPath)

			if err := runner.prepare(cmd, false); err != nil {
				t.Fatalf("prepare failed: %v", err)
			}
			if runner.configPath != configPath || runner.config.Playlist.Source != "lists/main.m3u" {
				t.Errorf("expected config from %s, got %+v", configPath, runner.config.Playlist)
			}
			if runner.engine == nil {
				t.Error("expected engine to be built")
			}

			location, err := runner.location(cmd)
			if err != nil || location != "lists/main.m3u" {
				t.Errorf("expected configured source, got %q (%v)", location, err)
			}
		})

		t.Run("missing config file keeps defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
			cmd := newFlagCommand(t, "--config", filepath.Join(t.TempDir(), "absent.toml"))

			if err := runner.prepare(cmd, false); err != nil {
				t.Fatalf("prepare failed: %v", err)
			}
			if runner.configPath != "" {
				t.Errorf("expected no config path, got %q", runner.configPath)
			}
		})

		t.Run("invalid config file", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "bad.toml")
			tu.MustWriteFile(t, configPath, "[playlist\n")

			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
			err := runner.prepare(newFlagCommand(t, "--config", configPath), false)
			if !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})

		t.Run("missing location", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
			_, err := runner.location(newFlagCommand(t))
			if !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})
	})

	t.Run("filter", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		filter, err := runner.filter(newFlagCommand(t, "--type", "movie,channel", "--group", "News", "--search", "bbc"))
		if err != nil {
			t.Fatalf("filter failed: %v", err)
		}
		if !slices.Equal(filter.Types, []m3u.ItemType{m3u.TypeMovie, m3u.TypeChannel}) {
			t.Errorf("unexpected types %v", filter.Types)
		}
		if !slices.Equal(filter.Groups, []string{"News"}) || filter.Search != "bbc" {
			t.Errorf("unexpected filter %+v", filter)
		}

		if _, err := runner.filter(newFlagCommand(t, "--type", "radio")); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

// newFlagCommand parses args against the shared flags and returns the parsed command.
func newFlagCommand(t *testing.T, args ...string) *cli.Command {
	t.Helper()

	var parsed *cli.Command
	cmd := &cli.Command{
		Name:  "test",
		Flags: flags(filterFlags(), jsonFlags()),
		Action: func(_ context.Context, c *cli.Command) error {
			parsed = c
			return nil
		},
	}
	if err := cmd.Run(context.Background(), append([]string{"test"}, args...)); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return parsed
}
