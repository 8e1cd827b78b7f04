package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/m3ux/internal/m3u"
	"github.com/desertthunder/m3ux/internal/repositories"
	"github.com/desertthunder/m3ux/internal/services"
	"github.com/desertthunder/m3ux/internal/shared"
	"github.com/desertthunder/m3ux/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	db         *sql.DB
	cache      *repositories.PlaylistCache
	engine     *tasks.PlaylistEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string // Path Config was loaded from; a different --config reloads
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB // Optional; opened from the config on first use otherwise
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
	}
	if r.db != nil {
		r.cache = repositories.NewPlaylistCache(r.db)
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, parseCommand, convertCommand, exportCommand, groupsCommand,
		cacheCommand, bulkCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and everything it builds afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.engine = nil
}

// loadConfig reads the file named by --config when it differs from the one
// already loaded. A missing file keeps the current configuration.
func (r *Runner) loadConfig(cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" || path == r.configPath {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", path)
		return nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return err
	}
	r.config = config
	r.configPath = path
	r.engine = nil
	return nil
}

// prepare loads the configuration and builds the playlist engine. The
// database is opened when requireStore is set or when it already exists, so
// cached playlists can be referenced by ID or name.
func (r *Runner) prepare(cmd *cli.Command, requireStore bool) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	if r.cache == nil && (requireStore || r.databaseExists()) {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		r.db = db
		r.cache = repositories.NewPlaylistCache(db)
		r.engine = nil
	}

	if r.engine != nil {
		return nil
	}

	opts, err := services.OptionsFromConfig(r.config, r.logger)
	if err != nil {
		return err
	}
	opts.Client = r.httpClient

	engineOpts := tasks.EngineOpts{
		Open:       func(location string) (m3u.Source, error) { return services.OpenSource(location, opts) },
		MediaFiles: r.config.Playlist.MediaFiles,
		Logger:     r.logger,
	}
	if r.cache != nil {
		engineOpts.Store = r.cache
	}
	r.engine = tasks.NewPlaylistEngine(engineOpts)
	return nil
}

func (r *Runner) databaseExists() bool {
	path := r.config.Database.Path
	if path == "" || path == shared.MemoryDatabase {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Close releases the database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db, r.cache, r.engine = nil, nil, nil
	return err
}

// location returns the first argument, falling back to the configured source.
func (r *Runner) location(cmd *cli.Command) (string, error) {
	if loc := cmd.Args().First(); loc != "" {
		return loc, nil
	}
	if r.config.Playlist.Source != "" {
		return r.config.Playlist.Source, nil
	}
	return "", fmt.Errorf("%w: playlist location (or [playlist] source in the config)", shared.ErrMissingArgument)
}

// filter builds a [tasks.Filter] from the shared filter flags.
func (r *Runner) filter(cmd *cli.Command) (tasks.Filter, error) {
	types, err := tasks.ParseTypes(cmd.StringSlice("type"))
	if err != nil {
		return tasks.Filter{}, err
	}
	return tasks.Filter{
		Types:     types,
		Groups:    cmd.StringSlice("group"),
		Countries: cmd.StringSlice("country"),
		Search:    cmd.String("search"),
	}, nil
}

// reportProgress prints progress updates until the channel is closed. The
// returned channel is closed once every update has been written.
func (r *Runner) reportProgress(progress <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			switch update.Phase {
			case tasks.FetchSource:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.BulkImport:
				r.writePlain("   %s\n", update.Message)
			default:
				r.writePlain("• %s\n", update.Message)
			}
		}
	}()
	return done
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// writeTable renders rows under headers as a bordered table.
func (r *Runner) writeTable(headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style { return cellStyle }).
		Headers(headers...).
		Rows(rows...)
	return r.writePlain("%s\n", t.Render())
}
