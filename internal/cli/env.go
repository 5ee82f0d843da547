package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/boss6825/pharmintel/internal/config"
	"github.com/boss6825/pharmintel/internal/demo"
	"github.com/boss6825/pharmintel/internal/history"
	"github.com/boss6825/pharmintel/internal/insight"
	"github.com/boss6825/pharmintel/internal/logging"
)

// PrerequisiteError represents a failed prerequisite check with helpful remediation info.
type PrerequisiteError struct {
	Check   string
	Message string
	Help    string
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("%s: %s\n\n%s", e.Check, e.Message, e.Help)
}

// appEnv holds what every command needs: settings, the log file and the run
// history.
type appEnv struct {
	cfg    *config.Config
	opts   *rootOptions
	logger *slog.Logger
	store  *history.Store
	closer io.Closer
}

// openEnv loads configuration, applies flag overrides and opens the log and
// history database in the data directory.
func openEnv(opts *rootOptions) (*appEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return nil, &PrerequisiteError{
			Check:   "Data directory",
			Message: err.Error(),
			Help:    "Set PHARMINTEL_DATA_DIR to a writable directory.",
		}
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger, closer, err := logging.Setup(cfg.LogPath, level)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	store, err := history.Open(cfg.DBPath)
	if err != nil {
		closer.Close()
		return nil, err
	}

	return &appEnv{cfg: cfg, opts: opts, logger: logger, store: store, closer: closer}, nil
}

func applyFlags(cfg *config.Config, opts *rootOptions) {
	if opts.preset != "" {
		cfg.Preset = opts.preset
	}
	if opts.scenario != "" {
		cfg.Scenario = opts.scenario
	}
	if opts.policy != "" {
		cfg.FailurePolicy = opts.policy
	}
}

// Close releases the history database and the log file.
func (e *appEnv) Close() error {
	return errors.Join(e.store.Close(), e.closer.Close())
}

// pipeline builds the agent roster and schedule from config and flags.
func (e *appEnv) pipeline() (*demo.Pipeline, error) {
	dc, err := e.cfg.DemoConfig()
	if err != nil {
		return nil, err
	}
	dc.Script = e.opts.script
	return demo.NewPipeline(dc)
}

// repository returns the configured insight catalog, or the built-in one.
func (e *appEnv) repository() (insight.Repository, error) {
	if e.cfg.CatalogPath == "" {
		return insight.Default(), nil
	}
	repo := insight.NewFileRepository(e.cfg.CatalogPath)
	if err := repo.Load(); err != nil {
		return nil, &PrerequisiteError{
			Check:   "Insight catalog",
			Message: err.Error(),
			Help:    "Fix the catalog file or write a fresh one with: pharmintel catalog " + e.cfg.CatalogPath,
		}
	}
	return repo, nil
}
