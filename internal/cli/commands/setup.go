// Package commands implements the s101ci subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/structkit/s101ci/internal/cli/config"
	"github.com/structkit/s101ci/internal/runner"
	"github.com/structkit/s101ci/internal/setup"
	"github.com/structkit/s101ci/internal/state"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Store  *state.SQLiteStore
	Runner *runner.Runner
}

// NewCommandContext creates a CommandContext with an opened state store and
// a fully wired runner. Returns the context and a cleanup function that must
// be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	installer := setup.NewInstaller(cfg.DownloadURL, logger)
	configurer := setup.NewConfigurer(cfg.ProjectName(), cfg.Modules, logger)
	analyzer := runner.NewJavaAnalyzer(cfg.JavaBin, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
	r := runner.New(installer, configurer, analyzer, store, logger)

	cleanup := func() {
		_ = store.Close()
	}
	return &CommandContext{Cfg: cfg, Logger: logger, Store: store, Runner: r}, cleanup, nil
}

// getConfig returns the current configuration, loading defaults when no
// configuration was loaded yet (e.g. commands constructed directly in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	cfg, err := config.LoadConfig("", nil)
	if err != nil {
		return &config.Config{}
	}
	return cfg
}

// openStore opens (and migrates) the state database, creating its parent
// directory when needed.
func openStore(cfg *config.Config, logger *slog.Logger) (*state.SQLiteStore, error) {
	if dir := filepath.Dir(cfg.StatePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// runContext builds the runner context from configuration. The label is
// resolved by the runner itself.
func runContext(cfg *config.Config) runner.Context {
	return runner.Context{
		ProjectDir: cfg.ProjectDir,
		BuildDir:   cfg.BuildDir,
		InstallDir: cfg.InstallationDir,
		ConfigDir:  cfg.ConfigurationDir,
		LicenseID:  cfg.LicenseID,
	}
}

// runOptions builds runner options from configuration.
func runOptions(cfg *config.Config, force bool) runner.Options {
	return runner.Options{
		LabelOverride: cfg.Label,
		Force:         force,
		Modules:       cfg.Modules,
	}
}
