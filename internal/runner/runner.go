// Package runner sequences a single headless analysis run: install the tool
// if missing, configure if missing, stage configuration into the build
// output, attach incremental inputs from the dependency manifest, invoke the
// analyzer, and promote fresh baseline results back into the persistent
// configuration directory.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/structkit/s101ci/internal/manifest"
	"github.com/structkit/s101ci/internal/mirror"
	"github.com/structkit/s101ci/internal/state"
)

// Options tune a single run.
type Options struct {
	// LabelOverride forces the run label instead of resolving it from the
	// configuration directory. Must be "baseline", "recent", or empty.
	LabelOverride string
	// Force runs the analyzer even when the input fingerprint is unchanged.
	Force bool
	// Modules maps module names to their build-output directories. When
	// empty, modules are auto-discovered from the project layout.
	Modules map[string][]string
}

// Result reports the outcome of one lifecycle run.
type Result struct {
	Run     *state.Run
	Label   Label
	Skipped bool
}

// Runner drives the analysis lifecycle through its collaborators.
type Runner struct {
	installer  Installer
	configurer Configurer
	analyzer   Analyzer
	store      state.Store
	logger     *slog.Logger
}

// New creates a Runner.
func New(installer Installer, configurer Configurer, analyzer Analyzer, store state.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		installer:  installer,
		configurer: configurer,
		analyzer:   analyzer,
		store:      store,
		logger:     logger,
	}
}

// Run executes one full lifecycle. The run context's label is resolved here
// and stays fixed for the whole run; install and configure steps never
// change it. A failed analyzer process aborts the run before any promotion.
func (r *Runner) Run(ctx context.Context, run Context, opts Options) (*Result, error) {
	label, err := ResolveLabel(run.ConfigDir, opts.LabelOverride)
	if err != nil {
		return nil, err
	}
	run.Label = label
	r.logger.Info("starting run",
		slog.String("label", string(label)),
		slog.String("config_dir", run.ConfigDir))

	if err := r.EnsureInstalled(ctx, run); err != nil {
		return nil, err
	}
	if err := r.EnsureConfigured(ctx, run); err != nil {
		return nil, err
	}
	if err := r.stage(run); err != nil {
		return nil, err
	}

	fingerprint, err := r.attachInputs(run, opts)
	if err != nil {
		return nil, err
	}
	if !opts.Force && r.inputsUnchanged(run, fingerprint) {
		r.logger.Info("inputs unchanged since last successful run, skipping analysis")
		rec, err := r.store.CreateRun(string(label))
		if err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
		_ = r.store.CompleteRun(rec.ID, state.RunStatusSkipped, "")
		return &Result{Run: rec, Label: label, Skipped: true}, nil
	}

	rec, err := r.store.CreateRun(string(label))
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	result := &Result{Run: rec, Label: label}

	if err := r.analyzer.Analyze(ctx, run, run.ConfigFile()); err != nil {
		r.fail(rec.ID, err)
		return result, err
	}

	if label == LabelBaseline {
		if err := r.promote(run); err != nil {
			r.fail(rec.ID, err)
			return result, err
		}
	}

	if err := r.store.CompleteRun(rec.ID, state.RunStatusCompleted, ""); err != nil {
		r.logger.Warn("failed to record run completion", slog.String("error", err.Error()))
	}
	if fingerprint != "" {
		if err := r.store.SetFingerprint(run.ConfigDir, fingerprint); err != nil {
			r.logger.Warn("failed to record input fingerprint", slog.String("error", err.Error()))
		}
	}
	if updated, err := r.store.GetRun(rec.ID); err == nil {
		result.Run = updated
	}

	r.logger.Info("run completed", slog.String("run_id", rec.ID), slog.String("label", string(label)))
	return result, nil
}

// EnsureInstalled applies the configured license and installs the analyzer
// when the installation directory does not exist yet.
func (r *Runner) EnsureInstalled(ctx context.Context, run Context) error {
	if run.LicenseID != "" {
		r.installer.License(run.LicenseID)
	}
	if _, err := os.Stat(run.InstallDir); err == nil {
		return nil
	}
	r.logger.Info("installing analyzer", slog.String("dir", run.InstallDir))
	if err := r.installer.Install(ctx, run.InstallDir, run.ConfigDir); err != nil {
		return fmt.Errorf("install: %w", err)
	}
	return nil
}

// EnsureConfigured writes a default configuration when the configuration
// directory does not exist yet. A pre-existing installation with missing
// configuration is a valid, supported state.
func (r *Runner) EnsureConfigured(ctx context.Context, run Context) error {
	if _, err := os.Stat(run.ConfigDir); err == nil {
		return nil
	}
	r.logger.Info("writing default configuration", slog.String("dir", run.ConfigDir))
	if err := r.configurer.Configure(ctx, run.InstallDir, run.ConfigDir); err != nil {
		return fmt.Errorf("configure: %w", err)
	}
	return nil
}

// stage mirrors the persistent configuration directory into the build
// output, rewriting the manifest anchor and normalizing config line endings
// on the way.
func (r *Runner) stage(run Context) error {
	rules := mirror.StagingRules(run.AnalysisDir(), run.ProjectDir)
	if err := mirror.Mirror(run.ConfigDir, run.BuildDir, rules); err != nil {
		return fmt.Errorf("stage configuration: %w", err)
	}
	return nil
}

// attachInputs scans the staged manifest and fingerprints the referenced
// build outputs. A missing manifest is a normal first-run condition and
// yields no fingerprint.
func (r *Runner) attachInputs(run Context, opts Options) (string, error) {
	index := opts.Modules
	if len(index) == 0 {
		discovered, err := manifest.DiscoverModules(run.ProjectDir)
		if err != nil {
			return "", err
		}
		index = discovered
	} else {
		index = resolveModulePaths(index, run.ProjectDir)
	}

	entries, err := manifest.Scan(run.ManifestFile(), index)
	if err != nil {
		return "", err
	}
	r.logger.Debug("resolved incremental inputs", slog.Int("modules", len(entries)))

	fingerprint, err := manifest.Fingerprint(entries)
	if err != nil {
		return "", err
	}
	return fingerprint, nil
}

// inputsUnchanged reports whether the analyzer can be skipped: a fingerprint
// exists, matches the stored one, and the previous run succeeded.
func (r *Runner) inputsUnchanged(run Context, fingerprint string) bool {
	if fingerprint == "" {
		return false
	}
	stored, err := r.store.GetFingerprint(run.ConfigDir)
	if err != nil || stored != fingerprint {
		return false
	}
	last, err := r.store.GetLatestRun()
	return err == nil && last != nil && last.Status == state.RunStatusCompleted
}

// promote copies a freshly authored baseline back into the persistent
// configuration: first the snapshots subtree under <config>/repository, then
// the whole repository subtree under the configuration root. Both mirrors
// always occur; they have different destination anchors.
func (r *Runner) promote(run Context) error {
	rules := mirror.StagingRules(run.AnalysisDir(), run.ProjectDir)
	snapshots := filepath.Join(run.AnalysisDir(), "repository", "snapshots")
	if err := mirror.Mirror(snapshots, filepath.Join(run.ConfigDir, "repository"), rules); err != nil {
		return fmt.Errorf("promote snapshots: %w", err)
	}
	repository := filepath.Join(run.AnalysisDir(), "repository")
	if err := mirror.Mirror(repository, run.ConfigDir, rules); err != nil {
		return fmt.Errorf("promote repository: %w", err)
	}
	return nil
}

func (r *Runner) fail(runID string, cause error) {
	if err := r.store.CompleteRun(runID, state.RunStatusFailed, cause.Error()); err != nil {
		r.logger.Warn("failed to record run failure", slog.String("error", err.Error()))
	}
}

func resolveModulePaths(modules map[string][]string, projectDir string) map[string][]string {
	resolved := make(map[string][]string, len(modules))
	for name, outputs := range modules {
		paths := make([]string, len(outputs))
		for i, out := range outputs {
			if filepath.IsAbs(out) {
				paths[i] = out
			} else {
				paths[i] = filepath.Join(projectDir, out)
			}
		}
		resolved[name] = paths
	}
	return resolved
}
