package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/structkit/s101ci/internal/state"
	"github.com/structkit/s101ci/internal/testutil"
)

type fakeInstaller struct {
	licenses []string
	installs int
}

func (f *fakeInstaller) License(id string) {
	f.licenses = append(f.licenses, id)
}

func (f *fakeInstaller) Install(_ context.Context, installDir, _ string) error {
	f.installs++
	return os.MkdirAll(installDir, 0o755)
}

type fakeConfigurer struct {
	configures int
}

func (f *fakeConfigurer) Configure(_ context.Context, _, configDir string) error {
	f.configures++
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(configDir, "config.xml"), []byte("<config />\n"), 0o644)
}

// fakeAnalyzer simulates a headless analysis by writing a repository tree
// into the build output's analysis directory.
type fakeAnalyzer struct {
	invocations int
	labels      []Label
	configFiles []string
	snapshot    string
	err         error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, run Context, configFile string) error {
	f.invocations++
	f.labels = append(f.labels, run.Label)
	f.configFiles = append(f.configFiles, configFile)
	if f.err != nil {
		return f.err
	}

	snapshots := filepath.Join(run.AnalysisDir(), "repository", "snapshots")
	if err := os.MkdirAll(snapshots, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(snapshots, "baseline"), []byte(f.snapshot), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(run.AnalysisDir(), "repository", "other.db"), []byte("db"), 0o644)
}

func newTestStore(t *testing.T) *state.SQLiteStore {
	t.Helper()
	store := state.NewSQLiteStore(testutil.NewTestLogger(t))
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate store: %v", err)
	}
	return store
}

type fixture struct {
	runner     *Runner
	installer  *fakeInstaller
	configurer *fakeConfigurer
	analyzer   *fakeAnalyzer
	store      *state.SQLiteStore
	run        Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tmp := t.TempDir()
	installer := &fakeInstaller{}
	configurer := &fakeConfigurer{}
	analyzer := &fakeAnalyzer{snapshot: "snapshot-v1"}
	store := newTestStore(t)

	return &fixture{
		runner:     New(installer, configurer, analyzer, store, testutil.NewTestLogger(t)),
		installer:  installer,
		configurer: configurer,
		analyzer:   analyzer,
		store:      store,
		run: Context{
			ProjectDir: tmp,
			BuildDir:   filepath.Join(tmp, "build"),
			InstallDir: filepath.Join(tmp, "install"),
			ConfigDir:  filepath.Join(tmp, "s101"),
		},
	}
}

func TestRun_FirstRunIsBaseline(t *testing.T) {
	f := newFixture(t)
	f.run.LicenseID = "lic-42"

	result, err := f.runner.Run(context.Background(), f.run, Options{})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if result.Label != LabelBaseline {
		t.Errorf("label = %q, want %q", result.Label, LabelBaseline)
	}
	if f.installer.installs != 1 {
		t.Errorf("installs = %d, want 1", f.installer.installs)
	}
	if len(f.installer.licenses) != 1 || f.installer.licenses[0] != "lic-42" {
		t.Errorf("licenses = %v, want the configured id applied before install", f.installer.licenses)
	}
	if f.configurer.configures != 1 {
		t.Errorf("configures = %d, want 1", f.configurer.configures)
	}

	// The analyzer saw the staged config file and the resolved label.
	wantConfig := filepath.Join(f.run.BuildDir, "s101", "config.xml")
	if len(f.analyzer.configFiles) != 1 || f.analyzer.configFiles[0] != wantConfig {
		t.Errorf("analyzer config = %v, want %s", f.analyzer.configFiles, wantConfig)
	}
	if f.analyzer.labels[0] != LabelBaseline {
		t.Errorf("analyzer label = %q, want %q", f.analyzer.labels[0], LabelBaseline)
	}

	// Baseline results were promoted into the configuration directory.
	baseline, err := os.ReadFile(filepath.Join(f.run.ConfigDir, "repository", "snapshots", "baseline"))
	if err != nil {
		t.Fatalf("promoted baseline missing: %v", err)
	}
	if string(baseline) != "snapshot-v1" {
		t.Errorf("baseline = %q, want %q", baseline, "snapshot-v1")
	}
	if _, err := os.Stat(filepath.Join(f.run.ConfigDir, "repository", "other.db")); err != nil {
		t.Errorf("promoted repository contents missing: %v", err)
	}

	if result.Run == nil || result.Run.Status != state.RunStatusCompleted {
		t.Errorf("run record = %+v, want completed", result.Run)
	}
}

func TestRun_SecondRunIsRecentAndDoesNotPromote(t *testing.T) {
	f := newFixture(t)

	if _, err := f.runner.Run(context.Background(), f.run, Options{}); err != nil {
		t.Fatalf("first Run() failed: %v", err)
	}

	// The second run produces different analysis output; none of it may
	// reach the persistent configuration.
	f.analyzer.snapshot = "snapshot-v2"
	result, err := f.runner.Run(context.Background(), f.run, Options{})
	if err != nil {
		t.Fatalf("second Run() failed: %v", err)
	}

	if result.Label != LabelRecent {
		t.Errorf("label = %q, want %q", result.Label, LabelRecent)
	}
	if f.installer.installs != 1 {
		t.Errorf("installs = %d, want no reinstall", f.installer.installs)
	}
	if f.configurer.configures != 1 {
		t.Errorf("configures = %d, want no reconfigure", f.configurer.configures)
	}

	baseline, err := os.ReadFile(filepath.Join(f.run.ConfigDir, "repository", "snapshots", "baseline"))
	if err != nil {
		t.Fatalf("baseline missing after recent run: %v", err)
	}
	if string(baseline) != "snapshot-v1" {
		t.Errorf("baseline = %q, recent run must not overwrite it", baseline)
	}
}

func TestRun_AnalyzerFailureAbortsBeforePromotion(t *testing.T) {
	f := newFixture(t)
	f.analyzer.err = errors.New("exit status 2")

	result, err := f.runner.Run(context.Background(), f.run, Options{})
	if err == nil {
		t.Fatal("Run() should propagate analyzer failure")
	}
	if _, statErr := os.Stat(filepath.Join(f.run.ConfigDir, "repository")); statErr == nil {
		t.Error("failed run must not promote results")
	}

	rec, err2 := f.store.GetRun(result.Run.ID)
	if err2 != nil {
		t.Fatalf("get run: %v", err2)
	}
	if rec.Status != state.RunStatusFailed || rec.Error == "" {
		t.Errorf("run record = %+v, want failed with error text", rec)
	}
}

func TestRun_InvalidLabelOverride(t *testing.T) {
	f := newFixture(t)
	if _, err := f.runner.Run(context.Background(), f.run, Options{LabelOverride: "nightly"}); err == nil {
		t.Fatal("Run() should reject invalid label overrides")
	}
}

func TestRun_LabelFixedBeforeInstall(t *testing.T) {
	f := newFixture(t)

	// Pre-populate a baseline marker but remove the configuration marker
	// dependency: the label decision must happen before install/configure.
	if err := os.MkdirAll(filepath.Join(f.run.ConfigDir, "repository", "snapshots", "baseline"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	result, err := f.runner.Run(context.Background(), f.run, Options{})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if result.Label != LabelRecent {
		t.Errorf("label = %q, want %q", result.Label, LabelRecent)
	}
	if f.analyzer.labels[0] != LabelRecent {
		t.Errorf("analyzer label = %q, want %q", f.analyzer.labels[0], LabelRecent)
	}
}

func TestRun_SkipsWhenInputsUnchanged(t *testing.T) {
	f := newFixture(t)

	// A configuration carrying a manifest that references the core module.
	if err := os.MkdirAll(f.run.ConfigDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	manifest := `<classpathentry kind="lib" path="core/build/libs/core.jar" module="core" />` + "\n"
	if err := os.WriteFile(filepath.Join(f.run.ConfigDir, "project.java.hsp"), []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(f.run.ConfigDir, "config.xml"), []byte("<config />"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	coreOut := filepath.Join(f.run.ProjectDir, "core-out")
	if err := os.MkdirAll(coreOut, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(coreOut, "core.jar"), []byte("jar"), 0o644); err != nil {
		t.Fatalf("write jar: %v", err)
	}

	opts := Options{Modules: map[string][]string{"core": {"core-out"}}}

	first, err := f.runner.Run(context.Background(), f.run, opts)
	if err != nil {
		t.Fatalf("first Run() failed: %v", err)
	}
	if first.Skipped {
		t.Fatal("first run must not be skipped")
	}

	second, err := f.runner.Run(context.Background(), f.run, opts)
	if err != nil {
		t.Fatalf("second Run() failed: %v", err)
	}
	if !second.Skipped {
		t.Fatal("second run with unchanged inputs should be skipped")
	}
	if f.analyzer.invocations != 1 {
		t.Errorf("invocations = %d, want 1", f.analyzer.invocations)
	}

	forced, err := f.runner.Run(context.Background(), f.run, Options{Modules: opts.Modules, Force: true})
	if err != nil {
		t.Fatalf("forced Run() failed: %v", err)
	}
	if forced.Skipped {
		t.Error("forced run must not be skipped")
	}
	if f.analyzer.invocations != 2 {
		t.Errorf("invocations = %d, want 2 after force", f.analyzer.invocations)
	}
}

func TestRun_MissingManifestNeverSkips(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 2; i++ {
		result, err := f.runner.Run(context.Background(), f.run, Options{})
		if err != nil {
			t.Fatalf("Run() %d failed: %v", i, err)
		}
		if result.Skipped {
			t.Fatalf("run %d skipped without a manifest fingerprint", i)
		}
	}
	if f.analyzer.invocations != 2 {
		t.Errorf("invocations = %d, want 2", f.analyzer.invocations)
	}
}

func TestRun_RecordsHistory(t *testing.T) {
	f := newFixture(t)

	if _, err := f.runner.Run(context.Background(), f.run, Options{}); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	runs, err := f.store.ListRuns(10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}
	if runs[0].Label != string(LabelBaseline) {
		t.Errorf("recorded label = %q, want %q", runs[0].Label, LabelBaseline)
	}
	if runs[0].CompletedAt == nil {
		t.Error("completed run should carry a completion time")
	}
}
