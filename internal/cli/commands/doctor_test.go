package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/structkit/s101ci/internal/cli/config"
	"github.com/structkit/s101ci/internal/runner"
	"github.com/structkit/s101ci/internal/testutil"
)

func doctorConfig(t *testing.T) *config.Config {
	t.Helper()
	tmp := t.TempDir()
	return &config.Config{
		ProjectDir:       tmp,
		BuildDir:         filepath.Join(tmp, "build"),
		InstallationDir:  filepath.Join(tmp, "install"),
		ConfigurationDir: filepath.Join(tmp, "s101"),
		JavaBin:          "sh",
		StatePath:        filepath.Join(tmp, ".s101ci", "state.db"),
	}
}

func checkByName(t *testing.T, checks []healthCheck, name string) healthCheck {
	t.Helper()
	for _, c := range checks {
		if c.name == name {
			return c
		}
	}
	t.Fatalf("check %q not found", name)
	return healthCheck{}
}

func TestCollectChecks_FreshProject(t *testing.T) {
	cfg := doctorConfig(t)
	checks := collectChecks(cfg, testutil.NewTestLogger(t))

	assert.True(t, checkByName(t, checks, "java executable").ok)

	// Missing install and config dirs are warnings, not failures.
	install := checkByName(t, checks, "installation directory")
	assert.False(t, install.ok)
	assert.False(t, install.fatal)

	configDir := checkByName(t, checks, "configuration directory")
	assert.False(t, configDir.ok)
	assert.False(t, configDir.fatal)

	assert.True(t, checkByName(t, checks, "configuration directory named s101").ok)

	label := checkByName(t, checks, "run label")
	assert.True(t, label.ok)
	assert.Equal(t, "baseline", label.note)

	assert.True(t, checkByName(t, checks, "state database").ok)
}

func TestCollectChecks_MissingJava(t *testing.T) {
	cfg := doctorConfig(t)
	cfg.JavaBin = "definitely-not-a-real-binary"

	checks := collectChecks(cfg, testutil.NewTestLogger(t))
	java := checkByName(t, checks, "java executable")
	assert.False(t, java.ok)
	assert.True(t, java.fatal)
}

func TestCollectChecks_InstalledWithJar(t *testing.T) {
	cfg := doctorConfig(t)
	require.NoError(t, os.MkdirAll(cfg.InstallationDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InstallationDir, runner.BuildJarName), []byte("jar"), 0o644))

	checks := collectChecks(cfg, testutil.NewTestLogger(t))
	assert.True(t, checkByName(t, checks, "installation directory").ok)
	assert.True(t, checkByName(t, checks, "analyzer build jar").ok)
}

func TestCollectChecks_WarnsOnRenamedConfigDir(t *testing.T) {
	cfg := doctorConfig(t)
	cfg.ConfigurationDir = filepath.Join(cfg.ProjectDir, "analysis")

	checks := collectChecks(cfg, testutil.NewTestLogger(t))
	renamed := checkByName(t, checks, "configuration directory named s101")
	assert.False(t, renamed.ok)
	assert.False(t, renamed.fatal)
}
