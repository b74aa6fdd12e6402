package runner

import (
	"path/filepath"

	"github.com/structkit/s101ci/internal/mirror"
)

// analysisSubdir is the fixed analysis subdirectory inside the build output.
const analysisSubdir = "s101"

// Context describes one analysis invocation. It is resolved once at the
// start of a run and never mutated afterwards; in particular the label stays
// fixed even when install or configure steps run.
type Context struct {
	ProjectDir string
	BuildDir   string
	InstallDir string
	ConfigDir  string
	Label      Label
	LicenseID  string
}

// AnalysisDir is the analysis area inside the build output directory.
func (c Context) AnalysisDir() string {
	return filepath.Join(c.BuildDir, analysisSubdir)
}

// ConfigFile is the staged structured config passed to the analyzer.
func (c Context) ConfigFile() string {
	return filepath.Join(c.AnalysisDir(), "config.xml")
}

// ManifestFile is the staged dependency manifest.
func (c Context) ManifestFile() string {
	return filepath.Join(c.AnalysisDir(), mirror.ManifestFileName)
}
