package runner

import (
	"fmt"
	"os"
	"path/filepath"
)

// Label classifies a run: baseline runs author a new reference snapshot and
// are persisted, recent runs are compared against an existing baseline and
// stay ephemeral.
type Label string

const (
	LabelBaseline Label = "baseline"
	LabelRecent   Label = "recent"
)

// baselineMarker, relative to the configuration directory, is the sole
// on-disk signal that a prior baseline snapshot exists.
var baselineMarker = filepath.Join("repository", "snapshots", "baseline")

// ResolveLabel decides the label for a run against configDir. An explicit
// non-empty override wins; otherwise the label is baseline exactly when no
// baseline snapshot exists yet. The result is fixed for the whole run.
func ResolveLabel(configDir, override string) (Label, error) {
	switch override {
	case "":
	case string(LabelBaseline):
		return LabelBaseline, nil
	case string(LabelRecent):
		return LabelRecent, nil
	default:
		return "", fmt.Errorf("invalid label %q (want %q or %q)", override, LabelBaseline, LabelRecent)
	}
	if _, err := os.Stat(filepath.Join(configDir, baselineMarker)); err == nil {
		return LabelRecent, nil
	}
	return LabelBaseline, nil
}
