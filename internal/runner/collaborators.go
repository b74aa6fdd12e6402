package runner

import "context"

// Installer installs the external analyzer distribution. When a license id
// is configured it is applied via License before any Install call.
type Installer interface {
	License(id string)
	Install(ctx context.Context, installDir, configDir string) error
}

// Configurer writes a default configuration into configDir.
type Configurer interface {
	Configure(ctx context.Context, installDir, configDir string) error
}

// Analyzer executes the external analysis process against a staged config
// file. A non-nil error means the run failed and no promotion may happen.
type Analyzer interface {
	Analyze(ctx context.Context, run Context, configFile string) error
}
