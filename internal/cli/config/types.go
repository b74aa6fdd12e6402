// Package config provides configuration management for the s101ci CLI.
//
// Configuration is layered: built-in defaults, then s101ci.yaml, then
// S101CI_* environment variables, then explicitly set CLI flags.
package config

// DefaultDownloadURL is the analyzer distribution fetched on first install.
const DefaultDownloadURL = "https://structure101.com/binaries/v6/structure101-build-java-all.zip"

// Config holds all CLI configuration options.
type Config struct {
	ProjectDir       string              `koanf:"project_dir"`
	BuildDir         string              `koanf:"build_dir"`
	InstallationDir  string              `koanf:"installation_dir"`
	ConfigurationDir string              `koanf:"configuration_dir"`
	Label            string              `koanf:"label"`
	LicenseID        string              `koanf:"license_id"`
	JavaBin          string              `koanf:"java_bin"`
	DownloadURL      string              `koanf:"download_url"`
	StatePath        string              `koanf:"state_path"`
	Modules          map[string][]string `koanf:"modules"`
	Verbose          bool                `koanf:"verbose"`
}

// ProjectName is the short name used in generated configuration.
func (c *Config) ProjectName() string {
	return baseName(c.ProjectDir)
}
