package config

import "fmt"

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Label {
	case "", "baseline", "recent":
	default:
		return fmt.Errorf("invalid label %q: must be \"baseline\" or \"recent\"", c.Label)
	}
	if c.BuildDir == "" {
		return fmt.Errorf("build_dir is required")
	}
	if c.ConfigurationDir == "" {
		return fmt.Errorf("configuration_dir is required")
	}
	if c.InstallationDir == "" {
		return fmt.Errorf("installation_dir is required")
	}
	if c.DownloadURL == "" {
		return fmt.Errorf("download_url is required")
	}
	return nil
}
