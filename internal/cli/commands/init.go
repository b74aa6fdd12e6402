package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// scaffold is the shape of a generated s101ci.yaml.
type scaffold struct {
	BuildDir         string              `yaml:"build_dir"`
	ConfigurationDir string              `yaml:"configuration_dir"`
	LicenseID        string              `yaml:"license_id,omitempty"`
	Modules          map[string][]string `yaml:"modules,omitempty"`
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a project configuration file",
		Long: `Write an s101ci.yaml into the given directory (default: current
directory). Existing files are preserved unless --force is given.`,
		Example: `  # Initialize in current directory
  s101ci init

  # Initialize a specific project
  s101ci init path/to/project --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create project directory: %w", err)
	}

	target := filepath.Join(dir, "s101ci.yaml")
	if _, err := os.Stat(target); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", target)
	}

	contents, err := yaml.Marshal(scaffold{
		BuildDir:         "build",
		ConfigurationDir: "s101",
	})
	if err != nil {
		return fmt.Errorf("render configuration: %w", err)
	}
	if err := os.WriteFile(target, contents, 0o644); err != nil {
		return fmt.Errorf("write configuration: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", target)
	return nil
}
