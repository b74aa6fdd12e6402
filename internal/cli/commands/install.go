package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewInstallCommand creates the install command.
func NewInstallCommand() *cobra.Command {
	var reinstall bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the analyzer to your filesystem",
		Long: `Download and unpack the analyzer distribution into the installation
directory. A no-op when the installation already exists; use --reinstall to
replace it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			cfg := cmdCtx.Cfg
			if reinstall {
				if err := os.RemoveAll(cfg.InstallationDir); err != nil {
					return fmt.Errorf("remove existing installation: %w", err)
				}
			}
			if err := cmdCtx.Runner.EnsureInstalled(cmd.Context(), runContext(cfg)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Installation ready at %s\n", cfg.InstallationDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reinstall, "reinstall", false, "Replace an existing installation")

	return cmd
}
