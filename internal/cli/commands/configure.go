package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewConfigureCommand creates the configure command.
func NewConfigureCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Apply a default analyzer configuration to the project",
		Long: `Write a default configuration into the persistent configuration
directory. A no-op when the directory already exists.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			cfg := cmdCtx.Cfg
			if err := cmdCtx.Runner.EnsureConfigured(cmd.Context(), runContext(cfg)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration ready at %s\n", cfg.ConfigurationDir)
			return nil
		},
	}
}
