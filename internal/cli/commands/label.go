package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/structkit/s101ci/internal/runner"
)

// NewLabelCommand creates the label command.
func NewLabelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "label",
		Short: "Print the label the next run would use",
		Long: `Resolve the run label against the persistent configuration directory:
"baseline" when no baseline snapshot exists yet, "recent" otherwise. An
explicit --label override is reported as-is.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig()
			label, err := runner.ResolveLabel(cfg.ConfigurationDir, cfg.Label)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), label)
			return nil
		},
	}
}
