package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Force bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run headless analysis, installing and configuring if necessary",
		Long: `Execute one full analysis lifecycle.

The analyzer is installed and a default configuration written on first use.
The persistent configuration is staged into the build output, the analysis
runs against the staged config, and baseline results are promoted back into
the configuration directory. Runs whose dependency inputs are unchanged
since the last successful run are skipped; use --force to run anyway.`,
		Example: `  # Run analysis
  s101ci run

  # Run even when inputs are unchanged
  s101ci run --force

  # Force a comparison run against the existing baseline
  s101ci run --label recent`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Run the analyzer even when inputs are unchanged")

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	startTime := time.Now()
	result, err := cmdCtx.Runner.Run(cmd.Context(), runContext(cmdCtx.Cfg), runOptions(cmdCtx.Cfg, opts.Force))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Skipped {
		fmt.Fprintf(out, "Inputs unchanged since last successful run, analysis skipped (label %s)\n", result.Label)
		return nil
	}

	fmt.Fprintf(out, "Run %s: %s (label %s)\n", result.Run.ID, result.Run.Status, result.Label)
	if result.Label == "baseline" {
		fmt.Fprintf(out, "Baseline snapshot promoted to %s\n", cmdCtx.Cfg.ConfigurationDir)
	}
	fmt.Fprintf(out, "Completed in %s\n", time.Since(startTime).Round(time.Millisecond))
	return nil
}
