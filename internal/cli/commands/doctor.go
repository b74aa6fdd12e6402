package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/structkit/s101ci/internal/cli/config"
	"github.com/structkit/s101ci/internal/runner"
	"github.com/structkit/s101ci/internal/state"
)

// healthCheck is one doctor probe. ok=false with fatal=false is a warning.
type healthCheck struct {
	name  string
	ok    bool
	fatal bool
	note  string
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment for common problems",
		Long: `Verify that the analyzer can run: java is available, the installation
and configuration directories are in place, and the state database is
reachable. Warnings do not fail the command.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd)
		},
	}
}

func runDoctor(cmd *cobra.Command) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	out := cmd.OutOrStdout()

	checks := collectChecks(cfg, logger)

	failed := 0
	for _, check := range checks {
		mark := "ok"
		if !check.ok {
			if check.fatal {
				mark = "FAIL"
				failed++
			} else {
				mark = "warn"
			}
		}
		fmt.Fprintf(out, "[%4s] %s", mark, check.name)
		if check.note != "" {
			fmt.Fprintf(out, " (%s)", check.note)
		}
		fmt.Fprintln(out)
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

func collectChecks(cfg *config.Config, logger *slog.Logger) []healthCheck {
	var checks []healthCheck

	javaBin := cfg.JavaBin
	if javaBin == "" {
		javaBin = "java"
	}
	_, javaErr := exec.LookPath(javaBin)
	checks = append(checks, healthCheck{
		name:  "java executable",
		ok:    javaErr == nil,
		fatal: true,
		note:  javaBin,
	})

	_, installErr := os.Stat(cfg.InstallationDir)
	note := cfg.InstallationDir
	if installErr != nil {
		note += ", will be installed on first run"
	}
	checks = append(checks, healthCheck{name: "installation directory", ok: installErr == nil, note: note})

	if installErr == nil {
		jar := filepath.Join(cfg.InstallationDir, runner.BuildJarName)
		_, jarErr := os.Stat(jar)
		checks = append(checks, healthCheck{name: "analyzer build jar", ok: jarErr == nil, fatal: true, note: jar})
	}

	_, configErr := os.Stat(cfg.ConfigurationDir)
	note = cfg.ConfigurationDir
	if configErr != nil {
		note += ", will be configured on first run"
	}
	checks = append(checks, healthCheck{name: "configuration directory", ok: configErr == nil, note: note})

	// The staged configuration must land at <build>/s101 for the analyzer to
	// find it; that requires the configuration directory to be named s101.
	checks = append(checks, healthCheck{
		name: "configuration directory named s101",
		ok:   filepath.Base(cfg.ConfigurationDir) == "s101",
		note: filepath.Base(cfg.ConfigurationDir),
	})

	label, labelErr := runner.ResolveLabel(cfg.ConfigurationDir, cfg.Label)
	checks = append(checks, healthCheck{
		name:  "run label",
		ok:    labelErr == nil,
		fatal: labelErr != nil,
		note:  string(label),
	})

	store := state.NewSQLiteStore(logger)
	stateOK := false
	if dir := filepath.Dir(cfg.StatePath); os.MkdirAll(dir, 0o755) == nil {
		if err := store.Open(cfg.StatePath); err == nil {
			stateOK = store.Migrate() == nil
			store.Close()
		}
	}
	checks = append(checks, healthCheck{name: "state database", ok: stateOK, fatal: true, note: cfg.StatePath})

	return checks
}
