package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// BuildJarName is the headless analyzer entry point inside the installation
// directory.
const BuildJarName = "structure101-java-build.jar"

// JavaAnalyzer runs the analyzer as an external java process.
type JavaAnalyzer struct {
	javaBin string
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
}

// NewJavaAnalyzer creates a JavaAnalyzer. javaBin defaults to "java" when
// empty; stdout/stderr default to the process's own streams.
func NewJavaAnalyzer(javaBin string, stdout, stderr io.Writer, logger *slog.Logger) *JavaAnalyzer {
	if javaBin == "" {
		javaBin = "java"
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &JavaAnalyzer{javaBin: javaBin, stdout: stdout, stderr: stderr, logger: logger}
}

// Analyze invokes the analyzer jar with the staged config file as its single
// argument, working directory set to the installation directory, and the
// resolved label exported both as a system property and in the environment.
// The process is waited on to completion.
func (a *JavaAnalyzer) Analyze(ctx context.Context, run Context, configFile string) error {
	jar := filepath.Join(run.InstallDir, BuildJarName)
	if _, err := os.Stat(jar); err != nil {
		return fmt.Errorf("analyzer jar not found: %w", err)
	}

	cmd := exec.CommandContext(ctx, a.javaBin,
		"-Ds101.label="+string(run.Label), "-jar", jar, configFile)
	cmd.Dir = run.InstallDir
	cmd.Env = append(os.Environ(), "S101_LABEL="+string(run.Label))
	cmd.Stdout = a.stdout
	cmd.Stderr = a.stderr

	a.logger.Info("invoking analyzer",
		slog.String("jar", jar),
		slog.String("config", configFile),
		slog.String("label", string(run.Label)))

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("analyzer process failed: %w", err)
	}
	return nil
}
