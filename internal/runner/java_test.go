package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/structkit/s101ci/internal/testutil"
)

func newJavaContext(t *testing.T) Context {
	t.Helper()
	tmp := t.TempDir()
	return Context{
		ProjectDir: tmp,
		BuildDir:   filepath.Join(tmp, "build"),
		InstallDir: filepath.Join(tmp, "install"),
		ConfigDir:  filepath.Join(tmp, "s101"),
		Label:      LabelBaseline,
	}
}

func installJar(t *testing.T, run Context) string {
	t.Helper()
	if err := os.MkdirAll(run.InstallDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	jar := filepath.Join(run.InstallDir, BuildJarName)
	if err := os.WriteFile(jar, []byte("jar"), 0o644); err != nil {
		t.Fatalf("write jar: %v", err)
	}
	return jar
}

func TestJavaAnalyzer_MissingJar(t *testing.T) {
	run := newJavaContext(t)
	if err := os.MkdirAll(run.InstallDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	a := NewJavaAnalyzer("java", nil, nil, testutil.NewTestLogger(t))
	err := a.Analyze(context.Background(), run, filepath.Join(run.BuildDir, "s101", "config.xml"))
	if err == nil {
		t.Fatal("Analyze() should fail when the analyzer jar is absent")
	}
}

func TestJavaAnalyzer_RunsProcess(t *testing.T) {
	run := newJavaContext(t)
	installJar(t, run)

	// "true" ignores the -D/-jar arguments and exits zero, which is all we
	// need to exercise the process plumbing.
	var out, errOut bytes.Buffer
	a := NewJavaAnalyzer("true", &out, &errOut, testutil.NewTestLogger(t))
	if err := a.Analyze(context.Background(), run, "config.xml"); err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
}

func TestJavaAnalyzer_PropagatesProcessFailure(t *testing.T) {
	run := newJavaContext(t)
	installJar(t, run)

	a := NewJavaAnalyzer("false", nil, nil, testutil.NewTestLogger(t))
	if err := a.Analyze(context.Background(), run, "config.xml"); err == nil {
		t.Fatal("Analyze() should surface a non-zero exit")
	}
}

func TestJavaAnalyzer_RespectsContextCancellation(t *testing.T) {
	run := newJavaContext(t)
	installJar(t, run)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewJavaAnalyzer("sleep", nil, nil, testutil.NewTestLogger(t))
	if err := a.Analyze(ctx, run, "5"); err == nil {
		t.Fatal("Analyze() should fail when the context is already canceled")
	}
}
