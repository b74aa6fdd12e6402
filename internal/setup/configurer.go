package setup

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/structkit/s101ci/internal/mirror"
)

// Configurer writes an initial configuration directory for a project.
type Configurer struct {
	projectName string
	modules     map[string][]string
	logger      *slog.Logger
}

// NewConfigurer creates a Configurer. modules seeds the generated dependency
// manifest with one classpathentry per known module output.
func NewConfigurer(projectName string, modules map[string][]string, logger *slog.Logger) *Configurer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Configurer{projectName: projectName, modules: modules, logger: logger}
}

// Configure writes config.xml and the dependency manifest into configDir.
// The directory must not already carry a configuration; existing files are
// overwritten.
func (c *Configurer) Configure(_ context.Context, installDir, configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create configuration directory: %w", err)
	}

	configXML := filepath.Join(configDir, "config.xml")
	if err := os.WriteFile(configXML, c.renderConfig(), 0o644); err != nil {
		return fmt.Errorf("write config.xml: %w", err)
	}

	manifestFile := filepath.Join(configDir, mirror.ManifestFileName)
	if err := os.WriteFile(manifestFile, c.renderManifest(configDir), 0o644); err != nil {
		return fmt.Errorf("write dependency manifest: %w", err)
	}

	c.logger.Info("default configuration written", slog.String("dir", configDir))
	return nil
}

func (c *Configurer) renderConfig() []byte {
	var buf bytes.Buffer
	buf.WriteString("<local-project version=\"1\" type=\"java\">\n")
	fmt.Fprintf(&buf, "    <name>%s</name>\n", c.projectName)
	buf.WriteString("    <repository>repository</repository>\n")
	fmt.Fprintf(&buf, "    <hiview-spec>%s</hiview-spec>\n", mirror.ManifestFileName)
	buf.WriteString("</local-project>\n")
	return buf.Bytes()
}

// renderManifest emits one classpathentry line per module output. The
// relative-to property initially points at the configuration directory's
// parent; staging rewrites it to a self-anchored expression.
func (c *Configurer) renderManifest(configDir string) []byte {
	names := make([]string, 0, len(c.modules))
	for name := range c.modules {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.WriteString("<hiview-spec version=\"1\">\n")
	fmt.Fprintf(&buf, "    <property name=\"relative-to\" value=\"%s\" />\n",
		filepath.ToSlash(filepath.Dir(configDir)))
	buf.WriteString("    <classpath>\n")
	for _, name := range names {
		for _, output := range c.modules[name] {
			fmt.Fprintf(&buf, "        <classpathentry kind=\"lib\" path=\"%s\" module=\"%s\" />\n",
				filepath.ToSlash(output), name)
		}
	}
	buf.WriteString("    </classpath>\n")
	buf.WriteString("</hiview-spec>\n")
	return buf.Bytes()
}
