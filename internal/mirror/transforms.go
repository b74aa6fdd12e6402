package mirror

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ManifestFileName is the generated dependency manifest inside the analysis
// directory. Its relative-to property is re-anchored on staging so the staged
// copy stays usable wherever the build output directory lives.
const ManifestFileName = "project.java.hsp"

var relativeToProperty = regexp.MustCompile(`<property name="relative-to" value="(.*)" />`)

// RewriteManifestAnchor returns a transform replacing the manifest's
// relative-to property with a path expression anchored at the staged file's
// own location: const(THIS_FILE) plus the offset from analysisDir back to
// projectDir.
func RewriteManifestAnchor(analysisDir, projectDir string) Transform {
	return func(rel string, contents []byte) ([]byte, error) {
		offset, err := filepath.Rel(analysisDir, projectDir)
		if err != nil {
			return nil, fmt.Errorf("compute anchor offset: %w", err)
		}
		value := "const(THIS_FILE)/" + filepath.ToSlash(offset)
		repl := `<property name="relative-to" value="` + value + `" />`
		return relativeToProperty.ReplaceAllLiteral(contents, []byte(repl)), nil
	}
}

// NormalizeLineEndings converts Windows line endings to Unix style so the
// persisted configuration does not accumulate spurious diffs across
// platforms.
func NormalizeLineEndings(_ string, contents []byte) ([]byte, error) {
	return bytes.ReplaceAll(contents, []byte("\r\n"), []byte("\n")), nil
}

// StagingRules returns the transform set for lifecycle mirrors: the
// dependency manifest gets its anchor rewritten, structured config files get
// their line endings normalized, everything else is copied verbatim.
func StagingRules(analysisDir, projectDir string) []Rule {
	return []Rule{
		{
			Match: func(name string) bool { return name == ManifestFileName },
			Apply: RewriteManifestAnchor(analysisDir, projectDir),
		},
		{
			Match: func(name string) bool { return strings.HasSuffix(name, ".xml") },
			Apply: NormalizeLineEndings,
		},
	}
}
