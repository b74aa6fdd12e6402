// Package mirror copies directory trees with per-file content transforms.
//
// It implements the staging and promotion copies of the analysis lifecycle:
// configuration is mirrored into the build output before a run, and baseline
// results are mirrored back afterwards. Destination paths keep each entry's
// path relative to the source's parent, so the destination receives the
// source directory itself as a named subtree rather than just its contents.
package mirror

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Transform rewrites file contents during a mirror pass. The rel argument is
// the entry's path relative to the mirrored source's parent directory.
type Transform func(rel string, contents []byte) ([]byte, error)

// Rule pairs a filename predicate with a transform. The first matching rule
// wins; files with no matching rule are copied verbatim.
type Rule struct {
	Match func(name string) bool
	Apply Transform
}

// Mirror copies every entry under src into dst. Directories are created
// (including intermediate ancestors) before their contents; existing
// destination files are overwritten unconditionally. The first I/O error
// aborts the whole pass, leaving any partially written tree to the caller.
func Mirror(src, dst string, rules []Rule) error {
	base := filepath.Dir(src)
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target, rel, d, rules)
	})
	if err != nil {
		return fmt.Errorf("mirror %s to %s: %w", src, dst, err)
	}
	return nil
}

func copyFile(path, target, rel string, d fs.DirEntry, rules []Rule) error {
	info, err := d.Info()
	if err != nil {
		return err
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	for _, rule := range rules {
		if rule.Match(d.Name()) {
			contents, err = rule.Apply(rel, contents)
			if err != nil {
				return fmt.Errorf("transform %s: %w", rel, err)
			}
			break
		}
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.WriteFile(target, contents, info.Mode().Perm())
}
