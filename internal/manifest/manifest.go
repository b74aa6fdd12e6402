// Package manifest parses generated dependency manifests and resolves the
// referenced modules into concrete build outputs.
package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

var classpathEntry = regexp.MustCompile(`<classpathentry kind="lib" path="(.*)" module="(.*)" />`)

// Entry is one classpathentry line resolved against the module output index.
type Entry struct {
	LibraryPath string
	Module      string
	Outputs     []string
}

// Scan reads the manifest at path and resolves each referenced module
// against index (module name to build-output directories). A missing
// manifest file is a normal first-run condition and yields no entries.
// Lines that do not match the entry pattern, or that name a module absent
// from the index, are skipped. Each module is consumed at most once, so
// repeated references never produce duplicate entries. The caller's index
// is not modified.
func Scan(path string, index map[string][]string) ([]Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	defer f.Close()

	remaining := make(map[string][]string, len(index))
	for name, outputs := range index {
		remaining[name] = outputs
	}

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := classpathEntry.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		module := m[2]
		outputs, ok := remaining[module]
		if !ok {
			continue
		}
		delete(remaining, module)
		entries = append(entries, Entry{LibraryPath: m[1], Module: module, Outputs: outputs})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return entries, nil
}

// DiscoverModules builds a module output index from a conventional multi-
// module layout: every direct child of projectDir exposing build/classes or
// build/libs registers those directories under the child's name.
func DiscoverModules(projectDir string) (map[string][]string, error) {
	children, err := os.ReadDir(projectDir)
	if err != nil {
		return nil, fmt.Errorf("discover modules in %s: %w", projectDir, err)
	}
	index := make(map[string][]string)
	for _, child := range children {
		if !child.IsDir() {
			continue
		}
		var outputs []string
		for _, sub := range []string{"classes", "libs"} {
			dir := filepath.Join(projectDir, child.Name(), "build", sub)
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				outputs = append(outputs, dir)
			}
		}
		if len(outputs) > 0 {
			index[child.Name()] = outputs
		}
	}
	return index, nil
}
