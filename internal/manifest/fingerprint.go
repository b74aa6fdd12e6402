package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

// Fingerprint hashes the file inventory of every resolved output directory
// so a run can be skipped when no dependency changed since the last
// successful one. The hash covers relative path, size, and modification time
// of each file, walked in lexical order. Output directories that do not
// exist contribute nothing. An empty entry set yields the empty string,
// which callers must treat as "never skip".
func Fingerprint(entries []Entry) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}
	h := sha256.New()
	for _, entry := range entries {
		fmt.Fprintf(h, "module %s\n", entry.Module)
		for _, dir := range entry.Outputs {
			err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				info, err := d.Info()
				if err != nil {
					return err
				}
				rel, err := filepath.Rel(dir, path)
				if err != nil {
					return err
				}
				fmt.Fprintf(h, "%s %d %d\n", filepath.ToSlash(rel), info.Size(), info.ModTime().UnixNano())
				return nil
			})
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return "", fmt.Errorf("fingerprint %s: %w", dir, err)
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
