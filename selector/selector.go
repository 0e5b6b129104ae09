// Package selector lists the build outputs to post-process.
package selector

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotDir = errors.New("not a directory")

// Select returns the regular files directly inside dir whose names end with
// ext, in directory listing order. Subdirectories are never entered.
func Select(dir, ext string) (paths []string, err error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory %q: %w", dir, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%q: %w", dir, ErrNotDir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %q: %w", dir, err)
	}

	paths = make([]string, 0, len(entries))

	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ext) {
			continue
		}

		path := filepath.Join(dir, entry.Name())

		if entry.Type().IsRegular() || (entry.Type()&os.ModeSymlink != 0 && isRegular(path)) {
			paths = append(paths, path)
		}
	}

	return paths, nil
}

// Matches applies the test of [Select] to a single path.
func Matches(path, ext string) bool {
	return strings.HasSuffix(filepath.Base(path), ext) && isRegular(path)
}

func isRegular(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}
