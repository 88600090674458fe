package fileops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// TopLevelEntries returns the sorted names of the entries directly under dir.
func TopLevelEntries(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ClearDirectoryExcept removes every top-level entry of root whose name is
// not in keep, recursively. root itself is never removed.
//
// Parameters:
//   - root: directory to clear
//   - keep: top-level names to leave in place
//
// Returns:
//   - []string: names of the removed entries, sorted
//   - error: the first removal failure; entries removed before it stay removed
func ClearDirectoryExcept(root string, keep []string) ([]string, error) {
	names, err := TopLevelEntries(root)
	if err != nil {
		return nil, err
	}

	keepSet := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		keepSet[k] = struct{}{}
	}

	var removed []string
	for _, name := range names {
		if _, ok := keepSet[name]; ok {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, name)); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", name, err)
		}
		removed = append(removed, name)
	}

	return removed, nil
}

// IsDirEmpty reports whether dir has no entries. A missing dir is an error.
func IsDirEmpty(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}
