package fileops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// AtomicWrite streams r into destPath. The destination either appears fully
// written or is left untouched.
//
// The function uses a temporary file approach:
//  1. Creates a temporary file in the destination directory
//  2. Copies all data to the temporary file and syncs it
//  3. Renames the temporary file over the destination
//
// Parameters:
//   - destPath: path of the file to create or replace
//   - r: content source
//   - perm: permissions of the resulting file
//
// Returns:
//   - error: creation, copy or rename errors; the temporary file is removed on failure
func AtomicWrite(destPath string, r io.Reader, perm os.FileMode) error {
	dir := filepath.Dir(destPath)
	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(destPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempPath := tempFile.Name()

	var success bool
	defer func() {
		tempFile.Close()
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := io.Copy(tempFile, r); err != nil {
		return fmt.Errorf("failed to write file contents: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, perm); err != nil {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}

	if err := os.Rename(tempPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	success = true
	return nil
}

// EnsureDirectoryExists creates a directory and all necessary parent directories.
// This is equivalent to `mkdir -p` and is safe to call multiple times.
func EnsureDirectoryExists(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
