package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ValidatePathSecurity rejects empty paths, ".." segments and absolute
// paths inside system directories. It does not touch the filesystem.
//
// Usage example:
//
//	if err := fileops.ValidatePathSecurity("../../etc/passwd"); err != nil {
//	    return err
//	}
func ValidatePathSecurity(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return fmt.Errorf("path traversal not allowed")
		}
	}

	if filepath.IsAbs(path) && IsReservedDirectory(filepath.Clean(path)) {
		return fmt.Errorf("path points into a reserved system directory")
	}

	return nil
}

// RelativeTo returns path relative to baseDir, using forward slashes, after
// checking that path exists and lies inside baseDir.
//
// Parameters:
//   - path: file or directory, absolute or relative to the working directory
//   - baseDir: directory that must contain path
//
// Returns:
//   - string: slash-separated path relative to baseDir ("." for baseDir itself)
//   - error: os.ErrNotExist when path is missing, or a containment error
func RelativeTo(path, baseDir string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path: %w", err)
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("cannot resolve base directory: %w", err)
	}

	if _, err := os.Lstat(absPath); err != nil {
		return "", err
	}

	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return "", fmt.Errorf("cannot determine relative path: %w", err)
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%s must be in the directory %s", path, absBase)
	}

	return filepath.ToSlash(rel), nil
}

// ExpandPath expands a leading "~/" to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// IsReservedDirectory reports whether path is, or lies under, a system
// directory that kgit must never clone into or clear.
func IsReservedDirectory(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return true
	}
	absPath = filepath.Clean(absPath)

	if absPath == string(filepath.Separator) || absPath == filepath.VolumeName(absPath)+`\` {
		return true
	}

	for _, reserved := range reservedDirectories() {
		if strings.EqualFold(absPath, reserved) {
			return true
		}
		if strings.HasPrefix(strings.ToLower(absPath), strings.ToLower(reserved)+string(os.PathSeparator)) {
			return true
		}
	}

	return false
}

func reservedDirectories() []string {
	var dirs []string

	switch runtime.GOOS {
	case "windows":
		dirs = []string{`C:\Windows`, `C:\Program Files`, `C:\Program Files (x86)`}
	case "darwin":
		dirs = []string{"/System", "/bin", "/sbin", "/usr/bin", "/usr/sbin", "/etc", "/private/etc"}
	default:
		dirs = []string{"/bin", "/sbin", "/usr/bin", "/usr/sbin", "/etc", "/boot", "/dev", "/proc", "/sys"}
	}

	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".ssh"), filepath.Join(home, ".gnupg"))
	}

	return dirs
}
