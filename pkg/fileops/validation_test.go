package fileops

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestValidatePathSecurity(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"relative path", "honey/kgit/0.0.6", false},
		{"dotted file name", "lib..jar", false},
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"traversal", "../outside", true},
		{"nested traversal", "a/../../b", true},
		{"temp dir", filepath.Join(os.TempDir(), "kgit"), false},
	}

	if runtime.GOOS != "windows" {
		tests = append(tests, struct {
			name    string
			path    string
			wantErr bool
		}{"system dir", "/etc/kgit", true})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathSecurity(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePathSecurity(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestRelativeTo(t *testing.T) {
	base := t.TempDir()
	createTestFile(t, base, "honey/kgit/0.0.6/kgit-0.0.6.jar", "jar")
	outside := createTestFile(t, t.TempDir(), "other.txt", "x")

	rel, err := RelativeTo(filepath.Join(base, "honey", "kgit"), base)
	if err != nil {
		t.Fatalf("RelativeTo failed: %v", err)
	}
	if rel != "honey/kgit" {
		t.Errorf("Expected honey/kgit, got %q", rel)
	}

	rel, err = RelativeTo(base, base)
	if err != nil || rel != "." {
		t.Errorf("Expected \".\" for base itself, got %q err=%v", rel, err)
	}

	if _, err := RelativeTo(outside, base); err == nil || !strings.Contains(err.Error(), "must be in the directory") {
		t.Errorf("Expected containment error, got %v", err)
	}

	if _, err := RelativeTo(filepath.Join(base, "missing"), base); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := ExpandPath("~/repos/kgit"); got != filepath.Join(home, "repos", "kgit") {
		t.Errorf("ExpandPath expanded to %q", got)
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandPath changed an absolute path: %q", got)
	}
}

func TestIsReservedDirectory(t *testing.T) {
	if IsReservedDirectory(t.TempDir()) {
		t.Error("Temp directory should not be reserved")
	}
	if runtime.GOOS != "windows" {
		if !IsReservedDirectory("/") {
			t.Error("Root should be reserved")
		}
		if !IsReservedDirectory("/etc/ssh") {
			t.Error("/etc children should be reserved")
		}
	}
}
