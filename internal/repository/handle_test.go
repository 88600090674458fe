package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	kgiterrors "kgit/internal/errors"
	"kgit/internal/gittest"
	"kgit/internal/logging"

	"github.com/stretchr/testify/require"
)

func TestOpen_ClonesMissingDirectory(t *testing.T) {
	originPath, _ := gittest.NewOrigin(t, map[string]string{"README.md": "hello\n"})

	h, buf := openClone(t, originPath)

	require.True(t, h.Cloned())
	require.Equal(t, originPath, h.RemoteURL())
	require.FileExists(t, filepath.Join(h.Path(), "README.md"))
	require.Equal(t, gittest.Master, gittest.HeadBranch(t, h.Path()))
	require.Contains(t, buf.String(), "cloned")
}

func TestOpen_ClonesIntoEmptyDirectory(t *testing.T) {
	originPath, _ := gittest.NewOrigin(t, nil)
	logger, _ := logging.NewTestLogger()

	dir := t.TempDir()
	h, err := Open(OpenOptions{Path: dir, RemoteURL: originPath, Logger: logger})
	require.NoError(t, err)
	defer h.Close()

	require.True(t, h.Cloned())
	require.DirExists(t, filepath.Join(dir, ".git"))
}

func TestOpen_ExistingRepositoryReadsOrigin(t *testing.T) {
	originPath, _ := gittest.NewOrigin(t, nil)
	clonePath := gittest.Clone(t, originPath)
	logger, _ := logging.NewTestLogger()

	h, err := Open(OpenOptions{Path: clonePath, Logger: logger})
	require.NoError(t, err)
	defer h.Close()

	require.False(t, h.Cloned())
	require.Equal(t, originPath, h.RemoteURL())
	require.Equal(t, clonePath, h.Path())
}

func TestOpen_SubdirectoryFindsRoot(t *testing.T) {
	originPath, _ := gittest.NewOrigin(t, map[string]string{"src/main.go": "package main\n"})
	clonePath := gittest.Clone(t, originPath)
	logger, _ := logging.NewTestLogger()

	h, err := Open(OpenOptions{Path: filepath.Join(clonePath, "src"), Logger: logger})
	require.NoError(t, err)
	defer h.Close()

	require.Equal(t, clonePath, h.Path())
}

func TestOpen_GitDirEnvironment(t *testing.T) {
	originPath, _ := gittest.NewOrigin(t, map[string]string{"README.md": "hello\n"})
	clonePath := gittest.Clone(t, originPath)
	logger, _ := logging.NewTestLogger()

	t.Setenv("GIT_DIR", filepath.Join(clonePath, ".git"))
	t.Setenv("GIT_WORK_TREE", clonePath)

	h, err := Open(OpenOptions{Path: clonePath, Logger: logger})
	require.NoError(t, err)
	defer h.Close()

	branch, err := h.CurrentBranch()
	require.NoError(t, err)
	require.Equal(t, "refs/heads/master", branch)
}

func TestOpen_NotFoundWithoutRemote(t *testing.T) {
	logger, _ := logging.NewTestLogger()

	_, err := Open(OpenOptions{Path: filepath.Join(t.TempDir(), "missing"), Logger: logger})
	require.ErrorIs(t, err, kgiterrors.ErrNotFound)
}

func TestOpen_NotARepository(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte("x"), 0o644))

	_, err := Open(OpenOptions{Path: dir, Logger: logger})
	require.ErrorIs(t, err, kgiterrors.ErrNotFound)
}

func TestOpen_FailedCloneRemovesDirectory(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	target := filepath.Join(t.TempDir(), "work")

	_, err := Open(OpenOptions{
		Path:      target,
		RemoteURL: filepath.Join(t.TempDir(), "no-such-origin"),
		Logger:    logger,
	})
	require.Error(t, err)
	require.True(t,
		errors.Is(err, kgiterrors.ErrNotFound) || errors.Is(err, kgiterrors.ErrNetwork),
		"unexpected error kind: %v", err)
	require.NoDirExists(t, target)
}

func TestOpen_RejectsInvalidPaths(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "empty", path: ""},
		{name: "blank", path: "   "},
		{name: "traversal", path: "../outside"},
		{name: "reserved", path: "/etc/kgit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := logging.NewTestLogger()
			_, err := Open(OpenOptions{Path: tt.path, RemoteURL: "https://example.com/a/b.git", Logger: logger})
			require.Error(t, err)
		})
	}
}

func TestHandle_ClosedOperationsFail(t *testing.T) {
	originPath, _ := gittest.NewOrigin(t, nil)
	h, _ := openClone(t, originPath)
	require.NoError(t, h.Close())

	_, err := h.ListAll()
	require.ErrorIs(t, err, kgiterrors.ErrClosed)

	_, err = h.Checkout("master", DefaultCheckoutOptions())
	require.ErrorIs(t, err, kgiterrors.ErrClosed)

	_, err = h.ReadFile("README.md", "master", true, filepath.Join(t.TempDir(), "out"))
	require.ErrorIs(t, err, kgiterrors.ErrClosed)

	require.ErrorIs(t, h.Fetch(), kgiterrors.ErrClosed)
	require.ErrorIs(t, h.AddAll("."), kgiterrors.ErrClosed)
}
