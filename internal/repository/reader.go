package repository

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	kgiterrors "kgit/internal/errors"
	"kgit/pkg/fileops"

	"github.com/go-git/go-git/v6/plumbing/object"
)

// ReadCheckoutOptions is the checkout policy used by the file readers: fetch
// unless the handle is offline, never auto-create a missing branch, and refuse
// to switch away from uncommitted edits to tracked files.
func (h *Handle) ReadCheckoutOptions() CheckoutOptions {
	return CheckoutOptions{
		Fetch:            !h.offline,
		BaseBranch:       DefaultBaseBranch,
		KeepLocalChanges: true,
	}
}

// ReadFileTo streams the contents of path, as recorded in the tip commit of
// branch, to w. The previously checked-out branch is restored afterwards.
//
// Returns:
//   - error: ErrFileNotFoundInCommit when the tree has no file at path, or any
//     checkout policy error
func (h *Handle) ReadFileTo(filePath, branch string, w io.Writer) error {
	return h.WithBranch(branch, h.ReadCheckoutOptions(), func() error {
		return h.readHeadFile(filePath, w)
	})
}

// ReadFile copies path from the tip of branch to dest and returns dest.
// An empty dest means the same path inside the working tree.
//
// With overwrite false, an existing dest fails with DestinationExistsError
// before any branch switch or write. The destination is written atomically
// after the previous branch has been restored.
func (h *Handle) ReadFile(filePath, branch string, overwrite bool, dest string) (string, error) {
	if err := h.ensureOpen(); err != nil {
		return "", err
	}

	if dest == "" {
		dest = filepath.Join(h.path, filepath.FromSlash(cleanTreePath(filePath)))
	}

	if !overwrite {
		if _, err := os.Stat(dest); err == nil {
			return "", kgiterrors.NewDestinationExistsError(dest)
		}
	}

	var buf bytes.Buffer
	if err := h.ReadFileTo(filePath, branch, &buf); err != nil {
		return "", err
	}

	if err := fileops.EnsureDirectoryExists(filepath.Dir(dest)); err != nil {
		return "", err
	}

	// The branch switch may have materialized dest
	if !overwrite {
		if _, err := os.Stat(dest); err == nil {
			return "", kgiterrors.NewDestinationExistsError(dest)
		}
	}

	h.logger.Info("saving file", "path", filePath, "dest", dest)
	if err := fileops.AtomicWrite(dest, &buf, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}

	return dest, nil
}

func (h *Handle) readHeadFile(filePath string, w io.Writer) error {
	commit, err := h.HeadCommit()
	if err != nil {
		return err
	}

	if h.logger.IsDebug() {
		if desc, err := h.DescribeCommit(commit.Hash); err == nil {
			h.logger.Debug(desc)
		}
	}

	treePath := cleanTreePath(filePath)
	file, err := commit.File(treePath)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) || errors.Is(err, object.ErrDirectoryNotFound) {
			return kgiterrors.NewFileNotFoundInCommitError(treePath, commit.Hash.String())
		}
		return fmt.Errorf("failed to look up %s: %w", treePath, err)
	}

	r, err := file.Reader()
	if err != nil {
		return fmt.Errorf("failed to open blob for %s: %w", treePath, err)
	}
	defer r.Close()

	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("failed to read %s: %w", treePath, err)
	}
	return nil
}

// cleanTreePath normalizes a user path to the slash-separated form used in trees
func cleanTreePath(p string) string {
	p = path.Clean(filepath.ToSlash(p))
	return strings.TrimPrefix(p, "/")
}
