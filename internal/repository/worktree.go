package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	kgiterrors "kgit/internal/errors"
	"kgit/pkg/fileops"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
)

// resolveInWorktree returns path relative to the working tree root. Relative
// inputs are taken relative to the root, not the process directory.
func (h *Handle) resolveInWorktree(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(h.path, path)
	}

	// Missing files and files outside the tree are both reported as not found
	rel, err := fileops.RelativeTo(path, h.path)
	if err != nil {
		return "", kgiterrors.NewPathNotFoundError(path, err)
	}
	return rel, nil
}

// AddFile stages a single file. The file must exist inside the working tree.
func (h *Handle) AddFile(path string) error {
	wt, err := h.worktree()
	if err != nil {
		return err
	}

	rel, err := h.resolveInWorktree(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(filepath.Join(h.path, filepath.FromSlash(rel)))
	if err != nil {
		return kgiterrors.NewPathNotFoundError(path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, use AddAll", path)
	}

	if _, err := wt.Add(rel); err != nil {
		return fmt.Errorf("failed to add %s: %w", rel, err)
	}

	h.logger.Debug("Staged file", "path", rel)
	return nil
}

// AddAll stages relPath recursively. relPath is relative to the working tree root.
func (h *Handle) AddAll(relPath string) error {
	wt, err := h.worktree()
	if err != nil {
		return err
	}

	rel, err := h.resolveInWorktree(relPath)
	if err != nil {
		return err
	}

	if rel == "." {
		err = wt.AddWithOptions(&git.AddOptions{All: true})
	} else {
		_, err = wt.Add(rel)
	}
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", rel, err)
	}

	h.logger.Debug("Staged path", "path", rel)
	return nil
}

// Commit records tracked modifications and deletions plus anything staged.
// The committer identity comes from the handle's configuration.
func (h *Handle) Commit(message string) (plumbing.Hash, error) {
	return h.commit(message, false)
}

func (h *Handle) commit(message string, allowEmpty bool) (plumbing.Hash, error) {
	wt, err := h.worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	opts := &git.CommitOptions{
		All:               true,
		AllowEmptyCommits: allowEmpty,
	}
	if !h.committer.IsZero() {
		sig := &object.Signature{
			Name:  h.committer.Name,
			Email: h.committer.Email,
			When:  time.Now(),
		}
		opts.Author = sig
		opts.Committer = sig
	}

	hash, err := wt.Commit(message, opts)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to commit: %w", err)
	}

	h.logger.Info("commit", "message", message, "id", hash.String())
	return hash, nil
}

// ShortStatus returns the working tree status in short format, one "XY path" line per entry.
func (h *Handle) ShortStatus() (string, error) {
	wt, err := h.worktree()
	if err != nil {
		return "", err
	}

	status, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("failed to get working tree status: %w", err)
	}
	return status.String(), nil
}

// IsClean reports whether the working tree has no changes
func (h *Handle) IsClean() (bool, error) {
	wt, err := h.worktree()
	if err != nil {
		return false, err
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get working tree status: %w", err)
	}
	return status.IsClean(), nil
}

// DescribeCommit renders a commit as "last commit: <subject> <id>"
func (h *Handle) DescribeCommit(hash plumbing.Hash) (string, error) {
	if err := h.ensureOpen(); err != nil {
		return "", err
	}

	commit, err := h.repo.CommitObject(hash)
	if err != nil {
		return "", fmt.Errorf("failed to load commit %s: %w", hash, err)
	}

	subject, _, _ := strings.Cut(strings.TrimSpace(commit.Message), "\n")
	return fmt.Sprintf("last commit: %s %s", subject, commit.Hash), nil
}

// HeadCommit returns the commit HEAD points to
func (h *Handle) HeadCommit() (*object.Commit, error) {
	if err := h.ensureOpen(); err != nil {
		return nil, err
	}

	head, err := h.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	commit, err := h.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", head.Hash(), err)
	}
	return commit, nil
}
