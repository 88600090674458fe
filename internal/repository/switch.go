package repository

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/filemode"
	"github.com/go-git/go-git/v6/plumbing/format/index"
	"github.com/go-git/go-git/v6/plumbing/object"
)

// localChanges lists tracked paths whose index or working tree copy differs
// from HEAD. Untracked files are not included.
func (h *Handle) localChanges(wt *git.Worktree) ([]string, error) {
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get working tree status: %w", err)
	}

	var paths []string
	for p, s := range status {
		if s.Staging == git.Untracked && s.Worktree == git.Untracked {
			continue
		}
		if s.Staging == git.Unmodified && s.Worktree == git.Unmodified {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// discardLocalChanges puts every locally changed tracked path back to its HEAD
// version in both the index and the working tree. Staged additions are
// unstaged and left on disk as untracked files.
func (h *Handle) discardLocalChanges(wt *git.Worktree) error {
	paths, err := h.localChanges(wt)
	if err != nil || len(paths) == 0 {
		return err
	}

	commit, err := h.HeadCommit()
	if err != nil {
		return err
	}

	idx, err := h.repo.Storer.Index()
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}

	var restored []string
	for _, p := range paths {
		f, err := commit.File(p)
		if errors.Is(err, object.ErrFileNotFound) {
			if _, err := idx.Remove(p); err != nil && !errors.Is(err, index.ErrEntryNotFound) {
				return fmt.Errorf("failed to unstage %s: %w", p, err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to look up %s: %w", p, err)
		}
		if err := writeBlob(wt.Filesystem, p, f); err != nil {
			return err
		}
		restored = append(restored, p)
	}

	if err := h.repo.Storer.SetIndex(idx); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	for _, p := range restored {
		if _, err := wt.Add(p); err != nil {
			return fmt.Errorf("failed to restage %s: %w", p, err)
		}
	}

	h.logger.Info("Discarded local changes", "paths", paths)
	return nil
}

// writeBlob replaces p in fs with the contents and mode recorded in f
func writeBlob(fs billy.Filesystem, p string, f *object.File) error {
	r, err := f.Reader()
	if err != nil {
		return fmt.Errorf("failed to open blob for %s: %w", p, err)
	}
	defer r.Close()

	if dir := path.Dir(p); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if f.Mode == filemode.Symlink {
		target, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("failed to read link target for %s: %w", p, err)
		}
		if err := fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to replace %s: %w", p, err)
		}
		return fs.Symlink(string(target), p)
	}

	mode, err := f.Mode.ToOSFileMode()
	if err != nil {
		mode = 0o644
	}
	out, err := fs.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", p, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return out.Close()
}

// headFiles returns the set of paths tracked in the HEAD commit. An unborn
// HEAD yields an empty set.
func (h *Handle) headFiles() (map[string]struct{}, error) {
	files := map[string]struct{}{}

	head, err := h.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return files, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	commit, err := h.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", head.Hash(), err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load tree of %s: %w", head.Hash(), err)
	}

	err = tree.Files().ForEach(func(f *object.File) error {
		files[f.Name] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tree of %s: %w", head.Hash(), err)
	}
	return files, nil
}

// switchTo checks out co without forcing, so untracked files stay where they
// are. Tracked local changes must be discarded beforehand. Files tracked in
// before (the old HEAD) but not in the new HEAD are removed from disk along
// with directories they leave empty.
func (h *Handle) switchTo(wt *git.Worktree, co *git.CheckoutOptions, before map[string]struct{}) error {
	if err := wt.Checkout(co); err != nil {
		return err
	}

	after, err := h.headFiles()
	if err != nil {
		return err
	}

	for p := range before {
		if _, ok := after[p]; ok {
			continue
		}
		if err := wt.Filesystem.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
		removeEmptyParents(wt.Filesystem, p)
	}
	return nil
}

// removeEmptyParents deletes the parent directories of p up to the first one
// that is not empty
func removeEmptyParents(fs billy.Filesystem, p string) {
	for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if err := fs.Remove(dir); err != nil {
			return
		}
	}
}
