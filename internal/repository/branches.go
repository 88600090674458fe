package repository

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v6/plumbing"
)

// BranchRef is a read-only snapshot of a branch or remote-tracking ref.
type BranchRef struct {
	Name plumbing.ReferenceName
	Hash plumbing.Hash
}

// Short returns the branch name without its refs/heads/ or refs/remotes/origin/ prefix
func (b BranchRef) Short() string {
	name := b.Name.String()
	if after, ok := strings.CutPrefix(name, remotePrefix); ok {
		return after
	}
	return b.Name.Short()
}

// IsRemoteTracking reports whether the ref lives under refs/remotes/origin/
func (b BranchRef) IsRemoteTracking() bool {
	return strings.HasPrefix(b.Name.String(), remotePrefix)
}

func (b BranchRef) String() string {
	return fmt.Sprintf("%s %s", b.Hash, b.Name)
}

const (
	localPrefix  = "refs/heads/"
	remotePrefix = "refs/remotes/" + RemoteName + "/"
)

// refsWithPrefix lists hash refs whose full name starts with one of prefixes,
// sorted by name. Symbolic refs such as refs/remotes/origin/HEAD are skipped.
func (h *Handle) refsWithPrefix(prefixes ...string) ([]BranchRef, error) {
	if err := h.ensureOpen(); err != nil {
		return nil, err
	}

	iter, err := h.repo.References()
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}
	defer iter.Close()

	var refs []BranchRef
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name().String()
		for _, p := range prefixes {
			if strings.HasPrefix(name, p) {
				refs = append(refs, BranchRef{Name: ref.Name(), Hash: ref.Hash()})
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate references: %w", err)
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// ListAll returns every local branch and every origin remote-tracking branch
func (h *Handle) ListAll() ([]BranchRef, error) {
	return h.refsWithPrefix(localPrefix, remotePrefix)
}

// ListRemoteTracking returns the refs under refs/remotes/origin/
func (h *Handle) ListRemoteTracking() ([]BranchRef, error) {
	return h.refsWithPrefix(remotePrefix)
}

// ListLocal returns ListAll minus every ref whose full name equals a
// remote-tracking ref's full name. Names are compared with their prefixes, so
// a local branch is never dropped for having a remote counterpart; use
// ListLocalOnly for that.
func (h *Handle) ListLocal() ([]BranchRef, error) {
	all, err := h.ListAll()
	if err != nil {
		return nil, err
	}
	remote, err := h.ListRemoteTracking()
	if err != nil {
		return nil, err
	}

	remoteNames := make(map[plumbing.ReferenceName]struct{}, len(remote))
	for _, r := range remote {
		remoteNames[r.Name] = struct{}{}
	}

	var local []BranchRef
	for _, r := range all {
		if _, tracked := remoteNames[r.Name]; tracked {
			continue
		}
		local = append(local, r)
	}
	return local, nil
}

// ListLocalOnly returns the local branches that have no remote-tracking
// branch of the same name.
func (h *Handle) ListLocalOnly() ([]BranchRef, error) {
	local, err := h.refsWithPrefix(localPrefix)
	if err != nil {
		return nil, err
	}
	remote, err := h.ListRemoteTracking()
	if err != nil {
		return nil, err
	}

	remoteShort := make(map[string]struct{}, len(remote))
	for _, r := range remote {
		remoteShort[r.Short()] = struct{}{}
	}

	var only []BranchRef
	for _, r := range local {
		if _, ok := remoteShort[r.Short()]; !ok {
			only = append(only, r)
		}
	}
	return only, nil
}

// GetLocal returns refs/heads/<name> if it exists
func (h *Handle) GetLocal(name string) (BranchRef, bool, error) {
	return h.lookup(plumbing.NewBranchReferenceName(name))
}

// GetRemote returns refs/remotes/origin/<name> if it exists
func (h *Handle) GetRemote(name string) (BranchRef, bool, error) {
	return h.lookup(plumbing.NewRemoteReferenceName(RemoteName, name))
}

// ExactRef resolves a full ref name such as "refs/heads/release"
func (h *Handle) ExactRef(name string) (BranchRef, bool, error) {
	return h.lookup(plumbing.ReferenceName(name))
}

func (h *Handle) lookup(name plumbing.ReferenceName) (BranchRef, bool, error) {
	if err := h.ensureOpen(); err != nil {
		return BranchRef{}, false, err
	}

	ref, err := h.repo.Reference(name, true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return BranchRef{}, false, nil
	}
	if err != nil {
		return BranchRef{}, false, fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	return BranchRef{Name: name, Hash: ref.Hash()}, true, nil
}

// CurrentBranch returns the full name of the checked-out branch, or the
// commit hash when HEAD is detached.
func (h *Handle) CurrentBranch() (string, error) {
	if err := h.ensureOpen(); err != nil {
		return "", err
	}

	head, err := h.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	if head.Type() == plumbing.SymbolicReference {
		return head.Target().String(), nil
	}
	return head.Hash().String(), nil
}
