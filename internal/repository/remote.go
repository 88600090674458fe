package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/transport"
)

var fetchAllHeads = config.RefSpec("+refs/heads/*:refs/remotes/" + RemoteName + "/*")

// Fetch updates every refs/remotes/origin/ ref from the remote heads.
// An already up-to-date or empty remote is not an error.
func (h *Handle) Fetch() error {
	if err := h.ensureOpen(); err != nil {
		return err
	}

	start := time.Now()
	h.logger.Info("Fetching repository", "localPath", h.path)

	err := h.repo.Fetch(&git.FetchOptions{
		RemoteName: RemoteName,
		RefSpecs:   []config.RefSpec{fetchAllHeads},
		Auth:       h.auth,
		Force:      true,
	})
	switch {
	case err == nil:
		h.logger.Info("Repository updated")
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		h.logger.Debug("Repository already up to date")
	case errors.Is(err, transport.ErrEmptyRemoteRepository):
		h.logger.Debug("Remote repository is empty")
	default:
		return h.remoteError("fetch", err)
	}

	h.logger.LogPerformance("fetch", start)
	return nil
}

// Pull fetches the current branch from origin and fast-forwards the working tree.
func (h *Handle) Pull() error {
	wt, err := h.worktree()
	if err != nil {
		return err
	}

	head, err := h.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to get current branch: %w", err)
	}
	if !head.Name().IsBranch() {
		return fmt.Errorf("cannot pull with a detached HEAD")
	}

	h.logger.Info("Pulling branch", "branch", head.Name().Short())

	err = wt.Pull(&git.PullOptions{
		RemoteName:    RemoteName,
		ReferenceName: head.Name(),
		SingleBranch:  true,
		Auth:          h.auth,
	})
	switch {
	case err == nil:
		h.logger.Info("Pull completed", "branch", head.Name().Short())
		return nil
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		h.logger.Debug("Branch already up to date", "branch", head.Name().Short())
		return nil
	case errors.Is(err, git.ErrNonFastForwardUpdate):
		return fmt.Errorf("pull of %s is not a fast-forward: %w", head.Name().Short(), err)
	case errors.Is(err, git.ErrUnstagedChanges):
		return fmt.Errorf("pull of %s blocked by local changes: %w", head.Name().Short(), err)
	default:
		return h.remoteError("pull", err)
	}
}

// PushOptions selects what Push sends.
type PushOptions struct {
	// All pushes every local branch; otherwise only the current branch.
	All bool
	// Force allows non-fast-forward updates.
	Force bool
	// RefSpecs overrides All when set.
	RefSpecs []string
}

// Push sends local branches to origin. An up-to-date remote is not an error.
func (h *Handle) Push(opts PushOptions) error {
	if err := h.ensureOpen(); err != nil {
		return err
	}

	specs, err := h.pushRefSpecs(opts)
	if err != nil {
		return err
	}

	start := time.Now()
	h.logger.Info("Pushing", "refspecs", specs, "force", opts.Force)

	err = h.repo.Push(&git.PushOptions{
		RemoteName: RemoteName,
		RefSpecs:   specs,
		Auth:       h.auth,
		Force:      opts.Force,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return h.remoteError("push", err)
	}

	h.logger.LogPerformance("push", start)
	return nil
}

func (h *Handle) pushRefSpecs(opts PushOptions) ([]config.RefSpec, error) {
	prefix := ""
	if opts.Force {
		prefix = "+"
	}

	var raw []string
	switch {
	case len(opts.RefSpecs) > 0:
		raw = opts.RefSpecs
	case opts.All:
		raw = []string{prefix + "refs/heads/*:refs/heads/*"}
	default:
		head, err := h.repo.Head()
		if err != nil {
			return nil, fmt.Errorf("failed to get current branch: %w", err)
		}
		if !head.Name().IsBranch() {
			return nil, fmt.Errorf("cannot push with a detached HEAD")
		}
		raw = []string{fmt.Sprintf("%s%s:%s", prefix, head.Name(), head.Name())}
	}

	specs := make([]config.RefSpec, 0, len(raw))
	for _, s := range raw {
		spec := config.RefSpec(s)
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("invalid refspec %q: %w", s, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// LsRemote lists the refs advertised by origin, keyed by full ref name.
// An empty remote yields an empty map.
func (h *Handle) LsRemote() (map[string]BranchRef, error) {
	if err := h.ensureOpen(); err != nil {
		return nil, err
	}

	remote, err := h.repo.Remote(RemoteName)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s remote: %w", RemoteName, err)
	}

	refs, err := remote.List(&git.ListOptions{Auth: h.auth})
	if err != nil {
		if errors.Is(err, transport.ErrEmptyRemoteRepository) {
			return map[string]BranchRef{}, nil
		}
		return nil, h.remoteError("ls-remote", err)
	}

	out := make(map[string]BranchRef, len(refs))
	for _, ref := range refs {
		hash := ref.Hash()
		if ref.Type() == plumbing.SymbolicReference {
			// Advertised HEAD, resolve against the listed target
			for _, target := range refs {
				if target.Name() == ref.Target() {
					hash = target.Hash()
					break
				}
			}
		}
		out[ref.Name().String()] = BranchRef{Name: ref.Name(), Hash: hash}
	}
	return out, nil
}
