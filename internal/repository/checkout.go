package repository

import (
	"errors"
	"fmt"

	kgiterrors "kgit/internal/errors"
	"kgit/pkg/fileops"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing"
)

// CheckoutOptions controls the checkout policy.
type CheckoutOptions struct {
	// Create forces (true) or forbids (false) creating the local branch.
	// Nil creates it only when no local branch exists.
	Create *bool
	// Fetch refreshes the remote-tracking refs first.
	Fetch bool
	// CreateIfRemoteMissing pushes BaseBranch as the new remote branch when
	// origin has no such branch. Otherwise a missing remote branch is an error.
	CreateIfRemoteMissing bool
	// CreateEmpty clears the working tree and records an empty-branch commit
	// after an auto-create. Every top-level name present before the call is
	// preserved, so the clearing deletes nothing that existed and
	// CheckoutResult.Removed is always empty.
	CreateEmpty bool
	// BaseBranch seeds auto-created branches. Empty means "master".
	BaseBranch string
	// KeepLocalChanges makes a switch fail with ErrCheckoutConflict when
	// tracked files differ from HEAD. By default such changes are discarded.
	// Untracked files survive a switch either way.
	KeepLocalChanges bool
}

// DefaultCheckoutOptions fetches first and auto-creates missing remote
// branches from master with an empty-branch commit.
func DefaultCheckoutOptions() CheckoutOptions {
	return CheckoutOptions{
		Fetch:                 true,
		CreateIfRemoteMissing: true,
		CreateEmpty:           true,
		BaseBranch:            DefaultBaseBranch,
	}
}

// CheckoutResult describes what the checkout policy did.
type CheckoutResult struct {
	Branch string
	// Created is set when the remote branch was auto-created from BaseBranch.
	Created bool
	// SwitchedTo is the local ref now checked out, empty when no switch happened.
	SwitchedTo plumbing.ReferenceName
	// Hash is the commit the branch points to after the call.
	Hash plumbing.Hash
	// EmptyCommit is the empty-branch commit recorded after an auto-create.
	EmptyCommit plumbing.Hash
	// Removed lists the top-level entries deleted by an empty auto-create.
	Removed []string
}

// BoolPtr returns a pointer to v, for CheckoutOptions.Create.
func BoolPtr(v bool) *bool {
	return &v
}

// Checkout applies the checkout policy to branch.
//
// Policy:
//  1. Fetch first when opts.Fetch is set.
//  2. When origin has no such branch, fail with BranchNotFoundError unless
//     opts.CreateIfRemoteMissing. Otherwise push BaseBranch as the new remote
//     branch, optionally clear the working tree and commit an empty-branch
//     commit on the current branch, and return without switching.
//  3. When branch is already checked out and no re-create is asked for, only
//     set upstream tracking. The working tree is not touched.
//  4. Otherwise create the local branch at origin's tip (when opts.Create says
//     so, or no local branch exists) and switch to it with upstream tracking
//     set to origin. Tracked local changes are discarded first, or reported
//     as a conflict when opts.KeepLocalChanges is set. Untracked files stay.
//
// Returns:
//   - CheckoutResult: what was created or switched
//   - error: ErrNetwork/ErrAuth from fetch or push, ErrBranchNotFound,
//     ErrCheckoutConflict when local changes block the switch
func (h *Handle) Checkout(branch string, opts CheckoutOptions) (CheckoutResult, error) {
	result := CheckoutResult{Branch: branch}

	if err := h.ensureOpen(); err != nil {
		return result, err
	}
	if branch == "" {
		return result, fmt.Errorf("branch name cannot be empty")
	}
	if opts.BaseBranch == "" {
		opts.BaseBranch = DefaultBaseBranch
	}

	h.logger.Debug("Checking out branch", "branch", branch, "fetch", opts.Fetch)

	if opts.Fetch {
		if err := h.Fetch(); err != nil {
			return result, err
		}
	}

	remoteRef, hasRemote, err := h.GetRemote(branch)
	if err != nil {
		return result, err
	}
	localRef, hasLocal, err := h.GetLocal(branch)
	if err != nil {
		return result, err
	}

	if !hasRemote {
		if !opts.CreateIfRemoteMissing {
			return result, kgiterrors.NewBranchNotFoundError(branch)
		}
		return h.autoCreate(branch, opts)
	}

	localName := plumbing.NewBranchReferenceName(branch)

	if hasLocal && (opts.Create == nil || !*opts.Create) {
		on, err := h.isCheckedOut(localName)
		if err != nil {
			return result, err
		}
		if on {
			if err := h.setUpstream(branch); err != nil {
				return result, err
			}
			result.Hash = localRef.Hash
			h.logger.Debug("Already on target branch", "branch", branch)
			return result, nil
		}
	}

	createFlag := !hasLocal
	if opts.Create != nil {
		createFlag = *opts.Create
	}
	if !createFlag && !hasLocal {
		return result, kgiterrors.NewBranchNotFoundError(branch)
	}

	wt, err := h.worktree()
	if err != nil {
		return result, err
	}

	if opts.KeepLocalChanges {
		changed, err := h.localChanges(wt)
		if err != nil {
			return result, err
		}
		if len(changed) > 0 {
			h.logger.Warn("Local changes block checkout", "branch", branch, "paths", changed)
			return result, kgiterrors.NewCheckoutConflictError(branch, git.ErrUnstagedChanges)
		}
	} else if err := h.discardLocalChanges(wt); err != nil {
		return result, h.checkoutError(branch, err)
	}

	before, err := h.headFiles()
	if err != nil {
		return result, err
	}

	target := localRef.Hash
	if createFlag {
		h.logger.Debug("Creating local branch", "branch", branch, "from", remoteRef.Hash.String())
		if err := h.repo.Storer.SetReference(plumbing.NewHashReference(localName, remoteRef.Hash)); err != nil {
			return result, fmt.Errorf("failed to create local branch: %w", err)
		}
		target = remoteRef.Hash
	}

	if err := h.switchTo(wt, &git.CheckoutOptions{Branch: localName}, before); err != nil {
		return result, h.checkoutError(branch, err)
	}

	if err := h.setUpstream(branch); err != nil {
		return result, err
	}

	result.SwitchedTo = localName
	result.Hash = target
	h.logger.Info("checked out branch", "branch", branch, "objectId", target.String())
	h.logger.DebugObject("checkout result", result)
	return result, nil
}

// isCheckedOut reports whether HEAD is the symbolic ref name
func (h *Handle) isCheckedOut(name plumbing.ReferenceName) (bool, error) {
	head, err := h.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return false, fmt.Errorf("failed to read HEAD: %w", err)
	}
	return head.Type() == plumbing.SymbolicReference && head.Target() == name, nil
}

// autoCreate pushes the base branch as origin/<branch> and optionally records
// an empty-branch commit on the current branch. It never switches branches.
func (h *Handle) autoCreate(branch string, opts CheckoutOptions) (CheckoutResult, error) {
	result := CheckoutResult{Branch: branch, Created: true}

	// Names only, taken before anything changes on either side
	preserve, err := fileops.TopLevelEntries(h.path)
	if err != nil {
		return result, err
	}

	base, hasBase, err := h.GetLocal(opts.BaseBranch)
	if err != nil {
		return result, err
	}
	if !hasBase {
		return result, kgiterrors.NewBranchNotFoundError(opts.BaseBranch)
	}

	spec := fmt.Sprintf("%s:%s", base.Name, plumbing.NewBranchReferenceName(branch))
	h.logger.Info("Creating remote branch", "branch", branch, "refspec", spec)

	if err := h.Push(PushOptions{RefSpecs: []string{spec}}); err != nil {
		return result, err
	}

	tracking := plumbing.NewRemoteReferenceName(RemoteName, branch)
	if err := h.repo.Storer.SetReference(plumbing.NewHashReference(tracking, base.Hash)); err != nil {
		return result, fmt.Errorf("failed to record %s: %w", tracking, err)
	}
	result.Hash = base.Hash

	if !opts.CreateEmpty {
		return result, nil
	}

	keep := append([]string{".git"}, preserve...)
	removed, err := fileops.ClearDirectoryExcept(h.path, keep)
	result.Removed = removed
	if err != nil {
		return result, fmt.Errorf("failed to empty working tree: %w", err)
	}

	hash, err := h.commit(fmt.Sprintf("create an empty branch %s", branch), true)
	if err != nil {
		return result, err
	}
	result.EmptyCommit = hash

	h.logger.DebugObject("checkout result", result)
	return result, nil
}

func (h *Handle) checkoutError(branch string, err error) error {
	if errors.Is(err, git.ErrUnstagedChanges) {
		return kgiterrors.NewCheckoutConflictError(branch, err)
	}
	return fmt.Errorf("failed to checkout branch %s: %w", branch, err)
}

// setUpstream records branch.<name>.remote=origin and branch.<name>.merge.
// An existing entry is left as is.
func (h *Handle) setUpstream(branch string) error {
	err := h.repo.CreateBranch(&config.Branch{
		Name:   branch,
		Remote: RemoteName,
		Merge:  plumbing.NewBranchReferenceName(branch),
	})
	if err != nil && !errors.Is(err, git.ErrBranchExists) {
		return fmt.Errorf("failed to set upstream for %s: %w", branch, err)
	}
	return nil
}
