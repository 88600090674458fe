package repository

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
)

// BranchGuard restores the branch that was checked out when it was created.
// Obtain one from EnterBranch and always Release it.
type BranchGuard struct {
	h        *Handle
	previous plumbing.ReferenceName
	prevHash plumbing.Hash
	switched bool
	released bool
}

// Previous returns the ref that Release switches back to
func (g *BranchGuard) Previous() plumbing.ReferenceName {
	return g.previous
}

// Switched reports whether entering the guard changed the checked-out branch
func (g *BranchGuard) Switched() bool {
	return g.switched
}

// EnterBranch records the current branch and applies the checkout policy to
// branch. Nothing is switched when branch is already checked out.
//
// If the policy fails after HEAD moved, the previous branch is restored
// before the error is returned.
func (h *Handle) EnterBranch(branch string, opts CheckoutOptions) (*BranchGuard, error) {
	if err := h.ensureOpen(); err != nil {
		return nil, err
	}

	head, err := h.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get current branch: %w", err)
	}

	g := &BranchGuard{h: h, previous: head.Name(), prevHash: head.Hash()}

	if head.Name().IsBranch() && head.Name().Short() == branch {
		h.logger.Debug("Already on target branch", "branch", branch)
		return g, nil
	}

	if _, err := h.Checkout(branch, opts); err != nil {
		if moved, _ := g.headMoved(); moved {
			g.switched = true
			if rerr := g.Release(); rerr != nil {
				return nil, errors.Join(err, rerr)
			}
		}
		return nil, err
	}

	moved, err := g.headMoved()
	if err != nil {
		return nil, err
	}
	g.switched = moved
	if moved {
		h.logger.LogBranchSwitch(g.previous.Short(), branch)
	}

	return g, nil
}

func (g *BranchGuard) headMoved() (bool, error) {
	head, err := g.h.repo.Head()
	if err != nil {
		return false, fmt.Errorf("failed to get current branch: %w", err)
	}
	return head.Name() != g.previous || head.Hash() != g.prevHash, nil
}

// Release switches back to the branch recorded at entry. Tracked changes
// made while on the branch are discarded; untracked files are kept. It is
// safe to call more than once; only the first call acts.
func (g *BranchGuard) Release() error {
	if g == nil || g.released {
		return nil
	}
	g.released = true

	if !g.switched {
		return nil
	}

	wt, err := g.h.worktree()
	if err != nil {
		return err
	}

	if err := g.h.discardLocalChanges(wt); err != nil {
		return fmt.Errorf("failed to restore %s: %w", g.previous.Short(), err)
	}
	before, err := g.h.headFiles()
	if err != nil {
		return err
	}

	opts := &git.CheckoutOptions{}
	if g.previous.IsBranch() {
		opts.Branch = g.previous
	} else {
		opts.Hash = g.prevHash
	}

	if err := g.h.switchTo(wt, opts, before); err != nil {
		return fmt.Errorf("failed to restore %s: %w", g.previous.Short(), err)
	}

	g.h.logger.LogBranchSwitch("", g.previous.Short())
	return nil
}

// WithBranch runs fn with branch checked out and restores the previous branch
// afterwards, whether fn succeeded or not.
func (h *Handle) WithBranch(branch string, opts CheckoutOptions, fn func() error) error {
	g, err := h.EnterBranch(branch, opts)
	if err != nil {
		return err
	}

	fnErr := fn()
	return errors.Join(fnErr, g.Release())
}
