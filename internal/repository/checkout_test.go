package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	kgiterrors "kgit/internal/errors"
	"kgit/internal/gittest"

	"github.com/go-git/go-git/v6"
	"github.com/stretchr/testify/require"
)

func TestCheckout_ExistingRemoteBranch(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, buf := openClone(t, originPath)

	res, err := h.Checkout("feature", DefaultCheckoutOptions())
	require.NoError(t, err)

	originFeature, _ := gittest.BranchHash(t, originPath, "feature")
	require.False(t, res.Created)
	require.Equal(t, "refs/heads/feature", res.SwitchedTo.String())
	require.Equal(t, originFeature, res.Hash)
	require.Equal(t, "feature", gittest.HeadBranch(t, h.Path()))
	require.FileExists(t, filepath.Join(h.Path(), "notes.txt"))
	require.Contains(t, buf.String(), "checked out branch")

	cfg, err := h.Repository().Config()
	require.NoError(t, err)
	branchCfg, ok := cfg.Branches["feature"]
	require.True(t, ok, "upstream tracking not configured")
	require.Equal(t, RemoteName, branchCfg.Remote)
	require.Equal(t, "refs/heads/feature", branchCfg.Merge.String())
}

func TestCheckout_Idempotent(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	first, err := h.Checkout("feature", DefaultCheckoutOptions())
	require.NoError(t, err)
	second, err := h.Checkout("feature", DefaultCheckoutOptions())
	require.NoError(t, err)

	require.Equal(t, first.Hash, second.Hash)
	require.Equal(t, "feature", gittest.HeadBranch(t, h.Path()))
}

func TestCheckout_MissingBranchWithoutAutoCreate(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	_, err := h.Checkout("nope", CheckoutOptions{Fetch: true})
	require.ErrorIs(t, err, kgiterrors.ErrBranchNotFound)

	require.Equal(t, gittest.Master, gittest.HeadBranch(t, h.Path()))
	_, exists := gittest.BranchHash(t, originPath, "nope")
	require.False(t, exists, "no remote branch may be created")
}

func TestCheckout_CreateFalseWithoutLocalBranch(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	opts := DefaultCheckoutOptions()
	opts.Create = BoolPtr(false)

	_, err := h.Checkout("feature", opts)
	require.ErrorIs(t, err, kgiterrors.ErrBranchNotFound)
}

func TestCheckout_CreateTrueResetsLocalBranch(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	_, err := h.Checkout("feature", DefaultCheckoutOptions())
	require.NoError(t, err)

	gittest.WriteFile(t, h.Path(), "local.txt", "local only\n")
	require.NoError(t, h.AddFile("local.txt"))
	localHash, err := h.Commit("local work")
	require.NoError(t, err)

	opts := DefaultCheckoutOptions()
	opts.Create = BoolPtr(true)
	res, err := h.Checkout("feature", opts)
	require.NoError(t, err)

	originFeature, _ := gittest.BranchHash(t, originPath, "feature")
	require.NotEqual(t, localHash, res.Hash)
	require.Equal(t, originFeature, res.Hash)

	ref, _, err := h.GetLocal("feature")
	require.NoError(t, err)
	require.Equal(t, originFeature, ref.Hash)
}

func TestCheckout_FetchSeesNewRemoteBranch(t *testing.T) {
	originPath, seedPath := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	hash := gittest.CommitOnBranch(t, seedPath, "later", map[string]string{"later.txt": "later\n"}, "later work")

	res, err := h.Checkout("later", DefaultCheckoutOptions())
	require.NoError(t, err)
	require.False(t, res.Created)
	require.Equal(t, hash, res.Hash)
	require.FileExists(t, filepath.Join(h.Path(), "later.txt"))
}

func TestCheckout_OfflineDoesNotFetch(t *testing.T) {
	originPath, seedPath := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	gittest.CommitOnBranch(t, seedPath, "later", map[string]string{"later.txt": "later\n"}, "later work")

	_, err := h.Checkout("later", CheckoutOptions{})
	require.ErrorIs(t, err, kgiterrors.ErrBranchNotFound)
}

func TestCheckout_AutoCreatesMissingRemoteBranch(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	masterBefore, ok := gittest.BranchHash(t, originPath, gittest.Master)
	require.True(t, ok)

	// Untracked content present before the call is preserved
	gittest.WriteFile(t, h.Path(), "target/artifact.jar", "bytes")

	res, err := h.Checkout("release", DefaultCheckoutOptions())
	require.NoError(t, err)

	require.True(t, res.Created)
	require.Empty(t, res.SwitchedTo)
	require.Empty(t, res.Removed)
	require.Equal(t, masterBefore, res.Hash)

	// Origin gained the branch at master's old tip
	releaseHash, ok := gittest.BranchHash(t, originPath, "release")
	require.True(t, ok)
	require.Equal(t, masterBefore, releaseHash)

	// No switch happened, and the empty-branch commit landed on master
	require.Equal(t, gittest.Master, gittest.HeadBranch(t, h.Path()))
	head, err := h.HeadCommit()
	require.NoError(t, err)
	require.Equal(t, res.EmptyCommit, head.Hash)
	require.Equal(t, "create an empty branch release", strings.TrimSpace(head.Message))

	require.FileExists(t, filepath.Join(h.Path(), "README.md"))
	require.FileExists(t, filepath.Join(h.Path(), "target", "artifact.jar"))

	tracking, ok, err := h.GetRemote("release")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, masterBefore, tracking.Hash)
}

func TestCheckout_AutoCreateWithoutEmptyCommit(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	headBefore, err := h.HeadCommit()
	require.NoError(t, err)

	opts := DefaultCheckoutOptions()
	opts.CreateEmpty = false
	res, err := h.Checkout("release", opts)
	require.NoError(t, err)
	require.True(t, res.Created)
	require.True(t, res.EmptyCommit.IsZero())

	headAfter, err := h.HeadCommit()
	require.NoError(t, err)
	require.Equal(t, headBefore.Hash, headAfter.Hash)

	// A second call finds the branch on origin and switches to it
	res, err = h.Checkout("release", opts)
	require.NoError(t, err)
	require.False(t, res.Created)
	require.Equal(t, "release", gittest.HeadBranch(t, h.Path()))
}

func TestCheckout_AutoCreateNeedsBaseBranch(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	opts := DefaultCheckoutOptions()
	opts.BaseBranch = "trunk"

	_, err := h.Checkout("release", opts)
	require.ErrorIs(t, err, kgiterrors.ErrBranchNotFound)
}

func TestCheckout_EmptyName(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	_, err := h.Checkout("", DefaultCheckoutOptions())
	require.Error(t, err)
}

func TestCheckoutError(t *testing.T) {
	h := &Handle{}

	err := h.checkoutError("feature", git.ErrUnstagedChanges)
	require.ErrorIs(t, err, kgiterrors.ErrCheckoutConflict)
	require.ErrorIs(t, err, git.ErrUnstagedChanges)

	err = h.checkoutError("feature", fmt.Errorf("boom"))
	require.NotErrorIs(t, err, kgiterrors.ErrCheckoutConflict)
	require.Contains(t, err.Error(), "feature")
}

func TestCheckout_PreservesUntrackedFiles(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	path := gittest.WriteFile(t, h.Path(), "scratch.txt", "keep me")

	_, err := h.Checkout("feature", DefaultCheckoutOptions())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "keep me", string(data))
}

func TestCheckout_SwitchBackRemovesBranchOnlyFiles(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	_, err := h.Checkout("feature", DefaultCheckoutOptions())
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(h.Path(), "docs", "guide.md"))

	res, err := h.Checkout(gittest.Master, DefaultCheckoutOptions())
	require.NoError(t, err)
	require.Equal(t, "refs/heads/master", res.SwitchedTo.String())

	require.NoFileExists(t, filepath.Join(h.Path(), "notes.txt"))
	require.NoDirExists(t, filepath.Join(h.Path(), "docs"))
	require.FileExists(t, filepath.Join(h.Path(), "README.md"))
}

func TestCheckout_DiscardsLocalChanges(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, buf := openClone(t, originPath)

	readme := gittest.WriteFile(t, h.Path(), "README.md", "edited\n")

	_, err := h.Checkout("feature", DefaultCheckoutOptions())
	require.NoError(t, err)
	require.Equal(t, "feature", gittest.HeadBranch(t, h.Path()))
	require.Contains(t, buf.String(), "Discarded local changes")

	data, err := os.ReadFile(readme)
	require.NoError(t, err)
	require.Equal(t, "master readme\n", string(data))
}

func TestCheckout_KeepLocalChangesConflict(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	readme := gittest.WriteFile(t, h.Path(), "README.md", "edited\n")

	opts := DefaultCheckoutOptions()
	opts.KeepLocalChanges = true
	_, err := h.Checkout("feature", opts)
	require.ErrorIs(t, err, kgiterrors.ErrCheckoutConflict)
	require.ErrorIs(t, err, git.ErrUnstagedChanges)

	var conflict *kgiterrors.CheckoutConflictError
	require.ErrorAs(t, err, &conflict)

	// Nothing moved and the edit is intact
	require.Equal(t, gittest.Master, gittest.HeadBranch(t, h.Path()))
	_, hasLocal, err := h.GetLocal("feature")
	require.NoError(t, err)
	require.False(t, hasLocal)

	data, err := os.ReadFile(readme)
	require.NoError(t, err)
	require.Equal(t, "edited\n", string(data))
}

func TestCheckout_KeepLocalChangesIgnoresUntracked(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	gittest.WriteFile(t, h.Path(), "build/out.jar", "jar")

	opts := DefaultCheckoutOptions()
	opts.KeepLocalChanges = true
	_, err := h.Checkout("feature", opts)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(h.Path(), "build", "out.jar"))
}

func TestCheckout_AlreadyOnBranchLeavesWorktree(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	_, err := h.Checkout("feature", DefaultCheckoutOptions())
	require.NoError(t, err)

	jar := gittest.WriteFile(t, h.Path(), "build/out.jar", "jar")
	notes := gittest.WriteFile(t, h.Path(), "notes.txt", "edited notes\n")

	res, err := h.Checkout("feature", DefaultCheckoutOptions())
	require.NoError(t, err)

	originFeature, _ := gittest.BranchHash(t, originPath, "feature")
	require.Empty(t, res.SwitchedTo)
	require.Equal(t, originFeature, res.Hash)
	require.Equal(t, "feature", gittest.HeadBranch(t, h.Path()))

	data, err := os.ReadFile(jar)
	require.NoError(t, err)
	require.Equal(t, "jar", string(data))
	data, err = os.ReadFile(notes)
	require.NoError(t, err)
	require.Equal(t, "edited notes\n", string(data))

	cfg, err := h.Repository().Config()
	require.NoError(t, err)
	require.Contains(t, cfg.Branches, "feature")
}
