package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	kgiterrors "kgit/internal/errors"
	"kgit/internal/gittest"

	"github.com/stretchr/testify/require"
)

func TestWithBranch_RestoresPreviousBranch(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, buf := openClone(t, originPath)

	var inside string
	err := h.WithBranch("feature", h.ReadCheckoutOptions(), func() error {
		var err error
		inside, err = h.CurrentBranch()
		return err
	})
	require.NoError(t, err)

	require.Equal(t, "refs/heads/feature", inside)
	require.Equal(t, gittest.Master, gittest.HeadBranch(t, h.Path()))
	require.Contains(t, buf.String(), "Branch switch")
}

func TestWithBranch_RestoresAfterFailure(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	boom := errors.New("boom")
	err := h.WithBranch("feature", h.ReadCheckoutOptions(), func() error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, gittest.Master, gittest.HeadBranch(t, h.Path()))
}

func TestWithBranch_CheckoutFailureLeavesBranch(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	called := false
	err := h.WithBranch("nope", h.ReadCheckoutOptions(), func() error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, kgiterrors.ErrBranchNotFound)
	require.False(t, called)
	require.Equal(t, gittest.Master, gittest.HeadBranch(t, h.Path()))
}

func TestEnterBranch_AlreadyOnBranch(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	g, err := h.EnterBranch("master", h.ReadCheckoutOptions())
	require.NoError(t, err)
	require.False(t, g.Switched())
	require.Equal(t, "refs/heads/master", g.Previous().String())
	require.NoError(t, g.Release())
}

func TestBranchGuard_ReleaseIsIdempotent(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	g, err := h.EnterBranch("feature", h.ReadCheckoutOptions())
	require.NoError(t, err)
	require.True(t, g.Switched())
	require.Equal(t, "feature", gittest.HeadBranch(t, h.Path()))

	require.NoError(t, g.Release())
	require.Equal(t, gittest.Master, gittest.HeadBranch(t, h.Path()))

	// Moving away by hand is not undone by a second release
	_, err = h.Checkout("feature", h.ReadCheckoutOptions())
	require.NoError(t, err)
	require.NoError(t, g.Release())
	require.Equal(t, "feature", gittest.HeadBranch(t, h.Path()))
}

func TestBranchGuard_NilRelease(t *testing.T) {
	var g *BranchGuard
	require.NoError(t, g.Release())
}

func TestBranchGuard_ReleaseKeepsUntrackedFiles(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	jar := gittest.WriteFile(t, h.Path(), "build/out.jar", "jar")

	g, err := h.EnterBranch("feature", h.ReadCheckoutOptions())
	require.NoError(t, err)
	require.True(t, g.Switched())
	require.FileExists(t, jar)

	// Tracked edits made on the branch do not follow back to master
	gittest.WriteFile(t, h.Path(), "notes.txt", "scribbled\n")

	require.NoError(t, g.Release())
	require.Equal(t, gittest.Master, gittest.HeadBranch(t, h.Path()))
	require.NoFileExists(t, filepath.Join(h.Path(), "notes.txt"))

	data, err := os.ReadFile(jar)
	require.NoError(t, err)
	require.Equal(t, "jar", string(data))
}
