package repository

import (
	"testing"

	"kgit/internal/gittest"

	"github.com/go-git/go-git/v6/plumbing"
	"github.com/stretchr/testify/require"
)

func TestListBranches(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	// A purely local branch
	masterRef, ok, err := h.GetLocal("master")
	require.NoError(t, err)
	require.True(t, ok)
	scratch := plumbing.NewHashReference(plumbing.NewBranchReferenceName("scratch"), masterRef.Hash)
	require.NoError(t, h.Repository().Storer.SetReference(scratch))

	all, err := h.ListAll()
	require.NoError(t, err)
	require.Equal(t, []string{
		"refs/heads/master",
		"refs/heads/scratch",
		"refs/remotes/origin/feature",
		"refs/remotes/origin/master",
	}, refNames(all))

	remote, err := h.ListRemoteTracking()
	require.NoError(t, err)
	require.Equal(t, []string{
		"refs/remotes/origin/feature",
		"refs/remotes/origin/master",
	}, refNames(remote))
	for _, r := range remote {
		require.True(t, r.IsRemoteTracking())
	}

	local, err := h.ListLocal()
	require.NoError(t, err)
	require.Equal(t, []string{"refs/heads/master", "refs/heads/scratch"}, refNames(local))

	only, err := h.ListLocalOnly()
	require.NoError(t, err)
	require.Equal(t, []string{"refs/heads/scratch"}, refNames(only))
}

func TestBranchRef_Short(t *testing.T) {
	tests := []struct {
		ref  plumbing.ReferenceName
		want string
	}{
		{ref: "refs/heads/master", want: "master"},
		{ref: "refs/heads/release/1.0", want: "release/1.0"},
		{ref: "refs/remotes/origin/feature", want: "feature"},
		{ref: "refs/remotes/origin/team/feature", want: "team/feature"},
	}

	for _, tt := range tests {
		t.Run(tt.ref.String(), func(t *testing.T) {
			require.Equal(t, tt.want, BranchRef{Name: tt.ref}.Short())
		})
	}
}

func TestGetLocalAndRemote(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	originFeature, ok := gittest.BranchHash(t, originPath, "feature")
	require.True(t, ok)

	ref, ok, err := h.GetRemote("feature")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, originFeature, ref.Hash)

	_, ok, err = h.GetLocal("feature")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = h.GetRemote("nope")
	require.NoError(t, err)
	require.False(t, ok)

	ref, ok, err = h.ExactRef("refs/remotes/origin/feature")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, originFeature, ref.Hash)
}

func TestCurrentBranch(t *testing.T) {
	originPath, _ := newFeatureOrigin(t)
	h, _ := openClone(t, originPath)

	branch, err := h.CurrentBranch()
	require.NoError(t, err)
	require.Equal(t, "refs/heads/master", branch)

	_, err = h.Checkout("feature", DefaultCheckoutOptions())
	require.NoError(t, err)

	branch, err = h.CurrentBranch()
	require.NoError(t, err)
	require.Equal(t, "refs/heads/feature", branch)
}
