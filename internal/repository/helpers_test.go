package repository

import (
	"bytes"
	"path/filepath"
	"testing"

	"kgit/internal/gittest"
	"kgit/internal/logging"

	"github.com/stretchr/testify/require"
)

// openClone clones originPath through Open into a fresh directory
func openClone(t *testing.T, originPath string) (*Handle, *bytes.Buffer) {
	t.Helper()

	logger, buf := logging.NewTestLogger()
	h, err := Open(OpenOptions{
		Path:      filepath.Join(t.TempDir(), "work"),
		RemoteURL: originPath,
		Committer: gittest.Identity,
		Logger:    logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })

	return h, buf
}

// newFeatureOrigin returns an origin with master and a "feature" branch that
// adds notes.txt, plus the seed working copy.
func newFeatureOrigin(t *testing.T) (originPath, seedPath string) {
	t.Helper()

	originPath, seedPath = gittest.NewOrigin(t, map[string]string{
		"README.md": "master readme\n",
	})
	gittest.CommitOnBranch(t, seedPath, "feature", map[string]string{
		"notes.txt":     "feature notes\n",
		"docs/guide.md": "guide\n",
	}, "feature work")

	return originPath, seedPath
}

func refNames(refs []BranchRef) []string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Name.String())
	}
	return names
}
