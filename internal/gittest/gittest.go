// Package gittest builds throwaway origin repositories for tests.
//
// Every fixture lives under t.TempDir() and uses plain filesystem paths as
// remote URLs, so no network or git binary is needed.
package gittest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	kgitconfig "kgit/internal/config"

	git "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
)

// Master is the default branch every fixture starts on
const Master = "master"

// Identity is the committer used by fixtures
var Identity = kgitconfig.Identity{Name: "Test User", Email: "test@example.com"}

// Signature returns Identity as a go-git signature stamped now
func Signature() *object.Signature {
	return &object.Signature{
		Name:  Identity.Name,
		Email: Identity.Email,
		When:  time.Now(),
	}
}

// InitBareOrigin initializes a bare repository usable as a local "origin".
// HEAD points at refs/heads/master.
func InitBareOrigin(t *testing.T) string {
	t.Helper()

	originPath := t.TempDir()
	repo, err := git.PlainInit(originPath, true)
	if err != nil {
		t.Fatalf("failed to init bare repo: %v", err)
	}
	pointHeadAtMaster(t, repo)

	return originPath
}

// NewOrigin creates a bare origin whose master holds files, and returns the
// origin path and the path of the seeding working copy.
func NewOrigin(t *testing.T, files map[string]string) (originPath, seedPath string) {
	t.Helper()

	originPath = InitBareOrigin(t)
	seedPath = SeedOrigin(t, originPath, files)
	return originPath, seedPath
}

// SeedOrigin commits files on master in a fresh working copy, adds originPath
// as its origin and pushes master. Returns the working copy path.
func SeedOrigin(t *testing.T, originPath string, files map[string]string) string {
	t.Helper()

	seedPath := t.TempDir()
	repo, err := git.PlainInit(seedPath, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	pointHeadAtMaster(t, repo)

	if len(files) == 0 {
		files = map[string]string{"README.md": "initial\n"}
	}
	commitFiles(t, repo, seedPath, files, "initial commit")

	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{originPath},
	}); err != nil {
		t.Fatalf("failed to add origin remote: %v", err)
	}

	push(t, repo, Master)
	return seedPath
}

// CommitOnBranch commits files on branch in the seed working copy, creating
// the branch from master when needed, force-pushes it and switches the seed
// back to master. Returns the new commit.
func CommitOnBranch(t *testing.T, seedPath, branch string, files map[string]string, message string) plumbing.Hash {
	t.Helper()

	repo := open(t, seedPath)
	wt := worktree(t, repo)

	name := plumbing.NewBranchReferenceName(branch)
	_, err := repo.Reference(name, false)
	create := errors.Is(err, plumbing.ErrReferenceNotFound)
	if err != nil && !create {
		t.Fatalf("failed to look up branch %s: %v", branch, err)
	}

	if branch != Master {
		if err := wt.Checkout(&git.CheckoutOptions{Branch: name, Create: create, Force: true}); err != nil {
			t.Fatalf("failed to checkout %s: %v", branch, err)
		}
	}

	hash := commitFiles(t, repo, seedPath, files, message)
	push(t, repo, branch)

	if branch != Master {
		if err := wt.Checkout(&git.CheckoutOptions{
			Branch: plumbing.NewBranchReferenceName(Master),
			Force:  true,
		}); err != nil {
			t.Fatalf("failed to return to master: %v", err)
		}
	}

	return hash
}

// Clone clones originPath into a new temp dir and returns the clone path
func Clone(t *testing.T, originPath string) string {
	t.Helper()

	clonePath := filepath.Join(t.TempDir(), "clone")
	if _, err := git.PlainClone(clonePath, &git.CloneOptions{URL: originPath}); err != nil {
		t.Fatalf("failed to clone from origin: %v", err)
	}
	return clonePath
}

// HeadBranch returns the short name of the branch checked out at repoPath
func HeadBranch(t *testing.T, repoPath string) string {
	t.Helper()

	head, err := open(t, repoPath).Head()
	if err != nil {
		t.Fatalf("failed to resolve HEAD: %v", err)
	}
	return head.Name().Short()
}

// BranchHash returns the tip of refs/heads/<branch> in the repository at
// path, which may be bare. The bool is false when the branch does not exist.
func BranchHash(t *testing.T, path, branch string) (plumbing.Hash, bool) {
	t.Helper()

	ref, err := open(t, path).Reference(plumbing.NewBranchReferenceName(branch), true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return plumbing.ZeroHash, false
	}
	if err != nil {
		t.Fatalf("failed to resolve %s: %v", branch, err)
	}
	return ref.Hash(), true
}

// TipMessage returns the message of the commit at the tip of branch
func TipMessage(t *testing.T, path, branch string) string {
	t.Helper()

	return tipCommit(t, path, branch).Message
}

// FileAt returns the contents of file in the tip commit of branch. The bool
// is false when the tree has no such file.
func FileAt(t *testing.T, path, branch, file string) (string, bool) {
	t.Helper()

	f, err := tipCommit(t, path, branch).File(file)
	if errors.Is(err, object.ErrFileNotFound) {
		return "", false
	}
	if err != nil {
		t.Fatalf("failed to look up %s on %s: %v", file, branch, err)
	}

	contents, err := f.Contents()
	if err != nil {
		t.Fatalf("failed to read %s on %s: %v", file, branch, err)
	}
	return contents, true
}

// WriteFile writes contents to rel under root, creating parent directories
func WriteFile(t *testing.T, root, rel, contents string) string {
	t.Helper()

	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(full, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
	return full
}

func tipCommit(t *testing.T, path, branch string) *object.Commit {
	t.Helper()

	hash, ok := BranchHash(t, path, branch)
	if !ok {
		t.Fatalf("branch %s does not exist in %s", branch, path)
	}

	commit, err := open(t, path).CommitObject(hash)
	if err != nil {
		t.Fatalf("failed to load commit %s: %v", hash, err)
	}
	return commit
}

func commitFiles(t *testing.T, repo *git.Repository, root string, files map[string]string, message string) plumbing.Hash {
	t.Helper()

	wt := worktree(t, repo)
	for rel, contents := range files {
		WriteFile(t, root, rel, contents)
		if _, err := wt.Add(rel); err != nil {
			t.Fatalf("failed to add %s: %v", rel, err)
		}
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author:            Signature(),
		AllowEmptyCommits: len(files) == 0,
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	return hash
}

func push(t *testing.T, repo *git.Repository, branch string) {
	t.Helper()

	name := plumbing.NewBranchReferenceName(branch).String()
	err := repo.Push(&git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{config.RefSpec("+" + name + ":" + name)},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		t.Fatalf("failed to push %s to origin: %v", branch, err)
	}
}

func pointHeadAtMaster(t *testing.T, repo *git.Repository) {
	t.Helper()

	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(Master))
	if err := repo.Storer.SetReference(head); err != nil {
		t.Fatalf("failed to point HEAD at master: %v", err)
	}
}

func open(t *testing.T, path string) *git.Repository {
	t.Helper()

	repo, err := git.PlainOpen(path)
	if err != nil {
		t.Fatalf("failed to open repo %s: %v", path, err)
	}
	return repo
}

func worktree(t *testing.T, repo *git.Repository) *git.Worktree {
	t.Helper()

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	return wt
}
