package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kgit/internal/config"
	kgiterrors "kgit/internal/errors"
	"kgit/internal/logging"
	"kgit/pkg/fileops"

	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/plumbing/transport"
	"github.com/go-git/go-git/v6/storage/filesystem"
)

const (
	// RemoteName is the only remote kgit talks to
	RemoteName = "origin"

	// DefaultBaseBranch seeds auto-created remote branches
	DefaultBaseBranch = "master"
)

// OpenOptions configures Open.
type OpenOptions struct {
	// Path of the local working copy. Cloned into when missing or empty.
	Path string
	// RemoteURL is cloned when Path holds no repository. Optional for existing
	// repositories, where the origin URL is read from the repository config.
	RemoteURL string
	// Credentials are attached to every remote operation of the handle.
	Credentials config.Credentials
	// Committer is recorded on commits. Zero means go-git resolves it from git config.
	Committer config.Identity
	// Offline disables the fetch that checkouts perform by default.
	Offline bool
	// Logger defaults to logging.GetDefault().
	Logger *logging.AppLogger
}

// Handle is an open local working copy bound to one origin remote.
// It is not safe for concurrent use.
type Handle struct {
	path        string
	remoteURL   string
	credentials config.Credentials
	committer   config.Identity
	auth        transport.AuthMethod
	offline     bool
	repo        *git.Repository
	logger      *logging.AppLogger
	cloned      bool
}

// Open clones RemoteURL into Path when Path is missing or empty, and opens the
// existing repository otherwise.
//
// When the GIT_DIR environment variable is set, the repository metadata is read
// from it and GIT_WORK_TREE (or Path) is used as the working tree. Otherwise
// Path may point anywhere inside a working copy; the repository root is found
// by scanning upward.
//
// Returns:
//   - *Handle: the open handle, release it with Close
//   - error: ErrNotFound when no repository can be cloned or opened, ErrAuth on
//     rejected credentials, ErrNetwork for other transport failures
func Open(opts OpenOptions) (*Handle, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetDefault()
	}

	if strings.TrimSpace(opts.Path) == "" {
		return nil, fmt.Errorf("local path cannot be empty")
	}

	cleanPath := filepath.Clean(fileops.ExpandPath(strings.TrimSpace(opts.Path)))
	if err := fileops.ValidatePathSecurity(cleanPath); err != nil {
		return nil, fmt.Errorf("invalid local path: %w", err)
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve absolute path: %w", err)
	}

	h := &Handle{
		path:        absPath,
		remoteURL:   strings.TrimSpace(opts.RemoteURL),
		credentials: opts.Credentials,
		committer:   opts.Committer,
		offline:     opts.Offline,
		logger:      logger,
	}

	needsClone, err := needsClone(absPath)
	if err != nil {
		return nil, err
	}

	if needsClone {
		if h.remoteURL == "" {
			return nil, kgiterrors.NewNotFoundError(absPath, errors.New("no repository and no remote URL to clone"))
		}
		if err := h.setAuth(); err != nil {
			return nil, err
		}
		if err := h.clone(); err != nil {
			return nil, err
		}
		return h, nil
	}

	if err := h.open(); err != nil {
		return nil, err
	}
	origin := h.originURL()
	switch {
	case h.remoteURL == "":
		h.remoteURL = origin
	case origin != "" && NormalizeGitURL(origin) != NormalizeGitURL(h.remoteURL):
		h.logger.Warn("Existing repository has a different origin",
			"origin", kgiterrors.RedactCredentials(origin),
			"requested", kgiterrors.RedactCredentials(h.remoteURL))
	}
	if err := h.setAuth(); err != nil {
		return nil, err
	}

	return h, nil
}

func needsClone(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("cannot access directory %s: %w", path, err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("path exists but is not a directory: %s", path)
	}
	return fileops.IsDirEmpty(path)
}

func (h *Handle) setAuth() error {
	auth, err := authMethod(h.remoteURL, h.credentials)
	if err != nil {
		return err
	}
	h.auth = auth
	return nil
}

func (h *Handle) clone() error {
	start := time.Now()
	h.logger.Info("Cloning repository", "remoteURL", kgiterrors.RedactCredentials(h.remoteURL), "localPath", h.path)

	existed := true
	if _, err := os.Stat(h.path); os.IsNotExist(err) {
		existed = false
	}

	if err := fileops.EnsureDirectoryExists(filepath.Dir(h.path)); err != nil {
		return err
	}

	repo, err := git.PlainClone(h.path, &git.CloneOptions{
		URL:  h.remoteURL,
		Auth: h.auth,
	})
	if err != nil {
		if !existed {
			os.RemoveAll(h.path)
		}
		return h.remoteError("clone", err)
	}

	h.repo = repo
	h.cloned = true
	h.logger.Info("cloned", "localPath", h.path)
	h.logger.LogPerformance("clone", start)
	return nil
}

func (h *Handle) open() error {
	if gitDir := os.Getenv("GIT_DIR"); gitDir != "" {
		workTree := os.Getenv("GIT_WORK_TREE")
		if workTree == "" {
			workTree = h.path
		}
		if abs, err := filepath.Abs(workTree); err == nil {
			workTree = abs
		}

		h.logger.Debug("Opening repository from environment", "gitDir", gitDir, "workTree", workTree)

		if _, err := os.Stat(gitDir); err != nil {
			return kgiterrors.NewNotFoundError(gitDir, err)
		}

		dot := osfs.New(gitDir, osfs.WithBoundOS())
		storage := filesystem.NewStorage(dot, cache.NewObjectLRUDefault())
		repo, err := git.Open(storage, osfs.New(workTree, osfs.WithBoundOS()))
		if err != nil {
			return kgiterrors.NewNotFoundError(gitDir, err)
		}

		h.repo = repo
		h.path = workTree
		return nil
	}

	repo, err := git.PlainOpenWithOptions(h.path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return kgiterrors.NewNotFoundError(h.path, err)
		}
		return fmt.Errorf("cannot open git repository: %w", err)
	}

	// DetectDotGit may have found the repository above the requested path
	if wt, err := repo.Worktree(); err == nil {
		h.path = wt.Filesystem.Root()
	}

	h.repo = repo
	h.logger.Debug("Opened repository", "localPath", h.path)
	return nil
}

// originURL returns the first URL of the origin remote, or "" if none is configured
func (h *Handle) originURL() string {
	remote, err := h.repo.Remote(RemoteName)
	if err != nil {
		return ""
	}

	cfg := remote.Config()
	if cfg == nil || len(cfg.URLs) == 0 {
		return ""
	}
	return cfg.URLs[0]
}

// Close releases the handle. Every operation on a closed handle fails with ErrClosed.
func (h *Handle) Close() error {
	h.repo = nil
	return nil
}

func (h *Handle) ensureOpen() error {
	if h == nil || h.repo == nil {
		return kgiterrors.ErrClosed
	}
	return nil
}

// Path returns the absolute path of the working tree root
func (h *Handle) Path() string {
	return h.path
}

// RemoteURL returns the origin URL the handle authenticates against
func (h *Handle) RemoteURL() string {
	return h.remoteURL
}

// Cloned reports whether Open created the working copy by cloning
func (h *Handle) Cloned() bool {
	return h.cloned
}

// Repository exposes the underlying go-git repository
func (h *Handle) Repository() *git.Repository {
	return h.repo
}

// worktree returns the working tree of the open repository
func (h *Handle) worktree() (*git.Worktree, error) {
	if err := h.ensureOpen(); err != nil {
		return nil, err
	}
	wt, err := h.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get working tree: %w", err)
	}
	return wt, nil
}
