// Package publish pushes Maven build output to the "repository" branch of a
// Git remote, so the remote can serve as a plain Maven repository.
//
// The build is expected to deploy into a working copy at
// <BuildDir>/<ProjectName>-repository, laid out as
// <group with '.' replaced by '/'>/<Module>/<Version>.
package publish

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"kgit/internal/config"
	kgiterrors "kgit/internal/errors"
	"kgit/internal/logging"
	"kgit/internal/repository"
)

// Branch is the branch published artifacts are committed to
const Branch = "repository"

// Stages reported in PublishError
const (
	StageInit         = "init"
	StageRelativePath = "relative path"
	StageStage        = "stage"
	StageCommit       = "commit"
	StagePush         = "push"
)

// Options describes one publish run.
type Options struct {
	RemoteURL   string
	BuildDir    string
	ProjectName string
	Group       string
	// Module defaults to ProjectName.
	Module  string
	Version string

	Credentials config.Credentials
	Committer   config.Identity
	// Offline skips the fetch before checking out the branch.
	Offline bool
	Logger  *logging.AppLogger
}

// MavenPublishTask publishes one version of one module. Create it with
// NewMavenPublishTask; its paths never change afterwards.
type MavenPublishTask struct {
	remoteURL   string
	buildDir    string
	projectName string
	group       string
	module      string
	version     string
	repoPath    string
	versionPath string

	credentials config.Credentials
	committer   config.Identity
	offline     bool
	logger      *logging.AppLogger

	handle *repository.Handle
}

// NewMavenPublishTask validates opts and derives the repository and version
// paths.
func NewMavenPublishTask(opts Options) (*MavenPublishTask, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetDefault()
	}

	module := strings.TrimSpace(opts.Module)
	if module == "" {
		module = strings.TrimSpace(opts.ProjectName)
	}

	t := &MavenPublishTask{
		remoteURL:   strings.TrimSpace(opts.RemoteURL),
		buildDir:    strings.TrimSpace(opts.BuildDir),
		projectName: strings.TrimSpace(opts.ProjectName),
		group:       strings.TrimSpace(opts.Group),
		module:      module,
		version:     strings.TrimSpace(opts.Version),
		credentials: opts.Credentials,
		committer:   opts.Committer,
		offline:     opts.Offline,
		logger:      logger,
	}

	if err := t.validate(); err != nil {
		return nil, err
	}

	t.repoPath = filepath.Join(t.buildDir, t.projectName+"-repository")
	t.versionPath = filepath.Join(t.repoPath, filepath.FromSlash(strings.ReplaceAll(t.group, ".", "/")), t.module, t.version)

	return t, nil
}

func (t *MavenPublishTask) validate() error {
	required := []struct{ name, value string }{
		{"build directory", t.buildDir},
		{"project name", t.projectName},
		{"group", t.group},
		{"version", t.version},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s cannot be empty", r.name)
		}
	}

	for _, seg := range []string{t.projectName, t.module, t.version} {
		if err := validateSegment(seg); err != nil {
			return err
		}
	}
	for _, seg := range strings.Split(t.group, ".") {
		if seg == "" {
			return fmt.Errorf("invalid group %q: empty segment", t.group)
		}
		if err := validateSegment(seg); err != nil {
			return err
		}
	}

	return nil
}

// validateSegment rejects values that would escape or restructure the layout
func validateSegment(s string) error {
	if s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("invalid path segment %q", s)
	}
	return nil
}

// RepoPath returns <BuildDir>/<ProjectName>-repository
func (t *MavenPublishTask) RepoPath() string { return t.repoPath }

// VersionPath returns the directory the build deploys this version into
func (t *MavenPublishTask) VersionPath() string { return t.versionPath }

// Version returns the version being published
func (t *MavenPublishTask) Version() string { return t.version }

// Module returns the Maven module name
func (t *MavenPublishTask) Module() string { return t.module }

// RelativeVersionPath returns VersionPath relative to RepoPath with forward
// slashes, e.g. "honey/kgit/0.0.6".
func (t *MavenPublishTask) RelativeVersionPath() (string, error) {
	prefix := t.repoPath + string(filepath.Separator)
	rel, ok := strings.CutPrefix(t.versionPath, prefix)
	if !ok || rel == "" {
		return "", kgiterrors.NewPublishError(StageRelativePath, t.version,
			fmt.Errorf("%s is not inside %s", t.versionPath, t.repoPath))
	}
	return filepath.ToSlash(rel), nil
}

// InitRepo clones or opens the working copy at RepoPath and checks out the
// repository branch, creating it on the remote from master when missing.
func (t *MavenPublishTask) InitRepo() error {
	t.logger.Info("checking out repository branch", "repoPath", t.repoPath)

	if t.handle == nil {
		h, err := repository.Open(repository.OpenOptions{
			Path:        t.repoPath,
			RemoteURL:   t.remoteURL,
			Credentials: t.credentials,
			Committer:   t.committer,
			Offline:     t.offline,
			Logger:      t.logger,
		})
		if err != nil {
			return kgiterrors.NewPublishError(StageInit, t.version, err)
		}
		t.handle = h
	}

	opts := repository.DefaultCheckoutOptions()
	opts.Fetch = !t.offline
	// Publishing must not leave an extra commit on the base branch
	opts.CreateEmpty = false

	res, err := t.handle.Checkout(Branch, opts)
	if err != nil {
		return kgiterrors.NewPublishError(StageInit, t.version, err)
	}

	// A freshly created remote branch is not checked out yet
	if res.Created {
		if _, err := t.handle.Checkout(Branch, opts); err != nil {
			return kgiterrors.NewPublishError(StageInit, t.version, err)
		}
	}

	t.logger.Info("repo was initialized", "branch", Branch)
	return nil
}

// Publish stages VersionPath, commits it as "publish version <Version>" and
// force-pushes every local branch. InitRepo runs first when it has not been
// called. Nothing is rolled back on failure: a commit made before a failed
// push stays in the local repository.
func (t *MavenPublishTask) Publish() error {
	start := time.Now()

	if t.handle == nil {
		if err := t.InitRepo(); err != nil {
			return err
		}
	}

	rel, err := t.RelativeVersionPath()
	if err != nil {
		return err
	}

	t.logger.Info("adding path to commit", "path", rel, "versionPath", t.versionPath)
	if err := t.handle.AddAll(rel); err != nil {
		return kgiterrors.NewPublishError(StageStage, t.version, err)
	}

	if status, err := t.handle.ShortStatus(); err == nil {
		t.logger.Info("status", "short", strings.TrimSpace(status))
	} else {
		t.logger.Warn("could not read status", "error", err)
	}

	if _, err := t.handle.Commit(fmt.Sprintf("publish version %s", t.version)); err != nil {
		return kgiterrors.NewPublishError(StageCommit, t.version, err)
	}

	t.logger.Info("pushing to git")
	if err := t.handle.Push(repository.PushOptions{All: true, Force: true}); err != nil {
		return kgiterrors.NewPublishError(StagePush, t.version, err)
	}

	t.logger.LogPerformance("publish", start)
	return nil
}

// Handle returns the working copy handle, nil before InitRepo
func (t *MavenPublishTask) Handle() *repository.Handle {
	return t.handle
}

// Close releases the working copy handle
func (t *MavenPublishTask) Close() error {
	if t.handle == nil {
		return nil
	}
	err := t.handle.Close()
	t.handle = nil
	return err
}
