package repository

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/xdg"
)

var (
	scpURLPattern    = regexp.MustCompile(`^(?:[^@/\s]+@)?([^:/\s]+):([^/].*?)(?:\.git)?/?$`)
	scpPrefixPattern = regexp.MustCompile(`^(?:[^@/\s]+@)?([^:/\s]+):(.+)$`)
)

// GitURLInfo contains the parsed components of a Git repository URL.
type GitURLInfo struct {
	Host  string // Host (e.g., "github.com"), empty for local paths
	Owner string // Path up to the repository, may be empty
	Repo  string // Repository name (without .git suffix)
}

// ParseGitURL parses a Git repository URL and extracts its components.
// It supports scp-like (git@host:owner/repo.git), ssh://, http(s)://, file://
// and plain local paths.
//
// Example:
//
//	info, err := repository.ParseGitURL("https://github.com/user/repo.git")
//	// info.Host = "github.com", info.Owner = "user", info.Repo = "repo"
func ParseGitURL(gitURL string) (GitURLInfo, error) {
	gitURL = strings.TrimSpace(gitURL)
	if gitURL == "" {
		return GitURLInfo{}, fmt.Errorf("URL cannot be empty")
	}

	if !strings.Contains(gitURL, "://") && !isWindowsDrivePath(gitURL) {
		if m := scpURLPattern.FindStringSubmatch(gitURL); m != nil {
			owner, repo := splitRepoPath(m[2])
			return GitURLInfo{Host: m[1], Owner: owner, Repo: repo}, nil
		}

		// Local path
		owner, repo := splitRepoPath(filepath.ToSlash(filepath.Clean(gitURL)))
		if repo == "" || repo == "." {
			return GitURLInfo{}, fmt.Errorf("could not extract repository name from %s", gitURL)
		}
		return GitURLInfo{Owner: owner, Repo: repo}, nil
	}

	parsedURL, err := url.Parse(gitURL)
	if err != nil {
		return GitURLInfo{}, fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "file" && parsedURL.Host == "" {
		return GitURLInfo{}, fmt.Errorf("URL missing host component")
	}

	owner, repo := splitRepoPath(parsedURL.Path)
	if repo == "" {
		return GitURLInfo{}, fmt.Errorf("could not extract repository name from URL path: %s", parsedURL.Path)
	}

	return GitURLInfo{
		Host:  parsedURL.Hostname(),
		Owner: owner,
		Repo:  repo,
	}, nil
}

func splitRepoPath(p string) (owner, repo string) {
	p = strings.Trim(p, "/")
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return "", strings.TrimSuffix(p, ".git")
	}
	return p[:idx], strings.TrimSuffix(p[idx+1:], ".git")
}

// NormalizeGitURL reduces a URL to host/path form so that the scp-like, ssh and
// https spellings of one repository compare equal. Credentials are dropped.
func NormalizeGitURL(gitURL string) string {
	gitURL = strings.TrimSpace(gitURL)
	gitURL = strings.TrimSuffix(strings.TrimSuffix(gitURL, "/"), ".git")

	if !strings.Contains(gitURL, "://") && !isWindowsDrivePath(gitURL) {
		if m := scpPrefixPattern.FindStringSubmatch(gitURL); m != nil {
			return m[1] + "/" + strings.TrimPrefix(m[2], "/")
		}
		return filepath.ToSlash(filepath.Clean(gitURL))
	}

	parsedURL, err := url.Parse(gitURL)
	if err != nil {
		return gitURL
	}
	if parsedURL.Scheme == "file" {
		return parsedURL.Path
	}
	return parsedURL.Hostname() + "/" + strings.TrimPrefix(parsedURL.Path, "/")
}

// DefaultDataDir returns kgit's directory under the user's data home,
// e.g. ~/.local/share/kgit on Linux.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, "kgit")
}

// DefaultWorkDir returns the working copy location used when no local path is
// given: <DefaultDataDir>/<repo name>.
func DefaultWorkDir(remoteURL string) (string, error) {
	info, err := ParseGitURL(remoteURL)
	if err != nil {
		return "", err
	}
	return filepath.Join(DefaultDataDir(), info.Repo), nil
}
