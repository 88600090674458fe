package repository

import (
	"errors"
	"regexp"
	"strings"

	"kgit/internal/config"
	kgiterrors "kgit/internal/errors"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/transport"
	"github.com/go-git/go-git/v6/plumbing/transport/http"
	"github.com/go-git/go-git/v6/plumbing/transport/ssh"
)

var scpLikePattern = regexp.MustCompile(`^(?:[^@/\s]+@)?[^:/\s]+:[^/]`)

// authMethod picks the go-git auth method for remoteURL.
//
// Authentication strategy:
//   - http(s) URLs use basic auth with the configured username and password
//   - ssh:// and scp-like URLs use password auth
//   - local paths and file:// URLs need no auth
//   - no configured credentials means anonymous access (nil auth)
func authMethod(remoteURL string, creds config.Credentials) (transport.AuthMethod, error) {
	if creds.IsZero() {
		return nil, nil
	}

	lower := strings.ToLower(remoteURL)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return &http.BasicAuth{
			Username: creds.Username,
			Password: creds.Password,
		}, nil

	case strings.HasPrefix(lower, "ssh://"), scpLikePattern.MatchString(remoteURL) && !isWindowsDrivePath(remoteURL):
		return &ssh.Password{
			User:     creds.Username,
			Password: creds.Password,
		}, nil

	default:
		return nil, nil
	}
}

func isWindowsDrivePath(p string) bool {
	return len(p) >= 2 && p[1] == ':' && ((p[0] >= 'a' && p[0] <= 'z') || (p[0] >= 'A' && p[0] <= 'Z'))
}

// remoteError classifies a failed remote operation into the kgit taxonomy.
//
// go-git's typed transport errors are checked first. Servers that only report
// an HTTP status in the message are matched on the same patterns as the typed
// errors would carry.
func (h *Handle) remoteError(op string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, transport.ErrAuthenticationRequired),
		containsAuthErrorPatterns(err.Error()):
		return kgiterrors.NewAuthError(op, h.remoteURL, err)

	case errors.Is(err, transport.ErrRepositoryNotFound),
		errors.Is(err, git.ErrRepositoryNotExists):
		return kgiterrors.NewNotFoundError(kgiterrors.RedactCredentials(h.remoteURL), err)

	default:
		return kgiterrors.NewNetworkError(op, h.remoteURL, err)
	}
}

// containsAuthErrorPatterns checks if error message contains authentication-related patterns
func containsAuthErrorPatterns(errMsg string) bool {
	errStr := strings.ToLower(errMsg)
	authPatterns := []string{
		"authentication required",
		"authorization failed",
		"401",
		"unauthorized",
		"403",
		"forbidden",
	}

	for _, pattern := range authPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
