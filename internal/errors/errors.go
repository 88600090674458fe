// Package errors provides sentinel errors and typed errors for kgit.
// Use errors.Is() and errors.As() to check for specific error kinds.
package errors

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Sentinel errors for the conditions callers are expected to branch on
var (
	// ErrNotFound indicates a local path or repository is missing when expected
	ErrNotFound = errors.New("not found")

	// ErrAuth indicates the remote rejected the configured credentials
	ErrAuth = errors.New("authentication failed")

	// ErrNetwork indicates a transport failure during clone, fetch, push or list
	ErrNetwork = errors.New("network error")

	// ErrBranchNotFound indicates the remote branch is absent and auto-create is disabled
	ErrBranchNotFound = errors.New("branch not found")

	// ErrCheckoutConflict indicates a working-tree conflict blocked the checkout
	ErrCheckoutConflict = errors.New("checkout conflict")

	// ErrFileNotFoundInCommit indicates the requested path is absent from the resolved tree
	ErrFileNotFoundInCommit = errors.New("file not found in commit")

	// ErrDestinationExists indicates the overwrite guard refused to replace a file
	ErrDestinationExists = errors.New("destination exists")

	// ErrPublish indicates a failure while staging, committing or pushing a publication
	ErrPublish = errors.New("publish failed")

	// ErrClosed indicates the repository handle was already closed
	ErrClosed = errors.New("repository handle closed")
)

// NotFoundError represents a missing local path or repository
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("repository not found at %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("repository not found at %s", e.Path)
}

// Is returns true if the target error is ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(path string, err error) *NotFoundError {
	return &NotFoundError{Path: path, Err: err}
}

// PathNotFoundError reports a file that is missing from, or lies outside, the working tree
type PathNotFoundError struct {
	Path string
	Err  error
}

func (e *PathNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("path not found in working tree: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("path not found in working tree: %s", e.Path)
}

// Is returns true if the target error is ErrNotFound
func (e *PathNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *PathNotFoundError) Unwrap() error {
	return e.Err
}

// NewPathNotFoundError creates a new PathNotFoundError
func NewPathNotFoundError(path string, err error) *PathNotFoundError {
	return &PathNotFoundError{Path: path, Err: err}
}

// RemoteError represents a failed remote operation. Kind is ErrAuth or ErrNetwork.
type RemoteError struct {
	Op   string
	URL  string
	Kind error
	Err  error
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, RedactCredentials(e.URL), e.Kind)
	if e.Err != nil {
		msg += ": " + RedactCredentials(e.Err.Error())
	}
	return msg
}

// Is returns true if the target error is the remote error's kind
func (e *RemoteError) Is(target error) bool {
	return target == e.Kind
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// NewAuthError creates a RemoteError of kind ErrAuth
func NewAuthError(op, url string, err error) *RemoteError {
	return &RemoteError{Op: op, URL: url, Kind: ErrAuth, Err: err}
}

// NewNetworkError creates a RemoteError of kind ErrNetwork
func NewNetworkError(op, url string, err error) *RemoteError {
	return &RemoteError{Op: op, URL: url, Kind: ErrNetwork, Err: err}
}

// BranchNotFoundError represents an error when a branch is absent on the remote
type BranchNotFoundError struct {
	BranchName string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %s does not exist on remote origin", e.BranchName)
}

// Is returns true if the target error is ErrBranchNotFound
func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrBranchNotFound
}

// NewBranchNotFoundError creates a new BranchNotFoundError
func NewBranchNotFoundError(branchName string) *BranchNotFoundError {
	return &BranchNotFoundError{BranchName: branchName}
}

// CheckoutConflictError represents a checkout blocked by the working tree
type CheckoutConflictError struct {
	BranchName string
	Err        error
}

func (e *CheckoutConflictError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("checkout of %s blocked by working tree: %v", e.BranchName, e.Err)
	}
	return fmt.Sprintf("checkout of %s blocked by working tree", e.BranchName)
}

// Is returns true if the target error is ErrCheckoutConflict
func (e *CheckoutConflictError) Is(target error) bool {
	return target == ErrCheckoutConflict
}

func (e *CheckoutConflictError) Unwrap() error {
	return e.Err
}

// NewCheckoutConflictError creates a new CheckoutConflictError
func NewCheckoutConflictError(branchName string, err error) *CheckoutConflictError {
	return &CheckoutConflictError{BranchName: branchName, Err: err}
}

// FileNotFoundInCommitError represents a path missing from a commit tree
type FileNotFoundInCommitError struct {
	Path   string
	Commit string
}

func (e *FileNotFoundInCommitError) Error() string {
	return fmt.Sprintf("did not find expected file %s in commit %s", e.Path, e.Commit)
}

// Is returns true if the target error is ErrFileNotFoundInCommit
func (e *FileNotFoundInCommitError) Is(target error) bool {
	return target == ErrFileNotFoundInCommit
}

// NewFileNotFoundInCommitError creates a new FileNotFoundInCommitError
func NewFileNotFoundInCommitError(path, commit string) *FileNotFoundInCommitError {
	return &FileNotFoundInCommitError{Path: path, Commit: commit}
}

// DestinationExistsError represents a refused overwrite
type DestinationExistsError struct {
	Path string
}

func (e *DestinationExistsError) Error() string {
	return fmt.Sprintf("file exists: %s", e.Path)
}

// Is returns true if the target error is ErrDestinationExists
func (e *DestinationExistsError) Is(target error) bool {
	return target == ErrDestinationExists
}

// NewDestinationExistsError creates a new DestinationExistsError
func NewDestinationExistsError(path string) *DestinationExistsError {
	return &DestinationExistsError{Path: path}
}

// PublishError wraps a failure in one stage of the publish workflow
type PublishError struct {
	Stage   string
	Version string
	Err     error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish version %s failed at %s: %v", e.Version, e.Stage, e.Err)
}

// Is returns true if the target error is ErrPublish
func (e *PublishError) Is(target error) bool {
	return target == ErrPublish
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// NewPublishError creates a new PublishError
func NewPublishError(stage, version string, err error) *PublishError {
	return &PublishError{Stage: stage, Version: version, Err: err}
}

var credentialPattern = regexp.MustCompile(`([A-Za-z][A-Za-z0-9+.-]*://)([^/@\s]+@)`)

// RedactCredentials masks user info embedded in URLs inside message.
func RedactCredentials(message string) string {
	if message == "" {
		return ""
	}
	return credentialPattern.ReplaceAllString(strings.TrimSpace(message), "$1***@")
}
