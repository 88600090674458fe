// Package repository wraps a local go-git working copy bound to a single
// "origin" remote.
//
// # Architecture
//
//   - Open(opts): clones opts.RemoteURL when opts.Path is missing or empty,
//     opens the existing repository otherwise, and returns a *Handle
//   - Handle: branch listing (ListAll, ListLocal, ListRemoteTracking,
//     ListLocalOnly), remote operations (Fetch, Pull, Push, LsRemote) and
//     working tree operations (AddFile, AddAll, Commit, ShortStatus)
//   - Checkout(branch, opts): the checkout policy. Fetches, creates the local
//     branch from origin with upstream tracking, and optionally auto-creates a
//     missing remote branch from master
//   - EnterBranch / WithBranch: run work on another branch and restore the
//     previous one afterwards
//   - ReadFileTo / ReadFile: read one file as recorded on a branch tip
//
// Usage:
//
//	h, err := repository.Open(repository.OpenOptions{Path: dir, RemoteURL: url})
//	if err != nil { /* handle error */ }
//	defer h.Close()
//	dest, err := h.ReadFile("pom.xml", "release", true, "")
//
// Failures are reported with the kinds in kgit/internal/errors: ErrNotFound,
// ErrAuth, ErrNetwork, ErrBranchNotFound, ErrCheckoutConflict,
// ErrFileNotFoundInCommit and ErrDestinationExists. Match them with errors.Is.
//
// A Handle is not safe for concurrent use. Branch switching changes the shared
// working tree, so serialize all access to one working copy.
package repository
