// Package fileops provides the filesystem helpers kgit needs around a Git
// working copy: atomic writes for extracted files, top-level snapshots and
// selective clearing of a working tree, and path containment checks.
//
// Writes go through a temporary file in the destination directory followed by
// a rename, so a reader never observes a partially written destination and a
// failed write never truncates an existing file.
//
//	if err := fileops.AtomicWrite(dest, bytes.NewReader(data), 0o644); err != nil {
//	    return fmt.Errorf("write %s: %w", dest, err)
//	}
package fileops
