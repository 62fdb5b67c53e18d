// safefile_linux.go - no-clobber commit via renameat2(RENAME_NOREPLACE)
//
// (c) 2024- Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

//go:build linux

package pcopy

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// commitNoClobber renames tmp to dst, failing atomically with EEXIST
// if dst already exists. renameat2(2) with RENAME_NOREPLACE performs
// the existence check and the rename as a single kernel operation, so
// there is no race window between a stat and a rename.
func commitNoClobber(tmp, dst string) error {
	err := unix.Renameat2(unix.AT_FDCWD, tmp, unix.AT_FDCWD, dst, unix.RENAME_NOREPLACE)
	if err != nil {
		if err == unix.ENOSYS || err == unix.EINVAL {
			return linkCommitNoClobber(tmp, dst)
		}
		return fmt.Errorf("renameat2 %s %s: %w", tmp, dst, err)
	}
	return nil
}

// linkCommitNoClobber is the fallback for filesystems that don't
// support RENAME_NOREPLACE (some FUSE/NFS mounts): link() fails with
// EEXIST if dst is already present, so the existence check and the
// placement happen atomically; the temp name is then unlinked.
func linkCommitNoClobber(tmp, dst string) error {
	if err := os.Link(tmp, dst); err != nil {
		return err
	}
	return os.Remove(tmp)
}
