// safefile_other.go - no-clobber commit via link()+unlink() fallback
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

//go:build !linux

package pcopy

import "os"

// commitNoClobber renames tmp to dst without clobbering an existing
// dst. Platforms without renameat2/RENAME_NOREPLACE (darwin, bsd,
// windows) use link(tmp, dst) followed by unlink(tmp): link fails with
// EEXIST if dst already exists, so the existence check and the
// placement are a single atomic step with no TOCTOU window.
func commitNoClobber(tmp, dst string) error {
	if err := os.Link(tmp, dst); err != nil {
		return err
	}
	return os.Remove(tmp)
}
