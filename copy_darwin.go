// copy_darwin.go - macOS specific byte-transfer engine
//
// (c) 2021 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

//go:build darwin

package pcopy

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// TryClonefile attempts a whole-file copy-on-write clone of src onto a
// destination path that must not yet exist - used by the placement
// layer as a fast path before it ever creates a SafeFile temp name. It
// returns ok=false (with a nil error) when the filesystem doesn't
// support cloning or src and dst are on different devices, so the
// caller can fall back to the temp-file protocol instead.
func TryClonefile(dst, src string) (ok bool, err error) {
	err = unix.Clonefile(src, dst, unix.CLONE_NOFOLLOW)
	if err == nil {
		return true, nil
	}
	if errAny(err, syscall.ENOTSUP, syscall.ENOSYS, syscall.EEXIST, syscall.EXDEV) {
		return false, nil
	}
	return false, &CopyError{"clone", src, dst, err}
}

// CopyFd transfers the full contents of already-open src to
// already-open dst. macOS lacks an fd-based clone primitive (clonefile
// operates on paths, not descriptors, and requires the destination not
// exist yet - which conflicts with our already-created temp file), so
// the placement layer always hands us two open files here and we
// stream the copy via mmap. reflink is accepted for signature parity
// with the other platform engines but unused: the placement layer
// already tries the path-based clone fast path (see place.platformClone)
// before a SafeFile temp name ever exists.
func CopyFd(dst, src *os.File, reflink bool, poll PollFunc) (int64, error) {
	if poll == nil {
		poll = noPoll
	}
	if poll() {
		return 0, ErrCancelled
	}
	return copyViaMmap(dst, src, poll)
}
