// copy_linux.go - Linux specific byte-transfer engine
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

//go:build linux

package pcopy

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Do copies in chunks of _ioChunkSize
const _ioChunkSize int = 256 * 1024

// CopyFd transfers the full contents of already-open src to
// already-open dst, trying a reflink (copy-on-write clone) first when
// reflink is true and falling back to chunked copy_file_range(2) if
// the filesystem doesn't support cloning, src/dst straddle a
// filesystem boundary, or the caller disabled the fast path. poll is
// checked once before the reflink attempt and after every chunk of the
// fallback path; if it reports cancellation, CopyFd stops and returns
// ErrCancelled along with the bytes transferred so far.
func CopyFd(dst, src *os.File, reflink bool, poll PollFunc) (int64, error) {
	if poll == nil {
		poll = noPoll
	}
	if poll() {
		return 0, ErrCancelled
	}

	d := int(dst.Fd())
	s := int(src.Fd())

	st, err := src.Stat()
	if err != nil {
		return 0, &CopyError{"stat-src", src.Name(), dst.Name(), err}
	}
	sz := st.Size()

	if reflink {
		// This is a single atomic kernel operation, so there's no
		// intermediate progress to poll.
		if err := unix.IoctlFileClone(d, s); err == nil {
			return sz, nil
		} else if !errAny(err, syscall.ENOTSUP, syscall.ENOSYS, syscall.EXDEV) {
			return 0, &CopyError{"clone", src.Name(), dst.Name(), err}
		}
	}

	return copyFileRange(dst, src, d, s, sz, poll)
}

// Fallback to copy_file_range(2), available on all linuxes.
func copyFileRange(dst, src *os.File, d, s int, sz int64, poll PollFunc) (int64, error) {
	var roff, woff int64
	var copied int64

	for sz > 0 {
		if poll() {
			return copied, ErrCancelled
		}

		n := min(_ioChunkSize, int(sz))
		m, err := unix.CopyFileRange(s, &roff, d, &woff, n, 0)
		if err != nil {
			return copied, &CopyError{"copy_file_range", src.Name(), dst.Name(), err}
		}
		if m == 0 {
			return copied, &CopyError{"copy_file_range", src.Name(), dst.Name(),
				fmt.Errorf("zero sized transfer at off %d", roff)}
		}
		sz -= int64(m)
		roff += int64(m)
		woff += int64(m)
		copied += int64(m)
	}

	if _, err := dst.Seek(0, os.SEEK_SET); err != nil {
		return copied, &CopyError{"seek", src.Name(), dst.Name(), err}
	}

	return copied, nil
}
