// copy_other.go - byte-transfer engine for platforms without a native
// reflink/copy_file_range primitive
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

//go:build !linux && !darwin

package pcopy

import (
	"os"
)

// CopyFd transfers the full contents of already-open src to
// already-open dst via mmap streaming. reflink is accepted for
// signature parity with the linux/darwin engines but unused: these
// platforms have no reflink/clone primitive at all.
func CopyFd(dst, src *os.File, reflink bool, poll PollFunc) (int64, error) {
	if poll == nil {
		poll = noPoll
	}
	if poll() {
		return 0, ErrCancelled
	}
	return copyViaMmap(dst, src, poll)
}
