// copy_mmap.go - copy using mmap(2)
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

package pcopy

import (
	"os"

	"github.com/opencoff/go-mmap"
)

// copyViaMmap copies src to dst by mmap-ing src and writing each
// window to dst, checking poll between windows so a cancellation can
// take effect mid-copy instead of only between whole files.
func copyViaMmap(dst, src *os.File, poll PollFunc) (int64, error) {
	if poll == nil {
		poll = noPoll
	}

	var copied int64
	_, err := mmap.Reader(src, func(b []byte) error {
		if poll() {
			return ErrCancelled
		}
		n, err := fullWrite(dst, b)
		copied += int64(n)
		return err
	})
	if err != nil {
		if err == ErrCancelled {
			return copied, ErrCancelled
		}
		return copied, &CopyError{"mmap-reader", src.Name(), dst.Name(), err}
	}
	if _, err = dst.Seek(0, os.SEEK_SET); err != nil {
		return copied, &CopyError{"seek-mmap", src.Name(), dst.Name(), err}
	}

	if err = dst.Sync(); err != nil {
		return copied, &CopyError{"dst-sync", src.Name(), dst.Name(), err}
	}
	return copied, nil
}
