// mknod_unixish.go -- mknod(2) for linux and darwin
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

//go:build linux || darwin

package pcopy

import (
	"fmt"
	"syscall"
)

func mknod(dest string, src string, fi *Info) error {
	if err := syscall.Mknod(dest, specialModeBits(fi.Mode()), int(fi.Rdev)); err != nil {
		return fmt.Errorf("mknod: %w", err)
	}
	return utimes(dest, src, fi)
}
