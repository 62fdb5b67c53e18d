// meta_nop.go -- metadata updates for unsupported systems
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

//go:build !unix && !windows

package pcopy

import (
	"fmt"
)

func chown(dest string, _ string, _ *Info) error {
	return nil
}

func chmod(dest string, _ string, fi *Info) error {
	return fmt.Errorf("chmod: not supported")
}

func winattrs(dest string, _ string, _ *Info) error {
	return nil
}

func utimes(dest string, _ string, _ *Info) error {
	return fmt.Errorf("utimes: not supported")
}

func mknod(dest string, src string, fi *Info) error {
	return fmt.Errorf("mknod: not supported")
}

func clonelink(dest string, src string, fi *Info) error {
	return fmt.Errorf("clonelink: not supported")
}

func clonexattr(dest, src string, _ *Info) error {
	return nil
}

func lclonexattr(dest, src string, _ *Info) error {
	return nil
}
