// meta_unix.go -- transfer ownership, mode and xattr on unixish platforms
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

//go:build unix

package pcopy

import (
	"fmt"
	"io/fs"
	"os"
	"syscall"
)

// specialModeBits maps a special file's fs.FileMode back to the raw
// S_IFMT|perm bits mknod(2) expects; fs.FileMode keeps the type in
// high bits of its own, not the syscall's.
func specialModeBits(m fs.FileMode) uint32 {
	bits := uint32(m.Perm())
	switch {
	case m&fs.ModeCharDevice != 0:
		bits |= syscall.S_IFCHR
	case m&fs.ModeDevice != 0:
		bits |= syscall.S_IFBLK
	case m&fs.ModeNamedPipe != 0:
		bits |= syscall.S_IFIFO
	case m&fs.ModeSocket != 0:
		bits |= syscall.S_IFSOCK
	}
	return bits
}

func chown(dest string, _ string, fi *Info) error {
	if err := syscall.Chown(dest, int(fi.Uid), int(fi.Gid)); err != nil {
		return fmt.Errorf("chown: %w", err)
	}
	return nil
}

func chmod(dest string, _ string, fi *Info) error {
	return os.Chmod(dest, fi.Mode())
}

// winattrs is a no-op on unix: there is no hidden/system/archive bit
// namespace outside Windows, and fi.WinAttr is always zero here.
func winattrs(dest string, _ string, _ *Info) error {
	return nil
}

// clonelink recreates the symlink at src (pointing at the same target)
// at dest.
func clonelink(dest string, src string, fi *Info) error {
	targ, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("readlink: %w", err)
	}
	if err = os.Symlink(targ, dest); err != nil {
		return fmt.Errorf("symlink: %w", err)
	}
	return lutimes(dest, src, fi)
}

func clonexattr(dest, src string, _ *Info) error {
	x, err := GetXattr(src)
	if err != nil {
		return err
	}

	return ReplaceXattr(dest, x)
}

// lclonexattr clones the xattr of the symlink itself, not its target.
func lclonexattr(dest, src string, _ *Info) error {
	x, err := LgetXattr(src)
	if err != nil {
		return err
	}

	return LreplaceXattr(dest, x)
}
