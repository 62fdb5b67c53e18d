// meta_windows.go -- transfer attributes and timestamps on windows
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

//go:build windows

package pcopy

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/windows"
)

// longPath prefixes nm with the `\\?\` extended-length marker when it
// isn't already rooted with one, so paths beyond MAX_PATH (260 chars)
// and paths containing segments that differ only in trailing dots or
// spaces are handled the same way whether the caller passed a short or
// a long path.
func longPath(nm string) string {
	if strings.HasPrefix(nm, `\\?\`) {
		return nm
	}
	abs, err := windows.FullPath(nm)
	if err != nil {
		return nm
	}
	if strings.HasPrefix(abs, `\\`) {
		return `\\?\UNC\` + abs[2:]
	}
	return `\\?\` + abs
}

// chown is a no-op on Windows: ownership is governed by the security
// descriptor, not a (uid, gid) pair, and this spec does not translate
// ACLs (see Non-goals).
func chown(dest string, _ string, _ *Info) error {
	return nil
}

// chmod transfers only the readonly bit, derived from the source's
// POSIX-style write permission; the hidden/system/archive bits are
// independently gated by winattrs so the preserve_permissions and
// preserve_windows_attributes options can be toggled separately.
func chmod(dest string, _ string, fi *Info) error {
	cur, err := getFileAttributes(dest)
	if err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	attr := cur &^ AttrReadonly
	if fi.Mode().Perm()&0200 == 0 {
		attr |= AttrReadonly
	}
	return setFileAttributes(dest, attr)
}

// winattrs transfers the hidden, system and archive bits; it leaves
// the readonly bit exactly as it last found it, since that one belongs
// to chmod.
func winattrs(dest string, _ string, fi *Info) error {
	cur, err := getFileAttributes(dest)
	if err != nil {
		return fmt.Errorf("winattrs: %w", err)
	}
	attr := cur&AttrReadonly | (fi.WinAttr &^ AttrReadonly)
	return setFileAttributes(dest, attr)
}

func getFileAttributes(dest string) (uint32, error) {
	p, err := windows.UTF16PtrFromString(longPath(dest))
	if err != nil {
		return 0, err
	}
	return windows.GetFileAttributes(p)
}

func setFileAttributes(dest string, attr uint32) error {
	p, err := windows.UTF16PtrFromString(longPath(dest))
	if err != nil {
		return err
	}
	return windows.SetFileAttributes(p, attr)
}

func utimes(dest string, _ string, fi *Info) error {
	if err := os.Chtimes(dest, fi.Atim, fi.Mtim); err != nil {
		return fmt.Errorf("utimes: %w", err)
	}
	return nil
}

// mknod has no Windows equivalent; device/special files are not part
// of the NTFS namespace.
func mknod(dest string, src string, fi *Info) error {
	return fmt.Errorf("mknod: not supported on windows")
}

// clonelink recreates a symlink using the reparse-point based
// os.Symlink; Windows requires elevated privilege or developer mode to
// create symlinks, which this call surfaces as a plain error.
func clonelink(dest string, src string, fi *Info) error {
	targ, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("readlink: %w", err)
	}
	if err := os.Symlink(targ, dest); err != nil {
		return fmt.Errorf("symlink: %w", err)
	}
	// os.Chtimes would follow the reparse point to its target; the
	// link's own times stay at creation time on windows.
	return nil
}

// Windows has no extended-attribute namespace equivalent to POSIX
// xattr; alternate data streams exist but are out of scope.
func clonexattr(dest, src string, _ *Info) error {
	return nil
}

func lclonexattr(dest, src string, _ *Info) error {
	return nil
}
