// info.go - a better fs.FileInfo that also handles xattr
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

// Package pcopy implements the atomic file-placement primitives, the
// normalized stat type and the platform-specific copy engines that back
// a parallel, crash-safe, resumable file-tree copier. Higher level
// concerns (walking, conflict policy, the parallel executor) live in
// the walk, policy and xfer sub-packages; this package is the part they
// all build on.
package pcopy

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Info represents a file/dir metadata in a normalized form. It
// satisfies the fs.FileInfo interface and notably supports extended
// file system attributes (`xattr(7)`) and an identity (Dev, Ino) usable
// for cycle detection and same-filesystem checks.
type Info struct {
	Ino  uint64
	Siz  int64
	Dev  uint64
	Rdev uint64

	Mod   fs.FileMode
	Uid   uint32
	Gid   uint32
	Nlink uint32

	Atim time.Time
	Mtim time.Time
	Ctim time.Time

	// WinAttr carries the Windows file-attribute bits (hidden,
	// system, archive, readonly). Always zero on non-Windows.
	WinAttr uint32

	path  string
	Xattr Xattr
}

var _ fs.FileInfo = &Info{}

// Stat is like os.Stat() but also returns xattr
func Stat(nm string) (*Info, error) {
	var ii Info
	if err := Statm(nm, &ii); err != nil {
		return nil, err
	}
	return &ii, nil
}

// Statm is like Stat above - except it uses caller
// supplied memory for the stat(2) info
func Statm(nm string, fi *Info) error {
	if err := statInto(nm, fi); err != nil {
		return err
	}

	x, err := GetXattr(nm)
	if err != nil {
		return err
	}

	fi.path = nm
	fi.Xattr = x
	return nil
}

// Lstat is like os.Lstat() but also returns xattr
func Lstat(nm string) (*Info, error) {
	var ii Info
	if err := Lstatm(nm, &ii); err != nil {
		return nil, err
	}
	return &ii, nil
}

// Lstatm is like Lstat except it uses the caller
// supplied memory.
func Lstatm(nm string, fi *Info) error {
	if err := lstatInto(nm, fi); err != nil {
		return err
	}

	x, err := LgetXattr(nm)
	if err != nil {
		return err
	}

	fi.path = nm
	fi.Xattr = x
	return nil
}

// Fstat is like os.File.Stat() but also returns xattr
func Fstat(fd *os.File) (*Info, error) {
	var ii Info
	if err := Fstatm(fd, &ii); err != nil {
		return nil, err
	}
	return &ii, nil
}

// Fstatm is like Fstat except it uses caller supplied memory
func Fstatm(fd *os.File, fi *Info) error {
	return Lstatm(fd.Name(), fi)
}

// CopyTo does a deep-copy of the contents of ii to dest.
func (ii *Info) CopyTo(dest *Info) {
	old := dest.Xattr
	*dest = *ii
	if old == nil {
		old = make(Xattr)
	}

	// if there was an existing map in dest, we've saved it.
	// Else, we've created a new one. In either case, we
	// can now copy over the xattrs to this.
	for k, v := range ii.Xattr {
		old[k] = v
	}
	dest.Xattr = old
}

// Clone makes a deep copy of ii and returns the new
// instance
func (ii *Info) Clone() *Info {
	jj := new(Info)
	ii.CopyTo(jj)
	return jj
}

// String is a string representation of Info
func (ii *Info) String() string {
	return fmt.Sprintf("%s: %d %d; %s; %s", ii.Name(), ii.Siz, ii.Nlink, ii.ModTime().UTC(), ii.Mode().String())
}

// Path returns the path this Info was derived from (as passed to Stat/Lstat).
func (ii *Info) Path() string {
	return ii.path
}

// SetPath sets the path to 'p'
func (ii *Info) SetPath(p string) {
	ii.path = p
}

// fs.FileInfo methods of Info

// Name satisfies fs.FileInfo and returns the basename of the fs entry.
func (ii *Info) Name() string {
	return filepath.Base(ii.path)
}

// Size returns the fs entry's size
func (ii *Info) Size() int64 {
	return ii.Siz
}

// Mode returns the file mode bits
func (ii *Info) Mode() fs.FileMode {
	return ii.Mod
}

// ModTime returns the file modification time
func (ii *Info) ModTime() time.Time {
	return ii.Mtim
}

// IsDir returns true if this Info represents a directory entry
func (ii *Info) IsDir() bool {
	return ii.Mode().IsDir()
}

// IsRegular returns true if this Info represents a regular file
func (ii *Info) IsRegular() bool {
	return ii.Mode().IsRegular()
}

// IsSameFS returns true if a and b represent file entries on the
// same file system
func (a *Info) IsSameFS(b *Info) bool {
	return a.Dev == b.Dev && a.Rdev == b.Rdev
}

// Identity returns the canonical (device, inode) pair used by the
// walker's ancestor stack for symlink-loop detection. On Windows this
// is (volume serial, file id); on POSIX it is (device id, inode).
func (ii *Info) Identity() (uint64, uint64) {
	return ii.Dev, ii.Ino
}

// Sys returns the platform specific info - in our case it
// returns a pointer to the underlying Info instance.
func (ii *Info) Sys() any {
	return ii
}
