// place.go - the atomic placement protocol for a single file item
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

// Package place implements the central safety contract: every file
// lands at its destination path only by way of a temp file in the
// same directory, fsync'd when requested and renamed into place - atomically, and
// either no-clobber (fresh placement) or as an ordinary replace
// (overwrite), never by writing through the destination name
// directly. Symlinks and directories have their own, simpler
// placement rules.
package place

import (
	"fmt"
	"os"
	"time"

	"github.com/opencoff/pcopy"
)

// Result carries the outcome of placing one file.
type Result struct {
	// BytesCopied is the number of bytes transferred. It is the full
	// source size on a reflink/clone fast path and on ordinary stream
	// copies; it may be less than the source size if the copy was
	// cancelled or failed partway.
	BytesCopied int64

	// Reflinked is true when the placement used the path-based
	// copy-on-write clone fast path (tryCloneOverwrite). A clone made
	// inside pcopy.CopyFd (Linux FICLONE) is not reported here and
	// leaves Reflinked false.
	Reflinked bool
}

// Options configures one File call.
type Options struct {
	// Overwrite selects an ordinary (clobbering) rename at the
	// publish step. When false, CommitNoClobber is used and the call
	// fails if the destination was created concurrently.
	Overwrite bool

	// Reflink enables the copy-on-write fast path where the platform
	// supports it. When it does not apply (unsupported filesystem,
	// cross-device, or no platform support) File falls back to a
	// stream copy transparently.
	Reflink bool

	// Fsync flushes the temp file's data to disk before the publish
	// rename.
	Fsync bool

	// Poll is checked before any single-shot whole-file step and
	// after every chunk of a streamed copy. A true return aborts the
	// placement and removes the temp file.
	Poll pcopy.PollFunc
}

// File places src at dst following the temp-file + fsync + rename
// protocol. perm is the mode given to the temp file; it should be no
// more permissive than the source's own mode. On any failure the temp
// file is removed and dst is left exactly as it was found.
//
// When opt.Reflink and opt.Overwrite are both set, File first tries a
// whole-file copy-on-write clone straight to a temp name (the only
// shape platforms with a path-based clone primitive, such as macOS's
// clonefile, can use - it insists on creating the destination itself,
// which rules out handing it an already-open SafeFile). That path
// falls back transparently when cloning isn't available. In every
// other case the ordinary SafeFile + CopyFd path is used, which on
// platforms with an fd-based clone primitive (Linux's reflink ioctl)
// still gets the fast path for free.
func File(dst, src string, perm os.FileMode, opt Options) (Result, error) {
	if opt.Reflink && opt.Overwrite {
		if ok, n, err := tryCloneOverwrite(dst, src, perm); ok {
			if err != nil {
				return Result{}, &pcopy.CopyError{Op: "clone", Src: src, Dst: dst, Err: err}
			}
			return Result{BytesCopied: n, Reflinked: true}, nil
		}
	}

	sfd, err := os.Open(src)
	if err != nil {
		return Result{}, &pcopy.CopyError{Op: "open-src", Src: src, Dst: dst, Err: err}
	}
	defer sfd.Close()

	sf, err := pcopy.NewSafeFile(dst, os.O_WRONLY, perm)
	if err != nil {
		return Result{}, &pcopy.CopyError{Op: "create-temp", Src: src, Dst: dst, Err: err}
	}
	defer sf.Abort()

	n, err := pcopy.CopyFd(sf.File, sfd, opt.Reflink, opt.Poll)
	if err != nil {
		return Result{BytesCopied: n}, &pcopy.CopyError{Op: "copy", Src: src, Dst: dst, Err: err}
	}

	if opt.Overwrite {
		err = sf.Commit(opt.Fsync)
	} else {
		err = sf.CommitNoClobber(opt.Fsync)
	}
	if err != nil {
		return Result{BytesCopied: n}, &pcopy.CopyError{Op: "publish", Src: src, Dst: dst, Err: err}
	}

	return Result{BytesCopied: n}, nil
}

// tryCloneOverwrite attempts the path-based clone fast path onto a
// temp name in dst's directory, then renames it onto dst. ok is false
// whenever the platform has no such primitive or it declined (in which
// case err is always nil and the caller falls back to the stream-copy
// path).
func tryCloneOverwrite(dst, src string, perm os.FileMode) (ok bool, n int64, err error) {
	tmp := fmt.Sprintf("%s.pcopy-clone.%d.%x", dst, os.Getpid(), time.Now().UnixNano())

	cloned, cerr := platformClone(tmp, src)
	if cerr != nil {
		os.Remove(tmp)
		return true, 0, cerr
	}
	if !cloned {
		return false, 0, nil
	}

	if err := os.Chmod(tmp, perm); err != nil {
		os.Remove(tmp)
		return true, 0, err
	}

	fi, err := os.Stat(tmp)
	if err != nil {
		os.Remove(tmp)
		return true, 0, err
	}

	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return true, 0, err
	}

	return true, fi.Size(), nil
}

// Symlink places a new symbolic link at dst with src's stored target
// text (never resolved). Under overwrite it stages the new link at a
// temp name and renames it into place so readers never observe a
// missing link; otherwise it creates dst directly and fails if
// something is already there.
func Symlink(dst, src string, fi *pcopy.Info, overwrite, preserveXattr bool) error {
	if overwrite {
		tmp := fmt.Sprintf("%s.pcopy-tmp-lnk.%d", dst, os.Getpid())
		if err := pcopy.CloneSymlink(tmp, src, fi, preserveXattr); err != nil {
			return &pcopy.CopyError{Op: "symlink", Src: src, Dst: dst, Err: err}
		}
		if err := os.Rename(tmp, dst); err != nil {
			os.Remove(tmp)
			return &pcopy.CopyError{Op: "symlink-rename", Src: src, Dst: dst, Err: err}
		}
		return nil
	}

	if err := pcopy.CloneSymlink(dst, src, fi, preserveXattr); err != nil {
		return &pcopy.CopyError{Op: "symlink", Src: src, Dst: dst, Err: err}
	}
	return nil
}

// Special recreates a device node, fifo or socket at dst from the
// identity captured in fi; the content of a special file is its
// (mode, rdev) pair, so there is nothing to stream. Under overwrite
// the node is staged at a temp name and renamed over the old entry.
func Special(dst, src string, fi *pcopy.Info, overwrite, preserveXattr bool) error {
	if overwrite {
		tmp := fmt.Sprintf("%s.pcopy-tmp-nod.%d", dst, os.Getpid())
		if err := pcopy.MakeSpecial(tmp, src, fi, preserveXattr); err != nil {
			os.Remove(tmp)
			return &pcopy.CopyError{Op: "mknod", Src: src, Dst: dst, Err: err}
		}
		if err := os.Rename(tmp, dst); err != nil {
			os.Remove(tmp)
			return &pcopy.CopyError{Op: "mknod-rename", Src: src, Dst: dst, Err: err}
		}
		return nil
	}

	if err := pcopy.MakeSpecial(dst, src, fi, preserveXattr); err != nil {
		return &pcopy.CopyError{Op: "mknod", Src: src, Dst: dst, Err: err}
	}
	return nil
}

// Directory creates dst if absent and is a no-op if it already exists
// as a directory; the caller (policy.CheckDir) is expected to have
// already rejected the non-directory case. created reports whether
// this call actually made a new directory entry. Metadata is
// intentionally not applied here - the executor defers UpdateMeta
// until every child of dst has been placed, so a restrictive source
// mode never locks out its own contents.
func Directory(dst string, perm os.FileMode) (created bool, err error) {
	if err := os.Mkdir(dst, perm); err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, &pcopy.PathError{Op: "mkdir", Path: dst, Err: err}
	}
	return true, nil
}
