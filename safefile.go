// safefile.go - safe file creation and unwinding on error
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
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"sync/atomic"
)

// SafeFile is an io.WriteCloser that writes to a temporary file in the
// same directory as the eventual destination, and is only placed at
// the destination name when the caller explicitly commits it. The
// recommended usage is:
//
//	sf, err := NewSafeFile(...)
//	... error handling
//
//	defer sf.Abort()
//
//	... write to sf ..
//	sf.Commit(fsync)            // or sf.CommitNoClobber(fsync)
//
// It is safe to call Abort on a committed SafeFile; the first call to
// Commit()/CommitNoClobber() or Abort() seals the outcome.
//
// NewSafeFile deliberately does not check whether the destination
// already exists: any such check-then-act is a race with whatever else
// might create, remove or replace the destination between the check and
// the eventual rename. The conflict decision (skip/overwrite/error)
// belongs entirely to the caller, evaluated before NewSafeFile is ever
// invoked; by the time a SafeFile exists, the only question left is
// which rename discipline to commit with.
type SafeFile struct {
	*os.File

	// error for writes recorded once
	err  error
	name string // actual filename

	// tracks the state of this file:
	//  < 0 => aborted
	//  > 0 => committed
	//  = 0 => open and active
	closed atomic.Int64
}

var _ io.WriteCloser = &SafeFile{}

// NewSafeFile creates a new temporary file in the same directory as
// 'nm' that will either be aborted or atomically placed at 'nm' via
// Commit/CommitNoClobber.
func NewSafeFile(nm string, flag int, perm os.FileMode) (*SafeFile, error) {
	// we need these two flags by default. The callers can set the rest.
	flag |= os.O_CREATE | os.O_TRUNC

	if (flag & os.O_RDONLY) != 0 {
		return nil, fmt.Errorf("safefile: %s conflicting open mode (O_RDONLY)", nm)
	}

	if (flag & (os.O_RDWR | os.O_WRONLY)) == 0 {
		flag |= os.O_WRONLY
	}

	tmp := fmt.Sprintf("%s.pcopy-tmp.%d.%x", nm, os.Getpid(), randU32())
	fd, err := os.OpenFile(tmp, flag|os.O_EXCL, perm)
	if err != nil {
		return nil, err
	}

	sf := &SafeFile{
		File: fd,
		name: nm,
	}
	return sf, nil
}

func (sf *SafeFile) isOpen() bool {
	return sf.closed.Load() == 0
}

var flag2str = []struct {
	flag int
	name string
}{
	{os.O_RDONLY, "rdonly"},
	{os.O_WRONLY, "wronly"},
	{os.O_RDWR, "rdwr"},
	{os.O_APPEND, "append"},
	{os.O_CREATE, "creat"},
	{os.O_EXCL, "excl"},
	{os.O_SYNC, "sync"},
	{os.O_TRUNC, "trunc"},
}

func prflag(flag int) string {
	var v []string

	for i := range flag2str {
		fl := &flag2str[i]
		if fl.flag&flag > 0 {
			v = append(v, fl.name)
		}
	}
	return strings.Join(v, ",")
}

// Attempt to write everything in 'b' and don't proceed if there was
// a previous error or the file was already closed.
func (sf *SafeFile) Write(b []byte) (int, error) {
	if sf.err != nil {
		return 0, sf.err
	}

	if !sf.isOpen() {
		return 0, fmt.Errorf("safefile: %s is not open", sf.Name())
	}

	var z int
	if z, sf.err = fullWrite(sf.File, b); sf.err != nil {
		return z, sf.err
	}
	return z, nil
}

// WriteAt writes 'b' at absolute offset 'off'
func (sf *SafeFile) WriteAt(b []byte, off int64) (int, error) {
	if sf.err != nil {
		return 0, sf.err
	}

	if !sf.isOpen() {
		return 0, fmt.Errorf("safefile: %s is not open", sf.Name())
	}
	n, err := sf.File.WriteAt(b, off)
	if err != nil {
		sf.err = err
	}
	return n, err
}

// Abort the file write and remove any temporary artifacts; it is safe
// to call Commit()/CommitNoClobber() on a different code path - the
// first call to Abort() or a commit method takes precedence.
func (sf *SafeFile) Abort() {
	n := sf.closed.Load()
	if n != 0 {
		return
	}

	sf.File.Close()
	os.Remove(sf.Name())
	sf.closed.Store(-1)

	// we retain any previous error in sf.err
}

// Close is an alias for Commit(true), so that SafeFile satisfies
// io.WriteCloser; callers that need no-clobber semantics, or that want
// to skip the fsync, must call Commit/CommitNoClobber explicitly
// instead.
func (sf *SafeFile) Close() error {
	return sf.Commit(true)
}

// Commit flushes all file data to disk (when fsync is true) and
// atomically renames the temp file onto the destination name,
// replacing whatever (if anything) is currently there. ONLY done if
// there were no intervening write errors.
func (sf *SafeFile) Commit(fsync bool) error {
	if err := sf.sync(fsync); err != nil {
		return err
	}

	if sf.err = os.Rename(sf.Name(), sf.name); sf.err != nil {
		return sf.err
	}

	sf.closed.Store(1)
	return nil
}

// CommitNoClobber is like Commit, but fails with an error satisfying
// errors.Is(err, os.ErrExist) if the destination already exists,
// instead of silently replacing it. The check-and-rename is a single
// atomic step on every supported platform (see commitNoClobber in
// safefile_linux.go/safefile_other.go) - there is no TOCTOU window.
func (sf *SafeFile) CommitNoClobber(fsync bool) error {
	if err := sf.sync(fsync); err != nil {
		return err
	}

	if sf.err = commitNoClobber(sf.Name(), sf.name); sf.err != nil {
		return sf.err
	}

	sf.closed.Store(1)
	return nil
}

// sync closes the temp file, fsync'ing its data first when fsync is
// true. A caller that passes fsync=false accepts that a crash between
// this rename and the next flush of the destination filesystem's
// write-back cache can lose the file's data even though the rename
// itself is still atomic.
func (sf *SafeFile) sync(fsync bool) error {
	if sf.err != nil {
		sf.Abort()
		return sf.err
	}

	n := sf.closed.Load()
	if n < 0 {
		if sf.err != nil {
			return sf.err
		}
		return errAborted
	}
	if n > 0 {
		return sf.err
	}

	if fsync {
		if sf.err = sf.Sync(); sf.err != nil {
			return sf.err
		}
	}
	if sf.err = sf.File.Close(); sf.err != nil {
		return sf.err
	}
	return nil
}

func fullWrite(d *os.File, b []byte) (int, error) {
	var z int
	n := len(b)
	for n > 0 {
		m, err := d.Write(b)
		if err != nil {
			return z, fmt.Errorf("safefile: %w", err)
		}
		n -= m
		b = b[m:]
		z += m
	}
	return z, nil
}

func randU32() uint32 {
	var b [4]byte

	_, err := io.ReadFull(rand.Reader, b[:])
	if err != nil {
		panic(fmt.Sprintf("can't read 4 rand bytes: %s", err))
	}

	return binary.LittleEndian.Uint32(b[:])
}

func xflag2str(flag int) string {
	var v []string
	if flag&os.O_RDONLY > 0 {
		v = append(v, "rdonly")
	}
	if flag&os.O_WRONLY > 0 {
		v = append(v, "wronly")
	}
	if flag&os.O_RDWR > 0 {
		v = append(v, "rdwr")
	}
	if flag&os.O_APPEND > 0 {
		v = append(v, "append")
	}
	if flag&os.O_CREATE > 0 {
		v = append(v, "creat")
	}
	if flag&os.O_EXCL > 0 {
		v = append(v, "excl")
	}
	if flag&os.O_SYNC > 0 {
		v = append(v, "sync")
	}
	if flag&os.O_TRUNC > 0 {
		v = append(v, "trunc")
	}
	return strings.Join(v, ",")
}

var (
	errAborted = errors.New("safefile: aborted; file not committed")
)
