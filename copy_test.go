// copy_test.go - byte-transfer engine tests
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
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFd(t *testing.T) {
	assert := newAsserter(t)
	tmpdir := getTmpdir(t)

	src := filepath.Join(tmpdir, "file-a")
	dst := filepath.Join(tmpdir, "file-b")

	srcsum, err := createFile(src, 1<<20)
	assert(err == nil, "create %s: %s", src, err)

	s, err := os.Open(src)
	assert(err == nil, "open src: %s", err)
	defer s.Close()

	d, err := os.OpenFile(dst, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0600)
	assert(err == nil, "open dst: %s", err)
	defer d.Close()

	n, err := CopyFd(d, s, true, nil)
	assert(err == nil, "copyfd %s to %s: %s", src, dst, err)
	assert(n > 0, "copyfd: zero bytes copied")

	dstsum, err := fileCksum(dst)
	assert(err == nil, "cksum %s: %s", dst, err)
	assert(byteEq(srcsum, dstsum), "cksum mismatch: %s", dst)
}

func TestCopyFdCancel(t *testing.T) {
	assert := newAsserter(t)
	tmpdir := getTmpdir(t)

	src := filepath.Join(tmpdir, "file-a")
	dst := filepath.Join(tmpdir, "file-b")

	_, err := createFile(src, 8<<20)
	assert(err == nil, "create %s: %s", src, err)

	s, err := os.Open(src)
	assert(err == nil, "open src: %s", err)
	defer s.Close()

	d, err := os.OpenFile(dst, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0600)
	assert(err == nil, "open dst: %s", err)
	defer d.Close()

	cancelled := false
	poll := func() bool {
		cancelled = true
		return true
	}

	_, err = CopyFd(d, s, true, poll)
	assert(err == ErrCancelled, "copyfd: exp ErrCancelled, saw %v", err)
	assert(cancelled, "copyfd: poll never invoked")
}

var testDir = flag.String("testdir", "", "Use 'T' as the testdir for file I/O tests")

func getTmpdir(t *testing.T) string {
	assert := newAsserter(t)
	tmpdir := t.TempDir()

	if len(*testDir) > 0 {
		tmpdir = filepath.Join(*testDir, t.Name())
		err := os.MkdirAll(tmpdir, 0700)
		assert(err == nil, "mkdir %s: %s", tmpdir, err)
		t.Logf("Using %s as test dir .. \n", tmpdir)
		t.Cleanup(func() {
			t.Logf("cleaning up %s ..\n", tmpdir)
			os.RemoveAll(tmpdir)
		})
	}
	return tmpdir
}
