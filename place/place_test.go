// place_test.go - atomic placement tests

package place

import (
	"crypto/sha256"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencoff/pcopy"
)

func newAsserter(t *testing.T) func(cond bool, msg string, args ...interface{}) {
	return func(cond bool, msg string, args ...interface{}) {
		if !cond {
			t.Helper()
			t.Fatalf(msg, args...)
		}
	}
}

func writeFile(t *testing.T, p string, body []byte, perm os.FileMode) {
	err := os.WriteFile(p, body, perm)
	if err != nil {
		t.Fatalf("write %s: %s", p, err)
	}
}

func cksum(b []byte) [32]byte {
	return sha256.Sum256(b)
}

func TestFileFreshPlacement(t *testing.T) {
	assert := newAsserter(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	body := []byte("hello, world")
	writeFile(t, src, body, 0640)

	res, err := File(dst, src, 0640, Options{})
	assert(err == nil, "file: %s", err)
	assert(res.BytesCopied == int64(len(body)), "exp %d bytes, saw %d", len(body), res.BytesCopied)

	got, err := os.ReadFile(dst)
	assert(err == nil, "read dst: %s", err)
	assert(cksum(got) == cksum(body), "content mismatch")

	// no leftover temp files in the directory
	ents, err := os.ReadDir(dir)
	assert(err == nil, "readdir: %s", err)
	assert(len(ents) == 2, "exp exactly src+dst, saw %d entries", len(ents))
}

func TestFileNoClobberFailsWhenDestExists(t *testing.T) {
	assert := newAsserter(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	writeFile(t, src, []byte("new"), 0640)
	writeFile(t, dst, []byte("old"), 0640)

	_, err := File(dst, src, 0640, Options{Overwrite: false})
	assert(err != nil, "expected a no-clobber failure")

	got, err := os.ReadFile(dst)
	assert(err == nil, "read dst: %s", err)
	assert(string(got) == "old", "destination must be untouched, saw %q", got)
}

func TestFileOverwriteReplacesDest(t *testing.T) {
	assert := newAsserter(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	writeFile(t, src, []byte("new-content"), 0640)
	writeFile(t, dst, []byte("old"), 0640)

	_, err := File(dst, src, 0640, Options{Overwrite: true})
	assert(err == nil, "file: %s", err)

	got, err := os.ReadFile(dst)
	assert(err == nil, "read dst: %s", err)
	assert(string(got) == "new-content", "exp replaced content, saw %q", got)
}

func TestFileCancelledLeavesNoTempFile(t *testing.T) {
	assert := newAsserter(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	body := make([]byte, 4<<20)
	writeFile(t, src, body, 0640)

	poll := func() bool { return true }
	_, err := File(dst, src, 0640, Options{Poll: poll})
	assert(err != nil, "expected a cancellation error")
	assert(errors.Is(err, pcopy.ErrCancelled), "exp ErrCancelled, saw %s", err)

	_, statErr := os.Stat(dst)
	assert(os.IsNotExist(statErr), "destination must not exist after cancellation")

	ents, rerr := os.ReadDir(dir)
	assert(rerr == nil, "readdir: %s", rerr)
	assert(len(ents) == 1, "exp only src left behind, saw %d entries", len(ents))
}

func TestDirectoryCreatesAndIsIdempotent(t *testing.T) {
	assert := newAsserter(t)
	dir := t.TempDir()
	dst := filepath.Join(dir, "sub")

	created, err := Directory(dst, 0755)
	assert(err == nil, "first create: %s", err)
	assert(created, "first create: expected created=true")

	created, err = Directory(dst, 0755)
	assert(err == nil, "second create: %s", err)
	assert(!created, "second create must be a no-op")

	fi, err := os.Stat(dst)
	assert(err == nil, "stat: %s", err)
	assert(fi.IsDir(), "expected a directory")
}

func TestSymlinkFreshAndOverwrite(t *testing.T) {
	assert := newAsserter(t)
	dir := t.TempDir()

	targetA := filepath.Join(dir, "target-a")
	targetB := filepath.Join(dir, "target-b")
	writeFile(t, targetA, []byte("a"), 0640)
	writeFile(t, targetB, []byte("b"), 0640)

	link := filepath.Join(dir, "link")
	assert(os.Symlink(targetA, link) == nil, "symlink src")

	li, err := pcopy.Lstat(link)
	assert(err == nil, "lstat: %s", err)

	dst := filepath.Join(dir, "dst-link")
	err = Symlink(dst, link, li, false, false)
	assert(err == nil, "symlink place: %s", err)

	targ, err := os.Readlink(dst)
	assert(err == nil, "readlink: %s", err)
	assert(targ == targetA, "exp %s, saw %s", targetA, targ)

	// overwrite with a link to a different target
	assert(os.Remove(link) == nil, "remove original link")
	assert(os.Symlink(targetB, link) == nil, "re-symlink src")
	li2, err := pcopy.Lstat(link)
	assert(err == nil, "lstat2: %s", err)

	err = Symlink(dst, link, li2, true, false)
	assert(err == nil, "symlink overwrite: %s", err)

	targ, err = os.Readlink(dst)
	assert(err == nil, "readlink2: %s", err)
	assert(targ == targetB, "exp %s, saw %s", targetB, targ)
}
