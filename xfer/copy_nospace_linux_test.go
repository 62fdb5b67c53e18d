// copy_nospace_linux_test.go - the out-of-space scenario needs a
// size-quota tmpfs mount, which only linux provides portably.

//go:build linux

package xfer

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"golang.org/x/sys/unix"
)

// mountTinyTmpfs mounts a small tmpfs to deterministically exhaust
// free space; it skips the test when the caller lacks the privilege
// to mount (e.g. non-root, or a sandboxed CI worker).
func mountTinyTmpfs(t *testing.T, sizeBytes int) string {
	t.Helper()

	mnt := filepath.Join(t.TempDir(), "tmpfs-mnt")
	if err := os.Mkdir(mnt, 0755); err != nil {
		t.Fatalf("mkdir mountpoint: %s", err)
	}

	opts := "size=" + strconv.Itoa(sizeBytes)
	if err := unix.Mount("tmpfs", mnt, "tmpfs", 0, opts); err != nil {
		t.Skipf("mounting a quota-limited tmpfs requires privileges: %s", err)
	}
	t.Cleanup(func() {
		_ = unix.Unmount(mnt, 0)
	})
	return mnt
}

// TestCopyNoSpaceRetainsPlacedFiles covers S6: the 2nd of 3 files
// exhausts destination space. The 1st file must be placed and
// retained, the 2nd must leave no temp file behind, the 3rd must never
// start, and Outcome must report NoSpace with files_copied=1 and
// Remaining=2.
func TestCopyNoSpaceRetainsPlacedFiles(t *testing.T) {
	assert := newAsserter(t)

	// src and dst both live under the same size-quota'd tmpfs mount so
	// the data transfer is always same-filesystem, never a cross-device
	// copy_file_range fallback whose availability varies by kernel.
	mnt := mountTinyTmpfs(t, 256*1024)
	src := filepath.Join(mnt, "src")
	dst := filepath.Join(mnt, "out")
	assert(os.Mkdir(src, 0755) == nil, "mkdir src")

	// Sorted submission order (the walker reads directory entries in
	// sorted order) is a, b, c: a fits comfortably, b is far larger
	// than what's left of the tmpfs budget once a's source+destination
	// copies and b/c's own source bytes are already accounted for, and
	// c must never be attempted.
	writeFile(t, filepath.Join(src, "a"), 4096)
	writeFile(t, filepath.Join(src, "b"), 200*1024)
	writeFile(t, filepath.Join(src, "c"), 4096)

	o := Copy(src, dst, WithParallel(1))
	assert(o.Kind == NoSpace, "exp NoSpace, saw %s", o.Kind)
	assert(o.Stats.FilesCopied == 1, "exp 1 file copied before no-space, saw %d", o.Stats.FilesCopied)
	assert(o.Remaining == 2, "exp 2 remaining, saw %d", o.Remaining)

	got, err := os.ReadFile(filepath.Join(dst, "a"))
	assert(err == nil, "read dst/a: %s", err)
	want, err := os.ReadFile(filepath.Join(src, "a"))
	assert(err == nil, "read src/a: %s", err)
	assert(string(got) == string(want), "dst/a content mismatch")

	_, err = os.Stat(filepath.Join(dst, "b"))
	assert(os.IsNotExist(err), "dst/b must not exist after a failed placement")

	_, err = os.Stat(filepath.Join(dst, "c"))
	assert(os.IsNotExist(err), "dst/c must never have been attempted")

	ents, rerr := os.ReadDir(dst)
	assert(rerr == nil, "readdir dst: %s", rerr)
	assert(len(ents) == 1, "exp only 'a' placed in dst, saw %d entries", len(ents))

	// Resume: once the oversized source is replaced with one that fits
	// the remaining budget, a second invocation under the default Skip
	// policy completes the outstanding work and leaves 'a' untouched.
	assert(os.Remove(filepath.Join(src, "b")) == nil, "remove oversized source")
	writeFile(t, filepath.Join(src, "b"), 1024)
	o2 := Copy(src, dst, WithParallel(1))
	assert(o2.Kind == Success, "resume: exp Success, saw %s", o2.Kind)
	assert(o2.Stats.FilesCopied == 2, "resume: exp b+c copied, saw %d", o2.Stats.FilesCopied)
	assert(o2.Stats.FilesSkipped == 1, "resume: exp a skipped, saw %d", o2.Stats.FilesSkipped)
}
