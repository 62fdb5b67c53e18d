// walk_test.go - traversal behavior tests

package walk

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func newAsserter(t *testing.T) func(cond bool, msg string, args ...interface{}) {
	return func(cond bool, msg string, args ...interface{}) {
		if !cond {
			t.Helper()
			t.Fatalf(msg, args...)
		}
	}
}

func mktree(t *testing.T, root string, dirs []string, files map[string]string) {
	for _, d := range dirs {
		err := os.MkdirAll(filepath.Join(root, d), 0755)
		if err != nil {
			t.Fatalf("mkdir %s: %s", d, err)
		}
	}
	for f, body := range files {
		p := filepath.Join(root, f)
		err := os.WriteFile(p, []byte(body), 0644)
		if err != nil {
			t.Fatalf("write %s: %s", f, err)
		}
	}
}

func TestWalkPreOrder(t *testing.T) {
	assert := newAsserter(t)

	src := t.TempDir()
	dst := t.TempDir()

	mktree(t, src, []string{"a", "a/b"}, map[string]string{
		"top.txt":      "top",
		"a/mid.txt":    "mid",
		"a/b/leaf.txt": "leaf",
	})

	var got []string
	err := Walk(src, dst, Options{}, func(wi WorkItem) error {
		rel, rerr := filepath.Rel(src, wi.Src)
		assert(rerr == nil, "rel: %s", rerr)
		got = append(got, rel)
		return nil
	})
	assert(err == nil, "walk: %s", err)

	want := []string{".", "a", "a/b", "a/b/leaf.txt", "a/mid.txt", "top.txt"}
	assert(len(got) == len(want), "count mismatch: got %v want %v", got, want)
	for i := range want {
		assert(got[i] == want[i], "item %d: got %s want %s", i, got[i], want[i])
	}
}

func TestWalkMaxDepth(t *testing.T) {
	assert := newAsserter(t)

	src := t.TempDir()
	dst := t.TempDir()

	mktree(t, src, []string{"a", "a/b"}, map[string]string{
		"a/b/leaf.txt": "leaf",
	})

	var maxDepth int
	err := Walk(src, dst, Options{MaxDepth: 1}, func(wi WorkItem) error {
		if wi.Depth > maxDepth {
			maxDepth = wi.Depth
		}
		return nil
	})
	assert(err == nil, "walk: %s", err)
	assert(maxDepth <= 1, "exp maxDepth <= 1, saw %d", maxDepth)
}

func TestWalkSymlinkCycle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink privileges vary on windows")
	}
	assert := newAsserter(t)

	src := t.TempDir()
	dst := t.TempDir()

	err := os.Mkdir(filepath.Join(src, "a"), 0755)
	assert(err == nil, "mkdir: %s", err)

	loop := filepath.Join(src, "a", "loop")
	err = os.Symlink(src, loop)
	assert(err == nil, "symlink: %s", err)

	var sawEscaping bool
	werr := Walk(src, dst, Options{}, func(wi WorkItem) error {
		if wi.Kind == KindSymlink {
			sawEscaping = wi.Escaping
		}
		return nil
	})
	assert(werr == nil, "walk: %s", werr)
	assert(!sawEscaping, "a symlink back to root is not itself escaping")
}

func TestWalkSiblingSymlinksNotFalseCycle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink privileges vary on windows")
	}
	assert := newAsserter(t)

	src := t.TempDir()
	dst := t.TempDir()

	real := filepath.Join(src, "real")
	err := os.Mkdir(real, 0755)
	assert(err == nil, "mkdir: %s", err)

	err = os.WriteFile(filepath.Join(real, "f.txt"), []byte("x"), 0644)
	assert(err == nil, "write: %s", err)

	link1 := filepath.Join(src, "link1")
	link2 := filepath.Join(src, "link2")
	assert(os.Symlink(real, link1) == nil, "symlink1")
	assert(os.Symlink(real, link2) == nil, "symlink2")

	var failed bool
	err = Walk(src, dst, Options{
		OnError: func(e *Error) { failed = true },
	}, func(wi WorkItem) error {
		return nil
	})
	assert(err == nil, "walk: %s", err)
	assert(!failed, "sibling symlinks to the same real dir must not be flagged as a cycle")
}

func TestWalkEscapingSymlinkBlocked(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink privileges vary on windows")
	}
	assert := newAsserter(t)

	outside := t.TempDir()
	src := t.TempDir()
	dst := t.TempDir()

	escLink := filepath.Join(src, "esc")
	err := os.Symlink(outside, escLink)
	assert(err == nil, "symlink: %s", err)

	var blocked bool
	err = Walk(src, dst, Options{
		BlockEscapingSymlinks: true,
		OnError: func(e *Error) {
			blocked = true
		},
	}, func(wi WorkItem) error {
		return nil
	})
	assert(err == nil, "walk: %s", err)
	assert(blocked, "expected the escaping symlink to be reported")
}

func TestWalkEscapingSymlinkTaggedNotBlocked(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink privileges vary on windows")
	}
	assert := newAsserter(t)

	outside := t.TempDir()
	src := t.TempDir()
	dst := t.TempDir()

	escLink := filepath.Join(src, "esc")
	err := os.Symlink(outside, escLink)
	assert(err == nil, "symlink: %s", err)

	var sawEscaping bool
	err = Walk(src, dst, Options{}, func(wi WorkItem) error {
		if wi.Kind == KindSymlink {
			sawEscaping = wi.Escaping
		}
		return nil
	})
	assert(err == nil, "walk: %s", err)
	assert(sawEscaping, "expected the symlink to be tagged as escaping")
}

func TestWalkStopOnError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission semantics differ on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores permission bits")
	}
	assert := newAsserter(t)

	src := t.TempDir()
	dst := t.TempDir()

	locked := filepath.Join(src, "locked")
	err := os.Mkdir(locked, 0000)
	assert(err == nil, "mkdir: %s", err)
	defer os.Chmod(locked, 0755)

	err = Walk(src, dst, Options{StopOnError: true}, func(wi WorkItem) error {
		return nil
	})
	assert(err != nil, "expected a stop-on-error failure")
}

func TestWalkCollectsErrorsWithoutStopping(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission semantics differ on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores permission bits")
	}
	assert := newAsserter(t)

	src := t.TempDir()
	dst := t.TempDir()

	locked := filepath.Join(src, "locked")
	err := os.Mkdir(locked, 0000)
	assert(err == nil, "mkdir: %s", err)
	defer os.Chmod(locked, 0755)

	err = os.WriteFile(filepath.Join(src, "ok.txt"), []byte("x"), 0644)
	assert(err == nil, "write: %s", err)

	var errs []*Error
	var sawOk bool
	werr := Walk(src, dst, Options{
		OnError: func(e *Error) { errs = append(errs, e) },
	}, func(wi WorkItem) error {
		if filepath.Base(wi.Src) == "ok.txt" {
			sawOk = true
		}
		return nil
	})
	assert(werr == nil, "walk: %s", werr)
	assert(len(errs) > 0, "expected at least one collected error")
	assert(sawOk, "expected the walk to continue past the failing directory")
}
