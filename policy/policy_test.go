// policy_test.go - conflict table tests

package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newAsserter(t *testing.T) func(cond bool, msg string, args ...interface{}) {
	return func(cond bool, msg string, args ...interface{}) {
		if !cond {
			t.Helper()
			t.Fatalf(msg, args...)
		}
	}
}

func touch(t *testing.T, p string, mtime time.Time) {
	err := os.WriteFile(p, []byte("x"), 0644)
	if err != nil {
		t.Fatalf("write %s: %s", p, err)
	}
	if err := os.Chtimes(p, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %s", p, err)
	}
}

func TestDecideAbsent(t *testing.T) {
	assert := newAsserter(t)
	dir := t.TempDir()
	dst := filepath.Join(dir, "nope")

	for _, m := range []Mode{Skip, Overwrite, UpdateNewer, Error} {
		act, err := Decide(m, dst, time.Now())
		assert(err == nil, "%s: %s", m, err)
		assert(act == ActionCopy, "%s: exp ActionCopy, saw %s", m, act)
	}
}

func TestDecideSameTypePresent(t *testing.T) {
	assert := newAsserter(t)
	dir := t.TempDir()
	dst := filepath.Join(dir, "f")
	now := time.Now()
	touch(t, dst, now)

	act, err := Decide(Skip, dst, now)
	assert(err == nil, "skip: %s", err)
	assert(act == ActionSkip, "skip: exp ActionSkip, saw %s", act)

	act, err = Decide(Overwrite, dst, now)
	assert(err == nil, "overwrite: %s", err)
	assert(act == ActionCopy, "overwrite: exp ActionCopy, saw %s", act)

	act, err = Decide(Error, dst, now)
	assert(errors.Is(err, ErrAlreadyExists), "error: exp ErrAlreadyExists, saw %s", err)
	assert(act == ActionFail, "error: exp ActionFail, saw %s", act)
}

func TestDecideUpdateNewer(t *testing.T) {
	assert := newAsserter(t)
	dir := t.TempDir()
	dst := filepath.Join(dir, "f")
	base := time.Now().Truncate(time.Second)
	touch(t, dst, base)

	act, err := Decide(UpdateNewer, dst, base.Add(-time.Hour))
	assert(err == nil, "older: %s", err)
	assert(act == ActionSkip, "older src: exp ActionSkip, saw %s", act)

	act, err = Decide(UpdateNewer, dst, base)
	assert(err == nil, "equal: %s", err)
	assert(act == ActionSkip, "equal mtime: exp ActionSkip (not strictly newer), saw %s", act)

	act, err = Decide(UpdateNewer, dst, base.Add(time.Hour))
	assert(err == nil, "newer: %s", err)
	assert(act == ActionCopy, "newer src: exp ActionCopy, saw %s", act)
}

func TestDecideDestinationIsDirectory(t *testing.T) {
	assert := newAsserter(t)
	dir := t.TempDir()
	dst := filepath.Join(dir, "d")
	err := os.Mkdir(dst, 0755)
	assert(err == nil, "mkdir: %s", err)

	for _, m := range []Mode{Skip, Overwrite, UpdateNewer, Error} {
		act, err := Decide(m, dst, time.Now())
		assert(errors.Is(err, ErrIsADirectory), "%s: exp ErrIsADirectory, saw %s", m, err)
		assert(act == ActionFail, "%s: exp ActionFail, saw %s", m, act)
	}
}

func TestCheckDirAllowsAbsent(t *testing.T) {
	assert := newAsserter(t)
	dir := t.TempDir()
	dst := filepath.Join(dir, "sub")

	err := CheckDir(dst)
	assert(err == nil, "check: %s", err)

	_, err = os.Stat(dst)
	assert(os.IsNotExist(err), "CheckDir must not create anything")
}

func TestCheckDirAcceptsExistingDirectory(t *testing.T) {
	assert := newAsserter(t)
	dir := t.TempDir()
	dst := filepath.Join(dir, "sub")
	assert(os.Mkdir(dst, 0755) == nil, "mkdir")

	err := CheckDir(dst)
	assert(err == nil, "check: %s", err)
}

func TestCheckDirRejectsNonDirectory(t *testing.T) {
	assert := newAsserter(t)
	dir := t.TempDir()
	dst := filepath.Join(dir, "f")
	touch(t, dst, time.Now())

	err := CheckDir(dst)
	assert(errors.Is(err, ErrAlreadyExists), "exp ErrAlreadyExists, saw %s", err)
}

func TestParseMode(t *testing.T) {
	assert := newAsserter(t)

	cases := map[string]Mode{
		"":             Skip,
		"skip":         Skip,
		"overwrite":    Overwrite,
		"update-newer": UpdateNewer,
		"error":        Error,
	}
	for s, want := range cases {
		got, err := ParseMode(s)
		assert(err == nil, "%q: %s", s, err)
		assert(got == want, "%q: exp %s, saw %s", s, want, got)
	}

	_, err := ParseMode("bogus")
	assert(err != nil, "expected an error for an unknown mode")
}
