// utils_test.go -- shared test helpers for this package's test files
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

package pcopy

import (
	"crypto/rand"
	"fmt"
	"os"
	"runtime"
	"testing"
)

func newAsserter(t *testing.T) func(cond bool, msg string, args ...interface{}) {
	return func(cond bool, msg string, args ...interface{}) {
		if cond {
			return
		}

		s := fmt.Sprintf(msg, args...)
		_, fn, line, ok := runtime.Caller(1)
		if !ok {
			t.Fatalf("%s", s)
		}
		t.Fatalf("%s:%d: %s", fn, line, s)
	}
}

func newBenchAsserter(b *testing.B) func(cond bool, msg string, args ...interface{}) {
	return func(cond bool, msg string, args ...interface{}) {
		if cond {
			return
		}

		s := fmt.Sprintf(msg, args...)
		_, fn, line, ok := runtime.Caller(1)
		if !ok {
			b.Fatalf("%s", s)
		}
		b.Fatalf("%s:%d: %s", fn, line, s)
	}
}

// mkfilex creates a small regular file with a handful of bytes of
// content at fn, for tests that only need a file to exist.
func mkfilex(fn string) error {
	fd, err := os.OpenFile(fn, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer fd.Close()

	var b [64]byte
	if _, err := rand.Read(b[:]); err != nil {
		return err
	}
	if _, err := fd.Write(b[:]); err != nil {
		return err
	}
	return fd.Sync()
}
