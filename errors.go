// errors.go - descriptive errors for pcopy
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
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
	"errors"
	"fmt"
)

// ErrCancelled is returned by the copy engines and SafeFile when a
// caller-supplied poll function reports that the operation has been
// cancelled. It is a plain sentinel, unrelated to context.Canceled;
// callers match it, wrapped or not, with errors.Is.
var ErrCancelled = errors.New("pcopy: cancelled")

// errAny returns true if the target error 'err' matches
// any in the list 'errs'; and returns false otherwise
func errAny(err error, errs ...error) bool {
	for _, e := range errs {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// PathError wraps a single-path syscall failure (stat/lstat/mkdir/...)
// with the operation and path that failed.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("pcopy: %s %q: %s", e.Op, e.Path, e.Err.Error())
}

func (e *PathError) Unwrap() error {
	return e.Err
}

var _ error = &PathError{}

// CopyError represents the errors returned by the copy engines and by
// SafeFile when copying or placing a single file.
type CopyError struct {
	Op  string
	Src string
	Dst string
	Err error
}

// Error returns a string representation of CopyError
func (e *CopyError) Error() string {
	return fmt.Sprintf("pcopy: %s '%s' '%s': %s",
		e.Op, e.Src, e.Dst, e.Err.Error())
}

// Unwrap returns the underlying wrapped error
func (e *CopyError) Unwrap() error {
	return e.Err
}

var _ error = &CopyError{}
