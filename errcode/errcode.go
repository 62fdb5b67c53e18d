// errcode.go - the closed, stable error taxonomy every copy failure maps to
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

// Package errcode classifies the errors produced anywhere in this
// module into a closed, stable set of codes that callers (the CLI's
// JSON output, a calling program deciding whether to retry) can switch
// on without parsing error strings.
package errcode

import (
	"errors"
	"io/fs"
	"os"
	"syscall"

	"github.com/opencoff/pcopy"
	"github.com/opencoff/pcopy/policy"
	"github.com/opencoff/pcopy/walk"
)

// Code is one of a closed set of stable, machine-readable error
// classifications. Code meanings never change within a major version;
// new codes may be added in minor versions, never removed or
// repurposed.
type Code int

const (
	// Unknown is never returned by Classify on a non-nil error; it
	// exists only as Code's zero value.
	Unknown Code = iota

	// InvalidInput marks caller misuse: a missing destination, a
	// malformed path, conflicting options.
	InvalidInput

	// SourceNotFound marks a source entry that does not exist.
	SourceNotFound

	// AlreadyExists marks a destination conflict under the Error
	// conflict policy, or a directory-vs-non-directory conflict.
	AlreadyExists

	// PermissionDenied marks an OS access denial.
	PermissionDenied

	// NoSpace marks an out-of-space condition on the destination.
	NoSpace

	// Cancelled marks an operation that observed the cancellation
	// token set.
	Cancelled

	// PartialCopy marks a batch operation with a mixed per-item
	// outcome: some items succeeded, at least one failed.
	PartialCopy

	// SymlinkLoop marks a cycle detected in the ancestor chain
	// while walking.
	SymlinkLoop

	// IsADirectory marks an attempt to replace a directory with a
	// non-directory entry (or vice versa) where the policy forbids it.
	IsADirectory

	// IOError marks anything else transient or otherwise
	// unclassified at the OS level.
	IOError

	// Internal marks an invariant breakage inside this module - a
	// bug, not a misuse or an environmental condition.
	Internal
)

func (c Code) String() string {
	switch c {
	case InvalidInput:
		return "invalid_input"
	case SourceNotFound:
		return "source_not_found"
	case AlreadyExists:
		return "already_exists"
	case PermissionDenied:
		return "permission_denied"
	case NoSpace:
		return "no_space"
	case Cancelled:
		return "cancelled"
	case PartialCopy:
		return "partial_copy"
	case SymlinkLoop:
		return "symlink_loop"
	case IsADirectory:
		return "is_a_directory"
	case IOError:
		return "io_error"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Classify maps an arbitrary error - a raw *os.PathError/*fs.PathError,
// a syscall.Errno, one of this module's own wrapped error types
// (pcopy.CopyError, pcopy.PathError), or a sentinel like
// pcopy.ErrCancelled - to its stable Code. It returns Unknown only for
// a nil error.
func Classify(err error) Code {
	if err == nil {
		return Unknown
	}

	switch {
	case errors.Is(err, pcopy.ErrCancelled):
		return Cancelled
	case errors.Is(err, policy.ErrIsADirectory):
		return IsADirectory
	case errors.Is(err, policy.ErrAlreadyExists):
		return AlreadyExists
	case errors.Is(err, os.ErrNotExist):
		return SourceNotFound
	case errors.Is(err, os.ErrExist):
		return AlreadyExists
	case errors.Is(err, os.ErrPermission):
		return PermissionDenied
	case errors.Is(err, syscall.ENOSPC):
		return NoSpace
	case errors.Is(err, syscall.ELOOP):
		return SymlinkLoop
	case errors.Is(err, syscall.EISDIR), errors.Is(err, syscall.ENOTDIR):
		return IsADirectory
	}

	if errors.Is(err, walk.ErrSymlinkLoop) {
		return SymlinkLoop
	}
	if errors.Is(err, walk.ErrEscapingSymlink) {
		return InvalidInput
	}

	var werr *walk.Error
	if errors.As(err, &werr) {
		return Classify(werr.Err)
	}

	var perr *fs.PathError
	if errors.As(err, &perr) {
		return classifyErrno(perr.Err)
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return classifyErrno(errno)
	}

	return IOError
}

func classifyErrno(err error) Code {
	switch {
	case errors.Is(err, syscall.ENOENT):
		return SourceNotFound
	case errors.Is(err, syscall.EEXIST):
		return AlreadyExists
	case errors.Is(err, syscall.EACCES), errors.Is(err, syscall.EPERM):
		return PermissionDenied
	case errors.Is(err, syscall.ENOSPC):
		return NoSpace
	case errors.Is(err, syscall.ELOOP):
		return SymlinkLoop
	case errors.Is(err, syscall.EISDIR), errors.Is(err, syscall.ENOTDIR):
		return IsADirectory
	default:
		return IOError
	}
}
