// policy.go - the conflict decision table applied to each non-directory item
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

// Package policy decides, for each item the walker produces, whether
// it is copied, skipped, or rejected, by consulting the configured
// conflict mode and the state of the destination path. It never
// touches the filesystem beyond a single stat of the destination.
package policy

import (
	"fmt"
	"os"
	"time"

	"github.com/opencoff/pcopy"
)

// Mode selects how a conflicting destination entry is handled.
type Mode int

const (
	// Skip leaves an existing destination untouched.
	Skip Mode = iota

	// Overwrite always replaces an existing destination of the same
	// kind via an atomic rename.
	Overwrite

	// UpdateNewer behaves like Skip unless the source is strictly
	// newer than the destination, in which case it behaves like
	// Overwrite.
	UpdateNewer

	// Error fails the item outright when the destination exists.
	Error
)

func (m Mode) String() string {
	switch m {
	case Skip:
		return "skip"
	case Overwrite:
		return "overwrite"
	case UpdateNewer:
		return "update-newer"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// ParseMode maps a configuration string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "skip", "":
		return Skip, nil
	case "overwrite":
		return Overwrite, nil
	case "update-newer", "updatenewer":
		return UpdateNewer, nil
	case "error":
		return Error, nil
	default:
		return Skip, fmt.Errorf("policy: unknown conflict mode %q", s)
	}
}

// Action is the decision Decide reaches for one item.
type Action int

const (
	// ActionCopy places the item at the destination.
	ActionCopy Action = iota

	// ActionSkip leaves the destination exactly as it is.
	ActionSkip

	// ActionFail rejects the item; the caller should classify Err
	// and record a per-item failure.
	ActionFail
)

func (a Action) String() string {
	switch a {
	case ActionCopy:
		return "copy"
	case ActionSkip:
		return "skip"
	case ActionFail:
		return "fail"
	default:
		return "unknown"
	}
}

// ErrIsADirectory marks an attempt to overwrite a directory with a
// non-directory entry, or vice versa - forbidden under every mode.
var ErrIsADirectory = fmt.Errorf("policy: destination is a directory, item is not (or vice versa)")

// ErrAlreadyExists marks a destination conflict under Error mode, and
// (from CheckDir) a non-directory at a directory item's destination.
var ErrAlreadyExists = fmt.Errorf("policy: destination already exists")

// Exists reports whether dstPath already names something (of any
// type). Decide folds this into ActionCopy either way, so callers that
// need to choose between a no-clobber and an overwrite rename once
// Decide has returned ActionCopy call this separately.
func Exists(dstPath string) bool {
	_, err := pcopy.Lstat(dstPath)
	return err == nil
}

// Decide applies the conflict table to a single non-directory item;
// directory items are always handled via CheckDir instead. srcMtime is
// the source item's modification time, used only for UpdateNewer.
func Decide(mode Mode, dstPath string, srcMtime time.Time) (Action, error) {
	dst, err := pcopy.Lstat(dstPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ActionCopy, nil
		}
		return ActionFail, err
	}

	if dst.IsDir() {
		return ActionFail, ErrIsADirectory
	}

	switch mode {
	case Skip:
		return ActionSkip, nil
	case Overwrite:
		return ActionCopy, nil
	case UpdateNewer:
		if srcMtime.After(dst.ModTime()) {
			return ActionCopy, nil
		}
		return ActionSkip, nil
	case Error:
		return ActionFail, ErrAlreadyExists
	default:
		return ActionFail, fmt.Errorf("policy: unhandled mode %v", mode)
	}
}
