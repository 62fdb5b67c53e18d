// dir.go - ensure-exists semantics for directory items
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

package policy

import (
	"os"

	"github.com/opencoff/pcopy"
)

// CheckDir implements the directory conflict rule, which is the same
// regardless of Mode: absent is fine (the caller still has to create
// it), already a directory is fine (the caller leaves it alone), and
// anything else is a hard failure - a directory is never replaced by a
// non-directory or vice versa. It never touches the filesystem beyond
// the one Lstat.
func CheckDir(dstPath string) error {
	fi, err := pcopy.Lstat(dstPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if !fi.IsDir() {
		return ErrAlreadyExists
	}
	return nil
}
