// profile.go - named presets resolved into a base set of xfer.Options,
// applied before any explicit flag override.
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

package main

import (
	"fmt"
	"runtime"

	"github.com/opencoff/pcopy/policy"
	"github.com/opencoff/pcopy/xfer"
)

// profileOptions resolves one of the three recognized profile names to
// its base xfer.Options. An empty name is "modern".
func profileOptions(name string) ([]xfer.Option, error) {
	switch name {
	case "", "modern":
		// the library defaults: reflink when available, fsync before
		// every rename, skip on conflict.
		return nil, nil

	case "safe":
		// no reflink (a clone's COW semantics are not this profile's
		// point - paranoid callers want every byte independently
		// written and fsync'd), fail rather than silently skip or
		// clobber a conflicting destination.
		return []xfer.Option{
			xfer.WithReflink(false),
			xfer.WithFsync(true),
			xfer.WithConflictMode(policy.Error),
		}, nil

	case "fast":
		// reflink wherever possible, no fsync, two workers per
		// CPU - appropriate for a scratch/cache tree where losing
		// the copy to a crash just means re-running it.
		return []xfer.Option{
			xfer.WithReflink(true),
			xfer.WithFsync(false),
			xfer.WithParallel(2 * runtime.NumCPU()),
		}, nil

	default:
		return nil, fmt.Errorf("unknown profile %q (want modern, safe or fast)", name)
	}
}
