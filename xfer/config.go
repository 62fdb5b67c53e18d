// config.go - the operation contract: Configuration and its functional options
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

// Package xfer is the parallel executor: it turns the stream of
// WorkItem values the walk package produces into a bounded-concurrency
// sequence of placements, honoring the parent-before-child invariant,
// propagating cancellation, and accumulating Stats and failures into a
// single terminal Outcome.
package xfer

import (
	"runtime"

	"github.com/opencoff/go-logger"
	"github.com/opencoff/pcopy/policy"
)

// Configuration is the input to Copy, built up from functional options
// over a set of defaults matching the recognized options table.
type Configuration struct {
	Parallel                  int
	OnConflict                policy.Mode
	Fsync                     bool
	PreservePermissions       bool
	PreserveTimestamps        bool
	PreserveWindowsAttributes bool
	PreserveXattr             bool
	MaxDepth                  int
	BlockEscapingSymlinks     bool
	Reflink                   bool

	CancelToken *CancelToken

	// VerboseHandler is invoked once per placed/skipped/failed item,
	// from worker goroutines; implementations must be safe for
	// concurrent invocation.
	VerboseHandler func(Event)

	// ProgressHandler is invoked with cumulative bytes copied so far,
	// also from worker goroutines.
	ProgressHandler func(bytesCopied int64)

	Logger logger.Logger
}

func defaultConfig() Configuration {
	return Configuration{
		Parallel:                  16,
		OnConflict:                policy.Skip,
		Fsync:                     true,
		PreservePermissions:       true,
		PreserveTimestamps:        true,
		PreserveWindowsAttributes: true,
		Reflink:                   true,
	}
}

// Option mutates a Configuration under construction.
type Option func(*Configuration)

// WithParallel sets the worker count; n<=0 uses runtime.NumCPU().
func WithParallel(n int) Option {
	return func(c *Configuration) {
		if n <= 0 {
			n = runtime.NumCPU()
		}
		c.Parallel = n
	}
}

// WithConflictMode sets the conflict resolution mode.
func WithConflictMode(m policy.Mode) Option {
	return func(c *Configuration) { c.OnConflict = m }
}

// WithFsync toggles fsync-before-rename.
func WithFsync(b bool) Option {
	return func(c *Configuration) { c.Fsync = b }
}

// WithPreservePermissions toggles mode-bit preservation.
func WithPreservePermissions(b bool) Option {
	return func(c *Configuration) { c.PreservePermissions = b }
}

// WithPreserveTimestamps toggles mtime/atime preservation.
func WithPreserveTimestamps(b bool) Option {
	return func(c *Configuration) { c.PreserveTimestamps = b }
}

// WithPreserveWindowsAttributes toggles hidden/system/archive/readonly
// bit preservation; a no-op on non-Windows destinations.
func WithPreserveWindowsAttributes(b bool) Option {
	return func(c *Configuration) { c.PreserveWindowsAttributes = b }
}

// WithPreserveXattr toggles extended-attribute preservation.
func WithPreserveXattr(b bool) Option {
	return func(c *Configuration) { c.PreserveXattr = b }
}

// WithMaxDepth caps directory depth; 0 means unlimited.
func WithMaxDepth(n int) Option {
	return func(c *Configuration) { c.MaxDepth = n }
}

// WithBlockEscapingSymlinks rejects symlinks whose target resolves
// outside the source root instead of tagging and copying them.
func WithBlockEscapingSymlinks(b bool) Option {
	return func(c *Configuration) { c.BlockEscapingSymlinks = b }
}

// WithReflink toggles the copy-on-write fast path.
func WithReflink(b bool) Option {
	return func(c *Configuration) { c.Reflink = b }
}

// WithCancelToken supplies an externally owned cancellation token
// instead of the one Copy would otherwise create for itself.
func WithCancelToken(t *CancelToken) Option {
	return func(c *Configuration) { c.CancelToken = t }
}

// WithVerboseHandler registers a per-item callback.
func WithVerboseHandler(fn func(Event)) Option {
	return func(c *Configuration) { c.VerboseHandler = fn }
}

// WithProgressHandler registers a cumulative-bytes callback.
func WithProgressHandler(fn func(int64)) Option {
	return func(c *Configuration) { c.ProgressHandler = fn }
}

// WithLogger attaches a logger for executor diagnostics; nil (the
// default) means silent.
func WithLogger(l logger.Logger) Option {
	return func(c *Configuration) { c.Logger = l }
}

// Effective reduces a Configuration to the JSON-serializable subset
// emitted as the effective_config event.
func (c Configuration) Effective() EffectiveConfig {
	return EffectiveConfig{
		Parallel:                  c.Parallel,
		OnConflict:                c.OnConflict.String(),
		Fsync:                     c.Fsync,
		PreservePermissions:       c.PreservePermissions,
		PreserveTimestamps:        c.PreserveTimestamps,
		PreserveWindowsAttributes: c.PreserveWindowsAttributes,
		PreserveXattr:             c.PreserveXattr,
		MaxDepth:                  c.MaxDepth,
		BlockEscapingSymlinks:     c.BlockEscapingSymlinks,
		Reflink:                   c.Reflink,
	}
}
