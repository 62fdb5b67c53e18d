// stats.go - monotonic run counters

package xfer

import (
	"sync/atomic"
	"time"
)

// Stats is a point-in-time snapshot of a run's monotonic counters,
// safe to read once the executor that produced it has joined.
type Stats struct {
	FilesCopied    int64
	FilesSkipped   int64
	DirsCreated    int64
	SymlinksCopied int64
	BytesCopied    int64
	Errors         int64
	Duration       time.Duration
}

// statsAccum is the live, concurrently-updated form of Stats; workers
// mutate it via atomic increments and the executor takes a Stats
// snapshot only after every worker has finished.
type statsAccum struct {
	filesCopied    atomic.Int64
	filesSkipped   atomic.Int64
	dirsCreated    atomic.Int64
	symlinksCopied atomic.Int64
	bytesCopied    atomic.Int64
	errors         atomic.Int64
}

func (s *statsAccum) snapshot(d time.Duration) Stats {
	return Stats{
		FilesCopied:    s.filesCopied.Load(),
		FilesSkipped:   s.filesSkipped.Load(),
		DirsCreated:    s.dirsCreated.Load(),
		SymlinksCopied: s.symlinksCopied.Load(),
		BytesCopied:    s.bytesCopied.Load(),
		Errors:         s.errors.Load(),
		Duration:       d,
	}
}
