// cancel.go - the monotonic cooperative cancellation flag

package xfer

import "sync/atomic"

// CancelToken is a monotonic flag observable from every worker: it
// transitions once from clear to set, never back. Once set, the
// executor stops dispatching new items and lets in-flight items reach
// a clean boundary before returning.
type CancelToken struct {
	flag atomic.Bool
}

// NewCancelToken returns a fresh, clear token.
func NewCancelToken() *CancelToken {
	return &CancelToken{}
}

// Cancel sets the token. Idempotent.
func (c *CancelToken) Cancel() {
	c.flag.Store(true)
}

// IsSet reports whether Cancel has been called.
func (c *CancelToken) IsSet() bool {
	return c.flag.Load()
}
