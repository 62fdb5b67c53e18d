// reflink.go - per-destination-filesystem reflink capability cache

package xfer

import "github.com/puzpuzpuz/xsync/v3"

// reflinkCache remembers, per destination device id, whether a clone
// attempt has previously succeeded or failed with "unsupported" there,
// so repeated placements into the same destination directory don't
// retry a doomed ioctl on every single file.
type reflinkCache struct {
	m *xsync.MapOf[uint64, bool]
}

func newReflinkCache() *reflinkCache {
	return &reflinkCache{m: xsync.NewMapOf[uint64, bool]()}
}

// supported reports a previously cached verdict for dev, if any.
func (c *reflinkCache) supported(dev uint64) (bool, bool) {
	return c.m.Load(dev)
}

// record caches ok as the verdict for dev.
func (c *reflinkCache) record(dev uint64, ok bool) {
	c.m.Store(dev, ok)
}
