// clone_darwin.go - path-based copy-on-write clone fast path
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

//go:build darwin

package place

import "github.com/opencoff/pcopy"

func platformClone(tmp, src string) (bool, error) {
	return pcopy.TryClonefile(tmp, src)
}
