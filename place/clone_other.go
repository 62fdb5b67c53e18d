// clone_other.go - no path-based clone primitive on these platforms
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

//go:build !darwin

package place

// platformClone always declines: Linux's reflink primitive is
// fd-based and already exercised transparently inside pcopy.CopyFd,
// and no other supported platform has a path-based clone syscall.
func platformClone(tmp, src string) (bool, error) {
	return false, nil
}
