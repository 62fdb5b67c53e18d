// cancel.go - cooperative cancellation polling shared by the copy engines
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

package pcopy

// PollFunc is polled by the copy engines between chunks (and, for
// single-shot primitives like reflink/clonefile, once before the
// attempt) to decide whether to abandon a copy in progress. It returns
// true if the caller has requested cancellation.
type PollFunc func() bool

func noPoll() bool { return false }
