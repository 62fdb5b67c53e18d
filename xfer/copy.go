// copy.go - the parallel executor: Copy() wires the walker, policy,
// placement and metadata layers into the single operation contract
// described by this module's spec.
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

package xfer

import (
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opencoff/pcopy"
	"github.com/opencoff/pcopy/errcode"
	"github.com/opencoff/pcopy/place"
	"github.com/opencoff/pcopy/policy"
	"github.com/opencoff/pcopy/walk"
)

// errStopWalk is returned from the walk callback once the cancel token
// has been observed set; it unwinds Walk() without being treated as a
// traversal failure.
var errStopWalk = errors.New("xfer: stopped on cancellation")

// run carries the mutable state of one Copy call.
type run struct {
	cfg   Configuration
	token *CancelToken

	stats   statsAccum
	reflink *reflinkCache

	failMu   sync.Mutex
	failures []Failure

	dirMu sync.Mutex
	dirs  []walk.WorkItem

	noSpace   atomic.Bool
	notPlaced atomic.Int64
}

// Copy walks source, applies the configured conflict policy to every
// entry, and places files/symlinks/directories at destination via the
// atomic placement protocol, honoring cancellation and accumulating
// Stats and failures into a single terminal Outcome.
func Copy(source, destination string, opts ...Option) Outcome {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.Parallel <= 0 {
		cfg.Parallel = defaultConfig().Parallel
	}
	if cfg.CancelToken == nil {
		cfg.CancelToken = NewCancelToken()
	}

	r := &run{cfg: cfg, token: cfg.CancelToken, reflink: newReflinkCache()}

	if cfg.VerboseHandler != nil {
		ec := cfg.Effective()
		cfg.VerboseHandler(Event{Type: EventEffectiveConfig, Config: &ec})
	}

	start := time.Now()

	pool := pcopy.NewWorkPool[walk.WorkItem](cfg.Parallel, func(_ int, item walk.WorkItem) error {
		r.dispatch(item)
		return nil
	})

	walkOpt := walk.Options{
		MaxDepth:              cfg.MaxDepth,
		BlockEscapingSymlinks: cfg.BlockEscapingSymlinks,
		OnError: func(e *walk.Error) {
			r.addFailure(e.Path, "", e)
		},
	}

	walkErr := walk.Walk(source, destination, walkOpt, func(item walk.WorkItem) error {
		if r.token.IsSet() {
			return errStopWalk
		}
		if item.Kind == walk.KindDir {
			r.handleDir(item)
			return nil
		}
		pool.Submit(item)
		return nil
	})

	pool.Close()
	_ = pool.Wait()

	r.finishDirs()

	duration := time.Since(start)
	snap := r.stats.snapshot(duration)

	if walkErr != nil && !errors.Is(walkErr, errStopWalk) {
		return Outcome{Kind: TerminalError, Stats: snap, Err: walkErr}
	}

	if r.noSpace.Load() {
		return Outcome{Kind: NoSpace, Stats: snap, Remaining: int(r.notPlaced.Load())}
	}
	if r.token.IsSet() {
		return Outcome{Kind: Cancelled, Stats: snap}
	}

	r.failMu.Lock()
	failures := r.failures
	r.failMu.Unlock()
	if len(failures) > 0 {
		return Outcome{Kind: PartialCopy, Stats: snap, Failures: failures}
	}
	return Outcome{Kind: Success, Stats: snap}
}

func (r *run) poll() bool {
	return r.token.IsSet()
}

func (r *run) addFailure(src, dst string, err error) {
	code := errcode.Classify(err)
	r.failMu.Lock()
	r.failures = append(r.failures, Failure{Src: src, Dst: dst, Code: code, Err: err})
	r.failMu.Unlock()
	r.stats.errors.Add(1)
	r.emit(Event{Type: EventExecuteItem, Src: src, Dst: dst, Action: ActionFail, Error: code.String()})
}

func (r *run) triggerNoSpace() {
	r.noSpace.Store(true)
	r.token.Cancel()
}

func (r *run) emit(e Event) {
	if r.cfg.VerboseHandler != nil {
		r.cfg.VerboseHandler(e)
	}
}

func (r *run) progress() {
	if r.cfg.ProgressHandler != nil {
		r.cfg.ProgressHandler(r.stats.bytesCopied.Load())
	}
}

func (r *run) metaFlags() pcopy.MetaFlags {
	return pcopy.MetaFlags{
		Permissions:       r.cfg.PreservePermissions,
		Timestamps:        r.cfg.PreserveTimestamps,
		WindowsAttributes: r.cfg.PreserveWindowsAttributes,
		Xattr:             r.cfg.PreserveXattr,
	}
}

func (r *run) wantsMeta() bool {
	f := r.metaFlags()
	return f.Permissions || f.Timestamps || f.WindowsAttributes || f.Xattr
}

// reflinkAllowed consults the per-device cache built up by recordReflink
// so a destination filesystem that has already refused one clone attempt
// isn't made to refuse the same ioctl on every subsequent file.
func (r *run) reflinkAllowed(dst string) bool {
	if !r.cfg.Reflink {
		return false
	}
	dfi, err := pcopy.Lstat(filepath.Dir(dst))
	if err != nil {
		return true
	}
	if ok, known := r.reflink.supported(dfi.Dev); known {
		return ok
	}
	return true
}

// recordReflink caches whether a clone attempt into dst's directory
// actually produced a reflinked result, keyed by that directory's device
// id. requested is the Reflink value passed to place.File; a "not
// reflinked" result only tells us anything when a clone was actually
// requested.
func (r *run) recordReflink(dst string, requested, got bool) {
	if !requested {
		return
	}
	dfi, err := pcopy.Lstat(filepath.Dir(dst))
	if err != nil {
		return
	}
	r.reflink.record(dfi.Dev, got)
}

func (r *run) dispatch(item walk.WorkItem) {
	switch item.Kind {
	case walk.KindFile:
		r.processFile(item)
	case walk.KindSymlink:
		r.processSymlink(item)
	}
}

// handleDir runs synchronously on the walk goroutine, guaranteeing the
// parent-before-child ordering invariant: a child item is never
// dispatched to the worker pool before its parent directory exists on
// disk.
func (r *run) handleDir(item walk.WorkItem) {
	if err := policy.CheckDir(item.Dst); err != nil {
		r.addFailure(item.Src, item.Dst, err)
		return
	}

	// Always writable+traversable for the owner at creation time;
	// the source's real mode (possibly more restrictive) is applied
	// after every child has been placed, in finishDirs.
	perm := item.Info.Mode().Perm() | 0700
	created, err := place.Directory(item.Dst, perm)
	if err != nil {
		r.addFailure(item.Src, item.Dst, err)
		return
	}
	if created {
		r.stats.dirsCreated.Add(1)
	}

	r.dirMu.Lock()
	r.dirs = append(r.dirs, item)
	r.dirMu.Unlock()

	r.emit(Event{Type: EventExecuteItem, Src: item.Src, Dst: item.Dst, Kind: item.Kind.String(), Action: ActionCopy})
}

// finishDirs applies metadata to every directory this run handled
// (newly created or already present),
// innermost first - the reverse of the pre-order discovery sequence,
// which guarantees every descendant of a directory is fully settled
// before that directory's own (possibly restrictive) mode is applied.
func (r *run) finishDirs() {
	if !r.wantsMeta() {
		return
	}
	for i := len(r.dirs) - 1; i >= 0; i-- {
		d := r.dirs[i]
		if err := pcopy.UpdateMetaSelective(d.Dst, d.Src, d.Info, r.metaFlags()); err != nil {
			r.addFailure(d.Src, d.Dst, err)
		}
	}
}

func (r *run) processFile(item walk.WorkItem) {
	if r.token.IsSet() {
		r.notPlaced.Add(1)
		return
	}

	existed := policy.Exists(item.Dst)
	action, err := policy.Decide(r.cfg.OnConflict, item.Dst, item.Info.ModTime())
	switch action {
	case policy.ActionSkip:
		r.stats.filesSkipped.Add(1)
		r.emit(Event{Type: EventExecuteItem, Src: item.Src, Dst: item.Dst, Kind: item.Kind.String(), Action: ActionSkip})
		return
	case policy.ActionFail:
		r.addFailure(item.Src, item.Dst, err)
		return
	}

	// fifos, device nodes and sockets are recreated from their
	// (mode, rdev) identity; opening one for a stream copy would
	// block or fail.
	if !item.Info.Mode().IsRegular() {
		if serr := place.Special(item.Dst, item.Src, item.Info, existed, r.cfg.PreserveXattr); serr != nil {
			r.handlePlacementError(item, serr)
			return
		}
		r.stats.filesCopied.Add(1)
		r.emit(Event{Type: EventExecuteItem, Src: item.Src, Dst: item.Dst, Kind: item.Kind.String(), Action: r.copyAction(existed)})
		return
	}

	perm := item.Info.Mode().Perm()
	reflink := r.reflinkAllowed(item.Dst)
	res, err := place.File(item.Dst, item.Src, perm, place.Options{
		Overwrite: existed,
		Reflink:   reflink,
		Fsync:     r.cfg.Fsync,
		Poll:      r.poll,
	})
	r.stats.bytesCopied.Add(res.BytesCopied)
	r.progress()

	if err != nil {
		r.handlePlacementError(item, err)
		return
	}
	r.recordReflink(item.Dst, reflink, res.Reflinked)

	if r.wantsMeta() {
		if merr := pcopy.UpdateMetaSelective(item.Dst, item.Src, item.Info, r.metaFlags()); merr != nil {
			r.addFailure(item.Src, item.Dst, merr)
			return
		}
	}

	r.stats.filesCopied.Add(1)
	r.emit(Event{
		Type:   EventExecuteItem,
		Src:    item.Src,
		Dst:    item.Dst,
		Kind:   item.Kind.String(),
		Action: r.copyAction(existed),
		Bytes:  res.BytesCopied,
	})
}

func (r *run) processSymlink(item walk.WorkItem) {
	if r.token.IsSet() {
		r.notPlaced.Add(1)
		return
	}

	if item.Escaping && r.cfg.Logger != nil {
		r.cfg.Logger.Warn("symlink escapes source root, copying verbatim: %s -> %s", item.Src, item.LinkTarget)
	}

	existed := policy.Exists(item.Dst)
	action, err := policy.Decide(r.cfg.OnConflict, item.Dst, item.Info.ModTime())
	switch action {
	case policy.ActionSkip:
		r.stats.filesSkipped.Add(1)
		r.emit(Event{Type: EventExecuteItem, Src: item.Src, Dst: item.Dst, Kind: item.Kind.String(), Action: ActionSkip})
		return
	case policy.ActionFail:
		r.addFailure(item.Src, item.Dst, err)
		return
	}

	// place.Symlink transfers the link's own times itself (lutimes);
	// UpdateMetaSelective would follow the link to its target.
	err = place.Symlink(item.Dst, item.Src, item.Info, existed, r.cfg.PreserveXattr)
	if err != nil {
		r.handlePlacementError(item, err)
		return
	}

	r.stats.symlinksCopied.Add(1)
	r.emit(Event{Type: EventExecuteItem, Src: item.Src, Dst: item.Dst, Kind: item.Kind.String(), Action: r.copyAction(existed)})
}

// handlePlacementError routes a failed placement to the right terminal
// bucket: no_space and cancelled both stop dispatch cooperatively and
// count the item as outstanding work for a future resume rather than
// as a recorded per-item Failure.
func (r *run) handlePlacementError(item walk.WorkItem, err error) {
	code := errcode.Classify(err)
	switch code {
	case errcode.NoSpace:
		r.triggerNoSpace()
		r.notPlaced.Add(1)
	case errcode.Cancelled:
		r.notPlaced.Add(1)
	default:
		r.addFailure(item.Src, item.Dst, err)
	}
}

func (r *run) copyAction(existed bool) Action {
	if !existed {
		return ActionCopy
	}
	if r.cfg.OnConflict == policy.UpdateNewer {
		return ActionUpdate
	}
	return ActionOverwrite
}
