// plan.go - the dry-run planner contract: the same walk+policy decisions
// Copy would reach, delivered as plan_item events, with no filesystem
// mutation beyond the stat calls policy.Decide and policy.CheckDir
// already make to read destination state.
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
	"github.com/opencoff/pcopy/errcode"
	"github.com/opencoff/pcopy/policy"
	"github.com/opencoff/pcopy/walk"
)

// Plan walks source and reports, via cfg.VerboseHandler, exactly the
// action Copy would take for every item - without ever calling
// place.File, place.Symlink or place.Directory. Destination metadata is
// still read (a directory-exists check, a conflict-policy stat) since
// the planner contract is a dry run of decisions, not of reads. Plan
// returns the first traversal error that aborted the walk, if any; it
// otherwise returns nil with every per-item outcome already delivered as
// an event.
func Plan(source, destination string, opts ...Option) error {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.VerboseHandler != nil {
		ec := cfg.Effective()
		cfg.VerboseHandler(Event{Type: EventEffectiveConfig, Config: &ec})
	}

	walkOpt := walk.Options{
		MaxDepth:              cfg.MaxDepth,
		BlockEscapingSymlinks: cfg.BlockEscapingSymlinks,
		OnError: func(e *walk.Error) {
			emitPlan(cfg, e.Path, "", "", ActionFail, errcode.Classify(e).String())
		},
	}

	return walk.Walk(source, destination, walkOpt, func(item walk.WorkItem) error {
		planItem(cfg, item)
		return nil
	})
}

func planItem(cfg Configuration, item walk.WorkItem) {
	if item.Kind == walk.KindDir {
		if err := policy.CheckDir(item.Dst); err != nil {
			emitPlan(cfg, item.Src, item.Dst, item.Kind.String(), ActionFail, errcode.Classify(err).String())
			return
		}
		emitPlan(cfg, item.Src, item.Dst, item.Kind.String(), ActionCopy, "")
		return
	}

	action, err := policy.Decide(cfg.OnConflict, item.Dst, item.Info.ModTime())
	switch action {
	case policy.ActionSkip:
		emitPlan(cfg, item.Src, item.Dst, item.Kind.String(), ActionSkip, "")
	case policy.ActionFail:
		emitPlan(cfg, item.Src, item.Dst, item.Kind.String(), ActionFail, errcode.Classify(err).String())
	default:
		emitPlan(cfg, item.Src, item.Dst, item.Kind.String(), planCopyAction(cfg.OnConflict, item.Dst), "")
	}
}

func planCopyAction(mode policy.Mode, dst string) Action {
	if !policy.Exists(dst) {
		return ActionCopy
	}
	if mode == policy.UpdateNewer {
		return ActionUpdate
	}
	return ActionOverwrite
}

func emitPlan(cfg Configuration, src, dst, kind string, action Action, code string) {
	if cfg.VerboseHandler == nil {
		return
	}
	cfg.VerboseHandler(Event{
		Type:   EventPlanItem,
		Src:    src,
		Dst:    dst,
		Kind:   kind,
		Action: action,
		Error:  code,
	})
}
