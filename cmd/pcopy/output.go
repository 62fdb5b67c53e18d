// output.go - the three --output formatters: human, json, jsonl.
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
	"io"

	"github.com/goccy/go-json"
	"github.com/opencoff/go-utils"
	"github.com/opencoff/pcopy/xfer"
)

// formatter receives every plan_item/execute_item event as it is
// produced and the single terminal outcome at the end of a job.
// Implementations must be safe for concurrent calls to event, since
// Copy invokes VerboseHandler from worker goroutines.
type formatter interface {
	event(xfer.Event)
	outcome(xfer.Outcome)
}

func newFormatter(kind string, w io.Writer) (formatter, error) {
	switch kind {
	case "", "human":
		return &humanFormatter{w: w}, nil
	case "json":
		return &jsonFormatter{w: w}, nil
	case "jsonl":
		return &jsonFormatter{w: w, line: true}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want human, json or jsonl)", kind)
	}
}

// humanFormatter prints one line per item and a summary line per job;
// Event and Outcome methods never run concurrently with each other
// within a single job, but event() itself must tolerate concurrent
// workers, so it writes with a single Fprintf call per line.
type humanFormatter struct {
	w io.Writer
}

func (f *humanFormatter) event(e xfer.Event) {
	switch e.Type {
	case xfer.EventExecuteItem, xfer.EventPlanItem:
		if e.Action == xfer.ActionFail {
			fmt.Fprintf(f.w, "FAIL   %-8s %s (%s)\n", e.Kind, e.Src, e.Error)
			return
		}
		fmt.Fprintf(f.w, "%-6s %-8s %s\n", actionVerb(e.Action), e.Kind, e.Src)
	}
}

func actionVerb(a xfer.Action) string {
	switch a {
	case xfer.ActionCopy:
		return "copy"
	case xfer.ActionSkip:
		return "skip"
	case xfer.ActionOverwrite:
		return "replace"
	case xfer.ActionUpdate:
		return "update"
	default:
		return string(a)
	}
}

func (f *humanFormatter) outcome(o xfer.Outcome) {
	s := o.Stats
	fmt.Fprintf(f.w, "%s: copied=%d skipped=%d dirs=%d symlinks=%d bytes=%s errors=%d in %s\n",
		o.Kind, s.FilesCopied, s.FilesSkipped, s.DirsCreated, s.SymlinksCopied,
		utils.HumanizeSize(uint64(s.BytesCopied)), s.Errors, s.Duration)

	if o.Kind == xfer.NoSpace {
		fmt.Fprintf(f.w, "  %d item(s) not placed; re-run once space is available\n", o.Remaining)
	}
	for _, fl := range o.Failures {
		fmt.Fprintf(f.w, "  %s: %s [%s]\n", fl.Src, fl.Err, fl.Code)
	}
	if o.Kind == xfer.TerminalError {
		fmt.Fprintf(f.w, "  %s\n", o.Err)
	}
}

// outcomeSummary is the JSON-serializable shape of the terminal
// per-job outcome line; Outcome itself carries an error interface and
// a Code enum that don't marshal on their own.
type outcomeSummary struct {
	Kind           string `json:"kind"`
	FilesCopied    int64  `json:"files_copied"`
	FilesSkipped   int64  `json:"files_skipped"`
	DirsCreated    int64  `json:"dirs_created"`
	SymlinksCopied int64  `json:"symlinks_copied"`
	BytesCopied    int64  `json:"bytes_copied"`
	Errors         int64  `json:"errors"`
	DurationMs     int64  `json:"duration_ms"`
	Remaining      int    `json:"remaining,omitempty"`
	Error          string `json:"error,omitempty"`
}

type jsonFormatter struct {
	w    io.Writer
	line bool
}

func (f *jsonFormatter) event(e xfer.Event) {
	var b []byte
	var err error
	if f.line {
		b, err = e.JSONLine()
	} else {
		if b, err = e.JSON(); err == nil {
			b = append(b, '\n')
		}
	}
	if err == nil {
		f.w.Write(b)
	}
}

func (f *jsonFormatter) outcome(o xfer.Outcome) {
	sum := outcomeSummary{
		Kind:           o.Kind.String(),
		FilesCopied:    o.Stats.FilesCopied,
		FilesSkipped:   o.Stats.FilesSkipped,
		DirsCreated:    o.Stats.DirsCreated,
		SymlinksCopied: o.Stats.SymlinksCopied,
		BytesCopied:    o.Stats.BytesCopied,
		Errors:         o.Stats.Errors,
		DurationMs:     o.Stats.Duration.Milliseconds(),
		Remaining:      o.Remaining,
	}
	if o.Err != nil {
		sum.Error = o.Err.Error()
	}
	b, err := json.Marshal(sum)
	if err != nil {
		return
	}
	if f.line {
		b = append(b, '\n')
	}
	f.w.Write(b)
}
