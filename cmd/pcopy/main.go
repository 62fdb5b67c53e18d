// main.go - thin CLI front end over the xfer library: flag parsing,
// profile resolution, signal handling and output formatting. None of
// the copy semantics live here - this file only assembles xfer.Options
// and hands them to xfer.Copy/xfer.Plan.
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
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/opencoff/go-logger"
	flag "github.com/opencoff/pflag"

	"github.com/opencoff/pcopy/policy"
	"github.com/opencoff/pcopy/xfer"
)

var Z = filepath.Base(os.Args[0])

func main() {
	var help, plan, blockEscaping, verbose bool
	var noFsync, noReflink bool
	var noPreservePerms, noPreserveTimes, noPreserveWin, preserveXattr bool
	var profile, onConflict, output string
	var parallel, maxDepth int

	fs := flag.NewFlagSet(Z, flag.ExitOnError)

	fs.BoolVarP(&help, "help", "h", false, "Show help and exit [False]")
	fs.StringVarP(&profile, "profile", "", "modern", "Use `P` as the preset profile: modern, safe or fast")
	fs.BoolVarP(&plan, "plan", "", false, "Print the copy plan; mutate nothing [False]")
	fs.BoolVarP(&plan, "dry-run", "", false, "Alias for --plan [False]")
	fs.StringVarP(&output, "output", "o", "human", "Use `F` as the output format: human, json or jsonl")
	fs.IntVarP(&parallel, "parallel", "j", 0, "Use `N` worker goroutines [profile default]")
	fs.StringVarP(&onConflict, "on-conflict", "", "", "Conflict `M`ode: skip, overwrite, update-newer or error [profile default]")
	fs.IntVarP(&maxDepth, "max-depth", "", 0, "Limit traversal to `N` directory levels [unlimited]")
	fs.BoolVarP(&blockEscaping, "block-escaping-symlinks", "", false, "Reject symlinks whose target escapes the source root [False]")
	fs.BoolVarP(&noFsync, "no-fsync", "", false, "Skip fsync before rename [False]")
	fs.BoolVarP(&noReflink, "no-reflink", "", false, "Disable the copy-on-write fast path [False]")
	fs.BoolVarP(&noPreservePerms, "no-preserve-permissions", "", false, "Don't copy mode bits [False]")
	fs.BoolVarP(&noPreserveTimes, "no-preserve-timestamps", "", false, "Don't copy mtime/atime [False]")
	fs.BoolVarP(&noPreserveWin, "no-preserve-windows-attributes", "", false, "Don't copy Windows attribute bits [False]")
	fs.BoolVarP(&preserveXattr, "preserve-xattr", "", false, "Copy extended attributes [False]")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stdout [False]")

	fs.SetOutput(os.Stdout)

	if err := fs.Parse(os.Args[1:]); err != nil {
		die(2, "%s", err)
	}

	if help {
		usage(fs)
	}

	args := fs.Args()
	if len(args) < 2 {
		die(2, "Usage: %s [options] SRC DST\n       %s [options] SRC... DIR", Z, Z)
	}

	jobs, err := resolveJobs(args)
	if err != nil {
		die(2, "%s", err)
	}

	opts, err := profileOptions(profile)
	if err != nil {
		die(2, "%s", err)
	}

	if parallel > 0 {
		opts = append(opts, xfer.WithParallel(parallel))
	}
	if onConflict != "" {
		mode, merr := policy.ParseMode(onConflict)
		if merr != nil {
			die(2, "%s", merr)
		}
		opts = append(opts, xfer.WithConflictMode(mode))
	}
	if maxDepth > 0 {
		opts = append(opts, xfer.WithMaxDepth(maxDepth))
	}
	if blockEscaping {
		opts = append(opts, xfer.WithBlockEscapingSymlinks(true))
	}
	if noFsync {
		opts = append(opts, xfer.WithFsync(false))
	}
	if noReflink {
		opts = append(opts, xfer.WithReflink(false))
	}
	if noPreservePerms {
		opts = append(opts, xfer.WithPreservePermissions(false))
	}
	if noPreserveTimes {
		opts = append(opts, xfer.WithPreserveTimestamps(false))
	}
	if noPreserveWin {
		opts = append(opts, xfer.WithPreserveWindowsAttributes(false))
	}
	if preserveXattr {
		opts = append(opts, xfer.WithPreserveXattr(true))
	}

	fm, err := newFormatter(output, os.Stdout)
	if err != nil {
		die(2, "%s", err)
	}

	var log logger.Logger
	if verbose {
		l, lerr := logger.NewLogger("STDOUT", logger.LOG_DEBUG, Z, logger.Ldate|logger.Ltime|logger.Lmicroseconds)
		if lerr != nil {
			die(1, "logger: %s", lerr)
		}
		log = l
		defer log.Close()
	}

	token := xfer.NewCancelToken()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigch
		token.Cancel()
	}()

	opts = append(opts, xfer.WithCancelToken(token), xfer.WithVerboseHandler(fm.event))
	if log != nil {
		opts = append(opts, xfer.WithLogger(log))
	}

	if plan {
		runPlan(jobs, opts)
		return
	}

	os.Exit(runCopy(jobs, opts, fm))
}

// runPlan prints the decision stream for every job and never mutates
// the filesystem; a traversal error from any job is reported but does
// not stop the remaining jobs from being planned.
func runPlan(jobs []job, opts []xfer.Option) {
	var failed bool
	for _, j := range jobs {
		if err := xfer.Plan(j.src, j.dst, opts...); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s: %s\n", Z, j.src, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// runCopy runs every job in sequence and returns the process exit code:
// 130 if any job was cancelled, 1 if any job ended in a non-success,
// non-cancelled outcome, 0 otherwise.
func runCopy(jobs []job, opts []xfer.Option, fm formatter) int {
	exit := 0
	for _, j := range jobs {
		o := xfer.Copy(j.src, j.dst, opts...)
		fm.outcome(o)
		switch o.Kind {
		case xfer.Cancelled:
			return 130
		case xfer.TerminalError, xfer.PartialCopy, xfer.NoSpace:
			exit = 1
		}
	}
	return exit
}

type job struct {
	src, dst string
}

// resolveJobs expands the CLI's two positional shapes into one (src,
// dst) pair per source: a plain "SRC DST" pair is copied as-is; three
// or more arguments are treated as "SRC... DIR", with the final
// argument required to already be a directory and every source copied
// into it under its own basename.
func resolveJobs(args []string) ([]job, error) {
	if len(args) == 2 {
		return []job{{src: args[0], dst: args[1]}}, nil
	}

	dir := args[len(args)-1]
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%s: must already exist and be a directory when copying multiple sources", dir)
	}

	srcs := args[:len(args)-1]
	jobs := make([]job, 0, len(srcs))
	for _, s := range srcs {
		jobs = append(jobs, job{src: s, dst: filepath.Join(dir, filepath.Base(filepath.Clean(s)))})
	}
	return jobs, nil
}

func usage(fs *flag.FlagSet) {
	fmt.Printf(usageStr, Z, Z, Z)
	fs.PrintDefaults()
	os.Exit(0)
}

func die(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s: "+format+"\n", append([]any{Z}, args...)...)
	os.Exit(code)
}

var usageStr = `%s - a parallel, crash-safe, resumable file-tree copier.

Usage: %s [options] SRC DST
       %s [options] SRC... DIR

Options:
`
