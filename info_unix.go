// info_unix.go - unix stat(2)/lstat(2) plumbing shared by all unix platforms
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

//go:build unix

package pcopy

import (
	"syscall"
	"time"
)

// platform-specific constructor, one of info_linux.go or info_darbsd.go
// func makeInfo(fi *Info, st *syscall.Stat_t)

func statInto(nm string, fi *Info) error {
	var st syscall.Stat_t

	if err := syscall.Stat(nm, &st); err != nil {
		return &PathError{Op: "stat", Path: nm, Err: err}
	}
	makeInfo(fi, &st)
	return nil
}

func lstatInto(nm string, fi *Info) error {
	var st syscall.Stat_t

	if err := syscall.Lstat(nm, &st); err != nil {
		return &PathError{Op: "lstat", Path: nm, Err: err}
	}
	makeInfo(fi, &st)
	return nil
}

func ts2time(a syscall.Timespec) time.Time {
	return time.Unix(int64(a.Sec), int64(a.Nsec))
}
