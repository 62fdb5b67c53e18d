// info_windows.go - BY_HANDLE_FILE_INFORMATION to Info for windows
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

//go:build windows

package pcopy

import (
	"io/fs"
	"os"
	"time"

	"golang.org/x/sys/windows"
)

// Windows file-attribute bits (hidden, system, archive, readonly) that
// have no POSIX mode-bit equivalent. Stored in Info.WinAttr and
// preserved across a copy by meta_windows.go.
const (
	AttrReadonly = uint32(windows.FILE_ATTRIBUTE_READONLY)
	AttrHidden   = uint32(windows.FILE_ATTRIBUTE_HIDDEN)
	AttrSystem   = uint32(windows.FILE_ATTRIBUTE_SYSTEM)
	AttrArchive  = uint32(windows.FILE_ATTRIBUTE_ARCHIVE)
)

func statInto(nm string, fi *Info) error {
	return winStat(nm, fi, false)
}

func lstatInto(nm string, fi *Info) error {
	return winStat(nm, fi, true)
}

// winStat populates fi by opening nm with a backup-semantics handle and
// calling GetFileInformationByHandle; (Dev, Ino) are synthesized from
// the volume serial number and 64-bit file index, which together
// identify a file uniquely on NTFS/ReFS the way (st_dev, st_ino) does
// on POSIX.
func winStat(nm string, fi *Info, lstat bool) error {
	fi2, err := os.Lstat(nm)
	if err != nil {
		return &PathError{Op: "stat", Path: nm, Err: err}
	}

	flags := uint32(windows.FILE_FLAG_BACKUP_SEMANTICS)
	if lstat || fi2.Mode()&fs.ModeSymlink != 0 {
		flags |= windows.FILE_FLAG_OPEN_REPARSE_POINT
	}

	p, err := windows.UTF16PtrFromString(nm)
	if err != nil {
		return &PathError{Op: "stat", Path: nm, Err: err}
	}

	h, err := windows.CreateFile(p,
		windows.GENERIC_READ, windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil, windows.OPEN_EXISTING, flags, 0)
	if err != nil {
		return &PathError{Op: "stat", Path: nm, Err: err}
	}
	defer windows.CloseHandle(h)

	var d windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(h, &d); err != nil {
		return &PathError{Op: "stat", Path: nm, Err: err}
	}

	fi.Dev = uint64(d.VolumeSerialNumber)
	fi.Ino = uint64(d.FileIndexHigh)<<32 | uint64(d.FileIndexLow)
	fi.Siz = int64(uint64(d.FileSizeHigh)<<32 | uint64(d.FileSizeLow))
	fi.Nlink = d.NumberOfLinks

	fi.Mod = fi2.Mode().Perm()
	if fi2.IsDir() {
		fi.Mod |= fs.ModeDir
	}
	if fi2.Mode()&fs.ModeSymlink != 0 {
		fi.Mod |= fs.ModeSymlink
	}

	fi.Atim = time.Unix(0, d.LastAccessTime.Nanoseconds())
	fi.Mtim = time.Unix(0, d.LastWriteTime.Nanoseconds())
	fi.Ctim = time.Unix(0, d.CreationTime.Nanoseconds())

	fi.WinAttr = d.FileAttributes
	fi.Xattr = nil
	return nil
}
