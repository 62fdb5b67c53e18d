// meta.go - metadata preservation chain applied after placing an item
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

// cloner is one step in the metadata-preservation chain: given the
// already-placed destination path, the source path it was copied from
// and the source's normalized Info, apply one facet of metadata to the
// destination.
type cloner func(dest, src string, fi *Info) error

// MetaFlags selects which facets of metadata UpdateMetaSelective
// applies; each corresponds to one of the preserve_* Configuration
// options in the executor's operation contract.
type MetaFlags struct {
	Permissions       bool
	Timestamps        bool
	WindowsAttributes bool
	Xattr             bool
}

// UpdateMeta transfers permissions, ownership, timestamps and (if
// present) extended attributes from src's Info onto an already-placed
// dest. It is UpdateMetaSelective with every facet but xattr forced on,
// for callers that don't need to honor the executor's independent
// preserve_* toggles.
func UpdateMeta(dest, src string, fi *Info, preserveXattr bool) error {
	return UpdateMetaSelective(dest, src, fi, MetaFlags{
		Permissions:       true,
		Timestamps:        true,
		WindowsAttributes: true,
		Xattr:             preserveXattr,
	})
}

// UpdateMetaSelective is UpdateMeta with each facet independently
// toggled via flags. The order matters: we can't chmod away our own
// write permission, or chown to a uid we don't own, until after every
// other attribute has been applied - so xattr and ownership go first,
// then mode, then times, and platform attributes go last.
func UpdateMetaSelective(dest, src string, fi *Info, flags MetaFlags) error {
	chain := make([]cloner, 0, 5)

	if flags.Xattr {
		chain = append(chain, clonexattr)
	}
	chain = append(chain, chown)
	if flags.Permissions {
		chain = append(chain, chmod)
	}
	if flags.Timestamps {
		chain = append(chain, utimes)
	}
	if flags.WindowsAttributes {
		chain = append(chain, winattrs)
	}

	for _, fp := range chain {
		if err := fp(dest, src, fi); err != nil {
			return err
		}
	}
	return nil
}

// CloneSymlink recreates the symlink at src (with the same target) at
// dest, and transfers the symlink's own xattr and timestamps (not the
// target's).
func CloneSymlink(dest, src string, fi *Info, preserveXattr bool) error {
	if err := clonelink(dest, src, fi); err != nil {
		return err
	}
	if preserveXattr {
		return lclonexattr(dest, src, fi)
	}
	return nil
}

// MakeSpecial recreates a device/fifo/socket special file at dest
// using the identity captured in fi, then transfers its metadata.
func MakeSpecial(dest, src string, fi *Info, preserveXattr bool) error {
	if err := mknod(dest, src, fi); err != nil {
		return err
	}
	return UpdateMeta(dest, src, fi, preserveXattr)
}
