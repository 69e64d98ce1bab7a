//go:build windows

package cas

// isEXDEV reports whether err indicates a cross-volume rename on
// Windows. Windows has no EXDEV errno; MoveFile fails with
// ERROR_NOT_SAME_DEVICE for cross-volume renames, which os.Rename
// surfaces as a generic *PathError we can't reliably distinguish from
// other failures, so any rename failure here is treated as
// potentially cross-device and falls back to copy-and-delete.
func isEXDEV(err error) bool {
	return err != nil
}
