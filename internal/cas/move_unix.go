//go:build !windows

package cas

import (
	"errors"
	"syscall"
)

// isEXDEV reports whether err is the kernel's "invalid cross-device
// link" errno, the signal that os.Rename needs a copy-and-delete
// fallback because src and dest live on different filesystems.
func isEXDEV(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
