//go:build !windows

package platform

import "golang.org/x/sys/unix"

// CheckAccess reports whether the current user can read, write and enter
// dir.
func CheckAccess(dir string) error {
	return unix.Access(dir, unix.R_OK|unix.W_OK|unix.X_OK)
}
