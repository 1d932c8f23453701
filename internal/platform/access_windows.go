//go:build windows

package platform

import "os"

// CheckAccess reports whether the current user can create files in dir.
func CheckAccess(dir string) error {
	f, err := os.CreateTemp(dir, ".rdmoctl-access-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
