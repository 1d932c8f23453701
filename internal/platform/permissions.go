package platform

import (
	"fmt"
	"os"
	"runtime"
)

// PrivateMode is the mode expected for files holding secrets.
const PrivateMode os.FileMode = 0o600

// Chmod sets file permissions. On Windows this is a no-op because Windows
// does not support Unix-style permission bits.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// IsPrivate reports whether path is readable only by its owner. It returns
// the current permission bits alongside. On Windows every file is reported
// as private.
func IsPrivate(path string) (bool, os.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, 0, fmt.Errorf("stat %s: %w", path, err)
	}
	perm := info.Mode().Perm()
	if runtime.GOOS == "windows" {
		return true, perm, nil
	}
	return perm&0o077 == 0, perm, nil
}
