//go:build unix

package util

import (
	"os"

	"golang.org/x/sys/unix"
)

// ClearReadOnly adds the owner write bit when the file is not writable.
func ClearReadOnly(path string) error {
	if err := unix.Access(path, unix.W_OK); err == nil {
		return nil
	}
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	if st.Mode().Perm()&0o200 != 0 {
		// writable by owner already, someone else holds it
		return nil
	}
	return os.Chmod(path, st.Mode().Perm()|0o200)
}
