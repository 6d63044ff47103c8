package selector

import (
	"errors"
	"fmt"
)

// ErrMissingPrerequisite marks failures the switch cannot recover from on its own:
// the client installation has to be repaired first. Callers abort on it.
var ErrMissingPrerequisite = errors.New("missing prerequisite")

var (
	// ErrBackupMissing is returned when reverting without a native library backup.
	ErrBackupMissing = fmt.Errorf("%w: native library backup does not exist", ErrMissingPrerequisite)

	// ErrNativeLibraryMissing is returned when the client's native library is not installed.
	ErrNativeLibraryMissing = fmt.Errorf("%w: native library is not installed", ErrMissingPrerequisite)
)

// HostsWriteError reports a hosts-like file that could not be rewritten.
// Almost always antivirus software or a locked file.
type HostsWriteError struct {
	Path string
	Err  error
}

func (e *HostsWriteError) Error() string {
	return fmt.Sprintf("cannot modify %q file to redirect to server, check your antivirus software", e.Path)
}

func (e *HostsWriteError) Unwrap() error { return e.Err }
