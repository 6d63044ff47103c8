package util

import (
	"os/exec"
)

// RunCommandFn is the function used to execute external commands.
// It is a var so tests can replace it without spawning real processes.
var RunCommandFn = runCommandImpl

func runCommandImpl(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}
