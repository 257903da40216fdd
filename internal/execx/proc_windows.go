//go:build windows

package execx

import (
	"os"
	"syscall"
)

func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

func signalAlive(proc *os.Process) bool {
	// Signal(0) is not supported on Windows; FindProcess succeeding is the
	// best liveness approximation available without extra syscalls.
	return proc != nil
}
