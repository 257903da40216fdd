//go:build !windows

package execx

import (
	"os"
	"syscall"
)

func detachedProcAttr() *syscall.SysProcAttr {
	// New session: the background payload must not die with our terminal.
	return &syscall.SysProcAttr{Setsid: true}
}

func signalAlive(proc *os.Process) bool {
	return proc.Signal(syscall.Signal(0)) == nil
}
