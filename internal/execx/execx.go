// Package execx wraps external command execution behind a small interface so
// that every component driving docker, podman, ssh or scp can be tested
// against a scripted fake.
package execx

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrNotFound indicates the requested executable is not on PATH.
var ErrNotFound = errors.New("executable not found")

// Runner defines the interface for running external commands.
// All methods accept context.Context for cancellation and timeout support.
type Runner interface {
	// Run executes a command, streaming stdout/stderr to the operator.
	Run(ctx context.Context, name string, args ...string) error
	// Output executes a command and returns its trimmed stdout.
	Output(ctx context.Context, name string, args ...string) (string, error)
	// RunDetached starts a command in the background with stdout/stderr
	// redirected to logPath and returns the process ID.
	RunDetached(ctx context.Context, logPath string, name string, args ...string) (int, error)
	// Look reports whether an executable is available on PATH.
	Look(name string) bool
}

// System is the Runner backed by os/exec.
type System struct{}

// Compile-time verification that System implements Runner
var _ Runner = (*System)(nil)

// NewRunner returns a Runner backed by os/exec.
func NewRunner() *System {
	return &System{}
}

func trace(name string, args []string) {
	logrus.Debugf("+ %s %s", name, strings.Join(args, " "))
}

// Run executes the command with stdout/stderr attached to the process.
func (s *System) Run(ctx context.Context, name string, args ...string) error {
	trace(name, args)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Output executes the command and captures stdout. Stderr is discarded unless
// the command fails, in which case it is attached to the returned *exec.ExitError.
func (s *System) Output(ctx context.Context, name string, args ...string) (string, error) {
	trace(name, args)
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	return strings.TrimSpace(string(out)), err
}

// RunDetached launches the command as its own session so it survives the
// orchestrator exiting. Output is captured to logPath for later inspection.
func (s *System) RunDetached(ctx context.Context, logPath string, name string, args ...string) (int, error) {
	trace(name, args)

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) // #nosec G304 -- logPath is derived from the local output directory
	if err != nil {
		return 0, err
	}
	// The file handle is inherited by the child; our copy can close once started.
	defer func() { _ = logFile.Close() }()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = nil
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = detachedProcAttr()

	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid

	// Reap the child in the background so it does not linger as a zombie while
	// the orchestrator is still alive.
	go func() { _ = cmd.Wait() }()

	return pid, nil
}

// Look reports whether name resolves to an executable on PATH.
func (s *System) Look(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// ProcessAlive reports whether a process with the given PID is still running.
func ProcessAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return signalAlive(proc)
}

// TailLines returns the last n lines of the reader's content. Used to surface
// the end of a captured log when a background process dies during startup.
func TailLines(r io.Reader, n int) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
