// Package apperrors provides domain-specific error types for ncdeploy.
// These error types include contextual information to aid the operator:
// which host failed, which precondition was violated, and what to do next.
package apperrors

import "fmt"

// ConnectivityError represents an unreachable remote host or a missing
// required local tool. Connectivity errors abort the whole operation before
// any remote state is touched; they are never retried.
type ConnectivityError struct {
	Host string // Remote target (user@host), empty for local tool failures
	Tool string // Missing local tool, empty for unreachable hosts
	Err  error  // Underlying error
}

// Error implements the error interface for ConnectivityError.
func (e *ConnectivityError) Error() string {
	if e.Tool != "" {
		return fmt.Sprintf("required tool %q not found: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("cannot reach %s: %v", e.Host, e.Err)
}

// Unwrap returns the underlying error for error wrapping chains.
func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// RuntimeNotFoundError indicates that neither supported container engine
// (podman, docker) is available on the target.
type RuntimeNotFoundError struct {
	Target string // "local" or the remote host
}

// Error implements the error interface for RuntimeNotFoundError.
func (e *RuntimeNotFoundError) Error() string {
	return fmt.Sprintf("no supported container runtime (podman or docker) found on %s", e.Target)
}

// PreconditionError represents a violated operation precondition: a missing
// local path, an instance that must be running but is not, or a start against
// an instance that was never deployed. Hint carries the corrective action.
type PreconditionError struct {
	Op   string // Operation that was rejected (e.g. "import-data", "start")
	Hint string // Corrective suggestion for the operator
	Err  error  // Underlying error, may be nil
}

// Error implements the error interface for PreconditionError.
func (e *PreconditionError) Error() string {
	msg := fmt.Sprintf("%s rejected", e.Op)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Hint != "" {
		msg = fmt.Sprintf("%s\n\n💡 %s", msg, e.Hint)
	}
	return msg
}

// Unwrap returns the underlying error for error wrapping chains.
func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// VerificationError indicates that a lifecycle transition completed but the
// follow-up status read did not observe the expected state. There is no
// automatic retry; Hint tells the operator how to inspect the instance.
type VerificationError struct {
	Container string // Container name
	State     string // State actually observed
	Hint      string // Diagnostic suggestion (e.g. how to read logs)
}

// Error implements the error interface for VerificationError.
func (e *VerificationError) Error() string {
	msg := fmt.Sprintf("container %s is not running (state: %s)", e.Container, e.State)
	if e.Hint != "" {
		msg = fmt.Sprintf("%s\n\n💡 %s", msg, e.Hint)
	}
	return msg
}
