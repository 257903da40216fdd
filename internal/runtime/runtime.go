// Package runtime discovers which container engine is usable on a target and
// models instance state as a typed enum instead of matching status text.
package runtime

import (
	"context"
	"strings"

	"github.com/zorak1103/ncdeploy/internal/execx"
	"github.com/zorak1103/ncdeploy/internal/sshx"
)

// Engine identifies a supported container engine. The zero value means no
// engine was found; callers decide whether that is fatal.
type Engine string

// Supported engines. Podman is preferred over docker when both are present.
const (
	EngineNone   Engine = ""
	EnginePodman Engine = "podman"
	EngineDocker Engine = "docker"
)

// Found reports whether a usable engine was detected.
func (e Engine) Found() bool {
	return e != EngineNone
}

// String returns the engine binary name, or "none".
func (e Engine) String() string {
	if e == EngineNone {
		return "none"
	}
	return string(e)
}

// DetectLocal probes the local PATH for a container engine. Read-only;
// selection is fixed for the duration of one operation.
func DetectLocal(runner execx.Runner) Engine {
	if runner.Look(string(EnginePodman)) {
		return EnginePodman
	}
	if runner.Look(string(EngineDocker)) {
		return EngineDocker
	}
	return EngineNone
}

// DetectRemote probes a remote host for a container engine over the
// execution channel. Read-only; podman wins when both engines are present.
func DetectRemote(ctx context.Context, client *sshx.Client) Engine {
	if client.HasCommand(ctx, string(EnginePodman)) {
		return EnginePodman
	}
	if client.HasCommand(ctx, string(EngineDocker)) {
		return EngineDocker
	}
	return EngineNone
}

// InstanceState is the lifecycle state of a named container instance.
type InstanceState string

// Instance states. Restarting is distinguished from Running so a
// crash-looping instance is not reported healthy.
const (
	StateAbsent     InstanceState = "absent"
	StateStopped    InstanceState = "stopped"
	StateRunning    InstanceState = "running"
	StateRestarting InstanceState = "restarting"
)

// ParseState maps an engine's `inspect -f {{.State.Status}}` output onto the
// typed state enum. Both docker and podman report the same status vocabulary
// for the states we care about.
func ParseState(status string) InstanceState {
	switch strings.TrimSpace(strings.ToLower(status)) {
	case "running":
		return StateRunning
	case "restarting":
		return StateRestarting
	case "created", "paused", "exited", "dead", "stopped", "stopping":
		return StateStopped
	default:
		return StateStopped
	}
}
