package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/zorak1103/ncdeploy/internal/config"
	apperrors "github.com/zorak1103/ncdeploy/internal/errors"
	"github.com/zorak1103/ncdeploy/internal/execx"
	"github.com/zorak1103/ncdeploy/internal/lifecycle"
	"github.com/zorak1103/ncdeploy/internal/runtime"
	"github.com/zorak1103/ncdeploy/internal/sshx"
	"github.com/zorak1103/ncdeploy/internal/state"
)

// historyFile is where per-host deployment records live.
const historyFile = ".ncdeploy-history.json"

// requireConfig returns a user-friendly error when the settings could not
// be loaded. All settings have defaults, so this only fires on a broken
// settings file.
func requireConfig(c *config.Config) error {
	if c == nil {
		if errConfigLoad != nil {
			return fmt.Errorf("could not load settings: %w", errConfigLoad)
		}
		return fmt.Errorf("configuration not loaded")
	}
	return nil
}

// newSSHClient builds the remote channel for a target host from the loaded
// settings.
func newSSHClient(c *config.Config, host string, runner execx.Runner) *sshx.Client {
	timeout := time.Duration(c.Remote.ConnectTimeoutSeconds) * time.Second
	return sshx.NewClient(host, timeout, runner)
}

// remoteController probes the host, detects its container runtime and binds
// a lifecycle controller to it. Shared by start, stop and status.
func remoteController(ctx context.Context, c *config.Config, host string, runner execx.Runner) (*lifecycle.Controller, *sshx.Client, error) {
	client := newSSHClient(c, host, runner)
	if err := client.Probe(ctx); err != nil {
		return nil, nil, err
	}
	engine := runtime.DetectRemote(ctx, client)
	if !engine.Found() {
		return nil, nil, &apperrors.RuntimeNotFoundError{Target: host}
	}
	controller := lifecycle.NewController(c, lifecycle.NewRemoteTarget(client), engine)
	return controller, client, nil
}

// recordHistory appends a per-host record, best effort: history is
// informational and must never fail an operation.
func recordHistory(host, action, tag, runtimeName string) {
	h, err := state.Load(historyFile)
	if err != nil {
		return
	}
	h.Record(host, action, tag, runtimeName)
	_ = h.Save() // Best effort; history is informational
}
