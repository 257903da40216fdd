// Package lifecycle drives a named container instance through its state
// machine: absent, stopped, running. Every transition that mutates engine
// state is followed by a verification read before it is reported complete,
// and repeated invocations converge instead of erroring.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/zorak1103/ncdeploy/internal/config"
	apperrors "github.com/zorak1103/ncdeploy/internal/errors"
	"github.com/zorak1103/ncdeploy/internal/runtime"
)

// Outcome reports what a transition did.
type Outcome struct {
	// State is the instance state verified after the transition.
	State runtime.InstanceState
	// Changed is false for idempotent no-ops (start when already running,
	// stop when nothing exists).
	Changed bool
	// Note carries the informational message for no-op outcomes.
	Note string
}

// Controller applies lifecycle transitions to one named instance on one
// target, using one fixed engine.
type Controller struct {
	cfg    *config.Config
	target Target
	engine runtime.Engine
}

// NewController binds a controller to a target and a detected engine.
func NewController(cfg *config.Config, target Target, engine runtime.Engine) *Controller {
	return &Controller{cfg: cfg, target: target, engine: engine}
}

// Engine returns the engine this controller drives.
func (c *Controller) Engine() runtime.Engine {
	return c.engine
}

// Status reads the instance's current state. A failing inspect means the
// instance does not exist; the engine's free-form status text is never
// matched as a substring.
func (c *Controller) Status(ctx context.Context) runtime.InstanceState {
	out, err := c.target.EngineOutput(ctx, c.engine,
		"container", "inspect", "-f", "{{.State.Status}}", c.cfg.Container.Name)
	if err != nil {
		return runtime.StateAbsent
	}
	return runtime.ParseState(out)
}

// Start transitions a stopped instance to running. Idempotent: an already
// running instance is success with no action. A missing instance is a
// precondition failure pointing the operator at deploy; nothing is created
// implicitly.
func (c *Controller) Start(ctx context.Context) (Outcome, error) {
	switch state := c.Status(ctx); state {
	case runtime.StateRunning:
		return Outcome{State: state, Note: "already running"}, nil
	case runtime.StateAbsent:
		return Outcome{State: state}, &apperrors.PreconditionError{
			Op:   "start",
			Err:  fmt.Errorf("container %s does not exist on %s", c.cfg.Container.Name, c.target.Describe()),
			Hint: fmt.Sprintf("Run 'ncdeploy deploy %s' first", c.target.Describe()),
		}
	default:
		if err := c.target.RunEngine(ctx, c.engine, "start", c.cfg.Container.Name); err != nil {
			return Outcome{State: state}, fmt.Errorf("failed to start container %s on %s: %w",
				c.cfg.Container.Name, c.target.Describe(), err)
		}
		return c.verifyRunning(ctx)
	}
}

// Stop transitions a running instance to stopped. Idempotent: a missing
// instance is "nothing to stop", an already stopped one is success.
func (c *Controller) Stop(ctx context.Context) (Outcome, error) {
	switch state := c.Status(ctx); state {
	case runtime.StateAbsent:
		return Outcome{State: state, Note: "nothing to stop"}, nil
	case runtime.StateStopped:
		return Outcome{State: state, Note: "already stopped"}, nil
	default:
		if err := c.target.RunEngine(ctx, c.engine, "stop", c.cfg.Container.Name); err != nil {
			return Outcome{State: state}, fmt.Errorf("failed to stop container %s on %s: %w",
				c.cfg.Container.Name, c.target.Describe(), err)
		}
		if verified := c.Status(ctx); verified == runtime.StateRunning || verified == runtime.StateRestarting {
			return Outcome{State: verified}, &apperrors.VerificationError{
				Container: c.cfg.Container.Name,
				State:     string(verified),
				Hint:      "Inspect it with: " + c.target.CommandHint(fmt.Sprintf("%s ps -a", c.engine)),
			}
		}
		return Outcome{State: runtime.StateStopped, Changed: true}, nil
	}
}

// Remove tears down any existing instance so a replacement can be created
// under the same name. Absence is not an error; the stop is best-effort
// since an already-exited container still needs the rm.
func (c *Controller) Remove(ctx context.Context) error {
	if c.Status(ctx) == runtime.StateAbsent {
		return nil
	}
	_ = c.target.RunEngine(ctx, c.engine, "stop", c.cfg.Container.Name) // best effort, may already be stopped
	if err := c.target.RunEngine(ctx, c.engine, "rm", c.cfg.Container.Name); err != nil {
		return fmt.Errorf("failed to remove container %s on %s: %w",
			c.cfg.Container.Name, c.target.Describe(), err)
	}
	return nil
}

// Run creates and starts a fresh instance from the given image tag with the
// fixed run contract: published port, read-only config mount, read-write
// output mount, restart-unless-stopped.
func (c *Controller) Run(ctx context.Context, tag string) (Outcome, error) {
	args := []string{
		"run", "-d",
		"--name", c.cfg.Container.Name,
		"--restart", "unless-stopped",
		"-p", fmt.Sprintf("%d:%d", c.cfg.Container.HostPort, c.cfg.Container.ContainerPort),
		"-v", c.cfg.RemotePath("config", "config.yaml") + ":/app/config/config.yaml:ro",
		"-v", c.cfg.RemotePath("output") + ":/app/output",
		c.cfg.ImageRef(tag),
	}
	if err := c.target.RunEngine(ctx, c.engine, args...); err != nil {
		return Outcome{}, fmt.Errorf("failed to run container %s on %s: %w",
			c.cfg.Container.Name, c.target.Describe(), err)
	}
	return c.verifyRunning(ctx)
}

// verifyRunning is the post-transition verification read. Failure is
// reported with a diagnostic hint instead of an automatic retry.
func (c *Controller) verifyRunning(ctx context.Context) (Outcome, error) {
	state := c.Status(ctx)
	if state != runtime.StateRunning {
		return Outcome{State: state}, &apperrors.VerificationError{
			Container: c.cfg.Container.Name,
			State:     string(state),
			Hint: "Check logs with: " + c.target.CommandHint(
				fmt.Sprintf("%s logs %s", c.engine, c.cfg.Container.Name)),
		}
	}
	return Outcome{State: state, Changed: true}, nil
}
