// Package sshx provides the remote command-execution and file-transfer
// channel used by every remote operation. Transport is the system ssh/scp
// binaries with non-interactive, key-based authentication only.
package sshx

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/zorak1103/ncdeploy/internal/errors"
	"github.com/zorak1103/ncdeploy/internal/execx"
)

// Client executes commands on one remote host. Created per invocation;
// the host identity never changes after construction.
type Client struct {
	host           string
	connectTimeout time.Duration
	runner         execx.Runner
}

// NewClient returns a client for the given user@host target.
func NewClient(host string, connectTimeout time.Duration, runner execx.Runner) *Client {
	return &Client{
		host:           host,
		connectTimeout: connectTimeout,
		runner:         runner,
	}
}

// Host returns the user@host target this client talks to.
func (c *Client) Host() string {
	return c.host
}

// batchArgs returns the ssh options enforcing non-interactive auth. The
// connect timeout applies to every ssh invocation, but only Probe treats it
// as the operation's overall bound.
func (c *Client) batchArgs() []string {
	return []string{
		"-o", "BatchMode=yes",
		"-o", fmt.Sprintf("ConnectTimeout=%d", int(c.connectTimeout.Seconds())),
	}
}

// Probe attempts a no-op remote command. On failure the caller must abort
// the entire operation: authentication or network misconfiguration will not
// self-resolve within a single invocation, so there is no retry.
func (c *Client) Probe(ctx context.Context) error {
	args := append(c.batchArgs(), c.host, "true")
	if err := c.runner.Run(ctx, "ssh", args...); err != nil {
		return &apperrors.ConnectivityError{Host: c.host, Err: err}
	}
	return nil
}

// Run executes a shell command on the remote host, streaming its output.
func (c *Client) Run(ctx context.Context, command string) error {
	args := append(c.batchArgs(), c.host, command)
	return c.runner.Run(ctx, "ssh", args...)
}

// Output executes a shell command on the remote host and returns its
// trimmed stdout.
func (c *Client) Output(ctx context.Context, command string) (string, error) {
	args := append(c.batchArgs(), c.host, command)
	return c.runner.Output(ctx, "ssh", args...)
}

// Push copies a local file to a path on the remote host via scp.
func (c *Client) Push(ctx context.Context, localPath, remotePath string) error {
	args := append(c.batchArgs(), localPath, c.host+":"+remotePath)
	return c.runner.Run(ctx, "scp", args...)
}

// Pull copies a remote file to a local path via scp.
func (c *Client) Pull(ctx context.Context, remotePath, localPath string) error {
	args := append(c.batchArgs(), c.host+":"+remotePath, localPath)
	return c.runner.Run(ctx, "scp", args...)
}

// HasCommand reports whether an executable resolves on the remote host.
func (c *Client) HasCommand(ctx context.Context, name string) bool {
	_, err := c.Output(ctx, "command -v "+name)
	return err == nil
}
