// Package docker provides an API client for the local Docker daemon, used
// by the local orchestrator for preflight checks and post-start
// verification when the docker engine is in play. Remote engines are always
// driven over the ssh command surface, never the API.
package docker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/zorak1103/ncdeploy/internal/runtime"
)

// Common errors
var (
	ErrConnectionFailed = errors.New("docker connection failed")
)

// Client defines the interface for local Docker daemon operations.
// All methods accept context.Context for cancellation and timeout support.
type Client interface {
	// Ping verifies the Docker daemon is accessible. Returns error if connection fails.
	Ping(ctx context.Context) error
	// Close closes the client connection and releases resources.
	Close() error
	// ContainerState resolves a container name to its typed lifecycle state.
	// A name that matches no container is StateAbsent, not an error.
	ContainerState(ctx context.Context, name string) (runtime.InstanceState, error)
}

// apiClient wraps the Docker SDK client to implement our interface.
type apiClient struct {
	cli *client.Client
}

// Compile-time verification that apiClient implements Client
var _ Client = (*apiClient)(nil)

// NewClient connects to the local Docker daemon using the environment
// configuration (DOCKER_HOST and friends).
func NewClient() (Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return &apiClient{cli: cli}, nil
}

func (c *apiClient) Ping(ctx context.Context) error {
	if _, err := c.cli.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping Docker daemon: %w", err)
	}
	return nil
}

func (c *apiClient) Close() error {
	return c.cli.Close()
}

func (c *apiClient) ContainerState(ctx context.Context, name string) (runtime.InstanceState, error) {
	containers, err := c.cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return runtime.StateAbsent, fmt.Errorf("failed to list containers: %w", err)
	}

	for _, ctr := range containers {
		for _, ctrName := range ctr.Names {
			if strings.TrimPrefix(ctrName, "/") == name {
				return runtime.ParseState(ctr.State), nil
			}
		}
	}
	return runtime.StateAbsent, nil
}
