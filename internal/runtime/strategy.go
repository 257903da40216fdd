package runtime

import (
	"context"

	"github.com/zorak1103/ncdeploy/internal/execx"
)

// Strategy is the execution strategy chosen for a local run.
type Strategy string

// Local strategies, in strict preference order.
const (
	StrategyComposePodman     Strategy = "compose-podman"
	StrategyComposeDocker     Strategy = "compose-docker"
	StrategyComposeStandalone Strategy = "compose-standalone"
	StrategyHost              Strategy = "host"
)

// ComposeCommand returns the composition command argv prefix for a compose
// strategy, or nil for host mode.
func (s Strategy) ComposeCommand() []string {
	switch s {
	case StrategyComposePodman:
		return []string{"podman-compose"}
	case StrategyComposeDocker:
		return []string{"docker", "compose"}
	case StrategyComposeStandalone:
		return []string{"docker-compose"}
	default:
		return nil
	}
}

// Engine returns the container engine a compose strategy is bound to.
// The standalone compose binary drives whatever docker daemon it finds;
// host mode has no engine.
func (s Strategy) Engine() Engine {
	switch s {
	case StrategyComposePodman:
		return EnginePodman
	case StrategyComposeDocker, StrategyComposeStandalone:
		return EngineDocker
	default:
		return EngineNone
	}
}

// DetectStrategy selects the local execution strategy: podman with its
// compose companion, docker with a working compose plugin, the standalone
// docker-compose binary, then direct host execution. forceHost skips every
// container-based strategy.
func DetectStrategy(ctx context.Context, runner execx.Runner, forceHost bool) Strategy {
	if forceHost {
		return StrategyHost
	}
	if runner.Look("podman") && runner.Look("podman-compose") {
		return StrategyComposePodman
	}
	// The compose plugin ships separately from the docker binary; a bare
	// docker install must fall through to the standalone ladder rung.
	if runner.Look("docker") && runner.Run(ctx, "docker", "compose", "version") == nil {
		return StrategyComposeDocker
	}
	if runner.Look("docker-compose") {
		return StrategyComposeStandalone
	}
	return StrategyHost
}
