// Package local runs the payload on the workstation without any remote
// host, picking the best available execution strategy: podman composition,
// docker composition, the standalone compose binary, or a direct host
// process when no container engine is usable.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/zorak1103/ncdeploy/internal/compose"
	"github.com/zorak1103/ncdeploy/internal/config"
	"github.com/zorak1103/ncdeploy/internal/docker"
	apperrors "github.com/zorak1103/ncdeploy/internal/errors"
	"github.com/zorak1103/ncdeploy/internal/execx"
	"github.com/zorak1103/ncdeploy/internal/lifecycle"
	"github.com/zorak1103/ncdeploy/internal/runtime"
	"github.com/zorak1103/ncdeploy/internal/templates"
)

// DatabaseURLEnv is honored as an override for the payload's database
// connection string; this tool constructs or passes it through, never
// parses it beyond credential extraction.
const DatabaseURLEnv = "NEWSCOLLECTOR_DATABASE_URL"

// serverLogName is the captured log of the host-mode background process.
const serverLogName = "local-server.log"

// Options control a local run.
type Options struct {
	// WithDB provisions a local database engine wired to the payload.
	WithDB bool
	// Clean tears down any prior instance of the same strategy first.
	Clean bool
	// Rebuild forces a fresh image build for container-based strategies.
	Rebuild bool
	// ForceHost skips every container-based strategy.
	ForceHost bool
}

// Orchestrator drives local runs. WorkDir is the project directory holding
// config/, output/ and the rendered compose files.
type Orchestrator struct {
	cfg    *config.Config
	runner execx.Runner
	out    io.Writer

	WorkDir string
	// DockerAPI, when set, verifies docker-strategy containers through the
	// daemon API instead of the CLI.
	DockerAPI docker.Client
	// Sleep and Alive are injectable for tests.
	Sleep func(time.Duration)
	Alive func(pid int) bool
}

// NewOrchestrator returns an orchestrator rooted in the current directory.
func NewOrchestrator(cfg *config.Config, runner execx.Runner, out io.Writer) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		runner:  runner,
		out:     out,
		WorkDir: ".",
		Sleep:   time.Sleep,
		Alive:   execx.ProcessAlive,
	}
}

func (o *Orchestrator) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.out, format, args...)
}

func (o *Orchestrator) path(parts ...string) string {
	return filepath.Join(append([]string{o.WorkDir}, parts...)...)
}

// Bootstrap creates the local output subdirectories and a default payload
// configuration with empty credential fields. An existing configuration is
// never overwritten.
func (o *Orchestrator) Bootstrap() error {
	dirs := []string{o.path(filepath.Dir(o.cfg.Local.ConfigFile))}
	for _, kind := range []string{"collected", "reports", "verdicts"} {
		dirs = append(dirs, o.path(o.cfg.Local.OutputDir, kind))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := o.path(o.cfg.Local.ConfigFile)
	if _, err := os.Stat(configPath); err == nil {
		return nil // keep operator-edited configuration
	}
	if err := os.WriteFile(configPath, templates.PayloadConfigYAML, 0o600); err != nil {
		return fmt.Errorf("failed to write default config %s: %w", configPath, err)
	}
	o.printf("✅ Created default config: %s\n", configPath)
	return nil
}

// Start selects a strategy and brings the payload up under it.
func (o *Orchestrator) Start(ctx context.Context, opts Options) (runtime.Strategy, error) {
	strategy := runtime.DetectStrategy(ctx, o.runner, opts.ForceHost)
	o.printf("🔎 Selected strategy: %s\n", strategy)

	if err := o.Bootstrap(); err != nil {
		return strategy, err
	}

	if opts.Clean {
		o.printf("🧹 Cleaning previous %s instance...\n", strategy)
		o.teardown(ctx, strategy)
	}

	if strategy == runtime.StrategyHost {
		return strategy, o.startHost(ctx, opts)
	}
	return strategy, o.startCompose(ctx, strategy, opts)
}

// Stop tears down whatever the current strategy would have started.
func (o *Orchestrator) Stop(ctx context.Context, forceHost bool) (runtime.Strategy, error) {
	strategy := runtime.DetectStrategy(ctx, o.runner, forceHost)
	o.teardown(ctx, strategy)
	return strategy, nil
}

// databaseURL resolves the connection string handed to the payload:
// the environment override wins, then one is constructed from the
// credentials that --with-db will provision.
func (o *Orchestrator) databaseURL(creds compose.Credentials) string {
	if fromEnv := os.Getenv(DatabaseURLEnv); fromEnv != "" {
		return fromEnv
	}
	return compose.LocalDatabaseURL(creds, o.cfg.Local.DatabaseName)
}

func (o *Orchestrator) localTag() string {
	if o.cfg.Image.Tag != "" {
		return o.cfg.Image.Tag
	}
	return "latest"
}

func (o *Orchestrator) startCompose(ctx context.Context, strategy runtime.Strategy, opts Options) error {
	composePath := o.path("docker-compose.yml")
	if err := os.WriteFile(composePath, compose.RenderBase(o.cfg, o.localTag()), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", composePath, err)
	}
	fileArgs := []string{"-f", "docker-compose.yml"}

	if opts.WithDB {
		creds := compose.CredentialsFromURL(compose.DatabaseURLFromPayload(o.path(o.cfg.Local.ConfigFile)))
		dbURL := o.databaseURL(creds)
		dbPath := o.path("docker-compose.db.yml")
		if err := os.WriteFile(dbPath, compose.RenderDB(o.cfg, creds, dbURL), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", dbPath, err)
		}
		fileArgs = append(fileArgs, "-f", "docker-compose.db.yml")
		o.printf("🗄️  Database enabled (user: %s)\n", creds.User)
	}

	base := strategy.ComposeCommand()
	upArgs := append(append(append([]string{}, base[1:]...), fileArgs...), "up", "-d")
	if opts.Rebuild {
		upArgs = append(upArgs, "--build")
	}

	o.printf("🚀 Starting via %s...\n", strategy)
	if err := o.runner.Run(ctx, base[0], upArgs...); err != nil {
		return fmt.Errorf("%s up failed: %w", strategy, err)
	}

	return o.verifyCompose(ctx, strategy)
}

// verifyCompose confirms the payload container reached the running state
// after a short settle period.
func (o *Orchestrator) verifyCompose(ctx context.Context, strategy runtime.Strategy) error {
	o.Sleep(time.Duration(o.cfg.Local.SettleSeconds) * time.Second)

	name := o.cfg.Container.Name
	if strategy.Engine() == runtime.EngineDocker && o.DockerAPI != nil {
		state, err := o.DockerAPI.ContainerState(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to verify container %s: %w", name, err)
		}
		if state != runtime.StateRunning {
			return &apperrors.VerificationError{
				Container: name,
				State:     string(state),
				Hint:      "Check logs with: docker compose logs " + name,
			}
		}
		o.printf("✅ %s is running (port %d)\n", name, o.cfg.Container.HostPort)
		return nil
	}

	controller := lifecycle.NewController(o.cfg, lifecycle.NewLocalTarget(o.runner), strategy.Engine())
	if state := controller.Status(ctx); state != runtime.StateRunning {
		return &apperrors.VerificationError{
			Container: name,
			State:     string(state),
			Hint:      fmt.Sprintf("Check logs with: %s logs %s", strategy.Engine(), name),
		}
	}
	o.printf("✅ %s is running (port %d)\n", name, o.cfg.Container.HostPort)
	return nil
}

func (o *Orchestrator) teardown(ctx context.Context, strategy runtime.Strategy) {
	if strategy == runtime.StrategyHost {
		// Stray process kill is best effort and never fatal.
		if err := o.runner.Run(ctx, "pkill", "-f", "newscollector serve"); err != nil {
			o.printf("ℹ️  No running host process to stop\n")
		}
		return
	}

	base := strategy.ComposeCommand()
	downArgs := append(append([]string{}, base[1:]...), "-f", "docker-compose.yml", "down", "--remove-orphans")
	if err := o.runner.Run(ctx, base[0], downArgs...); err != nil {
		o.printf("⚠️  %s down failed (non-fatal): %v\n", strategy, err)
	}
}
