package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/zorak1103/ncdeploy/internal/execx"
	"github.com/zorak1103/ncdeploy/internal/runtime"
	"github.com/zorak1103/ncdeploy/internal/sshx"
)

// Target abstracts where engine commands run: the local machine or a remote
// host behind the ssh channel. The engine binding is fixed per operation and
// never re-probed mid-pipeline.
type Target interface {
	// RunEngine executes an engine subcommand, streaming output.
	RunEngine(ctx context.Context, engine runtime.Engine, args ...string) error
	// EngineOutput executes an engine subcommand and returns trimmed stdout.
	EngineOutput(ctx context.Context, engine runtime.Engine, args ...string) (string, error)
	// Describe names the target for operator messages.
	Describe() string
	// CommandHint renders a diagnostic command the operator can paste to a
	// terminal to run it against this target.
	CommandHint(command string) string
}

// LocalTarget runs engine commands on the local machine.
type LocalTarget struct {
	runner execx.Runner
}

// NewLocalTarget returns a Target backed by the local PATH.
func NewLocalTarget(runner execx.Runner) *LocalTarget {
	return &LocalTarget{runner: runner}
}

// RunEngine executes the engine binary directly.
func (t *LocalTarget) RunEngine(ctx context.Context, engine runtime.Engine, args ...string) error {
	return t.runner.Run(ctx, string(engine), args...)
}

// EngineOutput executes the engine binary and captures stdout.
func (t *LocalTarget) EngineOutput(ctx context.Context, engine runtime.Engine, args ...string) (string, error) {
	return t.runner.Output(ctx, string(engine), args...)
}

// Describe identifies the local machine.
func (t *LocalTarget) Describe() string {
	return "local"
}

// CommandHint returns the command as-is for local execution.
func (t *LocalTarget) CommandHint(command string) string {
	return command
}

// RemoteTarget runs engine commands on a remote host over ssh.
type RemoteTarget struct {
	client *sshx.Client
}

// NewRemoteTarget returns a Target backed by the remote execution channel.
func NewRemoteTarget(client *sshx.Client) *RemoteTarget {
	return &RemoteTarget{client: client}
}

// RunEngine executes the engine subcommand as a remote shell command.
func (t *RemoteTarget) RunEngine(ctx context.Context, engine runtime.Engine, args ...string) error {
	return t.client.Run(ctx, remoteCommand(engine, args))
}

// EngineOutput executes the engine subcommand remotely and captures stdout.
func (t *RemoteTarget) EngineOutput(ctx context.Context, engine runtime.Engine, args ...string) (string, error) {
	return t.client.Output(ctx, remoteCommand(engine, args))
}

// Describe identifies the remote host.
func (t *RemoteTarget) Describe() string {
	return t.client.Host()
}

// CommandHint wraps the command in an ssh invocation against this host.
func (t *RemoteTarget) CommandHint(command string) string {
	return fmt.Sprintf("ssh %s '%s'", t.client.Host(), command)
}

// remoteCommand renders an engine invocation as a single shell command line.
// Arguments are quoted unless they are plain words, so format templates and
// mount specs survive the remote shell.
func remoteCommand(engine runtime.Engine, args []string) string {
	parts := []string{string(engine)}
	for _, arg := range args {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	// Leading ~ is left unquoted so the remote shell expands it against the
	// remote home directory.
	if !strings.ContainsAny(s, " \t\n\"'$`\\*?[]{}()<>|&;") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
