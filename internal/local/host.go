package local

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/zorak1103/ncdeploy/internal/compose"
	apperrors "github.com/zorak1103/ncdeploy/internal/errors"
	"github.com/zorak1103/ncdeploy/internal/execx"
)

// payloadImport is the module probed to decide whether the payload's
// dependencies are installed.
const payloadImport = "newscollector"

// dependencyManifest is the payload's declared dependency list.
const dependencyManifest = "requirements.txt"

// startHost runs the payload directly on the host OS: install dependencies
// when the interpreter cannot import the payload, launch it detached, wait
// a fixed settle period, then verify the process is still alive.
func (o *Orchestrator) startHost(ctx context.Context, opts Options) error {
	python := o.cfg.Local.PythonBin
	if !o.runner.Look(python) {
		return fmt.Errorf("host mode needs %s on PATH and no container engine was found", python)
	}

	if err := o.runner.Run(ctx, python, "-c", "import "+payloadImport); err != nil {
		o.printf("📥 Installing payload dependencies from %s...\n", dependencyManifest)
		if err := o.runner.Run(ctx, python, "-m", "pip", "install", "-r", o.path(dependencyManifest)); err != nil {
			return fmt.Errorf("failed to install dependencies from %s: %w", dependencyManifest, err)
		}
	}

	var env []string
	if opts.WithDB {
		creds := compose.CredentialsFromURL(compose.DatabaseURLFromPayload(o.path(o.cfg.Local.ConfigFile)))
		dbURL := o.databaseURL(creds)
		env = append(env, DatabaseURLEnv+"="+dbURL)
		if err := o.ensureHostDatabase(ctx); err != nil {
			return err
		}
	}

	logPath := o.path(o.cfg.Local.OutputDir, serverLogName)
	name, args := hostCommand(env, python)

	o.printf("🚀 Launching payload on the host (log: %s)...\n", logPath)
	pid, err := o.runner.RunDetached(ctx, logPath, name, args...)
	if err != nil {
		return fmt.Errorf("failed to launch payload process: %w", err)
	}

	o.Sleep(time.Duration(o.cfg.Local.SettleSeconds) * time.Second)

	if !o.Alive(pid) {
		tail := o.logTail(logPath)
		if tail != "" {
			return fmt.Errorf("payload process (pid %d) exited during startup; last log lines:\n%s", pid, tail)
		}
		return fmt.Errorf("payload process (pid %d) exited during startup; see %s", pid, logPath)
	}

	o.printf("✅ Payload running on the host (pid %d, port %d)\n", pid, o.cfg.Container.HostPort)
	return nil
}

// serviceStarters are tried in order to bring up a stopped host-process
// postgres: the systemd unit, the SysV service wrapper, then pg_ctl for
// installs managed by the postgres user directly.
var serviceStarters = [][]string{
	{"systemctl", "start", "postgresql"},
	{"service", "postgresql", "start"},
	{"pg_ctl", "start", "-w"},
}

// ensureHostDatabase makes sure a host-process postgres accepts connections
// before the payload launches, starting the service when it is down. The
// payload has no retry around its storage backend, so a dead database must
// stop the run here with a corrective hint.
func (o *Orchestrator) ensureHostDatabase(ctx context.Context) error {
	if !o.runner.Look("pg_isready") {
		return &apperrors.PreconditionError{
			Op:   "local start --with-db",
			Hint: "Install the postgres client tools (pg_isready) or run without --with-db",
			Err:  fmt.Errorf("cannot verify a host-process postgres without pg_isready"),
		}
	}
	if o.runner.Run(ctx, "pg_isready", "-q") == nil {
		return nil
	}

	o.printf("🗄️  Local postgres is not accepting connections; starting the service...\n")
	for _, starter := range serviceStarters {
		if !o.runner.Look(starter[0]) {
			continue
		}
		if err := o.runner.Run(ctx, starter[0], starter[1:]...); err != nil {
			continue
		}
		if o.runner.Run(ctx, "pg_isready", "-q") == nil {
			o.printf("✅ Local postgres started\n")
			return nil
		}
	}
	return &apperrors.PreconditionError{
		Op:   "local start --with-db",
		Hint: "Start postgres manually (e.g. systemctl start postgresql) and re-run",
		Err:  fmt.Errorf("local postgres is down and could not be started"),
	}
}

// hostCommand builds the detached launch command, prefixing env when the
// payload needs a database URL.
func hostCommand(env []string, python string) (string, []string) {
	serve := []string{python, "-m", payloadImport, "serve"}
	if len(env) == 0 {
		return serve[0], serve[1:]
	}
	return "env", append(env, serve...)
}

func (o *Orchestrator) logTail(logPath string) string {
	f, err := os.Open(logPath) // #nosec G304 -- logPath is under the local output directory
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	lines, err := execx.TailLines(f, 20)
	if err != nil || len(lines) == 0 {
		return ""
	}
	return "  " + strings.Join(lines, "\n  ")
}
