// Package remote manages the fixed directory layout a target host must carry
// before deployment operations can run: config/ with the payload
// configuration, output/ with its classified subdirectories, and data/ for
// transient staging.
package remote

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zorak1103/ncdeploy/internal/config"
	apperrors "github.com/zorak1103/ncdeploy/internal/errors"
	"github.com/zorak1103/ncdeploy/internal/sshx"
	"github.com/zorak1103/ncdeploy/internal/templates"
)

// Classified output subdirectories. The importer maps bundles onto these.
var OutputKinds = []string{"collected", "reports", "verdicts"}

// Layout drives the remote directory contract for one host.
type Layout struct {
	cfg    *config.Config
	client *sshx.Client
}

// NewLayout returns a Layout bound to one host.
func NewLayout(cfg *config.Config, client *sshx.Client) *Layout {
	return &Layout{cfg: cfg, client: client}
}

// Exists reports whether the remote layout is already in place. Operations
// other than setup and deploy fail fast when it is not.
func (l *Layout) Exists(ctx context.Context) bool {
	check := fmt.Sprintf("test -d %s && test -d %s && test -d %s",
		l.cfg.RemotePath("config"),
		l.cfg.RemotePath("output"),
		l.cfg.RemotePath("data"))
	_, err := l.client.Output(ctx, check)
	return err == nil
}

// Require returns a PreconditionError when the layout is missing.
func (l *Layout) Require(ctx context.Context, op string) error {
	if l.Exists(ctx) {
		return nil
	}
	return &apperrors.PreconditionError{
		Op:   op,
		Err:  fmt.Errorf("remote directory %s does not exist on %s", l.cfg.RemotePath(), l.client.Host()),
		Hint: fmt.Sprintf("Run 'ncdeploy setup %s' first", l.client.Host()),
	}
}

// Ensure creates the full directory layout and uploads the default payload
// configuration. Idempotent: existing directories are left alone and an
// existing configuration file is never overwritten.
func (l *Layout) Ensure(ctx context.Context) error {
	dirs := []string{l.cfg.RemotePath("config"), l.cfg.RemotePath("data")}
	for _, kind := range OutputKinds {
		dirs = append(dirs, l.cfg.RemotePath("output", kind))
	}
	if err := l.client.Run(ctx, "mkdir -p "+strings.Join(dirs, " ")); err != nil {
		return fmt.Errorf("failed to create remote directories on %s: %w", l.client.Host(), err)
	}

	return l.ensureConfig(ctx)
}

// ensureConfig uploads the default configuration only when none exists.
func (l *Layout) ensureConfig(ctx context.Context) error {
	remoteConfig := l.cfg.RemotePath("config", "config.yaml")

	if _, err := l.client.Output(ctx, "test -f "+remoteConfig); err == nil {
		return nil // never overwrite operator-edited configuration
	}

	tmp, err := os.CreateTemp("", "ncdeploy-config-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp config file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }() // Best effort cleanup

	if _, err := tmp.Write(templates.PayloadConfigYAML); err != nil {
		_ = tmp.Close() // Best effort cleanup
		return fmt.Errorf("failed to write temp config file %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp config file %s: %w", tmpPath, err)
	}

	if err := l.client.Push(ctx, tmpPath, filepath.ToSlash(remoteConfig)); err != nil {
		return fmt.Errorf("failed to upload default config to %s: %w", l.client.Host(), err)
	}
	return nil
}
