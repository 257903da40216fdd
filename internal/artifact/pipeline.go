// Package artifact implements the remote deploy pipeline: build a local
// image, serialize it to a compressed artifact, transfer it, load it into
// the remote engine and start a fresh instance. The artifact is a scoped
// resource: it is deleted locally and remotely on every exit path.
package artifact

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zorak1103/ncdeploy/internal/config"
	apperrors "github.com/zorak1103/ncdeploy/internal/errors"
	"github.com/zorak1103/ncdeploy/internal/execx"
	"github.com/zorak1103/ncdeploy/internal/gitmeta"
	"github.com/zorak1103/ncdeploy/internal/lifecycle"
	"github.com/zorak1103/ncdeploy/internal/remote"
	"github.com/zorak1103/ncdeploy/internal/runtime"
	"github.com/zorak1103/ncdeploy/internal/sshx"
)

// Result reports what a completed deploy did, for history and notifications.
type Result struct {
	Tag          string
	LocalEngine  runtime.Engine
	RemoteEngine runtime.Engine
}

// Pipeline drives one deploy against one remote host.
type Pipeline struct {
	cfg    *config.Config
	runner execx.Runner
	client *sshx.Client
	layout *remote.Layout
	out    io.Writer

	// TempDir overrides where the local artifact is staged. Defaults to the
	// system temp directory.
	TempDir string
}

// NewPipeline returns a deploy pipeline bound to one host.
func NewPipeline(cfg *config.Config, runner execx.Runner, client *sshx.Client, out io.Writer) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		runner: runner,
		client: client,
		layout: remote.NewLayout(cfg, client),
		out:    out,
	}
}

func (p *Pipeline) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// ResolveTag returns the configured tag, or derives one from the build
// context's git HEAD.
func (p *Pipeline) ResolveTag() string {
	if p.cfg.Image.Tag != "" {
		return p.cfg.Image.Tag
	}
	return gitmeta.DefaultTag(p.cfg.Image.BuildContext)
}

// checkTools verifies the required local tools before any work starts.
func (p *Pipeline) checkTools() error {
	for _, tool := range []string{"ssh", "scp"} {
		if !p.runner.Look(tool) {
			return &apperrors.ConnectivityError{Tool: tool, Err: fmt.Errorf("not on PATH")}
		}
	}
	return nil
}

// Deploy runs the full build → save → transfer → load → run → verify
// sequence. Local build failures abort before any remote state is touched.
// Re-running converges: any existing instance is replaced, never duplicated.
func (p *Pipeline) Deploy(ctx context.Context) (Result, error) {
	if err := p.checkTools(); err != nil {
		return Result{}, err
	}

	localEngine := runtime.DetectLocal(p.runner)
	if !localEngine.Found() {
		return Result{}, &apperrors.RuntimeNotFoundError{Target: "local"}
	}

	if err := p.client.Probe(ctx); err != nil {
		return Result{}, err
	}

	tag := p.ResolveTag()
	ref := p.cfg.ImageRef(tag)

	p.printf("🔨 Building %s with %s...\n", ref, localEngine)
	if err := p.runner.Run(ctx, string(localEngine), "build", "-t", ref, p.cfg.Image.BuildContext); err != nil {
		return Result{}, fmt.Errorf("failed to build image %s: %w", ref, err)
	}

	artifactPath, cleanup, err := p.saveArtifact(ctx, localEngine, tag, ref)
	// The artifact must disappear on success and on every failure path.
	defer cleanup()
	if err != nil {
		return Result{}, err
	}

	if !p.layout.Exists(ctx) {
		p.printf("📁 Remote layout missing, setting up %s first...\n", p.client.Host())
		if err := p.layout.Ensure(ctx); err != nil {
			return Result{}, err
		}
	}

	remoteArtifact := p.cfg.RemotePath("data", filepath.Base(artifactPath))
	p.printf("📤 Transferring artifact to %s...\n", p.client.Host())
	if err := p.client.Push(ctx, artifactPath, remoteArtifact); err != nil {
		return Result{}, fmt.Errorf("failed to transfer artifact to %s: %w", p.client.Host(), err)
	}
	// Remote copy is transient as well; rm -f also covers the success path
	// where the load already consumed it.
	defer func() { _ = p.client.Run(ctx, "rm -f "+remoteArtifact) }()

	remoteEngine := runtime.DetectRemote(ctx, p.client)
	if !remoteEngine.Found() {
		return Result{}, &apperrors.RuntimeNotFoundError{Target: p.client.Host()}
	}

	target := lifecycle.NewRemoteTarget(p.client)
	controller := lifecycle.NewController(p.cfg, target, remoteEngine)

	p.printf("🗑️  Removing previous instance (if any)...\n")
	if err := controller.Remove(ctx); err != nil {
		return Result{}, err
	}

	p.printf("📦 Loading image into %s on %s...\n", remoteEngine, p.client.Host())
	if err := target.RunEngine(ctx, remoteEngine, "load", "-i", remoteArtifact); err != nil {
		return Result{}, fmt.Errorf("failed to load image on %s: %w", p.client.Host(), err)
	}
	_ = p.client.Run(ctx, "rm -f "+remoteArtifact)

	// Reclaim space from untagged leftovers of earlier deploys. Best effort.
	if err := target.RunEngine(ctx, remoteEngine, "image", "prune", "-f"); err != nil {
		p.printf("⚠️  Image prune failed (non-fatal): %v\n", err)
	}

	p.printf("🚀 Starting %s...\n", p.cfg.Container.Name)
	if _, err := controller.Run(ctx, tag); err != nil {
		return Result{}, err
	}

	p.printf("✅ %s is running on %s (port %d)\n",
		p.cfg.Container.Name, p.client.Host(), p.cfg.Container.HostPort)

	return Result{Tag: tag, LocalEngine: localEngine, RemoteEngine: remoteEngine}, nil
}

// saveArtifact serializes the image to a gzip-compressed tar in the staging
// directory. The returned cleanup removes every local trace and is safe to
// call regardless of error.
func (p *Pipeline) saveArtifact(ctx context.Context, engine runtime.Engine, tag, ref string) (string, func(), error) {
	dir := p.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	base := fmt.Sprintf("%s-%s.tar", p.cfg.Image.Name, tag)
	tarPath := filepath.Join(dir, base)
	gzPath := tarPath + ".gz"

	cleanup := func() {
		_ = os.Remove(tarPath) // Best effort cleanup
		_ = os.Remove(gzPath)  // Best effort cleanup
	}

	p.printf("💾 Serializing %s...\n", ref)
	if err := p.runner.Run(ctx, string(engine), "save", "-o", tarPath, ref); err != nil {
		return "", cleanup, fmt.Errorf("failed to save image %s: %w", ref, err)
	}

	if err := gzipFile(tarPath, gzPath); err != nil {
		return "", cleanup, fmt.Errorf("failed to compress artifact %s: %w", tarPath, err)
	}
	_ = os.Remove(tarPath) // Best effort cleanup; uncompressed copy no longer needed

	return gzPath, cleanup, nil
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- src is a path this process just created
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) // #nosec G304
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		_ = gz.Close()  // Best effort cleanup
		_ = out.Close() // Best effort cleanup
		return err
	}
	if err := gz.Close(); err != nil {
		_ = out.Close() // Best effort cleanup
		return err
	}
	return out.Close()
}
