// Package importer moves a local output tree into a running remote
// deployment: validate, package, transfer, extract into the classified
// output layout, then clean both staging copies.
package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zorak1103/ncdeploy/internal/config"
	apperrors "github.com/zorak1103/ncdeploy/internal/errors"
	"github.com/zorak1103/ncdeploy/internal/lifecycle"
	"github.com/zorak1103/ncdeploy/internal/remote"
	"github.com/zorak1103/ncdeploy/internal/runtime"
	"github.com/zorak1103/ncdeploy/internal/sshx"
)

// Result describes what an import landed on the remote host.
type Result struct {
	// Kinds lists the recognized classifications found in the bundle
	// (collected, reports, verdicts), in layout order.
	Kinds []string
	// JSONReports counts the JSON files under reports/ when that
	// classification is present.
	JSONReports int
	// Generic is set when no classification matched; Listing then carries
	// the remote output listing for the operator.
	Generic bool
	Listing string
}

// Importer drives one import against one remote host.
type Importer struct {
	cfg    *config.Config
	client *sshx.Client
	layout *remote.Layout
	out    io.Writer

	// TempDir overrides where the bundle tarball is staged locally.
	TempDir string
}

// NewImporter returns an importer bound to one host.
func NewImporter(cfg *config.Config, client *sshx.Client, out io.Writer) *Importer {
	return &Importer{
		cfg:    cfg,
		client: client,
		layout: remote.NewLayout(cfg, client),
		out:    out,
	}
}

func (i *Importer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(i.out, format, args...)
}

// Import validates every precondition before any transfer happens: the
// local path must exist, the remote layout must be in place, and the target
// instance must be running — data is only imported into a live service.
func (i *Importer) Import(ctx context.Context, localPath string) (Result, error) {
	info, err := os.Stat(localPath)
	if err != nil || !info.IsDir() {
		return Result{}, &apperrors.PreconditionError{
			Op:   "import-data",
			Err:  fmt.Errorf("local path %s does not exist or is not a directory", localPath),
			Hint: "Pass the directory to import, e.g. 'ncdeploy import-data " + i.client.Host() + " ./output'",
		}
	}

	if err := i.client.Probe(ctx); err != nil {
		return Result{}, err
	}
	if err := i.layout.Require(ctx, "import-data"); err != nil {
		return Result{}, err
	}

	engine := runtime.DetectRemote(ctx, i.client)
	if !engine.Found() {
		return Result{}, &apperrors.RuntimeNotFoundError{Target: i.client.Host()}
	}

	controller := lifecycle.NewController(i.cfg, lifecycle.NewRemoteTarget(i.client), engine)
	if state := controller.Status(ctx); state != runtime.StateRunning {
		return Result{}, &apperrors.PreconditionError{
			Op:   "import-data",
			Err:  fmt.Errorf("container %s on %s is %s, imports require a running instance", i.cfg.Container.Name, i.client.Host(), state),
			Hint: fmt.Sprintf("Start it with 'ncdeploy start %s' and re-run the import", i.client.Host()),
		}
	}

	result := i.classify(localPath)

	bundlePath, err := i.pack(localPath)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = os.Remove(bundlePath) }() // Best effort cleanup

	remoteBundle := i.cfg.RemotePath("data", filepath.Base(bundlePath))
	i.printf("📤 Transferring bundle to %s...\n", i.client.Host())
	if err := i.client.Push(ctx, bundlePath, remoteBundle); err != nil {
		return Result{}, fmt.Errorf("failed to transfer bundle to %s: %w", i.client.Host(), err)
	}
	// The staging copy is transient on both sides.
	defer func() { _ = i.client.Run(ctx, "rm -f "+remoteBundle) }()

	i.printf("📂 Extracting into %s...\n", i.cfg.RemotePath("output"))
	extract := fmt.Sprintf("tar -xzf %s -C %s", remoteBundle, i.cfg.RemotePath("output"))
	if err := i.client.Run(ctx, extract); err != nil {
		return Result{}, fmt.Errorf("failed to extract bundle on %s: %w", i.client.Host(), err)
	}

	if result.Generic {
		listing, lerr := i.client.Output(ctx, "ls -la "+i.cfg.RemotePath("output"))
		if lerr == nil {
			result.Listing = listing
		}
	}

	return result, nil
}

// classify inspects the bundle's top-level directory names against the fixed
// classification set. Unrecognized layouts fall back to a generic import.
func (i *Importer) classify(localPath string) Result {
	var result Result
	for _, kind := range remote.OutputKinds {
		info, err := os.Stat(filepath.Join(localPath, kind))
		if err != nil || !info.IsDir() {
			continue
		}
		result.Kinds = append(result.Kinds, kind)
		if kind == "reports" {
			result.JSONReports = countJSONFiles(filepath.Join(localPath, kind))
		}
	}
	result.Generic = len(result.Kinds) == 0
	return result
}

func countJSONFiles(dir string) int {
	count := 0
	_ = filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, the count is informational
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), ".json") {
			count++
		}
		return nil
	})
	return count
}

// pack archives the bundle contents (not the directory itself) so extraction
// into output/ lands each top-level subdirectory in its classification.
func (i *Importer) pack(localPath string) (string, error) {
	dir := i.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	bundlePath := filepath.Join(dir, fmt.Sprintf("ncdeploy-import-%d.tar.gz", time.Now().Unix()))

	i.printf("📦 Packaging %s...\n", localPath)
	if err := tarGzDir(localPath, bundlePath); err != nil {
		_ = os.Remove(bundlePath) // Best effort cleanup
		return "", fmt.Errorf("failed to package %s: %w", localPath, err)
	}
	return bundlePath, nil
}
