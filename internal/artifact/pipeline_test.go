package artifact

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zorak1103/ncdeploy/internal/config"
	apperrors "github.com/zorak1103/ncdeploy/internal/errors"
	"github.com/zorak1103/ncdeploy/internal/execx"
	"github.com/zorak1103/ncdeploy/internal/runtime"
	"github.com/zorak1103/ncdeploy/internal/sshx"
)

func testConfig() *config.Config {
	return &config.Config{
		Image:     config.ImageConfig{Name: "newscollector", Tag: "abc1234", BuildContext: "."},
		Container: config.ContainerConfig{Name: "newscollector", HostPort: 8000, ContainerPort: 8000},
		Remote:    config.RemoteConfig{Dir: "newscollector", ConnectTimeoutSeconds: 10},
	}
}

func testPipeline(t *testing.T, fake *execx.Fake) *Pipeline {
	t.Helper()
	cfg := testConfig()
	client := sshx.NewClient("deploy@host", 10*time.Second, fake)
	p := NewPipeline(cfg, fake, client, &bytes.Buffer{})
	p.TempDir = t.TempDir()
	return p
}

// scriptSave makes the fake's save command produce the tar the compression
// step expects, the way a real engine would.
func scriptSave(fake *execx.Fake) {
	fake.Responses = append(fake.Responses, execx.Response{
		Match: "save -o",
		Do: func(c execx.Call) {
			_ = os.WriteFile(c.Args[2], []byte("fake image layers"), 0o600)
		},
	})
}

// scriptInstanceAbsentUntilRun makes inspect report no instance until the run
// command creates one.
func scriptInstanceAbsentUntilRun(fake *execx.Fake) {
	fake.Responses = append(fake.Responses,
		execx.Response{Match: "run -d", Do: func(execx.Call) {
			for i := range fake.Responses {
				if fake.Responses[i].Match == "inspect" {
					fake.Responses[i].Err = nil
					fake.Responses[i].Stdout = "running"
				}
			}
		}},
		execx.Response{Match: "inspect", Err: errors.New("no such container")},
	)
}

func TestDeploy_FullSequence(t *testing.T) {
	fake := execx.NewFake()
	scriptSave(fake)
	scriptInstanceAbsentUntilRun(fake)
	p := testPipeline(t, fake)

	result, err := p.Deploy(context.Background())
	require.NoError(t, err, fake.Dump())

	assert.Equal(t, "abc1234", result.Tag)
	assert.Equal(t, runtime.EnginePodman, result.LocalEngine)
	assert.Equal(t, runtime.EnginePodman, result.RemoteEngine)

	assert.True(t, fake.HasCommand("podman build -t newscollector:abc1234"), fake.Dump())
	assert.True(t, fake.HasCommand("podman save -o"))
	assert.True(t, fake.HasCommand("deploy@host:~/newscollector/data/newscollector-abc1234.tar.gz"))
	assert.True(t, fake.HasCommand("podman load -i ~/newscollector/data/newscollector-abc1234.tar.gz"))
	assert.True(t, fake.HasCommand("rm -f ~/newscollector/data/newscollector-abc1234.tar.gz"))
	assert.True(t, fake.HasCommand("image prune -f"))
	assert.True(t, fake.HasCommand("run -d"))
}

func TestDeploy_ArtifactRemovedOnSuccess(t *testing.T) {
	fake := execx.NewFake()
	scriptSave(fake)
	scriptInstanceAbsentUntilRun(fake)
	p := testPipeline(t, fake)

	_, err := p.Deploy(context.Background())
	require.NoError(t, err)

	entries, err := os.ReadDir(p.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging directory must be empty after deploy")
}

func TestDeploy_ArtifactRemovedOnFailure(t *testing.T) {
	fake := execx.NewFake()
	scriptSave(fake)
	fake.Script("load -i", "", errors.New("load failed"))
	fake.Responses = append(fake.Responses,
		execx.Response{Match: "inspect", Err: errors.New("no such container")},
	)
	p := testPipeline(t, fake)

	_, err := p.Deploy(context.Background())
	require.Error(t, err)

	entries, rerr := os.ReadDir(p.TempDir)
	require.NoError(t, rerr)
	assert.Empty(t, entries, "staging directory must be empty after a failed deploy")
	// The transferred copy is removed too.
	assert.True(t, fake.HasCommand("rm -f ~/newscollector/data/newscollector-abc1234.tar.gz"), fake.Dump())
}

func TestDeploy_BuildFailureTouchesNoRemoteState(t *testing.T) {
	fake := execx.NewFake().Script("build", "", errors.New("build failed"))
	p := testPipeline(t, fake)

	_, err := p.Deploy(context.Background())
	require.Error(t, err)

	assert.False(t, fake.HasCommand("scp"), fake.Dump())
	assert.False(t, fake.HasCommand("load"))
	assert.False(t, fake.HasCommand("run -d"))
}

func TestDeploy_FreshHostBootstrapsLayout(t *testing.T) {
	fake := execx.NewFake().
		Script("test -d", "", errors.New("exit status 1")).
		Script("test -f", "", errors.New("exit status 1"))
	scriptSave(fake)
	scriptInstanceAbsentUntilRun(fake)
	p := testPipeline(t, fake)

	_, err := p.Deploy(context.Background())
	require.NoError(t, err, fake.Dump())

	assert.True(t, fake.HasCommand("mkdir -p"), "deploy must create the layout itself")
	assert.True(t, fake.HasCommand("~/newscollector/output/collected"))
}

func TestDeploy_ReplacesExistingInstance(t *testing.T) {
	fake := execx.NewFake()
	scriptSave(fake)
	// An instance from a previous deploy is running the whole time.
	fake.Script("inspect", "running", nil)
	p := testPipeline(t, fake)

	_, err := p.Deploy(context.Background())
	require.NoError(t, err, fake.Dump())

	assert.True(t, fake.HasCommand("podman stop newscollector"), fake.Dump())
	assert.True(t, fake.HasCommand("podman rm newscollector"))
	assert.Equal(t, 1, fake.CountCommands("run -d"), "exactly one replacement instance")
}

func TestDeploy_MissingSSHTooling(t *testing.T) {
	fake := execx.NewFake()
	fake.Missing = []string{"ssh"}
	p := testPipeline(t, fake)

	_, err := p.Deploy(context.Background())
	require.Error(t, err)

	var connErr *apperrors.ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "ssh", connErr.Tool)
	assert.Empty(t, fake.Calls, "nothing may run without the transfer tools")
}

func TestDeploy_NoLocalEngine(t *testing.T) {
	fake := execx.NewFake()
	fake.Missing = []string{"podman", "docker"}
	p := testPipeline(t, fake)

	_, err := p.Deploy(context.Background())
	require.Error(t, err)

	var rtErr *apperrors.RuntimeNotFoundError
	require.ErrorAs(t, err, &rtErr)
	assert.Equal(t, "local", rtErr.Target)
}

func TestDeploy_ProbeFailureAbortsBeforeBuild(t *testing.T) {
	fake := execx.NewFake().Script("ssh", "", errors.New("exit status 255"))
	p := testPipeline(t, fake)

	_, err := p.Deploy(context.Background())
	require.Error(t, err)

	var connErr *apperrors.ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.False(t, fake.HasCommand("build"), fake.Dump())
}

func TestDeploy_PruneFailureIsNonFatal(t *testing.T) {
	fake := execx.NewFake().Script("image prune", "", errors.New("prune failed"))
	scriptSave(fake)
	scriptInstanceAbsentUntilRun(fake)
	p := testPipeline(t, fake)

	_, err := p.Deploy(context.Background())
	assert.NoError(t, err, fake.Dump())
}

func TestResolveTag_ConfiguredTagWins(t *testing.T) {
	p := testPipeline(t, execx.NewFake())
	assert.Equal(t, "abc1234", p.ResolveTag())
}

func TestGzipFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "artifact.tar")
	dst := filepath.Join(dir, "artifact.tar.gz")
	require.NoError(t, os.WriteFile(src, bytes.Repeat([]byte("layer data "), 1000), 0o600))

	require.NoError(t, gzipFile(src, dst))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	srcInfo, err := os.Stat(src)
	require.NoError(t, err)
	assert.Less(t, info.Size(), srcInfo.Size(), "repetitive input must compress")
}
