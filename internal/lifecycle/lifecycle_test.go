package lifecycle

import (
	"context"
	"errors"
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
		Image:     config.ImageConfig{Name: "newscollector", BuildContext: "."},
		Container: config.ContainerConfig{Name: "newscollector", HostPort: 8000, ContainerPort: 8000},
		Remote:    config.RemoteConfig{Dir: "newscollector", ConnectTimeoutSeconds: 10},
	}
}

func localController(fake *execx.Fake) *Controller {
	return NewController(testConfig(), NewLocalTarget(fake), runtime.EngineDocker)
}

func TestStatus_InspectFailureMeansAbsent(t *testing.T) {
	fake := execx.NewFake().Script("inspect", "", errors.New("no such container"))
	c := localController(fake)

	assert.Equal(t, runtime.StateAbsent, c.Status(context.Background()))
}

func TestStatus_UsesTypedStateNotSubstring(t *testing.T) {
	// An engine whose status text merely mentions "Up" elsewhere must not be
	// mistaken for running; only the inspect format output counts.
	fake := execx.NewFake().Script("inspect", "exited", nil)
	c := localController(fake)

	assert.Equal(t, runtime.StateStopped, c.Status(context.Background()))
	assert.True(t, fake.HasCommand("container inspect -f"), fake.Dump())
}

func TestStart_AlreadyRunningIsNoOp(t *testing.T) {
	fake := execx.NewFake().Script("inspect", "running", nil)
	c := localController(fake)

	outcome, err := c.Start(context.Background())
	require.NoError(t, err)
	assert.False(t, outcome.Changed)
	assert.Equal(t, "already running", outcome.Note)
	assert.False(t, fake.HasCommand("docker start"), fake.Dump())
}

func TestStart_AbsentIsPreconditionFailure(t *testing.T) {
	fake := execx.NewFake().Script("inspect", "", errors.New("no such container"))
	c := localController(fake)

	_, err := c.Start(context.Background())
	require.Error(t, err)

	var precond *apperrors.PreconditionError
	require.ErrorAs(t, err, &precond)
	assert.Equal(t, "start", precond.Op)
	assert.Contains(t, precond.Hint, "deploy")
	assert.False(t, fake.HasCommand("docker start"), "nothing may be created implicitly")
}

func TestStart_StoppedStartsAndVerifies(t *testing.T) {
	fake := execx.NewFake()
	// Inspect sees the stopped instance until the start command flips it.
	fake.Responses = append(fake.Responses,
		execx.Response{Match: "docker start", Do: func(execx.Call) {
			fake.Responses[1].Stdout = "running"
		}},
		execx.Response{Match: "inspect", Stdout: "exited"},
	)
	c := localController(fake)

	outcome, err := c.Start(context.Background())
	require.NoError(t, err)
	assert.True(t, outcome.Changed)
	assert.Equal(t, runtime.StateRunning, outcome.State)
	assert.True(t, fake.HasCommand("docker start newscollector"), fake.Dump())
}

func TestStart_VerificationFailure(t *testing.T) {
	// The start command succeeds but the instance never reaches running.
	fake := execx.NewFake().Script("inspect", "exited", nil)
	c := localController(fake)

	_, err := c.Start(context.Background())
	require.Error(t, err)

	var verr *apperrors.VerificationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "newscollector", verr.Container)
	assert.Contains(t, verr.Hint, "docker logs newscollector")
}

func TestStop_AbsentIsNoOp(t *testing.T) {
	fake := execx.NewFake().Script("inspect", "", errors.New("no such container"))
	c := localController(fake)

	outcome, err := c.Stop(context.Background())
	require.NoError(t, err)
	assert.False(t, outcome.Changed)
	assert.Equal(t, "nothing to stop", outcome.Note)
	assert.False(t, fake.HasCommand("docker stop"))
}

func TestStop_AlreadyStoppedIsNoOp(t *testing.T) {
	fake := execx.NewFake().Script("inspect", "exited", nil)
	c := localController(fake)

	outcome, err := c.Stop(context.Background())
	require.NoError(t, err)
	assert.False(t, outcome.Changed)
	assert.Equal(t, "already stopped", outcome.Note)
}

func TestStop_RunningStopsAndVerifies(t *testing.T) {
	fake := execx.NewFake()
	fake.Responses = append(fake.Responses,
		execx.Response{Match: "docker stop", Do: func(execx.Call) {
			fake.Responses[1].Stdout = "exited"
		}},
		execx.Response{Match: "inspect", Stdout: "running"},
	)
	c := localController(fake)

	outcome, err := c.Stop(context.Background())
	require.NoError(t, err)
	assert.True(t, outcome.Changed)
	assert.Equal(t, runtime.StateStopped, outcome.State)
	assert.True(t, fake.HasCommand("docker stop newscollector"), fake.Dump())
}

func TestRemove_AbsentIsNoOp(t *testing.T) {
	fake := execx.NewFake().Script("inspect", "", errors.New("no such container"))
	c := localController(fake)

	require.NoError(t, c.Remove(context.Background()))
	assert.False(t, fake.HasCommand("docker rm"))
}

func TestRemove_StopFailureIsTolerated(t *testing.T) {
	// An already-exited container rejects stop but still needs the rm.
	fake := execx.NewFake().
		Script("inspect", "exited", nil).
		Script("docker stop", "", errors.New("container not running"))
	c := localController(fake)

	require.NoError(t, c.Remove(context.Background()))
	assert.True(t, fake.HasCommand("docker rm newscollector"), fake.Dump())
}

func TestRun_FixedContract(t *testing.T) {
	fake := execx.NewFake().Script("inspect", "running", nil)
	c := localController(fake)

	outcome, err := c.Run(context.Background(), "abc1234")
	require.NoError(t, err)
	assert.True(t, outcome.Changed)

	var runLine string
	for _, line := range fake.CommandLines() {
		if len(line) > 10 && line[:10] == "docker run" {
			runLine = line
		}
	}
	require.NotEmpty(t, runLine, fake.Dump())
	assert.Contains(t, runLine, "--name newscollector")
	assert.Contains(t, runLine, "--restart unless-stopped")
	assert.Contains(t, runLine, "-p 8000:8000")
	assert.Contains(t, runLine, "~/newscollector/config/config.yaml:/app/config/config.yaml:ro")
	assert.Contains(t, runLine, "~/newscollector/output:/app/output")
	assert.Contains(t, runLine, "newscollector:abc1234")
}

func TestRemoteTarget_HintWrapsSSH(t *testing.T) {
	fake := execx.NewFake()
	client := sshx.NewClient("deploy@host", 10*time.Second, fake)
	target := NewRemoteTarget(client)

	assert.Equal(t, "deploy@host", target.Describe())
	assert.Equal(t, "ssh deploy@host 'docker logs newscollector'",
		target.CommandHint("docker logs newscollector"))
}

func TestLocalTarget_HintIsPlain(t *testing.T) {
	target := NewLocalTarget(execx.NewFake())

	assert.Equal(t, "local", target.Describe())
	assert.Equal(t, "docker ps -a", target.CommandHint("docker ps -a"))
}
