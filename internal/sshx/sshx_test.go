package sshx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/zorak1103/ncdeploy/internal/errors"
	"github.com/zorak1103/ncdeploy/internal/execx"
)

func newTestClient(fake *execx.Fake) *Client {
	return NewClient("deploy@host.example.com", 10*time.Second, fake)
}

func TestProbe_BatchModeAndTimeout(t *testing.T) {
	fake := execx.NewFake()
	client := newTestClient(fake)

	err := client.Probe(context.Background())
	require.NoError(t, err)

	require.Len(t, fake.Calls, 1)
	call := fake.Calls[0]
	assert.Equal(t, "ssh", call.Name)
	assert.Equal(t, []string{
		"-o", "BatchMode=yes",
		"-o", "ConnectTimeout=10",
		"deploy@host.example.com", "true",
	}, call.Args)
}

func TestProbe_FailureIsConnectivityError(t *testing.T) {
	fake := execx.NewFake().Script("ssh", "", errors.New("exit status 255"))
	client := newTestClient(fake)

	err := client.Probe(context.Background())
	require.Error(t, err)

	var connErr *apperrors.ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "deploy@host.example.com", connErr.Host)
}

func TestRunAndOutput_PassCommandThrough(t *testing.T) {
	fake := execx.NewFake().Script("mkdir", "", nil).Script("command -v podman", "/usr/bin/podman", nil)
	client := newTestClient(fake)
	ctx := context.Background()

	assert.NoError(t, client.Run(ctx, "mkdir -p ~/newscollector/data"))
	assert.True(t, fake.HasCommand("deploy@host.example.com mkdir -p ~/newscollector/data"))

	out, err := client.Output(ctx, "command -v podman")
	assert.NoError(t, err)
	assert.Equal(t, "/usr/bin/podman", out)
}

func TestPushAndPull_UseSCPWithHostPrefix(t *testing.T) {
	fake := execx.NewFake()
	client := newTestClient(fake)
	ctx := context.Background()

	require.NoError(t, client.Push(ctx, "/tmp/img.tar.gz", "~/newscollector/data/img.tar.gz"))
	require.NoError(t, client.Pull(ctx, "~/newscollector/output/log.txt", "/tmp/log.txt"))

	lines := fake.CommandLines()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "scp")
	assert.Contains(t, lines[0], "/tmp/img.tar.gz deploy@host.example.com:~/newscollector/data/img.tar.gz")
	assert.Contains(t, lines[1], "deploy@host.example.com:~/newscollector/output/log.txt /tmp/log.txt")
}

func TestHasCommand(t *testing.T) {
	fake := execx.NewFake().
		Script("command -v podman", "", errors.New("exit status 1")).
		Script("command -v docker", "/usr/bin/docker", nil)
	client := newTestClient(fake)
	ctx := context.Background()

	assert.False(t, client.HasCommand(ctx, "podman"))
	assert.True(t, client.HasCommand(ctx, "docker"))
}

func TestHost(t *testing.T) {
	client := newTestClient(execx.NewFake())
	assert.Equal(t, "deploy@host.example.com", client.Host())
}
