package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zorak1103/ncdeploy/internal/docker"
	"github.com/zorak1103/ncdeploy/internal/execx"
)

func checkByName(checks []Check, name string) (Check, bool) {
	for _, c := range checks {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}

func TestPreflight_AllGood(t *testing.T) {
	fake := execx.NewFake()
	o := testOrchestrator(t, fake)
	require.NoError(t, os.MkdirAll(filepath.Dir(o.path("config/config.yaml")), 0o750))
	require.NoError(t, os.WriteFile(o.path("config/config.yaml"), []byte("storage: {}\n"), 0o600))

	checks := o.Preflight(context.Background())
	assert.True(t, PreflightOK(checks))

	engine, ok := checkByName(checks, "container engine")
	require.True(t, ok)
	assert.True(t, engine.OK)
	assert.Equal(t, "podman", engine.Detail)
}

func TestPreflight_MissingSSHIsFatal(t *testing.T) {
	fake := execx.NewFake()
	fake.Missing = []string{"ssh"}
	o := testOrchestrator(t, fake)

	checks := o.Preflight(context.Background())
	assert.False(t, PreflightOK(checks))

	sshCheck, ok := checkByName(checks, "ssh")
	require.True(t, ok)
	assert.False(t, sshCheck.OK)
	assert.True(t, sshCheck.Fatal)
}

func TestPreflight_MissingEngineIsNotFatal(t *testing.T) {
	fake := execx.NewFake()
	fake.Missing = []string{"podman", "docker"}
	o := testOrchestrator(t, fake)

	checks := o.Preflight(context.Background())
	assert.True(t, PreflightOK(checks), "host mode still covers a missing engine")

	engine, ok := checkByName(checks, "container engine")
	require.True(t, ok)
	assert.False(t, engine.OK)
	assert.False(t, engine.Fatal)
}

func TestPreflight_MissingPayloadConfig(t *testing.T) {
	o := testOrchestrator(t, execx.NewFake())

	checks := o.Preflight(context.Background())
	cfgCheck, ok := checkByName(checks, "payload config")
	require.True(t, ok)
	assert.False(t, cfgCheck.OK)
	assert.Contains(t, cfgCheck.Detail, "ncdeploy init")
}

func TestPreflight_DockerDaemonUnreachable(t *testing.T) {
	fake := execx.NewFake()
	fake.Missing = []string{"podman"}
	o := testOrchestrator(t, fake)
	o.DockerAPI = &docker.FakeClient{PingErr: errors.New("cannot connect to the daemon")}

	checks := o.Preflight(context.Background())
	daemon, ok := checkByName(checks, "docker daemon")
	require.True(t, ok)
	assert.False(t, daemon.OK)
	assert.Contains(t, daemon.Detail, "cannot connect")
}
