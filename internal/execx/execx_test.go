package execx

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFake_RecordsCalls(t *testing.T) {
	f := NewFake()
	ctx := context.Background()

	err := f.Run(ctx, "docker", "ps", "-a")
	assert.NoError(t, err)

	out, err := f.Output(ctx, "ssh", "host", "true")
	assert.NoError(t, err)
	assert.Empty(t, out)

	lines := f.CommandLines()
	require.Len(t, lines, 2)
	assert.Equal(t, "docker ps -a", lines[0])
	assert.Equal(t, "ssh host true", lines[1])
}

func TestFake_ScriptedResponses(t *testing.T) {
	f := NewFake().
		Script("inspect", "running", nil).
		Script("build", "", errors.New("build failed"))
	ctx := context.Background()

	out, err := f.Output(ctx, "docker", "container", "inspect", "-f", "{{.State.Status}}", "web")
	assert.NoError(t, err)
	assert.Equal(t, "running", out)

	err = f.Run(ctx, "docker", "build", "-t", "web:latest", ".")
	assert.EqualError(t, err, "build failed")

	// First matching response wins.
	assert.True(t, f.HasCommand("build -t web:latest"))
	assert.Equal(t, 1, f.CountCommands("inspect"))
}

func TestFake_DoCallback(t *testing.T) {
	var seen Call
	f := NewFake()
	f.Responses = append(f.Responses, Response{
		Match: "save -o",
		Do:    func(c Call) { seen = c },
	})

	err := f.Run(context.Background(), "podman", "save", "-o", "/tmp/img.tar", "web:abc1234")
	assert.NoError(t, err)
	assert.Equal(t, "podman", seen.Name)
	assert.Contains(t, seen.String(), "/tmp/img.tar")
}

func TestFake_Look(t *testing.T) {
	f := NewFake()
	f.Missing = []string{"podman"}

	assert.False(t, f.Look("podman"))
	assert.True(t, f.Look("docker"))
}

func TestFake_RunDetached(t *testing.T) {
	f := NewFake()

	pid, err := f.RunDetached(context.Background(), "/tmp/server.log", "python3", "-m", "app", "serve")
	assert.NoError(t, err)
	assert.Equal(t, 4242, pid)
	assert.True(t, f.HasCommand(">/tmp/server.log"))

	f.Script("serve", "", errors.New("spawn failed"))
	_, err = f.RunDetached(context.Background(), "/tmp/server.log", "python3", "-m", "app", "serve")
	assert.Error(t, err)
}

func TestTailLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		n     int
		want  []string
	}{
		{
			name:  "fewer lines than requested",
			input: "one\ntwo\n",
			n:     5,
			want:  []string{"one", "two"},
		},
		{
			name:  "more lines than requested",
			input: "a\nb\nc\nd\n",
			n:     2,
			want:  []string{"c", "d"},
		},
		{
			name:  "empty input",
			input: "",
			n:     3,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TailLines(strings.NewReader(tt.input), tt.n)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSystem_Look(t *testing.T) {
	s := NewRunner()

	// sh is present on any POSIX system the tool supports.
	assert.True(t, s.Look("sh"))
	assert.False(t, s.Look("definitely-not-a-real-binary-xyz"))
}
