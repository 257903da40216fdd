package docker

import (
	"context"

	"github.com/zorak1103/ncdeploy/internal/runtime"
)

// FakeClient is a scripted Client for tests.
type FakeClient struct {
	PingErr    error
	States     map[string]runtime.InstanceState
	StateErr   error
	PingCalls  int
	CloseCalls int
}

// Compile-time verification that FakeClient implements Client
var _ Client = (*FakeClient)(nil)

// Ping returns the scripted ping error.
func (f *FakeClient) Ping(_ context.Context) error {
	f.PingCalls++
	return f.PingErr
}

// Close records the call.
func (f *FakeClient) Close() error {
	f.CloseCalls++
	return nil
}

// ContainerState returns the scripted state, defaulting to absent.
func (f *FakeClient) ContainerState(_ context.Context, name string) (runtime.InstanceState, error) {
	if f.StateErr != nil {
		return runtime.StateAbsent, f.StateErr
	}
	if state, ok := f.States[name]; ok {
		return state, nil
	}
	return runtime.StateAbsent, nil
}
