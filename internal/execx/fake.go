package execx

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Call records a single command issued through a Fake runner.
type Call struct {
	Name string
	Args []string
}

// String renders the call the way it would appear on a shell command line.
func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Response scripts the outcome of a command matched by substring.
type Response struct {
	// Match is a substring matched against the full command line.
	Match string
	// Stdout is returned by Output for matching commands.
	Stdout string
	// Err is returned by Run/Output for matching commands.
	Err error
	// Do, when set, runs on match. Lets tests simulate side effects such as
	// a save command producing its output file.
	Do func(Call)
}

// Fake is a scripted Runner for tests. Commands are recorded in order;
// outcomes are selected by the first Response whose Match substring occurs
// in the command line. Unmatched commands succeed with empty output.
type Fake struct {
	mu        sync.Mutex
	Calls     []Call
	Responses []Response
	// Missing lists executable names Look reports as absent.
	Missing []string
	// DetachedPID is returned by RunDetached (default 4242).
	DetachedPID int
}

// Compile-time verification that Fake implements Runner
var _ Runner = (*Fake)(nil)

// NewFake returns an empty scripted runner.
func NewFake() *Fake {
	return &Fake{DetachedPID: 4242}
}

// Script appends a scripted response.
func (f *Fake) Script(match, stdout string, err error) *Fake {
	f.Responses = append(f.Responses, Response{Match: match, Stdout: stdout, Err: err})
	return f
}

func (f *Fake) record(name string, args []string) (Response, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := Call{Name: name, Args: args}
	f.Calls = append(f.Calls, call)
	line := call.String()
	for _, r := range f.Responses {
		if strings.Contains(line, r.Match) {
			if r.Do != nil {
				r.Do(call)
			}
			return r, true
		}
	}
	return Response{}, false
}

// Run records the command and returns the scripted error, if any.
func (f *Fake) Run(_ context.Context, name string, args ...string) error {
	r, _ := f.record(name, args)
	return r.Err
}

// Output records the command and returns the scripted stdout and error.
func (f *Fake) Output(_ context.Context, name string, args ...string) (string, error) {
	r, _ := f.record(name, args)
	return r.Stdout, r.Err
}

// RunDetached records the command and returns the scripted PID.
func (f *Fake) RunDetached(_ context.Context, logPath string, name string, args ...string) (int, error) {
	r, _ := f.record(name, append([]string{">" + logPath}, args...))
	if r.Err != nil {
		return 0, r.Err
	}
	return f.DetachedPID, nil
}

// Look reports false for names listed in Missing, true otherwise.
func (f *Fake) Look(name string) bool {
	for _, m := range f.Missing {
		if m == name {
			return false
		}
	}
	return true
}

// CommandLines returns every recorded call rendered as a command line.
func (f *Fake) CommandLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		lines = append(lines, c.String())
	}
	return lines
}

// HasCommand reports whether any recorded command line contains the substring.
func (f *Fake) HasCommand(substr string) bool {
	for _, line := range f.CommandLines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// CountCommands returns how many recorded command lines contain the substring.
func (f *Fake) CountCommands(substr string) int {
	count := 0
	for _, line := range f.CommandLines() {
		if strings.Contains(line, substr) {
			count++
		}
	}
	return count
}

// Dump renders the recorded calls for test failure messages.
func (f *Fake) Dump() string {
	return fmt.Sprintf("recorded commands:\n  %s", strings.Join(f.CommandLines(), "\n  "))
}
