package mocks

import (
	"context"
	"fmt"
	"io"

	"github.com/mcdonaldj/enginesetup/internal/ports"
)

// MockRunResult is a scripted outcome for one invocation.
type MockRunResult struct {
	Output   string
	ExitCode int
	// Err is returned as-is; if nil and ExitCode is non-zero an exit error is synthesized
	Err error
}

// MockCommandRunner implements ports.CommandRunner for testing.
type MockCommandRunner struct {
	// Calls records every invocation (Run and Stream) in order
	Calls []ports.Invocation
	// StreamCalls records invocations made through Stream
	StreamCalls []ports.Invocation
	// Results maps a key to a scripted result. Lookup order: the full
	// invocation string, "name arg0", then the program name.
	Results map[string]MockRunResult
}

// NewMockCommandRunner creates a new mock command runner.
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		Results: make(map[string]MockRunResult),
	}
}

// Run records inv and returns its scripted result.
func (m *MockCommandRunner) Run(ctx context.Context, inv ports.Invocation) (ports.RunResult, error) {
	m.Calls = append(m.Calls, inv)
	r := m.lookup(inv)
	return ports.RunResult{Output: r.Output, ExitCode: r.ExitCode}, r.err()
}

// Stream records inv, writes the scripted output to w, and returns the exit code.
func (m *MockCommandRunner) Stream(ctx context.Context, inv ports.Invocation, w io.Writer) (int, error) {
	m.Calls = append(m.Calls, inv)
	m.StreamCalls = append(m.StreamCalls, inv)
	r := m.lookup(inv)
	if w != nil && r.Output != "" {
		_, _ = io.WriteString(w, r.Output)
	}
	return r.ExitCode, r.err()
}

// Names returns the program names of all recorded calls.
func (m *MockCommandRunner) Names() []string {
	names := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		names[i] = c.Name
	}
	return names
}

func (m *MockCommandRunner) lookup(inv ports.Invocation) MockRunResult {
	if r, ok := m.Results[inv.String()]; ok {
		return r
	}
	if len(inv.Args) > 0 {
		if r, ok := m.Results[inv.Name+" "+inv.Args[0]]; ok {
			return r
		}
	}
	return m.Results[inv.Name]
}

func (r MockRunResult) err() error {
	if r.Err != nil {
		return r.Err
	}
	if r.ExitCode != 0 {
		return fmt.Errorf("exit status %d", r.ExitCode)
	}
	return nil
}

// Compile-time check that MockCommandRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*MockCommandRunner)(nil)
