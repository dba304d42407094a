package ports

import (
	"context"
	"io"
	"strings"
)

// Contract declares how a caller treats a non-zero exit.
type Contract int

const (
	// Strict invocations abort the run on any failure.
	Strict Contract = iota
	// BestEffort invocations are allowed to fail.
	BestEffort
)

func (c Contract) String() string {
	if c == BestEffort {
		return "best-effort"
	}
	return "strict"
}

// Invocation describes one external process call.
type Invocation struct {
	Name string   // Program or script to run
	Args []string // Argument vector, never shell-joined
	Dir  string   // Working directory; empty means inherit

	// Shell requests platform shell indirection (cmd /C on Windows, sh elsewhere).
	// Only needed for batch/shell scripts that cannot be exec'd directly.
	Shell bool

	Contract Contract
}

// String renders the invocation for logs and error messages.
func (i Invocation) String() string {
	parts := append([]string{i.Name}, i.Args...)
	return strings.Join(parts, " ")
}

// RunResult is the observable outcome of a finished process.
type RunResult struct {
	Output   string // Combined stdout/stderr (empty for streamed runs)
	ExitCode int
}

// Exit codes reported when no process exit status is available.
const (
	ExitNotFound  = 127 // binary could not be started
	ExitCancelled = -1  // context cancelled before the process exited
)

// CommandRunner executes external processes synchronously.
// Production code uses ExecRunner adapter; tests use MockCommandRunner.
type CommandRunner interface {
	// Run executes inv and captures combined output.
	// A non-zero exit is returned as an error alongside the result.
	Run(ctx context.Context, inv Invocation) (RunResult, error)

	// Stream executes inv, copying its output to w as it is produced.
	// Returns the exit code and a non-nil error on non-zero exit.
	Stream(ctx context.Context, inv Invocation, w io.Writer) (int, error)
}
