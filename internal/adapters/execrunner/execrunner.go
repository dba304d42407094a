// Package execrunner provides a command runner adapter using exec.CommandContext.
package execrunner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"runtime"

	"github.com/mcdonaldj/enginesetup/internal/ports"
	"github.com/rs/zerolog"
)

// ExecRunner implements ports.CommandRunner using exec.CommandContext.
type ExecRunner struct {
	// goos selects the shell indirection form. Defaults to runtime.GOOS.
	goos string
	// posixShell is the interpreter used for Shell invocations off Windows.
	posixShell string
	log        zerolog.Logger
}

// Option is a functional option for configuring ExecRunner.
type Option func(*ExecRunner)

// WithGOOS overrides the target platform used for shell indirection.
func WithGOOS(goos string) Option {
	return func(r *ExecRunner) {
		r.goos = goos
	}
}

// WithShell sets the POSIX shell used for Shell invocations.
func WithShell(path string) Option {
	return func(r *ExecRunner) {
		r.posixShell = path
	}
}

// WithLogger attaches a diagnostic logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *ExecRunner) {
		r.log = log
	}
}

// New creates a new ExecRunner adapter.
func New(opts ...Option) *ExecRunner {
	r := &ExecRunner{
		goos:       runtime.GOOS,
		posixShell: "sh",
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes inv and captures combined output.
func (r *ExecRunner) Run(ctx context.Context, inv ports.Invocation) (ports.RunResult, error) {
	var buf bytes.Buffer
	cmd := r.command(ctx, inv)
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	res := ports.RunResult{Output: buf.String(), ExitCode: exitCode(ctx, err)}
	r.trace(inv, res.ExitCode, err)
	return res, err
}

// Stream executes inv, copying its output to w as it is produced.
func (r *ExecRunner) Stream(ctx context.Context, inv ports.Invocation, w io.Writer) (int, error) {
	if w == nil {
		w = io.Discard
	}
	cmd := r.command(ctx, inv)
	cmd.Stdout = w
	cmd.Stderr = w

	err := cmd.Run()
	code := exitCode(ctx, err)
	r.trace(inv, code, err)
	return code, err
}

// Argv returns the argument vector actually executed for inv,
// including any shell indirection.
func (r *ExecRunner) Argv(inv ports.Invocation) []string {
	argv := append([]string{inv.Name}, inv.Args...)
	if !inv.Shell {
		return argv
	}
	if r.goos == "windows" {
		return append([]string{"cmd", "/C", "call"}, argv...)
	}
	return append([]string{r.posixShell}, argv...)
}

// command creates an exec.Cmd for inv.
func (r *ExecRunner) command(ctx context.Context, inv ports.Invocation) *exec.Cmd {
	argv := r.Argv(inv)
	r.log.Debug().
		Str("cmd", argv[0]).
		Strs("args", argv[1:]).
		Str("dir", inv.Dir).
		Str("contract", inv.Contract.String()).
		Msg("exec start")
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = inv.Dir
	return cmd
}

func (r *ExecRunner) trace(inv ports.Invocation, code int, err error) {
	ev := r.log.Debug()
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Str("cmd", inv.Name).Int("exit", code).Msg("exec done")
}

// exitCode maps a Run error to a process exit code.
func exitCode(ctx context.Context, err error) int {
	if err == nil {
		return 0
	}
	if ctx.Err() != nil {
		return ports.ExitCancelled
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return ports.ExitNotFound
	}
	return 1
}

// Compile-time check that ExecRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*ExecRunner)(nil)
