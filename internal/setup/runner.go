package setup

import (
	"context"
	"io"

	"github.com/mcdonaldj/enginesetup/internal/ports"
	"github.com/rs/zerolog"
)

// StepResult is the outcome of one bootstrap or post-step invocation.
type StepResult struct {
	Invocation ports.Invocation
	Mode       Mode
	Output     string // empty in fire-and-forget mode
	ExitCode   int
	Err        error
}

// Runner invokes the bootstrap tool's entry script against the manifest.
type Runner struct {
	Commands          ports.CommandRunner
	Layout            Layout
	Interpreter       string // empty runs the script directly
	BreakOnFirstError bool
	// Out receives streamed output in fire-and-forget mode.
	Out io.Writer
	Log zerolog.Logger
}

// Invocation builds the bootstrap command. It runs from the project root.
func (r *Runner) Invocation() ports.Invocation {
	args := []string{
		"-b", r.Layout.LibrariesDir,
		"--local-bootstrap-file=" + r.Layout.ManifestPath,
	}
	if r.BreakOnFirstError {
		args = append(args, "--break-on-first-error")
	}

	inv := ports.Invocation{Dir: r.Layout.Root, Contract: ports.Strict}
	if r.Interpreter == "" {
		inv.Name = r.Layout.ScriptPath
		inv.Args = args
	} else {
		inv.Name = r.Interpreter
		inv.Args = append([]string{r.Layout.ScriptPath}, args...)
	}
	return inv
}

// Run executes the bootstrap tool in the given mode.
// In FireAndForget mode the returned Err is informational and must not fail the run.
func (r *Runner) Run(ctx context.Context, mode Mode) StepResult {
	inv := r.Invocation()
	if mode == FireAndForget {
		inv.Contract = ports.BestEffort
		code, err := r.Commands.Stream(ctx, inv, r.Out)
		res := StepResult{Invocation: inv, Mode: mode, ExitCode: code}
		if err != nil {
			res.Err = &BootstrapError{Command: inv.String(), ExitCode: code, Err: err}
			r.Log.Debug().Err(err).Int("exit", code).Msg("bootstrap failed in fire-and-forget mode")
		}
		return res
	}

	out, err := r.Commands.Run(ctx, inv)
	res := StepResult{Invocation: inv, Mode: mode, Output: out.Output, ExitCode: out.ExitCode}
	if err != nil {
		res.Err = &BootstrapError{Command: inv.String(), Output: out.Output, ExitCode: out.ExitCode, Err: err}
	}
	return res
}
