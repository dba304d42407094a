package setup

import (
	"context"

	"github.com/mcdonaldj/enginesetup/internal/ports"
)

// PostStep runs the external build command after bootstrapping.
// It always uses observed semantics: output is captured, non-zero exit fails.
type PostStep struct {
	Commands ports.CommandRunner
	Root     string
	Script   string // absolute
	Args     []string
	Shell    bool
}

// Invocation builds the post-step command. It runs from the project root.
func (p *PostStep) Invocation() ports.Invocation {
	return ports.Invocation{
		Name:     p.Script,
		Args:     append([]string(nil), p.Args...),
		Dir:      p.Root,
		Shell:    p.Shell,
		Contract: ports.Strict,
	}
}

// Run executes the post-step command once.
func (p *PostStep) Run(ctx context.Context) StepResult {
	inv := p.Invocation()
	out, err := p.Commands.Run(ctx, inv)
	res := StepResult{Invocation: inv, Mode: Observed, Output: out.Output, ExitCode: out.ExitCode}
	if err != nil {
		res.Err = &PostStepError{Command: inv.String(), Output: out.Output, ExitCode: out.ExitCode, Err: err}
	}
	return res
}
