package setup

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mcdonaldj/enginesetup/internal/config"
	"github.com/mcdonaldj/enginesetup/internal/ports"
	"github.com/rs/zerolog"
)

// Options selects the behaviour of one run.
type Options struct {
	Mode     Mode
	PostStep bool
}

// Deps are the external collaborators an Orchestrator drives.
type Deps struct {
	FS       ports.FileSystem
	Git      ports.GitClient
	Commands ports.CommandRunner
	Out      io.Writer // bootstrap and post-step output
	Log      zerolog.Logger
}

// Hooks receive progress notifications while a run advances.
// Every field is optional.
type Hooks struct {
	OnTransition func(from, to State)
	OnCloned     func(dest string)
	OnPinWarning func(w *PinWarning)
}

// Report records the path a run took and each step's outcome.
type Report struct {
	Mode      Mode
	States    []State
	Acquire   AcquireResult
	Bootstrap *StepResult
	PostStep  *StepResult
}

// Final returns the last state reached.
func (r *Report) Final() State {
	if len(r.States) == 0 {
		return StateStart
	}
	return r.States[len(r.States)-1]
}

// Failed reports whether the run ended in a failure state.
func (r *Report) Failed() bool {
	return IsFailure(r.Final())
}

// Orchestrator runs presence check, acquisition, bootstrap and post-step in order.
type Orchestrator struct {
	Acquirer *Acquirer
	Runner   *Runner
	PostStep *PostStep // nil when no post-step is configured
	Out      io.Writer
	Hooks    Hooks
	Log      zerolog.Logger
}

// New wires an Orchestrator from configuration.
func New(cfg *config.Config, deps Deps) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	policy, err := ParsePinPolicy(cfg.PinPolicy)
	if err != nil {
		return nil, err
	}
	coord := Coordinate{Repository: cfg.Bootstrap.Repository, Revision: cfg.Bootstrap.Revision}
	if err := coord.Validate(); err != nil {
		return nil, err
	}
	layout, err := NewLayout(cfg)
	if err != nil {
		return nil, err
	}

	branch := cfg.Bootstrap.Branch
	if branch == "" {
		branch = config.DefaultBranch
	}
	out := deps.Out
	if out == nil {
		out = io.Discard
	}

	o := &Orchestrator{
		Acquirer: &Acquirer{
			FS:         deps.FS,
			Git:        deps.Git,
			Layout:     layout,
			Coordinate: coord,
			Branch:     branch,
			Policy:     policy,
			Log:        deps.Log,
		},
		Runner: &Runner{
			Commands:          deps.Commands,
			Layout:            layout,
			Interpreter:       cfg.Bootstrap.Interpreter,
			BreakOnFirstError: cfg.Bootstrap.BreakOnFirstError,
			Out:               out,
			Log:               deps.Log,
		},
		Out: out,
		Log: deps.Log,
	}
	if cfg.PostStep.Enabled {
		o.PostStep = &PostStep{
			Commands: deps.Commands,
			Root:     layout.Root,
			Script:   resolve(layout.Root, cfg.PostStep.Script),
			Args:     cfg.PostStep.Args,
			Shell:    cfg.PostStep.Shell,
		}
	}
	return o, nil
}

// Layout returns the resolved paths the run works against.
func (o *Orchestrator) Layout() Layout {
	return o.Acquirer.Layout
}

// Run drives one setup run. The returned error is the first fatal failure;
// the report is always non-nil and describes how far the run got.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Report, error) {
	rep := &Report{Mode: opts.Mode}
	if opts.Mode != FireAndForget && opts.Mode != Observed {
		return rep, fmt.Errorf("setup: unknown mode %q", opts.Mode)
	}
	if opts.PostStep && o.PostStep == nil {
		return rep, errors.New("setup: post-step requested but none is configured")
	}

	m := newMachine(o.Hooks.OnTransition)
	defer func() { rep.States = m.visited }()

	o.Acquirer.OnCloned = o.Hooks.OnCloned
	present, err := o.Acquirer.Present()
	if err != nil {
		rep.Acquire = o.Acquirer.presenceFailed(err)
		return rep, o.fail(m, StateAcquireFailed, rep.Acquire.Err)
	}
	if err := m.advance(StateToolChecked); err != nil {
		return rep, err
	}

	if present {
		rep.Acquire = o.Acquirer.result(StatusSkipped)
		if err := m.advance(StateToolPresent); err != nil {
			return rep, err
		}
	} else {
		if err := m.advance(StateToolAcquiring); err != nil {
			return rep, err
		}
		rep.Acquire = o.Acquirer.Fetch(ctx)
		if rep.Acquire.Status == StatusFailed {
			return rep, o.fail(m, StateAcquireFailed, rep.Acquire.Err)
		}
		if rep.Acquire.Warning != nil && o.Hooks.OnPinWarning != nil {
			o.Hooks.OnPinWarning(rep.Acquire.Warning)
		}
		if err := m.advance(StateToolAcquired); err != nil {
			return rep, err
		}
	}

	if err := m.advance(StateBootstrapRun); err != nil {
		return rep, err
	}
	boot := o.Runner.Run(ctx, opts.Mode)
	rep.Bootstrap = &boot
	// Fire-and-forget swallows tool failures, but not an interrupted run.
	if boot.Err != nil && (opts.Mode == Observed || ctx.Err() != nil) {
		return rep, o.fail(m, StateBootstrapFailed, boot.Err)
	}
	if opts.Mode == Observed {
		o.write(boot.Output)
	}
	if err := m.advance(StateBootstrapDone); err != nil {
		return rep, err
	}

	if opts.PostStep {
		if err := m.advance(StatePostStepRun); err != nil {
			return rep, err
		}
		post := o.PostStep.Run(ctx)
		rep.PostStep = &post
		if post.Err != nil {
			return rep, o.fail(m, StatePostStepFailed, post.Err)
		}
		o.write(post.Output)
		if err := m.advance(StatePostStepDone); err != nil {
			return rep, err
		}
	}

	if err := m.advance(StateEnd); err != nil {
		return rep, err
	}
	return rep, nil
}

// fail moves the machine into a failure state and returns cause.
func (o *Orchestrator) fail(m *machine, to State, cause error) error {
	if err := m.advance(to); err != nil {
		return errors.Join(cause, err)
	}
	o.Log.Debug().Err(cause).Str("state", string(to)).Msg("setup run failed")
	return cause
}

func (o *Orchestrator) write(output string) {
	if output == "" {
		return
	}
	_, _ = io.WriteString(o.Out, output)
}
