package setup

import (
	"fmt"
	"strings"
)

// Step names the part of acquisition that failed.
type Step string

const (
	StepPresence Step = "presence"
	StepClone Step = "clone"
	StepPin   Step = "pin"
)

// AcquireError reports a fatal acquisition failure.
type AcquireError struct {
	Step       Step
	Repository string
	Dest       string
	Output     string
	ExitCode   int
	Err        error
}

func (e *AcquireError) Error() string {
	var msg string
	switch e.Step {
	case StepPresence:
		msg = fmt.Sprintf("acquire: checking %s failed", e.Dest)
	case StepPin:
		msg = fmt.Sprintf("acquire: pinning %s failed", e.Dest)
	default:
		msg = fmt.Sprintf("acquire: cloning %s into %s failed", e.Repository, e.Dest)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return withOutput(msg, e.Output)
}

func (e *AcquireError) Unwrap() error { return e.Err }

// PinWarning reports a failed branch pin. It is fatal only under PinAbort.
type PinWarning struct {
	Branch   string
	Revision string
	Output   string
	ExitCode int
	Err      error
}

func (w *PinWarning) Error() string {
	msg := fmt.Sprintf("pin: creating branch %s at %s failed (exit %d)", w.Branch, w.Revision, w.ExitCode)
	if w.Err != nil {
		msg += ": " + w.Err.Error()
	}
	return withOutput(msg, w.Output)
}

func (w *PinWarning) Unwrap() error { return w.Err }

// BootstrapError reports a failed bootstrap tool invocation.
type BootstrapError struct {
	Command  string
	Output   string
	ExitCode int
	Err      error
}

func (e *BootstrapError) Error() string {
	msg := fmt.Sprintf("bootstrap: %s exited %d", e.Command, e.ExitCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return withOutput(msg, e.Output)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

// PostStepError reports a failed post-step build command.
type PostStepError struct {
	Command  string
	Output   string
	ExitCode int
	Err      error
}

func (e *PostStepError) Error() string {
	msg := fmt.Sprintf("post-step: %s exited %d", e.Command, e.ExitCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return withOutput(msg, e.Output)
}

func (e *PostStepError) Unwrap() error { return e.Err }

// withOutput appends captured process output unless msg already carries it.
func withOutput(msg, output string) string {
	out := strings.TrimSpace(output)
	if out == "" || strings.Contains(msg, out) {
		return msg
	}
	return msg + "\n" + out
}
