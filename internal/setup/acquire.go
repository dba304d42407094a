package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcdonaldj/enginesetup/internal/ports"
	"github.com/rs/zerolog"
)

// AcquireResult describes what an acquisition did.
type AcquireResult struct {
	Status     AcquireStatus
	ToolDir    string
	Coordinate Coordinate
	Branch     string
	Warning    *PinWarning // set for StatusAcquiredWithPinWarning
	Err        error       // set for StatusFailed
}

// Acquirer materializes the pinned bootstrap tool exactly once.
type Acquirer struct {
	FS         ports.FileSystem
	Git        ports.GitClient
	Layout     Layout
	Coordinate Coordinate
	Branch     string
	Policy     PinPolicy
	Log        zerolog.Logger

	// OnCloned is called after a successful clone, before pinning.
	OnCloned func(dest string)
}

// Present reports whether the tool directory already exists.
func (a *Acquirer) Present() (bool, error) {
	return ToolPresent(a.FS, a.Layout.ToolDir)
}

// Acquire clones and pins the tool unless its directory already exists.
func (a *Acquirer) Acquire(ctx context.Context) AcquireResult {
	present, err := a.Present()
	if err != nil {
		return a.presenceFailed(err)
	}
	if present {
		a.Log.Debug().Str("dir", a.Layout.ToolDir).Msg("bootstrap tool present, skipping acquisition")
		return a.result(StatusSkipped)
	}
	return a.Fetch(ctx)
}

// Fetch clones the repository into the tool directory and pins the revision.
// It does no presence check; callers use Present or Acquire for the idempotency check.
func (a *Acquirer) Fetch(ctx context.Context) AcquireResult {
	dest := a.Layout.ToolDir

	if err := a.FS.MkdirAll(a.Layout.LibrariesDir, 0755); err != nil {
		return a.failed(&AcquireError{
			Step:       StepClone,
			Repository: a.Coordinate.Repository,
			Dest:       dest,
			Err:        err,
		})
	}

	out, err := a.Git.Clone(ctx, a.Coordinate.Repository, dest)
	if err != nil {
		return a.failed(&AcquireError{
			Step:       StepClone,
			Repository: a.Coordinate.Repository,
			Dest:       dest,
			Output:     out.Output,
			ExitCode:   out.ExitCode,
			Err:        err,
		})
	}
	a.Log.Debug().Str("repo", a.Coordinate.Repository).Str("dest", dest).Msg("bootstrap tool cloned")
	if a.OnCloned != nil {
		a.OnCloned(dest)
	}

	out, err = a.Git.CreateBranch(ctx, dest, a.Branch, a.Coordinate.Revision)
	if err == nil {
		return a.result(StatusAcquired)
	}

	warning := &PinWarning{
		Branch:   a.Branch,
		Revision: a.Coordinate.Revision,
		Output:   out.Output,
		ExitCode: out.ExitCode,
		Err:      err,
	}
	switch a.Policy {
	case PinAbort:
		// Drop the unpinned clone so the next run fetches and pins again.
		var cause error = warning
		if rmErr := a.FS.RemoveAll(dest); rmErr != nil {
			cause = errors.Join(warning, fmt.Errorf("removing unpinned clone %s: %w", dest, rmErr))
		}
		return a.failed(&AcquireError{
			Step:       StepPin,
			Repository: a.Coordinate.Repository,
			Dest:       dest,
			ExitCode:   out.ExitCode,
			Err:        cause,
		})
	case PinIgnore:
		a.Log.Debug().Err(warning).Msg("pin failed, ignored by policy")
		return a.result(StatusAcquired)
	default:
		a.Log.Debug().Err(warning).Msg("pin failed, continuing")
		res := a.result(StatusAcquiredWithPinWarning)
		res.Warning = warning
		return res
	}
}

func (a *Acquirer) result(status AcquireStatus) AcquireResult {
	return AcquireResult{
		Status:     status,
		ToolDir:    a.Layout.ToolDir,
		Coordinate: a.Coordinate,
		Branch:     a.Branch,
	}
}

func (a *Acquirer) failed(err error) AcquireResult {
	res := a.result(StatusFailed)
	res.Err = err
	return res
}

func (a *Acquirer) presenceFailed(err error) AcquireResult {
	return a.failed(&AcquireError{
		Step:       StepPresence,
		Repository: a.Coordinate.Repository,
		Dest:       a.Layout.ToolDir,
		Err:        err,
	})
}
