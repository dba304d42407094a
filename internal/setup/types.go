// Package setup acquires the pinned bootstrap tool, runs it against the
// project manifest and triggers the optional post-step build command.
package setup

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mcdonaldj/enginesetup/internal/config"
)

// Mode selects how the bootstrap tool is executed.
type Mode string

const (
	// FireAndForget streams the tool's output and ignores its exit status.
	FireAndForget Mode = "fire-and-forget"
	// Observed captures the output and fails the run on non-zero exit.
	Observed Mode = "observed"
)

// ParseMode converts a config or flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fire-and-forget", "fire", "ff":
		return FireAndForget, nil
	case "observed", "observe":
		return Observed, nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected fire-and-forget or observed)", s)
	}
}

// PinPolicy decides what a failed branch pin does to the run.
type PinPolicy string

const (
	// PinWarn reports the failure and continues.
	PinWarn PinPolicy = "warn"
	// PinAbort fails the acquisition.
	PinAbort PinPolicy = "abort"
	// PinIgnore continues without reporting.
	PinIgnore PinPolicy = "ignore"
)

// ParsePinPolicy converts a config or flag value to a PinPolicy.
// Empty selects PinWarn.
func ParsePinPolicy(s string) (PinPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "warn":
		return PinWarn, nil
	case "abort":
		return PinAbort, nil
	case "ignore":
		return PinIgnore, nil
	default:
		return "", fmt.Errorf("unknown pin policy %q (expected warn, abort or ignore)", s)
	}
}

// AcquireStatus is the outcome of an acquisition attempt.
type AcquireStatus int

const (
	StatusSkipped AcquireStatus = iota
	StatusAcquired
	StatusAcquiredWithPinWarning
	StatusFailed
)

func (s AcquireStatus) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusAcquired:
		return "acquired"
	case StatusAcquiredWithPinWarning:
		return "acquired-with-pin-warning"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("AcquireStatus(%d)", int(s))
	}
}

// Coordinate identifies the pinned bootstrap tool.
type Coordinate struct {
	Repository string
	Revision   string
}

// Validate rejects coordinates with missing fields.
func (c Coordinate) Validate() error {
	if strings.TrimSpace(c.Repository) == "" {
		return fmt.Errorf("coordinate: repository is required")
	}
	if strings.TrimSpace(c.Revision) == "" {
		return fmt.Errorf("coordinate: revision is required")
	}
	return nil
}

func (c Coordinate) String() string {
	return c.Repository + "@" + c.Revision
}

// Layout holds the absolute paths every step works against.
// It replaces any reliance on the process working directory.
type Layout struct {
	Root         string
	LibrariesDir string
	ToolDir      string // the presence check target
	ScriptPath   string
	ManifestPath string
}

// NewLayout resolves the config's relative paths against its root.
func NewLayout(cfg *config.Config) (Layout, error) {
	root, err := cfg.RootDir()
	if err != nil {
		return Layout{}, fmt.Errorf("resolve root: %w", err)
	}
	libs := resolve(root, cfg.LibrariesDir)
	tool := resolve(libs, cfg.Bootstrap.Directory)
	return Layout{
		Root:         root,
		LibrariesDir: libs,
		ToolDir:      tool,
		ScriptPath:   resolve(tool, cfg.Bootstrap.Script),
		ManifestPath: resolve(libs, cfg.Bootstrap.Manifest),
	}, nil
}

func resolve(base, p string) string {
	p = config.ExpandPath(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, filepath.FromSlash(p))
}
