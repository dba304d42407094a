package setup

import (
	"bytes"
	"testing"

	"github.com/mcdonaldj/enginesetup/internal/config"
	"github.com/mcdonaldj/enginesetup/internal/mocks"
	"github.com/rs/zerolog"
)

const (
	testRoot     = "/proj"
	testLibs     = "/proj/libraries"
	testToolDir  = "/proj/libraries/bootstrapping"
	testScript   = "/proj/libraries/bootstrapping/bootstrap.py"
	testManifest = "/proj/libraries/bootstrap.json"
	testShaders  = "/proj/tools/compile-shaders.sh"
)

// harness bundles an orchestrator with the mocks behind it.
type harness struct {
	fs          *mocks.MockFileSystem
	git         *mocks.MockGitClient
	runner      *mocks.MockCommandRunner
	out         *bytes.Buffer
	orch        *Orchestrator
	transitions [][2]State
	clonedDirs  []string
	warnings    []*PinWarning
}

func testConfig() *config.Config {
	cfg := config.DefaultConfigFor("linux")
	cfg.Root = testRoot
	return cfg
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	h := &harness{
		fs:     mocks.NewMockFileSystem(),
		git:    mocks.NewMockGitClient(),
		runner: mocks.NewMockCommandRunner(),
		out:    &bytes.Buffer{},
	}
	h.git.FS = h.fs

	orch, err := New(cfg, Deps{
		FS:       h.fs,
		Git:      h.git,
		Commands: h.runner,
		Out:      h.out,
		Log:      zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	orch.Hooks = Hooks{
		OnTransition: func(from, to State) { h.transitions = append(h.transitions, [2]State{from, to}) },
		OnCloned:     func(dest string) { h.clonedDirs = append(h.clonedDirs, dest) },
		OnPinWarning: func(w *PinWarning) { h.warnings = append(h.warnings, w) },
	}
	h.orch = orch
	return h
}

// gitCalls returns the number of clone and branch calls made.
func (h *harness) gitCalls() int {
	return len(h.git.CloneCalls) + len(h.git.BranchCalls)
}

func statesEqual(a, b []State) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
