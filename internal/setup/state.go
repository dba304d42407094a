package setup

import "fmt"

// State is one node of the setup state machine.
type State string

const (
	StateStart           State = "START"
	StateToolChecked     State = "TOOL_CHECKED"
	StateToolPresent     State = "TOOL_PRESENT"
	StateToolAcquiring   State = "TOOL_ACQUIRING"
	StateToolAcquired    State = "TOOL_ACQUIRED"
	StateBootstrapRun    State = "BOOTSTRAP_RUNNING"
	StateBootstrapDone   State = "BOOTSTRAP_DONE"
	StatePostStepRun     State = "POST_STEP_RUNNING"
	StatePostStepDone    State = "POST_STEP_DONE"
	StateEnd             State = "END"
	StateAcquireFailed   State = "ACQUIRE_FAILED"
	StateBootstrapFailed State = "BOOTSTRAP_FAILED"
	StatePostStepFailed  State = "POST_STEP_FAILED"
)

// IsTerminal reports whether the run stops in s.
func IsTerminal(s State) bool {
	switch s {
	case StateEnd, StateAcquireFailed, StateBootstrapFailed, StatePostStepFailed:
		return true
	default:
		return false
	}
}

// IsFailure reports whether s is a terminal failure state.
func IsFailure(s State) bool {
	return IsTerminal(s) && s != StateEnd
}

var transitions = map[State][]State{
	StateStart:         {StateToolChecked, StateAcquireFailed},
	StateToolChecked:   {StateToolPresent, StateToolAcquiring},
	StateToolAcquiring: {StateToolAcquired, StateAcquireFailed},
	StateToolPresent:   {StateBootstrapRun},
	StateToolAcquired:  {StateBootstrapRun},
	StateBootstrapRun:  {StateBootstrapDone, StateBootstrapFailed},
	StateBootstrapDone: {StatePostStepRun, StateEnd},
	StatePostStepRun:   {StatePostStepDone, StatePostStepFailed},
	StatePostStepDone:  {StateEnd},
}

func isAllowedTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// machine tracks the current state and the path taken through it.
type machine struct {
	current State
	visited []State
	onMove  func(from, to State)
}

func newMachine(onMove func(from, to State)) *machine {
	return &machine{current: StateStart, visited: []State{StateStart}, onMove: onMove}
}

// advance moves to the next state, rejecting transitions the table does not allow.
func (m *machine) advance(to State) error {
	from := m.current
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("setup: disallowed transition %s -> %s", from, to)
	}
	m.current = to
	m.visited = append(m.visited, to)
	if m.onMove != nil {
		m.onMove(from, to)
	}
	return nil
}
