package instance

import "github.com/fmi4go/fmi2/internal/fmierr"

// State is one node of the FMI 2.0 instance lifecycle state machine from
// spec.md §4.3.
type State int

const (
	Instantiated State = iota
	InitializationMode
	StepComplete
	ContinuousTimeMode
	EventMode
	Terminated
	Freed
)

func (s State) String() string {
	switch s {
	case Instantiated:
		return "Instantiated"
	case InitializationMode:
		return "InitializationMode"
	case StepComplete:
		return "StepComplete"
	case ContinuousTimeMode:
		return "ContinuousTimeMode"
	case EventMode:
		return "EventMode"
	case Terminated:
		return "Terminated"
	case Freed:
		return "Freed"
	default:
		return "Unknown"
	}
}

// transition is one table entry: from a source state, an operation either
// lands in a fixed destination state or is rejected.
type transition struct {
	from State
	op   string
	to   State
}

// transitionTable enumerates every legal (state, operation) pair from
// spec.md §4.3. Looked up by (state, op); a miss is a StateError.
var transitionTable = []transition{
	{Instantiated, "SetupExperiment", Instantiated},
	{Instantiated, "EnterInitializationMode", InitializationMode},
	{InitializationMode, "ExitInitializationModeCoSim", StepComplete},
	{InitializationMode, "ExitInitializationModeME", EventMode},
	{StepComplete, "DoStep", StepComplete},
	{StepComplete, "EnterEventMode", EventMode},
	{ContinuousTimeMode, "EnterEventMode", EventMode},
	{EventMode, "NewDiscreteStates", EventMode},
	{EventMode, "EnterContinuousTimeMode", ContinuousTimeMode},
	{ContinuousTimeMode, "CompletedIntegratorStep", ContinuousTimeMode},
}

// liveStates are the states in which read/write variable access and
// terminate are permitted.
var liveStates = map[State]bool{
	Instantiated:        true,
	InitializationMode:  true,
	StepComplete:        true,
	ContinuousTimeMode:  true,
	EventMode:           true,
}

func allowedOpsFrom(s State) string {
	ops := ""
	for _, t := range transitionTable {
		if t.from == s {
			if ops != "" {
				ops += ", "
			}
			ops += t.op
		}
	}
	if ops == "" {
		return "(none)"
	}
	return ops
}

// checkTransition validates that op is legal from s and returns the
// destination state. Terminate and Reset and Free are handled by the caller
// directly since they are legal from every live/any state respectively,
// rather than from one fixed source state.
func checkTransition(s State, op string) (State, error) {
	for _, t := range transitionTable {
		if t.from == s && t.op == op {
			return t.to, nil
		}
	}
	return s, fmierr.NewStateError(op, s.String(), allowedOpsFrom(s))
}

func checkLive(s State, op string) error {
	if !liveStates[s] {
		return fmierr.NewStateError(op, s.String(), "(instance is not live)")
	}
	return nil
}
