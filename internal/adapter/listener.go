package adapter

// AdapterListener observes each outer-loop iteration of Adapter.DoStep, in
// the Before/After shape adapted from the runtime's function-call listener.
// Before fires once per iteration ahead of the integrate-or-snap step; After
// fires once per iteration with the events detected and the error (if any).
// Used by the CLI driver for verbose tracing and by tests asserting testable
// property 9 ("exactly one event-mode entry") without reaching into adapter
// internals.
type AdapterListener interface {
	Before(segmentStart, tNext float64)
	After(outcome StepOutcome)
}

// StepOutcome summarizes one outer-loop iteration of DoStep.
type StepOutcome struct {
	SegmentStart, TNext float64
	TimeEvent            bool
	StateEvent            bool
	StepEvent             bool
	EnteredEventMode      bool
	Err                   error
}

func (a *Adapter) notifyBefore(segmentStart, tNext float64) {
	if a.listener != nil {
		a.listener.Before(segmentStart, tNext)
	}
}

func (a *Adapter) notifyAfter(segmentStart, tNext float64, timeEvent, stateEvent, stepEvent bool, err error) {
	if a.listener == nil {
		return
	}
	a.listener.After(StepOutcome{
		SegmentStart:     segmentStart,
		TNext:            tNext,
		TimeEvent:        timeEvent,
		StateEvent:       stateEvent,
		StepEvent:        stepEvent,
		EnteredEventMode: timeEvent || stateEvent || stepEvent,
		Err:              err,
	})
}
