package flow

// Action is what a flow does after processing an event
type Action int

const (
	// PresentNext shows the next step's surface and waits again
	PresentNext Action = iota
	// CommitOutcome runs the flow's terminal effects
	CommitOutcome
	// RejectEvent refuses the event and keeps the current step armed
	RejectEvent
)

func (a Action) String() string {
	switch a {
	case PresentNext:
		return "present_next"
	case CommitOutcome:
		return "commit"
	case RejectEvent:
		return "reject"
	default:
		return "unknown"
	}
}

// Transition is the pure result of feeding one event to a step
type Transition struct {
	Action Action
	Next   Step
	Reason error
}

func Next(step Step) Transition {
	return Transition{Action: PresentNext, Next: step}
}

func Commit() Transition {
	return Transition{Action: CommitOutcome, Next: Complete}
}

func Refuse(reason error) Transition {
	return Transition{Action: RejectEvent, Reason: reason}
}
