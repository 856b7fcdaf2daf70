package model

import "fmt"

// Phase is a state of the run state machine.
type Phase int

const (
	NotStarted Phase = iota
	Running
	Completed
	Failed
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Terminal reports whether no transition leaves p.
func (p Phase) Terminal() bool {
	return p == Completed || p == Failed
}

// Status is the observable position of a run in its state machine.
//
// StepIndex is meaningful while Running and identifies the failing step once Failed.
type Status struct {
	Phase     Phase
	StepIndex int
}

func (s Status) String() string {
	if s.Phase == Running || s.Phase == Failed {
		return fmt.Sprintf("%s(%d)", s.Phase, s.StepIndex)
	}

	return s.Phase.String()
}
