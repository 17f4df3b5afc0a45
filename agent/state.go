package agent

// State is a phase of the agent control loop.
type State int

const (
	StateAwaitingModel State = iota
	StateExecutingTools
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingModel:
		return "AwaitingModel"
	case StateExecutingTools:
		return "ExecutingTools"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Transition describes one state change. Turn is the number of model calls
// made so far in the run.
type Transition struct {
	From State
	To   State
	Turn int
}
