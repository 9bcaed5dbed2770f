// internal/pipeline/state.go
package pipeline

import "fmt"

// State is a step of the scrape state machine
type State int

const (
	StateIdle State = iota
	StateFetchingBatch
	StateVisitingItem
	StateExtracting
	StateCheckpointing
	StateDone
	StateAborted
)

var stateNames = map[State]string{
	StateIdle:          "idle",
	StateFetchingBatch: "fetching_batch",
	StateVisitingItem:  "visiting_item",
	StateExtracting:    "extracting",
	StateCheckpointing: "checkpointing",
	StateDone:          "done",
	StateAborted:       "aborted",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether the run has ended
func (s State) Terminal() bool {
	return s == StateDone || s == StateAborted
}

var transitions = map[State][]State{
	StateIdle:          {StateFetchingBatch, StateAborted},
	StateFetchingBatch: {StateVisitingItem, StateDone, StateAborted},
	StateVisitingItem:  {StateExtracting, StateVisitingItem, StateFetchingBatch, StateDone, StateAborted},
	StateExtracting:    {StateCheckpointing, StateVisitingItem, StateFetchingBatch, StateDone, StateAborted},
	StateCheckpointing: {StateVisitingItem, StateFetchingBatch, StateDone, StateAborted},
}

// CanTransition reports whether from may be followed by to
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
