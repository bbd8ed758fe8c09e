package sector

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// State is a phase of a sync attempt.
type State int

const (
	Waiting State = iota
	Preparing
	Copying
	Relinking
	Indexing
	Finished
	Failed
	Canceled
)

var stateNames = []string{
	"waiting", "preparing", "copying", "relinking", "indexing",
	"finished", "failed", "canceled",
}

// StateFromString converts a case-insensitive state name.
func StateFromString(s string) (State, bool) {
	idx := slices.Index(stateNames, strings.ToLower(strings.TrimSpace(s)))
	if idx < 0 {
		return Waiting, false
	}
	return State(idx), true
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// IsTerminal is true for states that end an attempt.
func (s State) IsTerminal() bool {
	return s == Finished || s == Failed || s == Canceled
}

// IsRunning is true for states between WAITING and the terminal ones.
func (s State) IsRunning() bool {
	return s > Waiting && !s.IsTerminal()
}

// CanTransition checks if a sync may move from one state to another.
// Phases follow each other strictly, FAILED and CANCELED are reachable
// from every non-terminal state.
func CanTransition(from, to State) bool {
	if from.IsTerminal() {
		return false
	}
	if to == Failed || to == Canceled {
		return true
	}
	return to == from+1
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	res, ok := StateFromString(str)
	if !ok {
		return fmt.Errorf("unknown sync state %q", str)
	}
	*s = res
	return nil
}
