package match

import (
	"fmt"

	"github.com/jsphweid/midi2text/model"
)

// Policy decides what happens to a start event that no stop event closes.
type Policy string

const (
	// PolicyDrop leaves unmatched starts out of the output.
	PolicyDrop Policy = "drop"
	// PolicyExtend holds unmatched starts until the last tick of the input.
	PolicyExtend Policy = "extend"
	// PolicyError fails the conversion.
	PolicyError Policy = "error"
)

var Policies = []Policy{PolicyDrop, PolicyExtend, PolicyError}

func ParsePolicy(s string) (Policy, error) {
	for _, p := range Policies {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown unmatched policy %q (want one of %v)", s, Policies)
}

type UnmatchedError struct {
	// earliest unmatched start
	Start model.Event
	Count int
}

func (e *UnmatchedError) Error() string {
	return fmt.Sprintf("%d start event(s) have no matching stop, first is %v", e.Count, e.Start)
}
