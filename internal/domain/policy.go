package domain

import (
	"fmt"
	"strings"
)

// DefaultActivityLimit is how many activities the capped form allows.
const DefaultActivityLimit = 3

// Decision is the outcome of asking a SelectionPolicy about a toggle.
type Decision int

const (
	DecisionSelect Decision = iota + 1
	DecisionDeselect
	DecisionRejectLimitReached
)

func (d Decision) String() string {
	switch d {
	case DecisionSelect:
		return "select"
	case DecisionDeselect:
		return "deselect"
	case DecisionRejectLimitReached:
		return "reject_limit_reached"
	default:
		return "unknown"
	}
}

// SelectionPolicy decides whether an activity toggle may proceed. It never
// mutates anything.
type SelectionPolicy interface {
	Decide(current ActivitySet, key ActivityKey) Decision
	// Limit is the maximum selection size, or 0 when unrestricted.
	Limit() int
}

// CappedPolicy allows at most Max selected activities. Deselecting is
// always allowed.
type CappedPolicy struct {
	Max int
}

func (p CappedPolicy) Decide(current ActivitySet, key ActivityKey) Decision {
	if current.Has(key) {
		return DecisionDeselect
	}
	if current.Len() >= p.Max {
		return DecisionRejectLimitReached
	}
	return DecisionSelect
}

func (p CappedPolicy) Limit() int { return p.Max }

// UnrestrictedPolicy lets every toggle through.
type UnrestrictedPolicy struct{}

func (UnrestrictedPolicy) Decide(current ActivitySet, key ActivityKey) Decision {
	if current.Has(key) {
		return DecisionDeselect
	}
	return DecisionSelect
}

func (UnrestrictedPolicy) Limit() int { return 0 }

// PolicyFor resolves a configured policy name ("capped" or "unrestricted").
func PolicyFor(name string, limit int) (SelectionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "capped":
		if limit <= 0 {
			limit = DefaultActivityLimit
		}
		return CappedPolicy{Max: limit}, nil
	case "unrestricted":
		return UnrestrictedPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown activity policy %q", name)
	}
}
