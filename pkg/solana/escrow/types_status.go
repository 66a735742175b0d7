package escrow

import (
	"fmt"

	"github.com/pkg/errors"
)

// Status is the lifecycle state of an escrow. Active is the only
// non-terminal state.
type Status uint8

const (
	StatusActive Status = iota
	StatusClaimed
	StatusRefunded
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusClaimed:
		return "claimed"
	case StatusRefunded:
		return "refunded"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusClaimed, StatusRefunded:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusClaimed, StatusRefunded:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusActive:
		return next == StatusClaimed || next == StatusRefunded
	default:
		return false
	}
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(value string) (Status, error) {
	for _, s := range []Status{StatusActive, StatusClaimed, StatusRefunded} {
		if s.String() == value {
			return s, nil
		}
	}
	return 0, errors.Errorf("unknown escrow status: %q", value)
}
