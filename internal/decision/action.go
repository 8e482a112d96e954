package decision

import (
	"github.com/hotardaw/hyperliquid-perps-automation/internal/gateway/exchange"
)

// Action is the closed set of moves the executor knows how to perform.
// Modeled as a tagged enum rather than strings so Decide stays exhaustive
// under the compiler's eye.
type Action int

const (
	ActionNone Action = iota
	ActionOpenLong
	ActionOpenShort
	ActionClose
	ActionReverseToLong
	ActionReverseToShort
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionOpenLong:
		return "open_long"
	case ActionOpenShort:
		return "open_short"
	case ActionClose:
		return "close"
	case ActionReverseToLong:
		return "reverse_to_long"
	case ActionReverseToShort:
		return "reverse_to_short"
	default:
		return "unknown"
	}
}

// IsReverse reports whether the action is a close-then-open flip.
func (a Action) IsReverse() bool {
	return a == ActionReverseToLong || a == ActionReverseToShort
}

// OpensLong reports whether the action's opening leg buys.
func (a Action) OpensLong() bool {
	return a == ActionOpenLong || a == ActionReverseToLong
}

// Decide maps (desired target, currently held position) to the minimal
// action that reconciles them. current == nil means flat. Pure function:
// identical inputs always yield the identical Action.
//
//	desired  current=-  current=long       current=short
//	flat     none       close              close
//	long     open_long  none               reverse_to_long
//	short    open_short reverse_to_short   none
func Decide(desired Desired, current *exchange.Position) Action {
	switch desired {
	case DesiredFlat:
		if current == nil {
			return ActionNone
		}
		return ActionClose
	case DesiredLong:
		switch {
		case current == nil:
			return ActionOpenLong
		case current.Side == exchange.SideLong:
			return ActionNone
		default:
			return ActionReverseToLong
		}
	case DesiredShort:
		switch {
		case current == nil:
			return ActionOpenShort
		case current.Side == exchange.SideShort:
			return ActionNone
		default:
			return ActionReverseToShort
		}
	default:
		return ActionNone
	}
}
