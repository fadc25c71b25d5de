package fsm

import "fmt"

type State string

type Event string

const (
	StateCold       State = "cold"
	StateOwner      State = "owner"
	StateDuplicate  State = "duplicate"
	StateStandalone State = "standalone"
	StateExiting    State = "exiting"
	StateClosed     State = "closed"
)

const (
	EventAcquired   Event = "acquired"
	EventBindFailed Event = "bind_failed"
	EventDisabled   Event = "disabled"
	EventNotified   Event = "notified"
	EventStop       Event = "stop"
)

// Terminal reports whether no further event can leave state.
func (s State) Terminal() bool {
	return s == StateExiting || s == StateClosed
}

func Transition(current State, event Event) (State, error) {
	switch current {
	case StateCold:
		switch event {
		case EventAcquired:
			return StateOwner, nil
		case EventBindFailed:
			return StateDuplicate, nil
		case EventDisabled:
			return StateStandalone, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateOwner, StateStandalone:
		switch event {
		case EventStop:
			return StateClosed, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateDuplicate:
		switch event {
		case EventNotified:
			return StateExiting, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateExiting, StateClosed:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
