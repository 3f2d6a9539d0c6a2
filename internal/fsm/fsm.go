package fsm

import "fmt"

type State string

type Event string

const (
	StateReady      State = "ready"
	StateListening  State = "listening"
	StateProcessing State = "processing"
	StateOffline    State = "offline"
)

const (
	EventActivate        Event = "activate"
	EventCaptureComplete Event = "capture-complete"
	EventTranscribed     Event = "transcribed"
	EventFail            Event = "fail"
	EventCancel          Event = "cancel"
	EventMicOff          Event = "mic-off"
	EventMicOn           Event = "mic-on"
)

// Transition resolves one session event against the current state.
// EventMicOff is accepted from every state. EventActivate is only valid
// from StateReady, so an activation while listening or processing surfaces
// as an invalid-transition error that the caller may choose to ignore.
func Transition(current State, event Event) (State, error) {
	if event == EventMicOff {
		return StateOffline, nil
	}

	switch current {
	case StateReady:
		switch event {
		case EventActivate:
			return StateListening, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateListening:
		switch event {
		case EventCaptureComplete:
			return StateProcessing, nil
		case EventCancel, EventFail:
			return StateReady, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateProcessing:
		switch event {
		case EventTranscribed, EventFail, EventCancel:
			return StateReady, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateOffline:
		switch event {
		case EventMicOn:
			return StateReady, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
