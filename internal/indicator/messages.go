package indicator

import "github.com/voxide/voxide/internal/fsm"

type messages struct {
	ready        string
	listening    string
	processing   string
	offline      string
	heard        string
	unrecognized string
	failure      string
}

func defaultMessages() messages {
	return messages{
		ready:        "Microphone Ready",
		listening:    "Listening…",
		processing:   "Processing…",
		offline:      "Microphone Offline",
		heard:        "Heard: ",
		unrecognized: "Couldn't understand: ",
		failure:      "Voice command failed",
	}
}

func (m messages) forState(state fsm.State) string {
	switch state {
	case fsm.StateListening:
		return m.listening
	case fsm.StateProcessing:
		return m.processing
	case fsm.StateOffline:
		return m.offline
	default:
		return m.ready
	}
}
