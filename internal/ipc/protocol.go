// Package ipc carries control commands between the voxide CLI and a running
// session over a newline-delimited JSON unix socket.
package ipc

type Request struct {
	Command string `json:"command"`
	// Text carries the transcript for the "say" command.
	Text string `json:"text,omitempty"`
}

type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
