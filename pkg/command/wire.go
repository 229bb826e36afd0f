package command

import (
	"encoding/json"

	"github.com/marjoballabani/lazya2l/pkg/calib"
)

// ClientMessage is the envelope of every client-to-server message. Type is
// a request name or "ping".
type ClientMessage struct {
	Type string          `json:"type"`
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ServerMessage answers one ClientMessage. Type is "result", "error" or
// "pong"; RequestID echoes the client's ID.
type ServerMessage struct {
	Type      string       `json:"type"`
	RequestID string       `json:"request_id,omitempty"`
	Data      any          `json:"data,omitempty"`
	Error     *calib.Error `json:"error,omitempty"`
}

// serverReply is ServerMessage as the client reads it.
type serverReply struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
	Error     *calib.Error    `json:"error"`
}

const (
	typeResult = "result"
	typeError  = "error"
	typePing   = "ping"
	typePong   = "pong"
)
