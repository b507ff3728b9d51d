package cdp

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrClosed is returned by calls made after the connection went away.
var ErrClosed = errors.New("cdp: connection closed")

// Event is a protocol notification. SessionID is empty for events of the
// browser target itself.
type Event struct {
	SessionID string
	Method    string
	Params    json.RawMessage
}

// Error is a protocol-level error reply.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("cdp error %d: %s (%s)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("cdp error %d: %s", e.Code, e.Message)
}

// TargetInfo describes a debuggable target as listed by /json/list.
type TargetInfo struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	URL                  string `json:"url"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// ResponseBody is the result of Network.getResponseBody.
type ResponseBody struct {
	Body          string `json:"body"`
	Base64Encoded bool   `json:"base64Encoded"`
}

// message is the wire frame for both directions.
type message struct {
	ID        int64           `json:"id,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	Method    string          `json:"method,omitempty"`
	Params    json.RawMessage `json:"params,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     *Error          `json:"error,omitempty"`
}
