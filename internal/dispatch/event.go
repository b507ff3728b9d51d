package dispatch

import "github.com/sadopc/curlcap/internal/protocol"

// Event is one of the network notifications the dispatcher understands, or
// the completion of a body fetch it started. The set is closed: only the
// types in this file implement it.
type Event interface {
	// Target returns the session and request the event belongs to.
	Target() (sessionID, requestID string)
	event()
}

// RequestInitiated reports that the browser is about to send a request.
type RequestInitiated struct {
	SessionID string
	RequestID string
	Request   protocol.Request
}

// ResponseReceived reports that response headers arrived.
type ResponseReceived struct {
	SessionID string
	RequestID string
	Status    int
	MimeType  string
}

// LoadingFinished reports that the response body has been fully received.
type LoadingFinished struct {
	SessionID string
	RequestID string
}

// LoadingFailed reports a network-level failure.
type LoadingFailed struct {
	SessionID string
	RequestID string
	ErrorText string
}

// BodyFetched is the completion of a body fetch. Body is nil when the
// browser had no body to give; Err is set when the call itself failed.
type BodyFetched struct {
	SessionID string
	RequestID string
	Body      *string
	Err       error
}

func (e RequestInitiated) Target() (string, string) { return e.SessionID, e.RequestID }
func (e ResponseReceived) Target() (string, string) { return e.SessionID, e.RequestID }
func (e LoadingFinished) Target() (string, string)  { return e.SessionID, e.RequestID }
func (e LoadingFailed) Target() (string, string)    { return e.SessionID, e.RequestID }
func (e BodyFetched) Target() (string, string)      { return e.SessionID, e.RequestID }

func (RequestInitiated) event() {}
func (ResponseReceived) event() {}
func (LoadingFinished) event()  {}
func (LoadingFailed) event()    {}
func (BodyFetched) event()      {}
