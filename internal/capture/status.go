package capture

import (
	"encoding/json"
	"strconv"
)

type statusKind uint8

const (
	statusPending statusKind = iota
	statusCode
	statusFailed
)

// Status is the outcome of a captured request: pending, an HTTP status code,
// or failed. The zero value is pending.
type Status struct {
	kind statusKind
	code int
}

// Pending is the status of a request whose response has not arrived.
var Pending = Status{}

// Failed is the status of a request the browser reported as failed.
var Failed = Status{kind: statusFailed}

// Code returns the status for an HTTP response code.
func Code(code int) Status {
	return Status{kind: statusCode, code: code}
}

// IsPending reports whether no outcome has been recorded yet.
func (s Status) IsPending() bool { return s.kind == statusPending }

// IsFailed reports whether the request failed at the network level.
func (s Status) IsFailed() bool { return s.kind == statusFailed }

// Terminal reports whether the status is an outcome (a code or failure).
func (s Status) Terminal() bool { return s.kind != statusPending }

// HTTPCode returns the response code and whether the status carries one.
func (s Status) HTTPCode() (int, bool) {
	return s.code, s.kind == statusCode
}

// String renders the status the way the list view and archives show it:
// "pending", "fail" or the numeric code.
func (s Status) String() string {
	switch s.kind {
	case statusCode:
		return strconv.Itoa(s.code)
	case statusFailed:
		return "fail"
	default:
		return "pending"
	}
}

// MarshalJSON encodes a code as a number and the other states as strings.
func (s Status) MarshalJSON() ([]byte, error) {
	if s.kind == statusCode {
		return json.Marshal(s.code)
	}
	return json.Marshal(s.String())
}

// Equal reports whether two statuses are the same outcome.
func (s Status) Equal(o Status) bool {
	return s == o
}
