package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/sadopc/curlcap/internal/cdp"
	"github.com/sadopc/curlcap/internal/protocol"
)

// ErrUnhandled is returned by Decode for protocol methods the dispatcher does
// not follow.
var ErrUnhandled = errors.New("unhandled event")

// Network domain event names.
const (
	MethodRequestWillBeSent = "Network.requestWillBeSent"
	MethodResponseReceived  = "Network.responseReceived"
	MethodLoadingFinished   = "Network.loadingFinished"
	MethodLoadingFailed     = "Network.loadingFailed"
)

type requestWillBeSentParams struct {
	RequestID string `json:"requestId"`
	Request   *struct {
		URL      string         `json:"url"`
		Method   string         `json:"method"`
		Headers  map[string]any `json:"headers"`
		PostData *string        `json:"postData"`
	} `json:"request"`
}

type responseReceivedParams struct {
	RequestID string `json:"requestId"`
	Response  *struct {
		Status   float64 `json:"status"`
		MimeType string  `json:"mimeType"`
	} `json:"response"`
}

type loadingParams struct {
	RequestID string `json:"requestId"`
	ErrorText string `json:"errorText"`
}

// Decode turns a protocol notification into an Event. Methods other than the
// four network events yield ErrUnhandled; payloads missing the fields an
// event needs yield a decode error.
func Decode(ev cdp.Event) (Event, error) {
	switch ev.Method {
	case MethodRequestWillBeSent:
		var p requestWillBeSentParams
		if err := unmarshal(ev, &p); err != nil {
			return nil, err
		}
		if p.Request == nil {
			return nil, fmt.Errorf("%s %s: missing request", ev.Method, p.RequestID)
		}
		req := protocol.Request{
			Method:  p.Request.Method,
			URL:     p.Request.URL,
			Headers: stringHeaders(p.Request.Headers),
		}
		if p.Request.PostData != nil {
			req.Body = []byte(*p.Request.PostData)
		}
		return RequestInitiated{SessionID: ev.SessionID, RequestID: p.RequestID, Request: req}, nil

	case MethodResponseReceived:
		var p responseReceivedParams
		if err := unmarshal(ev, &p); err != nil {
			return nil, err
		}
		if p.Response == nil {
			return nil, fmt.Errorf("%s %s: missing response", ev.Method, p.RequestID)
		}
		return ResponseReceived{
			SessionID: ev.SessionID,
			RequestID: p.RequestID,
			Status:    int(math.Round(p.Response.Status)),
			MimeType:  p.Response.MimeType,
		}, nil

	case MethodLoadingFinished:
		var p loadingParams
		if err := unmarshal(ev, &p); err != nil {
			return nil, err
		}
		return LoadingFinished{SessionID: ev.SessionID, RequestID: p.RequestID}, nil

	case MethodLoadingFailed:
		var p loadingParams
		if err := unmarshal(ev, &p); err != nil {
			return nil, err
		}
		return LoadingFailed{SessionID: ev.SessionID, RequestID: p.RequestID, ErrorText: p.ErrorText}, nil

	default:
		return nil, fmt.Errorf("%s: %w", ev.Method, ErrUnhandled)
	}
}

// unmarshal decodes params and insists on a request id, which every network
// event carries.
func unmarshal(ev cdp.Event, v interface{ id() string }) error {
	if len(ev.Params) == 0 {
		return fmt.Errorf("%s: empty params", ev.Method)
	}
	if err := json.Unmarshal(ev.Params, v); err != nil {
		return fmt.Errorf("%s: decoding params: %w", ev.Method, err)
	}
	if v.id() == "" {
		return fmt.Errorf("%s: missing requestId", ev.Method)
	}
	return nil
}

func (p *requestWillBeSentParams) id() string { return p.RequestID }
func (p *responseReceivedParams) id() string  { return p.RequestID }
func (p *loadingParams) id() string           { return p.RequestID }

// stringHeaders flattens header values to strings. The protocol sends
// strings, but anything else is rendered rather than rejected.
func stringHeaders(h map[string]any) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		switch v := v.(type) {
		case string:
			out[k] = v
		case nil:
			out[k] = ""
		default:
			data, err := json.Marshal(v)
			if err != nil {
				out[k] = fmt.Sprint(v)
				continue
			}
			out[k] = string(data)
		}
	}
	return out
}
