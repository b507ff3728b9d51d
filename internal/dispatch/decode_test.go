package dispatch

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sadopc/curlcap/internal/cdp"
	"github.com/sadopc/curlcap/internal/protocol"
)

func msg(session, method, params string) cdp.Event {
	return cdp.Event{SessionID: session, Method: method, Params: json.RawMessage(params)}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   cdp.Event
		want Event
	}{
		{
			name: "request will be sent",
			in: msg("S1", MethodRequestWillBeSent, `{
				"requestId": "1",
				"request": {
					"url": "https://a",
					"method": "POST",
					"headers": {"Accept": "*/*", "X-Num": 5, "X-Null": null},
					"postData": "x=1"
				}
			}`),
			want: RequestInitiated{
				SessionID: "S1",
				RequestID: "1",
				Request: protocol.Request{
					Method:  "POST",
					URL:     "https://a",
					Headers: map[string]string{"Accept": "*/*", "X-Num": "5", "X-Null": ""},
					Body:    []byte("x=1"),
				},
			},
		},
		{
			name: "response received",
			in:   msg("S1", MethodResponseReceived, `{"requestId":"1","response":{"status":200,"mimeType":"application/json"}}`),
			want: ResponseReceived{SessionID: "S1", RequestID: "1", Status: 200, MimeType: "application/json"},
		},
		{
			name: "loading finished",
			in:   msg("S1", MethodLoadingFinished, `{"requestId":"1","encodedDataLength":10}`),
			want: LoadingFinished{SessionID: "S1", RequestID: "1"},
		},
		{
			name: "loading failed",
			in:   msg("", MethodLoadingFailed, `{"requestId":"2","errorText":"net::ERR_FAILED","canceled":false}`),
			want: LoadingFailed{RequestID: "2", ErrorText: "net::ERR_FAILED"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.in)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_NoPostData(t *testing.T) {
	got, err := Decode(msg("S1", MethodRequestWillBeSent, `{"requestId":"1","request":{"url":"https://a","method":"GET","headers":{}}}`))
	if err != nil {
		t.Fatal(err)
	}
	ri := got.(RequestInitiated)
	if ri.Request.HasBody() {
		t.Errorf("expected no body, got %q", ri.Request.Body)
	}
}

func TestDecode_Unhandled(t *testing.T) {
	_, err := Decode(msg("S1", "Network.dataReceived", `{"requestId":"1"}`))
	if !errors.Is(err, ErrUnhandled) {
		t.Errorf("err = %v, want ErrUnhandled", err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   cdp.Event
	}{
		{"bad json", msg("S1", MethodLoadingFinished, `{"requestId":`)},
		{"empty params", cdp.Event{SessionID: "S1", Method: MethodLoadingFailed}},
		{"missing id", msg("S1", MethodLoadingFinished, `{}`)},
		{"wrong id type", msg("S1", MethodLoadingFinished, `{"requestId":5}`)},
		{"missing request", msg("S1", MethodRequestWillBeSent, `{"requestId":"1"}`)},
		{"missing response", msg("S1", MethodResponseReceived, `{"requestId":"1"}`)},
		{"bad status", msg("S1", MethodResponseReceived, `{"requestId":"1","response":{"status":"ok"}}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Decode(tt.in)
			if err == nil {
				t.Fatalf("expected error, got %#v", ev)
			}
			if errors.Is(err, ErrUnhandled) {
				t.Errorf("malformed payload reported as unhandled: %v", err)
			}
		})
	}
}
