// Package cdptest provides a fake DevTools endpoint for tests.
package cdptest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/coder/websocket"
)

// Handler answers one command. Returning a non-nil error map sends a
// protocol error reply instead of a result.
type Handler func(sessionID string, params json.RawMessage) (result any, protoErr map[string]any)

// Browser is an httptest server speaking enough of the DevTools protocol to
// exercise a client: /json/list, /json/version and a websocket endpoint.
type Browser struct {
	Server  *httptest.Server
	Targets []map[string]string

	mu       sync.Mutex
	handlers map[string]Handler
	calls    []string
	conns    []*websocket.Conn
	ready    chan struct{}
	once     sync.Once
}

// NewBrowser starts a fake browser with a single page target "T1".
// Target.attachToTarget answers with session "S1" and Network.enable with an
// empty result unless overridden with Handle.
func NewBrowser() *Browser {
	b := &Browser{
		handlers: make(map[string]Handler),
		ready:    make(chan struct{}),
	}
	b.Handle("Target.attachToTarget", func(string, json.RawMessage) (any, map[string]any) {
		return map[string]string{"sessionId": "S1"}, nil
	})
	b.Handle("Network.enable", func(string, json.RawMessage) (any, map[string]any) {
		return map[string]any{}, nil
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/json/list", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(b.Targets)
	})
	mux.HandleFunc("/json/version", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"Browser":              "FakeChrome/1.0",
			"webSocketDebuggerUrl": b.WebSocketURL(),
		})
	})
	mux.HandleFunc("/devtools/browser", b.serveWS)
	b.Server = httptest.NewServer(mux)
	b.Targets = []map[string]string{
		{"id": "T1", "type": "page", "title": "Example", "url": "https://example.com", "webSocketDebuggerUrl": b.WebSocketURL()},
		{"id": "W1", "type": "service_worker", "title": "sw", "url": "https://example.com/sw.js"},
	}
	return b
}

// Addr returns host:port of the fake browser.
func (b *Browser) Addr() string {
	return strings.TrimPrefix(b.Server.URL, "http://")
}

// WebSocketURL returns the browser websocket endpoint.
func (b *Browser) WebSocketURL() string {
	return "ws" + strings.TrimPrefix(b.Server.URL, "http") + "/devtools/browser"
}

// Handle installs a handler for a command.
func (b *Browser) Handle(method string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[method] = h
}

// Calls returns the methods received so far, in order.
func (b *Browser) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// Connected is closed once a client has connected.
func (b *Browser) Connected() <-chan struct{} {
	return b.ready
}

// Emit sends an event to every connected client.
func (b *Browser) Emit(ctx context.Context, sessionID, method string, params any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(map[string]any{
		"sessionId": sessionID,
		"method":    method,
		"params":    json.RawMessage(raw),
	})
	if err != nil {
		return err
	}
	return b.broadcast(ctx, frame)
}

// EmitRaw sends a raw frame to every connected client.
func (b *Browser) EmitRaw(ctx context.Context, frame string) error {
	return b.broadcast(ctx, []byte(frame))
}

// Close shuts the server down.
func (b *Browser) Close() {
	b.mu.Lock()
	conns := append([]*websocket.Conn(nil), b.conns...)
	b.mu.Unlock()
	for _, c := range conns {
		c.CloseNow()
	}
	b.Server.Close()
}

func (b *Browser) broadcast(ctx context.Context, frame []byte) error {
	b.mu.Lock()
	conns := append([]*websocket.Conn(nil), b.conns...)
	b.mu.Unlock()
	for _, c := range conns {
		if err := c.Write(ctx, websocket.MessageText, frame); err != nil {
			return err
		}
	}
	return nil
}

func (b *Browser) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(64 << 20)

	b.mu.Lock()
	b.conns = append(b.conns, conn)
	b.mu.Unlock()
	b.once.Do(func() { close(b.ready) })

	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			return
		}
		var req struct {
			ID        int64           `json:"id"`
			SessionID string          `json:"sessionId"`
			Method    string          `json:"method"`
			Params    json.RawMessage `json:"params"`
		}
		if err := json.Unmarshal(data, &req); err != nil {
			continue
		}

		b.mu.Lock()
		b.calls = append(b.calls, req.Method)
		h, ok := b.handlers[req.Method]
		b.mu.Unlock()

		reply := map[string]any{"id": req.ID}
		if req.SessionID != "" {
			reply["sessionId"] = req.SessionID
		}
		if !ok {
			reply["error"] = map[string]any{"code": -32601, "message": "'" + req.Method + "' wasn't found"}
		} else if result, protoErr := h(req.SessionID, req.Params); protoErr != nil {
			reply["error"] = protoErr
		} else {
			reply["result"] = result
		}

		frame, err := json.Marshal(reply)
		if err != nil {
			continue
		}
		if err := conn.Write(r.Context(), websocket.MessageText, frame); err != nil {
			return
		}
	}
}
