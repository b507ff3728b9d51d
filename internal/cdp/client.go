// Package cdp is a minimal Chrome DevTools Protocol client: enough to find a
// tab, attach to it and follow its network traffic.
package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/coder/websocket"
)

// Options tune Dial. Zero values pick the defaults.
type Options struct {
	Logger        *slog.Logger
	Retries       uint64
	RetryInterval time.Duration
	EventBuffer   int
	ReadLimit     int64
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = 500 * time.Millisecond
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = 1024
	}
	if o.ReadLimit == 0 {
		o.ReadLimit = 64 << 20
	}
	return o
}

// Client is a connection to a DevTools websocket endpoint. Calls may be made
// from any goroutine; events are delivered in arrival order on Events.
type Client struct {
	conn   *websocket.Conn
	logger *slog.Logger
	cancel context.CancelFunc

	nextID atomic.Int64

	mu      sync.Mutex
	pending map[int64]chan message
	closed  bool
	err     error

	events chan Event
	done   chan struct{}
}

// Dial connects to a DevTools websocket URL, retrying while the browser is
// still coming up.
func Dial(ctx context.Context, url string, opts Options) (*Client, error) {
	opts = opts.withDefaults()

	var conn *websocket.Conn
	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.RetryInterval), opts.Retries)
	err := backoff.Retry(func() error {
		c, _, err := websocket.Dial(ctx, url, nil)
		if err != nil {
			opts.Logger.Debug("dial failed", "url", url, "err", err)
			return err
		}
		conn = c
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	conn.SetReadLimit(opts.ReadLimit)

	readCtx, cancel := context.WithCancel(context.Background())
	c := &Client{
		conn:    conn,
		logger:  opts.Logger,
		cancel:  cancel,
		pending: make(map[int64]chan message),
		events:  make(chan Event, opts.EventBuffer),
		done:    make(chan struct{}),
	}
	go c.readLoop(readCtx)
	return c, nil
}

// Events returns the notification stream. It is closed when the connection
// ends.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Done is closed once the connection has ended.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the error that ended the connection, if any.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Call sends a command and waits for its reply. A protocol error reply is
// returned as *Error. result may be nil when the reply is not needed.
func (c *Client) Call(ctx context.Context, sessionID, method string, params, result any) error {
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("encoding %s params: %w", method, err)
		}
		raw = data
	}

	id := c.nextID.Add(1)
	reply := make(chan message, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.pending[id] = reply
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	frame, err := json.Marshal(message{ID: id, SessionID: sessionID, Method: method, Params: raw})
	if err != nil {
		return fmt.Errorf("encoding %s: %w", method, err)
	}
	if err := c.conn.Write(ctx, websocket.MessageText, frame); err != nil {
		return fmt.Errorf("sending %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	case msg := <-reply:
		if msg.Error != nil {
			return msg.Error
		}
		if result != nil && len(msg.Result) > 0 {
			if err := json.Unmarshal(msg.Result, result); err != nil {
				return fmt.Errorf("decoding %s result: %w", method, err)
			}
		}
		return nil
	}
}

// Close ends the connection. Pending calls fail with ErrClosed.
func (c *Client) Close() error {
	err := c.conn.Close(websocket.StatusNormalClosure, "client closed")
	c.cancel()
	<-c.done
	return err
}

func (c *Client) readLoop(ctx context.Context) {
	defer func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.done)
		close(c.events)
	}()

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && ctx.Err() == nil {
				c.mu.Lock()
				c.err = err
				c.mu.Unlock()
				c.logger.Warn("devtools connection lost", "err", err)
			}
			return
		}

		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("dropping undecodable frame", "err", err, "size", len(data))
			continue
		}

		if msg.ID != 0 {
			c.mu.Lock()
			reply, ok := c.pending[msg.ID]
			c.mu.Unlock()
			if ok {
				reply <- msg
			} else {
				c.logger.Debug("reply for unknown call", "id", msg.ID)
			}
			continue
		}

		if msg.Method == "" {
			continue
		}
		select {
		case c.events <- Event{SessionID: msg.SessionID, Method: msg.Method, Params: msg.Params}:
		case <-ctx.Done():
			return
		}
	}
}
