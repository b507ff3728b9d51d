// Package dispatch routes DevTools network events for one session into a
// capture.Ledger and fetches response bodies as they become available.
package dispatch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sadopc/curlcap/internal/capture"
	"github.com/sadopc/curlcap/internal/cdp"
	"github.com/sadopc/curlcap/internal/export"
)

// Transport is the part of the DevTools connection the dispatcher calls.
// *cdp.Client implements it.
type Transport interface {
	EnableNetwork(ctx context.Context, sessionID string) error
	GetResponseBody(ctx context.Context, sessionID, requestID string) (*cdp.ResponseBody, error)
}

// DefaultFetchTimeout bounds a single body fetch.
const DefaultFetchTimeout = 30 * time.Second

// Stats counts what the dispatcher has seen.
type Stats struct {
	Handled       int64
	Ignored       int64
	Malformed     int64
	BodiesFetched int64
	BodiesMissing int64
}

// Dispatcher is a single-goroutine reactor over one session's events.
type Dispatcher struct {
	ledger    *capture.Ledger
	transport Transport
	sessionID string
	logger    *slog.Logger

	// FetchTimeout bounds each Network.getResponseBody call.
	FetchTimeout time.Duration

	bodies chan BodyFetched
	done    chan struct{}
	inert   atomic.Bool
	started atomic.Bool

	handled, ignored, malformed, fetched, missing atomic.Int64
}

// New creates a dispatcher feeding ledger with the events of sessionID. An
// empty sessionID accepts events from any session.
func New(ledger *capture.Ledger, transport Transport, sessionID string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		ledger:       ledger,
		transport:    transport,
		sessionID:    sessionID,
		logger:       logger.With("session", sessionID),
		FetchTimeout: DefaultFetchTimeout,
		bodies:       make(chan BodyFetched, 64),
		done:         make(chan struct{}),
	}
}

// Attach enables network events for the session. On failure the dispatcher
// stays inert: Run drains events without recording anything.
func (d *Dispatcher) Attach(ctx context.Context) error {
	if err := d.transport.EnableNetwork(ctx, d.sessionID); err != nil {
		d.inert.Store(true)
		d.logger.Error("enabling network events failed, capture disabled", "err", err)
		return fmt.Errorf("enabling network: %w", err)
	}
	d.logger.Info("network capture enabled")
	return nil
}

// Inert reports whether Attach failed.
func (d *Dispatcher) Inert() bool {
	return d.inert.Load()
}

// Stats returns a copy of the counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Handled:       d.handled.Load(),
		Ignored:       d.ignored.Load(),
		Malformed:     d.malformed.Load(),
		BodiesFetched: d.fetched.Load(),
		BodiesMissing: d.missing.Load(),
	}
}

// ErrRunStarted is returned by Run when the dispatcher has already been run.
var ErrRunStarted = errors.New("dispatcher already started")

// Run processes events and body completions one at a time until ctx is done
// or events is closed. Body fetches still in flight when Run returns are
// dropped. A dispatcher runs once; later calls return ErrRunStarted.
func (d *Dispatcher) Run(ctx context.Context, events <-chan cdp.Event) error {
	if !d.started.CompareAndSwap(false, true) {
		return ErrRunStarted
	}
	defer close(d.done)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-events:
			if !ok {
				d.logger.Info("event stream ended")
				return nil
			}
			d.HandleMessage(ctx, msg)
		case res := <-d.bodies:
			d.Handle(ctx, res)
		}
	}
}

// HandleMessage decodes a raw protocol notification and handles it.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg cdp.Event) {
	if d.inert.Load() {
		return
	}
	ev, err := Decode(msg)
	switch {
	case errors.Is(err, ErrUnhandled):
		d.ignored.Add(1)
		return
	case err != nil:
		d.malformed.Add(1)
		d.logger.Warn("dropping malformed event", "method", msg.Method, "err", err)
		return
	}
	d.Handle(ctx, ev)
}

// Handle applies one event to the ledger. It never panics; a failure while
// handling one event is logged and the next event is processed normally.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.malformed.Add(1)
			d.logger.Error("event handler panicked", "event", fmt.Sprintf("%T", ev), "panic", r)
		}
	}()
	if ev == nil || d.inert.Load() {
		return
	}

	session, id := ev.Target()
	if d.sessionID != "" && session != d.sessionID {
		d.ignored.Add(1)
		d.logger.Debug("event for another session", "event_session", session, "request", id)
		return
	}
	d.handled.Add(1)

	switch ev := ev.(type) {
	case RequestInitiated:
		d.ledger.Create(id, ev.Request.URL, export.AsCurl(&ev.Request))

	case ResponseReceived:
		p := capture.Patch{Status: capture.Ptr(capture.Code(ev.Status))}
		if ev.MimeType != "" {
			p.MimeType = capture.Ptr(ev.MimeType)
		}
		d.merge(id, p)
		d.fetchBody(ctx, session, id)

	case LoadingFinished:
		d.fetchBody(ctx, session, id)

	case LoadingFailed:
		d.merge(id, capture.Patch{
			Status:       capture.Ptr(capture.Failed),
			ResponseBody: capture.Ptr(ev.ErrorText),
			ErrorText:    capture.Ptr(ev.ErrorText),
		})

	case BodyFetched:
		switch {
		case ev.Err != nil:
			d.missing.Add(1)
			d.logBodyError(id, ev.Err)
		case ev.Body == nil:
			d.missing.Add(1)
			d.logger.Debug("no body available", "request", id)
		default:
			d.fetched.Add(1)
			d.merge(id, capture.Patch{ResponseBody: ev.Body})
		}

	default:
		// Event is sealed; reaching this means a new kind was added
		// without a case here.
		d.logger.Error("unknown event kind", "event", fmt.Sprintf("%T", ev), "request", id)
	}
}

func (d *Dispatcher) merge(id string, p capture.Patch) {
	if !d.ledger.Merge(id, p) {
		d.logger.Debug("event for unknown request", "request", id)
	}
}

// fetchBody asks the browser for a response body without blocking the
// reactor. The result comes back through d.bodies as a BodyFetched event.
func (d *Dispatcher) fetchBody(ctx context.Context, sessionID, requestID string) {
	timeout := d.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	go func() {
		fctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		res := d.getBody(fctx, sessionID, requestID)

		select {
		case d.bodies <- res:
		case <-d.done:
		case <-ctx.Done():
		}
	}()
}

func (d *Dispatcher) getBody(ctx context.Context, sessionID, requestID string) (res BodyFetched) {
	res = BodyFetched{SessionID: sessionID, RequestID: requestID}
	defer func() {
		if r := recover(); r != nil {
			res.Body = nil
			res.Err = fmt.Errorf("body fetch panicked: %v", r)
		}
	}()

	body, err := d.transport.GetResponseBody(ctx, sessionID, requestID)
	switch {
	case err != nil:
		res.Err = err
	case body != nil:
		res.Body = capture.Ptr(rawBody(body))
	}
	return res
}

func (d *Dispatcher) logBodyError(id string, err error) {
	var protoErr *cdp.Error
	switch {
	case errors.As(err, &protoErr), errors.Is(err, context.Canceled), errors.Is(err, cdp.ErrClosed):
		d.logger.Debug("body unavailable", "request", id, "err", err)
	default:
		d.logger.Warn("body fetch failed", "request", id, "err", err)
	}
}

// rawBody returns the body bytes as text, undoing the transport's base64
// wrapping of binary bodies.
func rawBody(b *cdp.ResponseBody) string {
	if !b.Base64Encoded {
		return b.Body
	}
	data, err := base64.StdEncoding.DecodeString(b.Body)
	if err != nil {
		return b.Body
	}
	return string(data)
}
