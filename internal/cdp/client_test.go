package cdp_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sadopc/curlcap/internal/cdp"
	"github.com/sadopc/curlcap/internal/cdp/cdptest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dial(t *testing.T, b *cdptest.Browser) *cdp.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := cdp.Dial(ctx, b.WebSocketURL(), cdp.Options{Logger: testLogger()})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestTargetsAndBrowserURL(t *testing.T) {
	b := cdptest.NewBrowser()
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	targets, err := cdp.Targets(ctx, b.Addr())
	if err != nil {
		t.Fatalf("Targets: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("got %d targets, want 2", len(targets))
	}
	pages := cdp.Pages(targets)
	if len(pages) != 1 || pages[0].ID != "T1" {
		t.Errorf("pages = %+v, want only T1", pages)
	}

	url, err := cdp.BrowserURL(ctx, "http://"+b.Addr())
	if err != nil {
		t.Fatalf("BrowserURL: %v", err)
	}
	if url != b.WebSocketURL() {
		t.Errorf("url = %s, want %s", url, b.WebSocketURL())
	}
}

func TestTargets_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := cdp.Targets(ctx, "127.0.0.1:1"); err == nil {
		t.Error("expected error for unreachable browser")
	}
}

func TestAttachEnableAndBody(t *testing.T) {
	b := cdptest.NewBrowser()
	defer b.Close()
	b.Handle("Network.getResponseBody", func(sessionID string, params json.RawMessage) (any, map[string]any) {
		var p struct {
			RequestID string `json:"requestId"`
		}
		json.Unmarshal(params, &p)
		if p.RequestID != "42" {
			return nil, map[string]any{"code": -32000, "message": "No resource with given identifier found"}
		}
		return map[string]any{"body": `{"ok":true}`, "base64Encoded": false}, nil
	})

	c := dial(t, b)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session, err := c.AttachToTarget(ctx, "T1")
	if err != nil {
		t.Fatalf("AttachToTarget: %v", err)
	}
	if session != "S1" {
		t.Errorf("session = %q, want S1", session)
	}
	if err := c.EnableNetwork(ctx, session); err != nil {
		t.Fatalf("EnableNetwork: %v", err)
	}

	body, err := c.GetResponseBody(ctx, session, "42")
	if err != nil {
		t.Fatalf("GetResponseBody: %v", err)
	}
	if body.Body != `{"ok":true}` || body.Base64Encoded {
		t.Errorf("body = %+v", body)
	}

	_, err = c.GetResponseBody(ctx, session, "missing")
	var protoErr *cdp.Error
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected *cdp.Error, got %v", err)
	}
	if protoErr.Code != -32000 {
		t.Errorf("code = %d", protoErr.Code)
	}

	want := []string{"Target.attachToTarget", "Network.enable", "Network.getResponseBody", "Network.getResponseBody"}
	got := b.Calls()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestEventsDelivered(t *testing.T) {
	b := cdptest.NewBrowser()
	defer b.Close()

	c := dial(t, b)
	<-b.Connected()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Emit(ctx, "S1", "Network.loadingFinished", map[string]any{"requestId": "7"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	// Garbage frames are skipped, not fatal.
	if err := b.EmitRaw(ctx, "not json"); err != nil {
		t.Fatalf("EmitRaw: %v", err)
	}
	if err := b.Emit(ctx, "S1", "Network.loadingFailed", map[string]any{"requestId": "8", "errorText": "net::ERR_FAILED"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	var got []cdp.Event
	for len(got) < 2 {
		select {
		case ev := <-c.Events():
			got = append(got, ev)
		case <-ctx.Done():
			t.Fatalf("timed out, got %d events", len(got))
		}
	}
	if got[0].Method != "Network.loadingFinished" || got[0].SessionID != "S1" {
		t.Errorf("first event = %+v", got[0])
	}
	if got[1].Method != "Network.loadingFailed" {
		t.Errorf("second event = %+v", got[1])
	}
}

func TestCallAfterClose(t *testing.T) {
	b := cdptest.NewBrowser()
	defer b.Close()

	c := dial(t, b)
	c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.EnableNetwork(ctx, "S1"); !errors.Is(err, cdp.ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
	if _, ok := <-c.Events(); ok {
		t.Error("events channel should be closed")
	}
}

func TestDial_RetriesThenFails(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	_, err := cdp.Dial(ctx, "ws://127.0.0.1:1/devtools/browser", cdp.Options{
		Logger:        testLogger(),
		Retries:       2,
		RetryInterval: 10 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected dial error")
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("expected retries to wait between attempts")
	}
}
