package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Targets lists the targets exposed by a browser's remote debugging
// endpoint, e.g. "127.0.0.1:9222".
func Targets(ctx context.Context, addr string) ([]TargetInfo, error) {
	var targets []TargetInfo
	if err := getJSON(ctx, addr, "/json/list", &targets); err != nil {
		return nil, err
	}
	return targets, nil
}

// Pages returns only the page targets.
func Pages(targets []TargetInfo) []TargetInfo {
	var pages []TargetInfo
	for _, t := range targets {
		if t.Type == "page" {
			pages = append(pages, t)
		}
	}
	return pages
}

// BrowserURL returns the websocket URL of the browser target.
func BrowserURL(ctx context.Context, addr string) (string, error) {
	var version struct {
		Browser              string `json:"Browser"`
		WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	}
	if err := getJSON(ctx, addr, "/json/version", &version); err != nil {
		return "", err
	}
	if version.WebSocketDebuggerURL == "" {
		return "", fmt.Errorf("browser at %s did not report a websocket URL", addr)
	}
	return version.WebSocketDebuggerURL, nil
}

func getJSON(ctx context.Context, addr, path string, v any) error {
	base := addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %s: unexpected status %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
