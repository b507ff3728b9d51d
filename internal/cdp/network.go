package cdp

import (
	"context"
	"fmt"
)

// AttachToTarget opens a flattened session on a target and returns its id.
// Events of that session carry the id in Event.SessionID.
func (c *Client) AttachToTarget(ctx context.Context, targetID string) (string, error) {
	var res struct {
		SessionID string `json:"sessionId"`
	}
	err := c.Call(ctx, "", "Target.attachToTarget", map[string]any{
		"targetId": targetID,
		"flatten":  true,
	}, &res)
	if err != nil {
		return "", fmt.Errorf("attaching to %s: %w", targetID, err)
	}
	return res.SessionID, nil
}

// DetachFromTarget closes a session opened by AttachToTarget.
func (c *Client) DetachFromTarget(ctx context.Context, sessionID string) error {
	return c.Call(ctx, "", "Target.detachFromTarget", map[string]any{"sessionId": sessionID}, nil)
}

// EnableNetwork starts network event delivery for a session.
func (c *Client) EnableNetwork(ctx context.Context, sessionID string) error {
	return c.Call(ctx, sessionID, "Network.enable", map[string]any{}, nil)
}

// GetResponseBody fetches the body of a finished response.
func (c *Client) GetResponseBody(ctx context.Context, sessionID, requestID string) (*ResponseBody, error) {
	var body ResponseBody
	err := c.Call(ctx, sessionID, "Network.getResponseBody", map[string]any{"requestId": requestID}, &body)
	if err != nil {
		return nil, err
	}
	return &body, nil
}
