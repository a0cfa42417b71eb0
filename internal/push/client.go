package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"taskhive/internal/domain"
)

// ErrSubscriptionGone marks a permanent provider failure: the endpoint no
// longer exists and the subscription should be pruned. Any other error is
// transient and the subscription is left intact.
var ErrSubscriptionGone = errors.New("push subscription gone")

type Sender interface {
	Send(ctx context.Context, sub domain.PushSubscription, payload Payload) error
}

// Payload is what the push provider forwards to the device.
type Payload struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	ActionURL string `json:"action_url,omitempty"`
	Priority  string `json:"priority,omitempty"`
}

type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type pushRequest struct {
	Keys    map[string]string `json:"keys"`
	Payload Payload           `json:"payload"`
}

// Send posts the payload to one subscription endpoint. The status code
// class decides permanent vs transient: 404/410 mean the endpoint is gone
// for good.
func (c *Client) Send(ctx context.Context, sub domain.PushSubscription, payload Payload) error {
	body, err := json.Marshal(pushRequest{
		Keys: map[string]string{
			"p256dh": sub.P256dh,
			"auth":   sub.Auth,
		},
		Payload: payload,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		sub.Endpoint,
		bytes.NewReader(body),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return ErrSubscriptionGone
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf(
			"push provider error: status=%d body=%s",
			resp.StatusCode,
			string(b),
		)
	}

	return nil
}
