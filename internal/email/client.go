package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the mailer service. Every send is fire-and-forget from
// the caller's point of view; a failed mail is logged upstream, never
// surfaced to the user.
type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
}

type Dispatcher interface {
	SendInvitation(ctx context.Context, mail InvitationMail) error
	SendAcceptance(ctx context.Context, mail AcceptanceMail) error
}

func NewClient(baseURL, secret string) *Client {
	return &Client{
		baseURL: baseURL,
		secret:  secret,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type InvitationMail struct {
	To           string `json:"to"`
	InviterName  string `json:"inviter_name"`
	EntityTitle  string `json:"entity_title"`
	Role         string `json:"role"`
	Message      string `json:"message,omitempty"`
	AcceptURL    string `json:"accept_url"`
	DeclineURL   string `json:"decline_url"`
	ExpiresAtISO string `json:"expires_at"`
}

type AcceptanceMail struct {
	To               string `json:"to"`
	CollaboratorName string `json:"collaborator_name"`
	EntityTitle      string `json:"entity_title"`
}

func (c *Client) SendInvitation(ctx context.Context, mail InvitationMail) error {
	return c.post(ctx, "/internal/mail/invitation", mail)
}

func (c *Client) SendAcceptance(ctx context.Context, mail AcceptanceMail) error {
	return c.post(ctx, "/internal/mail/acceptance", mail)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+path,
		bytes.NewReader(body),
	)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf(
			"mailer error: status=%d body=%s",
			resp.StatusCode,
			string(b),
		)
	}

	return nil
}
