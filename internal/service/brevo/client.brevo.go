package brevo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	emailEndpoint = "https://api.brevo.com/v3/smtp/email"
	smsEndpoint   = "https://api.brevo.com/v3/transactionalSMS/sms"
)

// Client talks to the Brevo transactional email and SMS REST API.
type Client struct {
	apiKey      string
	senderName  string
	senderEmail string
	httpc       *http.Client
}

func NewClient(apiKey, senderName, senderEmail string) *Client {
	return &Client{
		apiKey:      apiKey,
		senderName:  senderName,
		senderEmail: senderEmail,
		httpc:       &http.Client{Timeout: 15 * time.Second},
	}
}

type emailPayload struct {
	Sender      emailParty   `json:"sender"`
	To          []emailParty `json:"to"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent"`
}

type emailParty struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type smsPayload struct {
	Type      string `json:"type"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Content   string `json:"content"`
}

func (c *Client) SendEmail(ctx context.Context, to, subject, htmlContent string) error {
	payload := emailPayload{
		Sender:      emailParty{Name: c.senderName, Email: c.senderEmail},
		To:          []emailParty{{Email: to}},
		Subject:     subject,
		HTMLContent: htmlContent,
	}
	return c.post(ctx, emailEndpoint, payload)
}

func (c *Client) SendSMS(ctx context.Context, mobile, content string) error {
	// Brevo requires the country code. Ten digits without a leading zero is
	// assumed to be an Indian number.
	recipient := mobile
	if len(recipient) == 10 && recipient[0] != '0' {
		recipient = "91" + recipient
	}
	payload := smsPayload{
		Type:      "transactional",
		Sender:    c.senderName,
		Recipient: recipient,
		Content:   content,
	}
	return c.post(ctx, smsEndpoint, payload)
}

func (c *Client) post(ctx context.Context, endpoint string, payload interface{}) error {
	if c.apiKey == "" {
		return fmt.Errorf("brevo: api key not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("brevo: %s returned %d: %s", endpoint, resp.StatusCode, string(data))
	}
	return nil
}
