package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const defaultAPIURL = "https://api.brevo.com/v3/smtp/email"

// Notifier delivers the account verification link. Delivery is best-effort:
// registration never fails because an email could not be sent.
type Notifier interface {
	SendVerificationLink(ctx context.Context, username, email, token string) error
}

// Client talks to the Brevo transactional email API.
type Client struct {
	apiKey     string
	fromEmail  string
	fromName   string
	verifyURL  string
	httpClient *http.Client
	configured bool
}

// NewClient returns a mail client. verifyURL is the public base of the
// verification endpoint; the token is appended as a query parameter. The
// client is a no-op unless all credentials are present.
func NewClient(apiKey, fromEmail, fromName, verifyURL string) *Client {
	c := &Client{
		verifyURL:  verifyURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if apiKey != "" && fromEmail != "" && fromName != "" {
		c.apiKey = apiKey
		c.fromEmail = fromEmail
		c.fromName = fromName
		c.configured = true
	}
	return c
}

// IsConfigured reports whether the client holds usable credentials.
func (c *Client) IsConfigured() bool {
	return c.configured
}

type sendEmailReq struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HtmlContent string              `json:"htmlContent"`
	MessageID   string              `json:"messageId,omitempty"`
}

// SendVerificationLink emails the signed verification token to a freshly
// registered user.
func (c *Client) SendVerificationLink(ctx context.Context, username, email, token string) error {
	if !c.configured {
		return fmt.Errorf("mail client not configured, verification email to %s skipped", email)
	}
	if email == "" || token == "" {
		return errors.New("email and token cannot be empty")
	}

	html := fmt.Sprintf(`
	<h1>Welcome to CompSocial</h1>
	<p>Username: %s</p>
	<p>Click <a href="%s/auth/verifyUser?token=%s">here</a> to verify your account</p>
	`, username, c.verifyURL, token)

	reqBody := sendEmailReq{
		Sender:      map[string]string{"email": c.fromEmail, "name": c.fromName},
		To:          []map[string]string{{"email": email}},
		Subject:     "Verify your CompSocial account",
		HtmlContent: html,
		MessageID:   uuid.NewString(),
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal email request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, defaultAPIURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create mail request: %w", err)
	}
	httpReq.Header.Set("api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("verification email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errorBody map[string]interface{}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errorBody); decodeErr != nil {
			return fmt.Errorf("mail API error: status %d, failed to decode error body: %v", resp.StatusCode, decodeErr)
		}
		return fmt.Errorf("mail API error: status %d, body: %v", resp.StatusCode, errorBody)
	}
	return nil
}
