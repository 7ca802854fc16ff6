package waha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/ports"
)

// Client talks to a WAHA (WhatsApp HTTP API) instance. Every call carries the
// API key header and the configured session, and is bounded by the client
// timeout so gateway unavailability cannot hang webhook processing.
type Client struct {
	baseURL    string
	apiKey     string
	session    string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, session string, timeout time.Duration) *Client {
	if session == "" {
		session = "default"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		session:    session,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type sendTextRequest struct {
	Session string `json:"session"`
	ChatID  string `json:"chatId"`
	Text    string `json:"text"`
}

type sendImageRequest struct {
	Session string    `json:"session"`
	ChatID  string    `json:"chatId"`
	File    fileByURL `json:"file"`
	Caption string    `json:"caption"`
}

type fileByURL struct {
	URL string `json:"url"`
}

type gatewayError struct {
	Message string `json:"message"`
}

type sessionResponse struct {
	Status string `json:"status"`
}

func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	return c.post(ctx, "/api/sendText", sendTextRequest{
		Session: c.session,
		ChatID:  chatID,
		Text:    text,
	})
}

func (c *Client) SendImage(ctx context.Context, chatID, fileURL, caption string) error {
	return c.post(ctx, "/api/sendImage", sendImageRequest{
		Session: c.session,
		ChatID:  chatID,
		File:    fileByURL{URL: fileURL},
		Caption: caption,
	})
}

// SessionStatus reports whether the configured session is connected. WAHA
// reports a connected session as status WORKING.
func (c *Client) SessionStatus(ctx context.Context) (ports.SessionStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/sessions/"+c.session, nil)
	if err != nil {
		return ports.SessionStatus{}, err
	}
	c.setHeaders(req)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return ports.SessionStatus{}, fmt.Errorf("gateway session query: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return ports.SessionStatus{}, fmt.Errorf("gateway session query: %s", readGatewayError(res))
	}
	var body sessionResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return ports.SessionStatus{}, fmt.Errorf("decode session response: %w", err)
	}
	return ports.SessionStatus{
		Status:    body.Status,
		Connected: body.Status == "WORKING",
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	c.setHeaders(req)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("gateway responded %d: %s", res.StatusCode, readGatewayError(res))
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
}

func readGatewayError(res *http.Response) string {
	var body gatewayError
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil || body.Message == "" {
		return res.Status
	}
	return body.Message
}
