// Package telegram implements notify.Notifier against the Telegram Bot
// API: sendMessage for text and sendDocument (multipart) for artifact
// delivery. Only the two calls the core needs are implemented.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/djoldoshevv/Turniti/notify"
)

// DefaultAPIBase is the production Bot API endpoint.
const DefaultAPIBase = "https://api.telegram.org"

// Compile-time interface check.
var _ notify.Notifier = (*Client)(nil)

// Client is a minimal Telegram Bot API client.
type Client struct {
	token      string
	apiBase    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIBase overrides the Bot API base URL (used in tests).
func WithAPIBase(base string) Option {
	return func(c *Client) { c.apiBase = base }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the given bot token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		apiBase:    DefaultAPIBase,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiResponse is the Bot API's envelope.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify sends a text message via sendMessage.
func (c *Client) Notify(ctx context.Context, userID int64, message string) error {
	payload, err := json.Marshal(map[string]any{
		"chat_id": userID,
		"text":    message,
	})
	if err != nil {
		return fmt.Errorf("telegram: marshal sendMessage: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.methodURL("sendMessage"), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("telegram: build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, "sendMessage")
}

// DeliverFile sends a local file via sendDocument as multipart form data.
func (c *Client) DeliverFile(ctx context.Context, userID int64, filePath, caption string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("telegram: open document: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("chat_id", strconv.FormatInt(userID, 10)); err != nil {
		return fmt.Errorf("telegram: write chat_id field: %w", err)
	}
	if caption != "" {
		if err := mw.WriteField("caption", caption); err != nil {
			return fmt.Errorf("telegram: write caption field: %w", err)
		}
	}
	part, err := mw.CreateFormFile("document", filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("telegram: create document part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("telegram: copy document: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("telegram: finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.methodURL("sendDocument"), &body)
	if err != nil {
		return fmt.Errorf("telegram: build sendDocument request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.do(req, "sendDocument")
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)
}

func (c *Client) do(req *http.Request, method string) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: %s: %w", method, err)
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&apiResp); err != nil {
		return fmt.Errorf("telegram: %s: decode response: %w", method, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram: %s: api error: %s", method, apiResp.Description)
	}
	return nil
}
