// Package transport is the authenticated REST client for the chat backend.
// Every request carries the stored session token as a bearer header; the
// backend independently verifies it — nothing in this core treats the token
// as proof of identity.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.amora.app"
	DefaultTimeout = 30 * time.Second
)

// ErrRejected is returned when the backend answers with a structured
// non-success envelope or a non-2xx status.
var ErrRejected = errors.New("backend rejected request")

// TokenSource supplies the stored opaque session token.
type TokenSource interface {
	Token() (string, error)
}

// TokenFunc adapts a function to the TokenSource interface.
type TokenFunc func() (string, error)

func (f TokenFunc) Token() (string, error) { return f() }

// Client is the chat backend REST client.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the backend base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

// NewClient creates a backend client that authenticates with tokens.
func NewClient(tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Conversations fetches the caller's conversation list.
func (c *Client) Conversations(ctx context.Context) ([]Conversation, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/api/chat/conversations", nil)
	if err != nil {
		return nil, err
	}
	var env conversationsEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode conversations: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("list conversations: %w", ErrRejected)
	}
	return env.Conversations, nil
}

// Messages fetches the canonical message history of a conversation,
// oldest first as the backend returns it.
func (c *Client) Messages(ctx context.Context, conversationID string) ([]Message, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/api/chat/messages/"+url.PathEscape(conversationID), nil)
	if err != nil {
		return nil, err
	}
	var env messagesEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("list messages: %w", ErrRejected)
	}
	return env.Messages, nil
}

// SendMessage delivers a text or sticker message.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*SentMessage, error) {
	data, err := c.doRequest(ctx, http.MethodPost, "/api/chat/send-message", req)
	if err != nil {
		return nil, err
	}
	var env sendEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode send response: %w", err)
	}
	if !env.Success || env.Message == nil {
		return nil, fmt.Errorf("send message: %w", ErrRejected)
	}
	return env.Message, nil
}

// SendMedia uploads a media attachment as multipart content tagged as image.
func (c *Client) SendMedia(ctx context.Context, req SendMediaRequest) (*SentMessage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, req.FileName))
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := w.WriteField("type", "image"); err != nil {
		return nil, fmt.Errorf("write type field: %w", err)
	}
	if err := w.WriteField("recipientId", req.RecipientID); err != nil {
		return nil, fmt.Errorf("write recipient field: %w", err)
	}
	if req.ConversationID != "" {
		if err := w.WriteField("conversationId", req.ConversationID); err != nil {
			return nil, fmt.Errorf("write conversation field: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	data, err := c.doRaw(ctx, http.MethodPost, "/api/chat/send-media", &buf, w.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var env sendEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode media response: %w", err)
	}
	if !env.Success || env.Message == nil {
		return nil, fmt.Errorf("send media: %w", ErrRejected)
	}
	return env.Message, nil
}

// UserProfile fetches another user's (or the caller's own) public profile.
func (c *Client) UserProfile(ctx context.Context, id string) (*User, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/api/profile/user/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var env profileEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if !env.Success || env.User == nil {
		return nil, fmt.Errorf("fetch profile: %w", ErrRejected)
	}
	return env.User, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader
	contentType := ""
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.doRaw(ctx, method, path, bodyReader, contentType)
}

func (c *Client) doRaw(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	token, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, ErrRejected)
	}
	return data, nil
}
