package pachca

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.pachca.com/api/shared/v1"
	defaultTimeout = 15 * time.Second
)

// NewClient instantiates a Pachca API client
func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("pachca: token is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    baseURL,
		token:      cfg.Token,
		httpClient: httpClient,
		timeout:    timeout,
	}, nil
}

// SendMessage posts content to a discussion or thread and returns the created message
func (c *Client) SendMessage(ctx context.Context, entityType string, entityID int64, content string) (Message, error) {
	body := sendMessageRequest{Message: newMessage{
		EntityType: entityType,
		EntityID:   entityID,
		Content:    content,
	}}

	var out envelope[Message]
	if err := c.call(ctx, http.MethodPost, "/messages", body, &out); err != nil {
		return Message{}, err
	}
	return out.Data, nil
}

// CreateThread opens (or returns the existing) thread under a message
func (c *Client) CreateThread(ctx context.Context, messageID int64) (Thread, error) {
	var out envelope[Thread]
	if err := c.call(ctx, http.MethodPost, "/messages/"+strconv.FormatInt(messageID, 10)+"/thread", struct{}{}, &out); err != nil {
		return Thread{}, err
	}
	return out.Data, nil
}

// GetMessage fetches a message by id
func (c *Client) GetMessage(ctx context.Context, messageID int64) (Message, error) {
	var out envelope[Message]
	if err := c.call(ctx, http.MethodGet, "/messages/"+strconv.FormatInt(messageID, 10), nil, &out); err != nil {
		return Message{}, err
	}
	return out.Data, nil
}

// UpdateMessage replaces the content of a message
func (c *Client) UpdateMessage(ctx context.Context, messageID int64, content string) error {
	return c.call(ctx, http.MethodPut, "/messages/"+strconv.FormatInt(messageID, 10), updateMessageRequest{Content: content}, nil)
}

func (c *Client) call(ctx context.Context, method, resource string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("pachca: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+resource, reader)
	if err != nil {
		return fmt.Errorf("pachca: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pachca: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("pachca: decode response: %w", err)
	}
	return nil
}
