package pachca

import (
	"fmt"
	"net/http"
	"time"
)

// Config defines Pachca API client settings
type Config struct {
	BaseURL    string
	Token      string // bot access token
	HTTPClient *http.Client
	Timeout    time.Duration // per request deadline
}

// Client calls the Pachca shared API with a single bot token
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	timeout    time.Duration
}

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pachca: API error (%d): %s", e.StatusCode, e.Body)
}

// Message is a Pachca chat message
type Message struct {
	ID         int64  `json:"id"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	Content    string `json:"content"`
}

// Thread is a sub-conversation attached to a message
type Thread struct {
	ID        int64 `json:"id"`
	ChatID    int64 `json:"chat_id"`
	MessageID int64 `json:"message_id"`
}

type envelope[T any] struct {
	Data T `json:"data"`
}

type newMessage struct {
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	Content    string `json:"content"`
}

type sendMessageRequest struct {
	Message newMessage `json:"message"`
}

type updateMessageRequest struct {
	Content string `json:"content"`
}
