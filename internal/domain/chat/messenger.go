package chat

import (
	"context"

	"github.com/honeycarbs/hhnotify/internal/domain"
)

// Messenger posts and edits messages on a team chat platform
type Messenger interface {
	// Send posts content to a discussion or thread
	Send(ctx context.Context, to domain.Channel, content string) (domain.ChatMessage, error)

	// OpenThread returns the thread channel attached to a message
	OpenThread(ctx context.Context, messageID int64) (domain.Channel, error)

	Get(ctx context.Context, messageID int64) (domain.ChatMessage, error)
	Update(ctx context.Context, messageID int64, content string) error
}
