package pachca

import (
	"context"
	"fmt"

	"github.com/honeycarbs/hhnotify/internal/domain"
	"github.com/honeycarbs/hhnotify/internal/domain/chat"
	"github.com/honeycarbs/hhnotify/pkg/pachca"
)

// messageClient describes the subset of the Pachca client used by the provider.
type messageClient interface {
	SendMessage(ctx context.Context, entityType string, entityID int64, content string) (pachca.Message, error)
	CreateThread(ctx context.Context, messageID int64) (pachca.Thread, error)
	GetMessage(ctx context.Context, messageID int64) (pachca.Message, error)
	UpdateMessage(ctx context.Context, messageID int64, content string) error
}

// Provider implements chat.Messenger on top of one Pachca bot token
type Provider struct {
	client messageClient
}

// NewProvider builds a Pachca provider
func NewProvider(client messageClient) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("pachca provider: client is required")
	}
	return &Provider{client: client}, nil
}

// Send posts content to the channel
func (p *Provider) Send(ctx context.Context, to domain.Channel, content string) (domain.ChatMessage, error) {
	msg, err := p.client.SendMessage(ctx, to.EntityType, to.EntityID, content)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	return domain.ChatMessage{ID: msg.ID, Content: msg.Content}, nil
}

// OpenThread creates the message thread and returns it as a channel
func (p *Provider) OpenThread(ctx context.Context, messageID int64) (domain.Channel, error) {
	thread, err := p.client.CreateThread(ctx, messageID)
	if err != nil {
		return domain.Channel{}, err
	}
	if thread.ID == 0 {
		return domain.Channel{}, fmt.Errorf("pachca provider: thread for message %d has no id", messageID)
	}
	return domain.Thread(thread.ID), nil
}

// Get fetches a message
func (p *Provider) Get(ctx context.Context, messageID int64) (domain.ChatMessage, error) {
	msg, err := p.client.GetMessage(ctx, messageID)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	return domain.ChatMessage{ID: messageID, Content: msg.Content}, nil
}

// Update rewrites message content
func (p *Provider) Update(ctx context.Context, messageID int64, content string) error {
	return p.client.UpdateMessage(ctx, messageID, content)
}

var _ chat.Messenger = (*Provider)(nil)
