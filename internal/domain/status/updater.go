package status

import (
	"context"
	"fmt"
	"strings"

	"github.com/honeycarbs/hhnotify/internal/domain/chat"
	"github.com/honeycarbs/hhnotify/pkg/logging"
)

// Source is the job board a notification was created for
type Source string

const (
	SourceHH    Source = "hh.ru"
	SourceHabr  Source = "career.habr.com"
	sourceUnset Source = ""
)

// DetectSource finds which job board a message belongs to
func DetectSource(content string) Source {
	switch {
	case strings.Contains(content, string(SourceHH)):
		return SourceHH
	case strings.Contains(content, string(SourceHabr)):
		return SourceHabr
	default:
		return sourceUnset
	}
}

// Updater applies reactions to posted notifications
type Updater struct {
	primary   chat.Messenger
	secondary chat.Messenger
	logger    *logging.Logger
}

// NewUpdater builds an Updater. secondary edits career.habr.com messages and may be nil.
func NewUpdater(primary, secondary chat.Messenger, logger *logging.Logger) (*Updater, error) {
	if primary == nil {
		return nil, fmt.Errorf("status.Updater: primary messenger is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Updater{primary: primary, secondary: secondary, logger: logger}, nil
}

// ApplyReaction rewrites the status marker of a message
func (u *Updater) ApplyReaction(ctx context.Context, messageID int64, code string) error {
	log := u.logger.With("message_id", messageID, "code", code)

	msg, err := u.primary.Get(ctx, messageID)
	if err != nil {
		return fmt.Errorf("fetch message %d: %w", messageID, err)
	}

	var editor chat.Messenger
	switch DetectSource(msg.Content) {
	case SourceHH:
		editor = u.primary
	case SourceHabr:
		editor = u.secondary
		if editor == nil {
			return fmt.Errorf("status.Updater: no messenger configured for %s", SourceHabr)
		}
	default:
		log.Warn("message has no known source marker")
		return ErrUnrecognizedContent
	}

	updated, err := Transition(msg.Content, code)
	if err != nil {
		return err
	}
	if updated == msg.Content {
		log.Debug("status unchanged")
		return nil
	}

	if err := editor.Update(ctx, messageID, updated); err != nil {
		return fmt.Errorf("update message %d: %w", messageID, err)
	}

	log.Info("message status updated")
	return nil
}
