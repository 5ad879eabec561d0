package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/honeycarbs/hhnotify/internal/domain"
	"github.com/honeycarbs/hhnotify/internal/domain/chat"
	"github.com/honeycarbs/hhnotify/internal/domain/status"
	"github.com/honeycarbs/hhnotify/pkg/logging"
)

const (
	expiryWarning = "⚠️ **Вакансия истекает завтра!**"
	expiryWindow  = 24 * time.Hour
)

// SolutionLookup returns the candidate's test task answer, or "" when there is none
type SolutionLookup func(ctx context.Context, applicationID string) (string, error)

// Option configures Service
type Option func(*Service)

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// Service posts application notifications to chat
type Service struct {
	messenger chat.Messenger
	clock     func() time.Time
	logger    *logging.Logger
}

// NewService builds the notifier
func NewService(messenger chat.Messenger, opts ...Option) (*Service, error) {
	if messenger == nil {
		return nil, fmt.Errorf("notify.Service: messenger is required")
	}

	s := &Service{
		messenger: messenger,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	return s, nil
}

// Notify posts the application to the channel. The test task thread is
// best-effort: once the main message is sent, Notify reports success.
func (s *Service) Notify(
	ctx context.Context,
	to domain.Channel,
	vacancy domain.Vacancy,
	app domain.Application,
	solution SolutionLookup,
) (domain.ChatMessage, error) {
	log := s.logger.With("vacancy_id", vacancy.ID, "application_id", app.ID)

	msg, err := s.messenger.Send(ctx, to, Compose(vacancy, app, s.clock()))
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("send notification: %w", err)
	}
	log.Info("notification sent", "entity_id", to.EntityID, "message_id", msg.ID)

	if solution == nil {
		return msg, nil
	}

	answer, err := solution(ctx, app.ID)
	if err != nil {
		log.Warn("failed to fetch test solution", "err", err)
		return msg, nil
	}
	if strings.TrimSpace(answer) == "" {
		return msg, nil
	}

	thread, err := s.messenger.OpenThread(ctx, msg.ID)
	if err != nil {
		log.Warn("failed to open thread", "message_id", msg.ID, "err", err)
		return msg, nil
	}
	if _, err := s.messenger.Send(ctx, thread, "**Тестовое задание:**\n"+answer); err != nil {
		log.Warn("failed to post test solution", "thread_id", thread.EntityID, "err", err)
		return msg, nil
	}

	log.Info("test solution posted", "thread_id", thread.EntityID)
	return msg, nil
}

// Compose renders the notification text
func Compose(vacancy domain.Vacancy, app domain.Application, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Отклик на вакансию **[%s](https://hh.ru/vacancy/%s)** от *%s %s*!\n",
		vacancy.Title, vacancy.ID, app.FirstName, app.LastName)
	fmt.Fprintf(&b, "Опыт работы: %.1f лет\n", float64(app.ExperienceMonths)/12)
	fmt.Fprintf(&b, "[Резюме](%s)\n", app.ResumeURL)
	b.WriteString(status.New.Marker())
	if vacancy.ExpiresWithin(now, expiryWindow) {
		b.WriteString("\n" + expiryWarning)
	}
	return b.String()
}
