package responses

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"

	"github.com/honeycarbs/hhnotify/internal/domain"
	"github.com/honeycarbs/hhnotify/internal/domain/notify"
	"github.com/honeycarbs/hhnotify/internal/repository"
	"github.com/honeycarbs/hhnotify/pkg/logging"
)

const defaultCycleTimeout = 10 * time.Minute

// TokenSource hands out a valid hh.ru credential
type TokenSource interface {
	EnsureValidToken(ctx context.Context) (*domain.Credential, error)
}

// Router picks the chat channel for a vacancy
type Router interface {
	ChannelFor(vacancyID string) domain.Channel
}

// Notifier posts one application to chat
type Notifier interface {
	Notify(
		ctx context.Context,
		to domain.Channel,
		vacancy domain.Vacancy,
		app domain.Application,
		solution notify.SolutionLookup,
	) (domain.ChatMessage, error)
}

// Report summarizes one poll cycle
type Report struct {
	CycleID   string
	Vacancies int
	Seen      int // applications submitted today
	Notified  int
	Failed    int

	// Err aggregates per-vacancy and per-application failures; they never abort the cycle
	Err error
}

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

// WithResumeDir enables résumé downloads into dir
func WithResumeDir(dir string) Option {
	return func(s *Service) {
		s.resumeDir = dir
	}
}

// WithCycleTimeout bounds a single poll cycle
func WithCycleTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.cycleTimeout = d
	}
}

// Service runs the poll / dedup / notify pipeline
type Service struct {
	tokens    TokenSource
	provider  Provider
	cache     repository.CacheRepository
	router    Router
	notifier  Notifier
	clock     func() time.Time
	logger    *logging.Logger
	resumeDir string

	cycleTimeout time.Duration
	group        singleflight.Group
}

// NewService builds the pipeline
func NewService(
	tokens TokenSource,
	provider Provider,
	cache repository.CacheRepository,
	router Router,
	notifier Notifier,
	opts ...Option,
) (*Service, error) {
	switch {
	case tokens == nil:
		return nil, fmt.Errorf("responses.Service: token source is required")
	case provider == nil:
		return nil, fmt.Errorf("responses.Service: provider is required")
	case cache == nil:
		return nil, fmt.Errorf("responses.Service: cache is required")
	case router == nil:
		return nil, fmt.Errorf("responses.Service: router is required")
	case notifier == nil:
		return nil, fmt.Errorf("responses.Service: notifier is required")
	}

	s := &Service{
		tokens:   tokens,
		provider: provider,
		cache:    cache,
		router:   router,
		notifier: notifier,
		clock:    time.Now,

		cycleTimeout: defaultCycleTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.cycleTimeout <= 0 {
		return nil, fmt.Errorf("responses.Service: cycle timeout must be positive")
	}
	return s, nil
}

// PollAndNotify runs one poll cycle. Concurrent callers share the cycle in flight.
// The cycle outlives a caller that gives up, but never runs past its own
// deadline: the earlier of the caller's deadline and the cycle timeout.
func (s *Service) PollAndNotify(ctx context.Context) (Report, error) {
	ch := s.group.DoChan("poll", func() (interface{}, error) {
		cycleCtx, cancel := s.cycleContext(ctx)
		defer cancel()
		return s.poll(cycleCtx)
	})

	select {
	case res := <-ch:
		report, _ := res.Val.(Report)
		if res.Shared {
			s.logger.Debug("joined poll cycle in flight", "cycle_id", report.CycleID)
		}
		return report, res.Err
	case <-ctx.Done():
		s.logger.Warn("stopped waiting for poll cycle", "err", ctx.Err())
		return Report{}, ctx.Err()
	}
}

func (s *Service) cycleContext(parent context.Context) (context.Context, context.CancelFunc) {
	deadline := time.Now().Add(s.cycleTimeout)
	if d, ok := parent.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return context.WithDeadline(context.WithoutCancel(parent), deadline)
}

// ResetCache forgets every notified application
func (s *Service) ResetCache(ctx context.Context) error {
	before := s.cache.Len()
	if err := s.cache.Reset(); err != nil {
		return fmt.Errorf("reset cache: %w", err)
	}
	s.logger.Info("response cache cleared", "entries", before)
	return nil
}

func (s *Service) poll(ctx context.Context) (Report, error) {
	report := Report{CycleID: uuid.NewString()}
	log := s.logger.With("cycle_id", report.CycleID, "provider", s.provider.Name())
	start := s.clock()

	cred, err := s.tokens.EnsureValidToken(ctx)
	if err != nil {
		log.Warn("poll cycle aborted: no valid token", "err", err)
		return report, err
	}

	vacancies, err := s.provider.Vacancies(ctx, cred.AccessToken)
	if err != nil {
		log.Error("poll cycle aborted: failed to list vacancies", "err", err)
		return report, fmt.Errorf("list vacancies: %w", err)
	}
	report.Vacancies = len(vacancies)
	log.Info("vacancies fetched", "count", len(vacancies))

	today := start.UTC().Format("2006-01-02")
	for _, v := range vacancies {
		if err := s.pollVacancy(ctx, log, cred, v, today, &report); err != nil {
			log.Warn("vacancy skipped", "vacancy_id", v.ID, "err", err)
			report.Err = multierr.Append(report.Err, fmt.Errorf("vacancy %s: %w", v.ID, err))
		}
	}

	log.Info("poll cycle finished",
		"vacancies", report.Vacancies,
		"seen", report.Seen,
		"notified", report.Notified,
		"failed", report.Failed,
		"duration", s.clock().Sub(start),
	)
	return report, nil
}

func (s *Service) pollVacancy(
	ctx context.Context,
	log *logging.Logger,
	cred *domain.Credential,
	vacancy domain.Vacancy,
	today string,
	report *Report,
) error {
	apps, err := s.provider.Applications(ctx, cred.AccessToken, vacancy.ID)
	if err != nil {
		return fmt.Errorf("list applications: %w", err)
	}

	to := s.router.ChannelFor(vacancy.ID)
	log = log.With("vacancy_id", vacancy.ID, "entity_id", to.EntityID)

	lookup := func(ctx context.Context, applicationID string) (string, error) {
		return s.provider.TestSolution(ctx, cred.AccessToken, applicationID)
	}

	var errs error
	for _, app := range apps {
		if !app.SubmittedOn(today) {
			continue
		}
		report.Seen++
		if s.cache.Contains(app.ID) {
			continue
		}

		log.Info("new application", "application_id", app.ID, "candidate", app.FullName())
		s.saveResume(ctx, log, cred, app)

		if _, err := s.notifier.Notify(ctx, to, vacancy, app, lookup); err != nil {
			report.Failed++
			errs = multierr.Append(errs, fmt.Errorf("application %s: %w", app.ID, err))
			log.Error("notification failed, will retry next cycle", "application_id", app.ID, "err", err)
			continue
		}

		report.Notified++
		if err := s.cache.Add(app.ID); err != nil {
			log.Error("failed to persist response cache", "application_id", app.ID, "err", err)
		}
	}

	return errs
}

func (s *Service) saveResume(ctx context.Context, log *logging.Logger, cred *domain.Credential, app domain.Application) {
	if s.resumeDir == "" {
		return
	}
	if app.ResumePDFURL == "" {
		log.Debug("no resume pdf url", "application_id", app.ID)
		return
	}

	path := filepath.Join(s.resumeDir, app.ID+".pdf")
	if err := s.downloadResume(ctx, cred, app, path); err != nil {
		log.Warn("failed to download resume", "application_id", app.ID, "err", err)
		return
	}
	log.Info("resume saved", "application_id", app.ID, "path", path)
}

func (s *Service) downloadResume(ctx context.Context, cred *domain.Credential, app domain.Application, path string) (err error) {
	if err := os.MkdirAll(s.resumeDir, 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
		if err != nil {
			err = multierr.Append(err, removeIfExists(path))
		}
	}()

	return s.provider.DownloadResume(ctx, cred.AccessToken, app, f)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
