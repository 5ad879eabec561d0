package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/honeycarbs/hhnotify/internal/domain"
	"github.com/honeycarbs/hhnotify/internal/repository"
	"github.com/honeycarbs/hhnotify/pkg/logging"
)

const scope = "resumes:download negotiations:read negotiations:write"

var (
	// ErrAuthorizationRequired means an operator has to visit /auth
	ErrAuthorizationRequired = errors.New("token: authorization required")

	// ErrAuthorizationRevoked means the provider rejected the refresh token for good
	ErrAuthorizationRevoked = fmt.Errorf("%w: refresh token revoked", ErrAuthorizationRequired)
)

// error_description values after which the refresh token must not be retried
var terminalDescriptions = map[string]struct{}{
	"password invalidated": {},
}

// Config holds the hh.ru OAuth application credentials
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	BaseURL      string // e.g. https://hh.ru
}

// Option configures Service
type Option func(*options)

type options struct {
	clock      func() time.Time
	httpClient *http.Client
	logger     *logging.Logger
}

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithHTTPClient sets the client used for token endpoint calls
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Service keeps the hh.ru credential valid
type Service struct {
	mu         sync.Mutex
	repo       repository.TokenRepository
	oauth      *oauth2.Config
	clock      func() time.Time
	httpClient *http.Client
	logger     *logging.Logger
}

// NewService builds a token Service
func NewService(repo repository.TokenRepository, cfg Config, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("token.Service: repository is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("token.Service: base URL is required")
	}

	o := &options{clock: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}

	base := strings.TrimSuffix(cfg.BaseURL, "/")
	return &Service{
		repo: repo,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   base + "/oauth/authorize",
				TokenURL:  base + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		clock:      o.clock,
		httpClient: o.httpClient,
		logger:     o.logger,
	}, nil
}

// AuthCodeURL returns the consent screen URL the operator is redirected to
func (s *Service) AuthCodeURL() string {
	return s.oauth.AuthCodeURL("")
}

// Exchange trades an authorization code for a credential and stores it
func (s *Service) Exchange(ctx context.Context, code string) (*domain.Credential, error) {
	if code == "" {
		return nil, fmt.Errorf("token: authorization code is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.oauth.Exchange(s.withClient(ctx), code, oauth2.SetAuthURLParam("scope", scope))
	if err != nil {
		return nil, fmt.Errorf("token: exchange code: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("token: exchange returned no access token")
	}

	cred := s.credential(tok, "")
	if err := s.repo.Save(cred); err != nil {
		return nil, fmt.Errorf("token: save credential: %w", err)
	}

	s.logger.Info("hh token obtained", "expires_at", cred.ExpiresAt)
	return cred, nil
}

// EnsureValidToken returns a usable credential, refreshing it at most once
func (s *Service) EnsureValidToken(ctx context.Context) (*domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred := s.repo.Load()
	if cred == nil || cred.RefreshToken == "" {
		return nil, ErrAuthorizationRequired
	}

	now := s.clock()
	if cred.AccessToken != "" && !cred.Stale(now) {
		return cred, nil
	}

	s.logger.Info("refreshing hh token")
	tok, err := s.oauth.TokenSource(s.withClient(ctx), &oauth2.Token{RefreshToken: cred.RefreshToken}).Token()
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) {
			if _, terminal := terminalDescriptions[rErr.ErrorDescription]; terminal {
				s.logger.Error("hh refresh token revoked, re-authorization required",
					"error_code", rErr.ErrorCode,
					"error_description", rErr.ErrorDescription,
				)
				if saveErr := s.repo.Save(nil); saveErr != nil {
					s.logger.Warn("failed to clear revoked credential", "err", saveErr)
				}
				return nil, ErrAuthorizationRevoked
			}
		}
		return nil, fmt.Errorf("token: refresh: %w", err)
	}

	fresh := s.credential(tok, cred.RefreshToken)
	if err := s.repo.Save(fresh); err != nil {
		return nil, fmt.Errorf("token: save credential: %w", err)
	}

	s.logger.Info("hh token refreshed", "expires_at", fresh.ExpiresAt)
	return fresh, nil
}

func (s *Service) credential(tok *oauth2.Token, previousRefresh string) *domain.Credential {
	cred := &domain.Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if cred.RefreshToken == "" {
		cred.RefreshToken = previousRefresh
	}
	if tok.ExpiresIn > 0 {
		cred.ExpiresAt = s.clock().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	return cred
}

func (s *Service) withClient(ctx context.Context) context.Context {
	if s.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}
