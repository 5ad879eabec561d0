package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/honeycarbs/hhnotify/internal/config"
	"github.com/honeycarbs/hhnotify/internal/domain/chat"
	pachcaProvider "github.com/honeycarbs/hhnotify/internal/domain/chat/providers/pachca"
	"github.com/honeycarbs/hhnotify/internal/domain/notify"
	"github.com/honeycarbs/hhnotify/internal/domain/responses"
	hhProvider "github.com/honeycarbs/hhnotify/internal/domain/responses/providers/hh"
	"github.com/honeycarbs/hhnotify/internal/domain/status"
	"github.com/honeycarbs/hhnotify/internal/domain/token"
	"github.com/honeycarbs/hhnotify/internal/repository"
	"github.com/honeycarbs/hhnotify/internal/scheduler"
	"github.com/honeycarbs/hhnotify/internal/storage/jsonfile"
	"github.com/honeycarbs/hhnotify/pkg/hh"
	"github.com/honeycarbs/hhnotify/pkg/logging"
	"github.com/honeycarbs/hhnotify/pkg/pachca"
)

// Messengers are the chat bots, one per job board
type Messengers struct {
	Primary   chat.Messenger
	Secondary chat.Messenger // nil when SECOND_PACHCA_TOKEN is unset
}

// provideHTTPClient builds the shared upstream client
func provideHTTPClient(cfg config.Config) *http.Client {
	return &http.Client{Timeout: cfg.UpstreamTimeout}
}

// provideHHConfig extracts hh.ru API config from main config
func provideHHConfig(cfg config.Config, httpClient *http.Client) hh.Config {
	return hh.Config{
		BaseURL:    cfg.HH.APIURL,
		UserAgent:  cfg.HH.UserAgent,
		HTTPClient: httpClient,
		Timeout:    cfg.UpstreamTimeout,
	}
}

// provideHHProvider creates the hh.ru provider for the configured employer
func provideHHProvider(client *hh.Client, cfg config.Config) (*hhProvider.Provider, error) {
	return hhProvider.NewProvider(client, cfg.HH.EmployerID)
}

func provideTokenStore(cfg config.Config, logger *logging.Logger) *jsonfile.TokenStore {
	return jsonfile.NewTokenStore(cfg.Storage.TokenFile, logger)
}

func provideCacheStore(cfg config.Config, logger *logging.Logger) *jsonfile.CacheStore {
	return jsonfile.OpenCacheStore(cfg.Storage.CacheFile, logger)
}

func provideTokenService(
	repo repository.TokenRepository,
	cfg config.Config,
	httpClient *http.Client,
	logger *logging.Logger,
) (*token.Service, error) {
	return token.NewService(repo, token.Config{
		ClientID:     cfg.HH.ClientID,
		ClientSecret: cfg.HH.ClientSecret,
		RedirectURI:  cfg.HH.RedirectURI,
		BaseURL:      cfg.HH.OAuthURL,
	}, token.WithHTTPClient(httpClient), token.WithLogger(logger.With("component", "token")))
}

func provideRouting(cfg config.Config) (config.Routing, error) {
	return cfg.LoadRouting()
}

// provideMessengers creates one Pachca messenger per configured bot token
func provideMessengers(cfg config.Config, httpClient *http.Client) (Messengers, error) {
	primary, err := newPachcaMessenger(cfg, cfg.Pachca.Token, httpClient)
	if err != nil {
		return Messengers{}, fmt.Errorf("primary pachca bot: %w", err)
	}

	m := Messengers{Primary: primary}
	if cfg.Pachca.SecondToken != "" {
		secondary, err := newPachcaMessenger(cfg, cfg.Pachca.SecondToken, httpClient)
		if err != nil {
			return Messengers{}, fmt.Errorf("secondary pachca bot: %w", err)
		}
		m.Secondary = secondary
	}
	return m, nil
}

func newPachcaMessenger(cfg config.Config, botToken string, httpClient *http.Client) (*pachcaProvider.Provider, error) {
	client, err := pachca.NewClient(pachca.Config{
		BaseURL:    cfg.Pachca.APIURL,
		Token:      botToken,
		HTTPClient: httpClient,
		Timeout:    cfg.UpstreamTimeout,
	})
	if err != nil {
		return nil, err
	}
	return pachcaProvider.NewProvider(client)
}

func provideNotifier(m Messengers, logger *logging.Logger) (*notify.Service, error) {
	return notify.NewService(m.Primary, notify.WithLogger(logger.With("component", "notify")))
}

func provideUpdater(m Messengers, logger *logging.Logger) (*status.Updater, error) {
	return status.NewUpdater(m.Primary, m.Secondary, logger.With("component", "status"))
}

func provideResponsesService(
	tokens *token.Service,
	provider *hhProvider.Provider,
	cache repository.CacheRepository,
	router responses.Router,
	notifier *notify.Service,
	cfg config.Config,
	logger *logging.Logger,
) (*responses.Service, error) {
	return responses.NewService(tokens, provider, cache, router, notifier,
		responses.WithLogger(logger.With("component", "responses")),
		responses.WithResumeDir(cfg.Storage.ResumeDir),
		responses.WithCycleTimeout(cycleTimeout(cfg)),
	)
}

// cycleTimeout bounds one poll cycle to ten upstream timeouts
func cycleTimeout(cfg config.Config) time.Duration {
	return 10 * cfg.UpstreamTimeout
}

func provideScheduler(cfg config.Config, logger *logging.Logger) *scheduler.Scheduler {
	return scheduler.New(logger.With("component", "scheduler"), cycleTimeout(cfg))
}
