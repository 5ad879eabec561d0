//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/honeycarbs/hhnotify/internal/config"
	"github.com/honeycarbs/hhnotify/internal/domain/responses"
	"github.com/honeycarbs/hhnotify/internal/domain/status"
	"github.com/honeycarbs/hhnotify/internal/domain/token"
	"github.com/honeycarbs/hhnotify/internal/repository"
	"github.com/honeycarbs/hhnotify/internal/server"
	"github.com/honeycarbs/hhnotify/internal/storage/jsonfile"
	"github.com/honeycarbs/hhnotify/pkg/hh"
	"github.com/honeycarbs/hhnotify/pkg/logging"
)

// InitializeApp creates App with all dependencies wired up
func InitializeApp(cfg config.Config, logger *logging.Logger) (*App, error) {
	wire.Build(
		// Infrastructure - upstream APIs
		provideHTTPClient,
		provideHHConfig,
		hh.NewClient,
		provideMessengers,

		// Repositories
		provideTokenStore,
		wire.Bind(new(repository.TokenRepository), new(*jsonfile.TokenStore)),
		provideCacheStore,
		wire.Bind(new(repository.CacheRepository), new(*jsonfile.CacheStore)),
		provideRouting,
		wire.Bind(new(responses.Router), new(config.Routing)),

		// Providers
		provideHHProvider,

		// Services
		provideTokenService,
		provideNotifier,
		provideUpdater,
		provideResponsesService,

		// Transport
		server.NewServer,
		wire.Bind(new(server.Authorizer), new(*token.Service)),
		wire.Bind(new(server.Poller), new(*responses.Service)),
		wire.Bind(new(server.ReactionApplier), new(*status.Updater)),
		provideScheduler,

		newApp,
	)

	return &App{}, nil
}
