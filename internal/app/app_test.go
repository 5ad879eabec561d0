package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/honeycarbs/hhnotify/internal/config"
	"github.com/honeycarbs/hhnotify/pkg/logging"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()

	var cfg config.Config
	cfg.Host = "127.0.0.1"
	cfg.Port = "0"
	cfg.UpstreamTimeout = time.Second
	cfg.HH.ClientID = "client"
	cfg.HH.ClientSecret = "secret"
	cfg.HH.RedirectURI = "http://localhost:3001/callback"
	cfg.HH.EmployerID = "42"
	cfg.HH.OAuthURL = "https://hh.ru"
	cfg.Pachca.Token = "bot"
	cfg.Storage.CacheFile = filepath.Join(dir, "cache.json")
	cfg.Storage.TokenFile = filepath.Join(dir, "token.json")
	cfg.Schedule.Poll = "*/5 * * * *"
	cfg.Schedule.CacheReset = "0 0 * * 1"
	cfg.Routing.DefaultEntityID = 7431593
	return cfg
}

func TestInitializeApp(t *testing.T) {
	a, err := InitializeApp(testConfig(t), logging.NewNop())
	if err != nil {
		t.Fatalf("InitializeApp: %v", err)
	}
	if a.Server == nil || a.Scheduler == nil || a.Responses == nil {
		t.Fatalf("expected fully wired app, got %+v", a)
	}
}

func TestInitializeAppRejectsBadRouting(t *testing.T) {
	cfg := testConfig(t)
	cfg.Routing.File = filepath.Join(t.TempDir(), "missing.yaml")

	if _, err := InitializeApp(cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for missing routing file")
	}
}

func TestProvideMessengers(t *testing.T) {
	cfg := testConfig(t)
	client := provideHTTPClient(cfg)

	m, err := provideMessengers(cfg, client)
	if err != nil {
		t.Fatalf("provideMessengers: %v", err)
	}
	if m.Primary == nil || m.Secondary != nil {
		t.Fatalf("expected only the primary bot, got %+v", m)
	}

	cfg.Pachca.SecondToken = "habr-bot"
	m, err = provideMessengers(cfg, client)
	if err != nil {
		t.Fatalf("provideMessengers: %v", err)
	}
	if m.Secondary == nil {
		t.Fatalf("expected secondary bot")
	}
}
