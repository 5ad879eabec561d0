package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("CLIENT_ID", "client")
	t.Setenv("CLIENT_SECRET", "secret")
	t.Setenv("REDIRECT_URI", "http://localhost:3001/callback")
	t.Setenv("EMPLOYER_ID", "42")
	t.Setenv("PACHCA_TOKEN", "pachca")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "3001" {
		t.Fatalf("expected default port 3001, got %q", cfg.Port)
	}
	if cfg.UpstreamTimeout != 15*time.Second {
		t.Fatalf("expected 15s timeout, got %s", cfg.UpstreamTimeout)
	}
	if cfg.Schedule.Poll != "*/5 * * * *" || cfg.Schedule.CacheReset != "0 0 * * 1" {
		t.Fatalf("unexpected schedules: %+v", cfg.Schedule)
	}
	if len(cfg.Routing.SpecialVacancyIDs) != 2 {
		t.Fatalf("expected two special vacancies, got %v", cfg.Routing.SpecialVacancyIDs)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("CLIENT_SECRET", "")
	t.Setenv("PACHCA_TOKEN", "")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for missing variables")
	}
	for _, name := range []string{"CLIENT_SECRET", "PACHCA_TOKEN"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("expected %s in error, got %v", name, err)
		}
	}
}

func TestLoadRoutingFromEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("SPECIAL_VACANCY_IDS", "1,2")
	t.Setenv("SPECIAL_ENTITY_ID", "99")
	t.Setenv("DEFAULT_ENTITY_ID", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r, err := cfg.LoadRouting()
	if err != nil {
		t.Fatalf("LoadRouting: %v", err)
	}
	if got := r.ChannelFor("2").EntityID; got != 99 {
		t.Fatalf("expected special channel 99, got %d", got)
	}
	if got := r.ChannelFor("3").EntityID; got != 10 {
		t.Fatalf("expected default channel 10, got %d", got)
	}
}

func TestLoadRoutingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routing.yaml")
	body := "default_entity_id: 5\nroutes:\n  - entity_id: 7\n    vacancies: [\"100\", \"200\"]\n  - entity_id: 8\n    vacancies: [\"300\"]\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	r, err := LoadRoutingFile(path)
	if err != nil {
		t.Fatalf("LoadRoutingFile: %v", err)
	}
	if got := r.ChannelFor("300"); got.EntityID != 8 || got.EntityType != "discussion" {
		t.Fatalf("unexpected channel %+v", got)
	}
	if got := r.ChannelFor("100").EntityID; got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if got := r.ChannelFor("999").EntityID; got != 5 {
		t.Fatalf("expected default 5, got %d", got)
	}
}

func TestLoadRoutingFileRejectsMissingDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routing.yaml")
	if err := os.WriteFile(path, []byte("routes: []\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadRoutingFile(path); err == nil {
		t.Fatalf("expected validation error")
	}
}
