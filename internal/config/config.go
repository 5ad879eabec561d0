package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains runtime settings for the notifier service
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Host     string `env:"HOST" envDefault:"0.0.0.0"`
	Port     string `env:"PORT" envDefault:"3001"`

	// UpstreamTimeout bounds every single call to hh.ru or Pachca
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"15s"`

	HH struct {
		ClientID     string `env:"CLIENT_ID,notEmpty"`
		ClientSecret string `env:"CLIENT_SECRET,notEmpty"`
		RedirectURI  string `env:"REDIRECT_URI,notEmpty"`
		EmployerID   string `env:"EMPLOYER_ID,notEmpty"`
		UserAgent    string `env:"HH_USER_AGENT" envDefault:"hhnotify/1.0"`
		APIURL       string `env:"HH_API_URL" envDefault:"https://api.hh.ru"`
		OAuthURL     string `env:"HH_OAUTH_URL" envDefault:"https://hh.ru"`
	}

	Pachca struct {
		Token         string `env:"PACHCA_TOKEN,notEmpty"`
		SecondToken   string `env:"SECOND_PACHCA_TOKEN"` // bot token for career.habr.com messages
		APIURL        string `env:"PACHCA_API_URL" envDefault:"https://api.pachca.com/api/shared/v1"`
		WebhookSecret string `env:"PACHCA_WEBHOOK_SECRET"`
	}

	Storage struct {
		CacheFile string `env:"CACHE_FILE" envDefault:"./cache/cache.json"`
		TokenFile string `env:"TOKEN_FILE" envDefault:"./cache/token.json"`
		ResumeDir string `env:"RESUME_DIR" envDefault:"./temp"`
	}

	Schedule struct {
		Poll       string `env:"POLL_SCHEDULE" envDefault:"*/5 * * * *"`
		CacheReset string `env:"CACHE_RESET_SCHEDULE" envDefault:"0 0 * * 1"`
	}

	Routing struct {
		DefaultEntityID   int64    `env:"DEFAULT_ENTITY_ID" envDefault:"7431593"`
		SpecialEntityID   int64    `env:"SPECIAL_ENTITY_ID" envDefault:"18381861"`
		SpecialVacancyIDs []string `env:"SPECIAL_VACANCY_IDS" envSeparator:"," envDefault:"120065476,118154065"`
		File              string   `env:"ROUTING_FILE"`
	}
}

// Load populates config from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}

	if cfg.UpstreamTimeout <= 0 {
		return cfg, fmt.Errorf("config: UPSTREAM_TIMEOUT must be positive")
	}

	return cfg, nil
}

// LoadRouting builds the vacancy routing table, preferring ROUTING_FILE when set
func (c Config) LoadRouting() (Routing, error) {
	if c.Routing.File != "" {
		return LoadRoutingFile(c.Routing.File)
	}

	r := Routing{DefaultEntityID: c.Routing.DefaultEntityID}
	if len(c.Routing.SpecialVacancyIDs) > 0 {
		r.Routes = []Route{{
			EntityID:  c.Routing.SpecialEntityID,
			Vacancies: c.Routing.SpecialVacancyIDs,
		}}
	}
	return r, r.Validate()
}
