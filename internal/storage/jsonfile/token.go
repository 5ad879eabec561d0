package jsonfile

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/honeycarbs/hhnotify/internal/domain"
	"github.com/honeycarbs/hhnotify/internal/repository"
	"github.com/honeycarbs/hhnotify/pkg/logging"
)

var _ repository.TokenRepository = (*TokenStore)(nil)

// tokenDocument is the on-disk shape of token.json
type tokenDocument struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"` // epoch milliseconds
}

// TokenStore keeps the OAuth credential in a JSON file
type TokenStore struct {
	path   string
	logger *logging.Logger
	mu     sync.Mutex
}

// NewTokenStore creates a TokenStore backed by path
func NewTokenStore(path string, logger *logging.Logger) *TokenStore {
	return &TokenStore{path: path, logger: logger}
}

// Load reads the credential; every failure yields nil
func (s *TokenStore) Load() *domain.Credential {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info("token file not found", "path", s.path)
		} else {
			s.logger.Warn("failed to read token file", "path", s.path, "err", err)
		}
		return nil
	}

	var doc *tokenDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.Warn("malformed token file", "path", s.path, "err", err)
		return nil
	}
	if doc == nil || (doc.AccessToken == "" && doc.RefreshToken == "") {
		return nil
	}

	cred := &domain.Credential{
		AccessToken:  doc.AccessToken,
		RefreshToken: doc.RefreshToken,
		TokenType:    doc.TokenType,
	}
	if doc.ExpiresAt > 0 {
		cred.ExpiresAt = time.UnixMilli(doc.ExpiresAt)
	}
	return cred
}

// Save overwrites the token file; nil is stored as JSON null
func (s *TokenStore) Save(cred *domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc *tokenDocument
	if cred != nil {
		doc = &tokenDocument{
			AccessToken:  cred.AccessToken,
			RefreshToken: cred.RefreshToken,
			TokenType:    cred.TokenType,
		}
		if !cred.ExpiresAt.IsZero() {
			doc.ExpiresAt = cred.ExpiresAt.UnixMilli()
		}
	}

	if err := writeJSON(s.path, doc); err != nil {
		return err
	}

	if doc == nil {
		s.logger.Warn("stored hh credential invalidated", "path", s.path)
	} else {
		s.logger.Info("hh credential saved", "path", s.path)
	}
	return nil
}
