package repository

import "github.com/honeycarbs/hhnotify/internal/domain"

// TokenRepository persists the single hh.ru OAuth credential
type TokenRepository interface {
	// Load returns the stored credential, or nil when storage is missing,
	// unreadable, malformed or explicitly invalidated
	Load() *domain.Credential

	// Save overwrites storage; nil marks the credential as invalidated
	Save(cred *domain.Credential) error
}
