package repository

// CacheRepository is the set of application IDs that were already notified
type CacheRepository interface {
	Contains(id string) bool

	// Add appends id (no-op when present) and persists before returning
	Add(id string) error

	// Reset drops every entry and persists the empty set
	Reset() error

	Len() int
}
