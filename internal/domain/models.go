package domain

import (
	"strings"
	"time"
)

// Credential is the OAuth credential pair issued by hh.ru
type Credential struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time // zero when the provider did not report a lifetime
}

// Stale reports whether the access token must be refreshed before use
func (c *Credential) Stale(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

// Vacancy is an open job posting of the employer
type Vacancy struct {
	ID        string
	Title     string
	ExpiresAt time.Time
}

// ExpiresWithin reports whether the vacancy closes before now+d
func (v Vacancy) ExpiresWithin(now time.Time, d time.Duration) bool {
	if v.ExpiresAt.IsZero() {
		return false
	}
	return !v.ExpiresAt.After(now.Add(d))
}

// Application is a candidate response ("negotiation") on a vacancy
type Application struct {
	ID               string
	VacancyID        string
	FirstName        string
	LastName         string
	CreatedAt        string // raw upstream timestamp, e.g. 2024-05-01T10:00:00+0300
	ExperienceMonths int
	ResumeURL        string
	ResumePDFURL     string
}

// SubmittedOn reports whether the application was created on the given YYYY-MM-DD day
func (a Application) SubmittedOn(day string) bool {
	return a.CreatedAt != "" && strings.HasPrefix(a.CreatedAt, day)
}

// FullName joins first and last name
func (a Application) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Channel is a Pachca entity a message is posted to
type Channel struct {
	EntityType string
	EntityID   int64
}

const (
	EntityDiscussion = "discussion"
	EntityThread     = "thread"
)

// Discussion builds a top-level chat channel
func Discussion(id int64) Channel {
	return Channel{EntityType: EntityDiscussion, EntityID: id}
}

// Thread builds a thread channel
func Thread(id int64) Channel {
	return Channel{EntityType: EntityThread, EntityID: id}
}

// ChatMessage is a Pachca message as seen by this service
type ChatMessage struct {
	ID      int64
	Content string
}
