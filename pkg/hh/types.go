package hh

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Config defines hh.ru API client settings
type Config struct {
	BaseURL    string
	UserAgent  string // hh.ru rejects requests without a descriptive User-Agent
	HTTPClient *http.Client
	PerPage    int
	MaxPages   int
	Timeout    time.Duration // per request deadline
}

// Client queries the hh.ru employer API on behalf of an OAuth access token
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	perPage    int
	maxPages   int
	timeout    time.Duration
}

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hh: API error (%d): %s", e.StatusCode, e.Body)
}

// Vacancy is an hh.ru vacancy as listed for the employer
type Vacancy struct {
	ID        string
	Name      string
	URL       string
	ExpiresAt time.Time
}

// Negotiation is a candidate response on a vacancy
type Negotiation struct {
	ID        string
	CreatedAt string // raw, kept for date-prefix filtering
	Resume    Resume
}

// Resume is the subset of the negotiation's resume the notifier needs
type Resume struct {
	FirstName        string
	LastName         string
	ExperienceMonths int
	AlternateURL     string
	PDFURL           string
}

type page[T any] struct {
	Items   []T `json:"items"`
	Found   int `json:"found"`
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
}

type vacancyItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	AlternateURL string `json:"alternate_url"`
	Expires      string `json:"expires"`
	ExpiresAt    string `json:"expires_at"`
}

type negotiationItem struct {
	ID        string      `json:"id"`
	CreatedAt string      `json:"created_at"`
	Resume    *resumeItem `json:"resume"`
}

type resumeItem struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	AlternateURL    string `json:"alternate_url"`
	TotalExperience *struct {
		Months int `json:"months"`
	} `json:"total_experience"`
	Actions struct {
		Download struct {
			PDF *struct {
				URL string `json:"url"`
			} `json:"pdf"`
		} `json:"download"`
	} `json:"actions"`
}

type testSolutionResponse struct {
	TestResult *struct {
		Tasks []struct {
			OpenedAnswer *struct {
				Value string `json:"value"`
			} `json:"opened_answer"`
		} `json:"tasks"`
	} `json:"test_result"`
}

// hh.ru uses an offset without a colon, e.g. 2024-05-01T10:00:00+0300
const timeLayout = "2006-01-02T15:04:05-0700"

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{timeLayout, time.RFC3339} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func mapVacancy(item vacancyItem) Vacancy {
	v := Vacancy{
		ID:   item.ID,
		Name: item.Name,
		URL:  item.AlternateURL,
	}
	if item.Expires != "" {
		v.ExpiresAt = parseTime(item.Expires)
	} else {
		v.ExpiresAt = parseTime(item.ExpiresAt)
	}
	return v
}

func mapNegotiation(item negotiationItem) Negotiation {
	n := Negotiation{ID: item.ID, CreatedAt: item.CreatedAt}
	if r := item.Resume; r != nil {
		n.Resume = Resume{
			FirstName:    r.FirstName,
			LastName:     r.LastName,
			AlternateURL: r.AlternateURL,
		}
		if r.TotalExperience != nil {
			n.Resume.ExperienceMonths = r.TotalExperience.Months
		}
		if r.Actions.Download.PDF != nil {
			n.Resume.PDFURL = r.Actions.Download.PDF.URL
		}
	}
	return n
}
